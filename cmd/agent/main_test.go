package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/petasbytes/memory-agent/memory"
)

// fakeMem0 serves the three Mem0 endpoints the client uses.
func fakeMem0(searchBody string, adds *atomic.Int32) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ping/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Token good-key" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"Invalid API key"}`)
			return
		}
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	})
	mux.HandleFunc("/v2/memories/search/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, searchBody)
	})
	mux.HandleFunc("/v1/memories/", func(w http.ResponseWriter, _ *http.Request) {
		adds.Add(1)
		_, _ = io.WriteString(w, `{"results":[{"id":"m1","event":"ADD"}]}`)
	})
	return httptest.NewServer(mux)
}

// clearAgentEnv blanks anything from the developer's shell or .env.
func clearAgentEnv() {
	for _, k := range []string{
		"MEM0_API_KEY", "MEM0_HOST", "MEM0_ORG_ID", "MEM0_PROJECT_ID", "MEM0_TIMEOUT",
		"AGT_USER_ID", "AGT_MODEL", "AGT_TRANSCRIPT", "AGT_DEBUG", "AGT_OBSERVE_JSON", "AGT_TOKEN_BUDGET",
	} {
		GinkgoT().Setenv(k, "")
	}
}

func execute(d deps, args ...string) (string, string, error) {
	var out, logs bytes.Buffer
	d.logOut = &logs
	cmd := newRootCmd(d)
	cmd.SetOut(&out)
	cmd.SetErr(&logs)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), logs.String(), err
}

func decodeResponse(out string) memory.Response {
	var r memory.Response
	ExpectWithOffset(1, json.Unmarshal([]byte(out), &r)).To(Succeed())
	return r
}

var _ = Describe("memory subcommands", func() {
	var (
		srv  *httptest.Server
		adds atomic.Int32
	)

	BeforeEach(func() {
		clearAgentEnv()
		adds.Store(0)
		srv = fakeMem0(`{"results":[{"id":"1","memory":"Likes green tea"},{"id":"2","memory":"Lives in Lisbon"}]}`, &adds)
		GinkgoT().Setenv("MEM0_HOST", srv.URL)
	})

	AfterEach(func() {
		srv.Close()
	})

	It("prints bulleted memories for a search", func() {
		GinkgoT().Setenv("MEM0_API_KEY", "good-key")

		out, _, err := execute(defaultDeps(), "memory", "search", "tea", "--user", "alice")
		Expect(err).NotTo(HaveOccurred())

		r := decodeResponse(out)
		Expect(r.Status).To(Equal(memory.StatusSuccess))
		Expect(r.Memories).To(Equal("- Likes green tea\n- Lives in Lisbon"))
	})

	It("saves and echoes the raw store response", func() {
		GinkgoT().Setenv("MEM0_API_KEY", "good-key")

		out, _, err := execute(defaultDeps(), "memory", "save", "I", "prefer", "green", "tea")
		Expect(err).NotTo(HaveOccurred())

		r := decodeResponse(out)
		Expect(r.Status).To(Equal(memory.StatusSuccess))
		Expect(r.Message).To(Equal("Information saved to memory"))
		Expect(string(r.Result)).To(MatchJSON(`{"results":[{"id":"m1","event":"ADD"}]}`))
		Expect(adds.Load()).To(Equal(int32(1)))
	})

	It("falls back to the disabled adapter without an API key", func() {
		out, logs, err := execute(defaultDeps(), "memory", "search", "tea")
		Expect(err).NotTo(HaveOccurred())

		r := decodeResponse(out)
		Expect(r).To(Equal(memory.Response{Status: memory.StatusError, Message: "Memory client not initialized."}))
		Expect(logs).To(ContainSubstring("memory client unavailable; memory features disabled"))
	})

	It("falls back to the disabled adapter when the key is rejected", func() {
		GinkgoT().Setenv("MEM0_API_KEY", "bad-key")

		out, logs, err := execute(defaultDeps(), "memory", "save", "anything")
		Expect(err).NotTo(HaveOccurred())

		r := decodeResponse(out)
		Expect(r.Status).To(Equal(memory.StatusError))
		Expect(r.Message).To(Equal("Memory client not initialized."))
		Expect(logs).To(ContainSubstring("Invalid API key"))
		Expect(adds.Load()).To(BeZero())
	})

	It("requires an argument", func() {
		_, _, err := execute(defaultDeps(), "memory", "search")
		Expect(err).To(HaveOccurred())
	})
})

// scriptedTransport answers Anthropic requests from a fixed list.
type scriptedTransport struct {
	replies []string
	calls   atomic.Int32
}

func (s *scriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	_, _ = io.Copy(io.Discard, req.Body)
	_ = req.Body.Close()
	i := int(s.calls.Add(1)) - 1
	if i >= len(s.replies) {
		i = len(s.replies) - 1
	}
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(s.replies[i])),
		Header:     make(http.Header),
		Request:    req,
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp, nil
}

var _ = Describe("chat", func() {
	var (
		srv  *httptest.Server
		adds atomic.Int32
		dir  string
	)

	BeforeEach(func() {
		clearAgentEnv()
		srv = fakeMem0(`[]`, &adds)
		dir = GinkgoT().TempDir()
		GinkgoT().Setenv("MEM0_HOST", srv.URL)
		GinkgoT().Setenv("MEM0_API_KEY", "good-key")
		GinkgoT().Setenv("ANTHROPIC_API_KEY", "test-key")
		GinkgoT().Setenv("AGT_TRANSCRIPT", dir)
	})

	AfterEach(func() {
		srv.Close()
	})

	It("runs a turn with a memory tool call and persists the transcript", func() {
		rt := &scriptedTransport{replies: []string{
			`{"id":"m1","type":"message","role":"assistant","content":[{"type":"tool_use","id":"t1","name":"save_memory","input":{"content":"likes tea","user_id":"carol"}}],"stop_reason":"tool_use"}`,
			`{"id":"m2","type":"message","role":"assistant","content":[{"type":"text","text":"Noted, you like tea."}],"stop_reason":"end_turn"}`,
		}}
		d := defaultDeps()
		d.newClient = func() *anthropic.Client {
			c := anthropic.NewClient(
				option.WithHTTPClient(&http.Client{Transport: rt}),
				option.WithAPIKey("test-key"),
				option.WithMaxRetries(0),
			)
			return &c
		}
		d.stdin = strings.NewReader("I like tea\n")

		out, _, err := execute(d, "--user", "carol")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Noted, you like tea."))
		Expect(rt.calls.Load()).To(Equal(int32(2)))
		Expect(adds.Load()).To(Equal(int32(1)))

		turns, err := memory.LoadTranscript(filepath.Join(dir, "transcript-carol.json"))
		Expect(err).NotTo(HaveOccurred())
		Expect(turns).To(Equal([]memory.Turn{
			{Role: "user", Text: "I like tea"},
			{Role: "assistant", Text: "Noted, you like tea."},
		}))
	})

	It("refuses to start without an Anthropic key", func() {
		GinkgoT().Setenv("ANTHROPIC_API_KEY", "")
		d := defaultDeps()
		d.stdin = strings.NewReader("")

		_, _, err := execute(d)
		Expect(err).To(MatchError(errNoAnthropicKey))
		_, statErr := os.Stat(filepath.Join(dir, "transcript-default_user.json"))
		Expect(os.IsNotExist(statErr)).To(BeTrue())
	})
})

var _ = Describe("transcriptToConversation", func() {
	It("keeps roles alternating", func() {
		conv := transcriptToConversation([]memory.Turn{
			{Role: "user", Text: "a"},
			{Role: "user", Text: "b"},
			{Role: "assistant", Text: "c"},
			{Role: "assistant", Text: ""},
			{Role: "user", Text: "d"},
		})
		Expect(conv).To(HaveLen(3))
		Expect(conv[0].Role).To(Equal(anthropic.MessageParamRoleUser))
		Expect(conv[0].Content).To(HaveLen(2))
		Expect(conv[1].Role).To(Equal(anthropic.MessageParamRoleAssistant))
		Expect(conv[2].Role).To(Equal(anthropic.MessageParamRoleUser))
	})

	It("returns an empty conversation for no turns", func() {
		Expect(transcriptToConversation(nil)).To(BeEmpty())
	})
})
