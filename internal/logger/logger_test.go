package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/petasbytes/memory-agent/internal/logger"
)

var _ = Describe("New", func() {
	var buf bytes.Buffer

	BeforeEach(func() {
		buf.Reset()
	})

	It("writes plain text at info by default", func() {
		l := logger.New(logger.WithWriter(&buf))
		l.Info("memory client unavailable", "error", "missing key")
		l.Debug("not shown")

		Expect(buf.String()).To(ContainSubstring("memory client unavailable"))
		Expect(buf.String()).To(ContainSubstring("missing key"))
		Expect(buf.String()).NotTo(ContainSubstring("not shown"))
	})

	It("emits debug records when enabled", func() {
		l := logger.New(logger.WithWriter(&buf), logger.WithDebug(true))
		l.Debug("search complete", "results", 2)

		Expect(buf.String()).To(ContainSubstring("search complete"))
	})

	It("writes one JSON object per record", func() {
		l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true))
		l.Warn("memory save failed", "user_id", "alice")

		var rec map[string]any
		Expect(json.Unmarshal(buf.Bytes(), &rec)).To(Succeed())
		Expect(rec["msg"]).To(Equal("memory save failed"))
		Expect(rec["level"]).To(Equal("WARN"))
		Expect(rec["user_id"]).To(Equal("alice"))
	})

	It("prefers JSON over pretty", func() {
		l := logger.New(logger.WithWriter(&buf), logger.WithPretty(true), logger.WithJSON(true))
		l.Info("both")

		Expect(json.Valid(bytes.TrimSpace(buf.Bytes()))).To(BeTrue())
	})

	It("renders through the pretty handler", func() {
		l := logger.New(logger.WithWriter(&buf), logger.WithPretty(true))
		l.With("component", "mem0").Info("ping ok")

		Expect(buf.String()).To(ContainSubstring("ping ok"))
		Expect(buf.String()).To(ContainSubstring("component"))
		Expect(buf.String()).To(ContainSubstring("mem0"))
	})

	It("filters pretty debug output unless enabled", func() {
		l := logger.New(logger.WithWriter(&buf), logger.WithPretty(true))
		l.Debug("hidden")

		Expect(buf.String()).To(BeEmpty())
	})

	It("fans out to several writers", func() {
		var other bytes.Buffer
		l := logger.New(logger.WithWriters(&buf, &other))
		l.Info("twice")

		Expect(buf.String()).To(ContainSubstring("twice"))
		Expect(other.String()).To(ContainSubstring("twice"))
	})

	It("adds the source location when asked", func() {
		l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true), logger.WithSource(true))
		l.Info("where")

		var rec map[string]any
		Expect(json.Unmarshal(buf.Bytes(), &rec)).To(Succeed())
		Expect(rec).To(HaveKey(slog.SourceKey))
	})
})

var _ = Describe("Nop", func() {
	It("is disabled at every level", func() {
		l := logger.Nop()
		for _, lvl := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
			Expect(l.Enabled(context.Background(), lvl)).To(BeFalse())
		}
	})

	It("tolerates attrs and groups", func() {
		l := logger.Nop().With("k", "v").WithGroup("g")
		Expect(func() { l.Error("dropped") }).NotTo(Panic())
	})
})
