// Package mem0 is a small client for the Mem0 Platform REST API. It covers
// the calls the memory adapter needs: a credential check, user-scoped search
// and message add.
package mem0

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/petasbytes/memory-agent/internal/logger"
	"github.com/petasbytes/memory-agent/memory"
)

// DefaultHost is the hosted Mem0 Platform endpoint.
const DefaultHost = "https://api.mem0.ai"

const (
	pingPath   = "/v1/ping/"
	addPath    = "/v1/memories/"
	searchPath = "/v2/memories/search/"
)

// ErrMissingAPIKey is returned by NewClient when no API key is configured.
var ErrMissingAPIKey = errors.New("mem0: api key is required (set MEM0_API_KEY)")

// Config holds client settings. Only APIKey is required.
type Config struct {
	APIKey    string
	Host      string
	OrgID     string
	ProjectID string

	// Timeout bounds each HTTP request. Zero means no client-side timeout.
	Timeout time.Duration

	// HTTPClient overrides the transport (tests). Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client talks to the Mem0 Platform API. It is safe for concurrent use.
type Client struct {
	host       string
	apiKey     string
	orgID      string
	projectID  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds a client and verifies the credentials with a ping.
// Any failure here means memory features should be disabled.
func NewClient(ctx context.Context, cfg Config, log *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if log == nil {
		log = logger.Nop()
	}
	host := strings.TrimRight(cfg.Host, "/")
	if host == "" {
		host = DefaultHost
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	c := &Client{
		host:       host,
		apiKey:     cfg.APIKey,
		orgID:      cfg.OrgID,
		projectID:  cfg.ProjectID,
		httpClient: hc,
		logger:     log.With("component", "mem0"),
	}
	if err := c.Ping(ctx); err != nil {
		return nil, fmt.Errorf("mem0: validate api key: %w", err)
	}
	return c, nil
}

// Ping checks that the host is reachable and the API key is accepted.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, pingPath, nil)
	return err
}

type searchRequest struct {
	Query     string            `json:"query"`
	Filters   map[string]string `json:"filters,omitempty"`
	OrgID     string            `json:"org_id,omitempty"`
	ProjectID string            `json:"project_id,omitempty"`
}

// Search runs a filtered semantic search. Filters are passed through as-is.
func (c *Client) Search(ctx context.Context, query string, filters map[string]string) ([]memory.Entry, error) {
	data, err := c.do(ctx, http.MethodPost, searchPath, searchRequest{
		Query:     query,
		Filters:   filters,
		OrgID:     c.orgID,
		ProjectID: c.projectID,
	})
	if err != nil {
		return nil, err
	}
	entries, err := parseEntries(data)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("search complete", "filters", filters, "results", len(entries))
	return entries, nil
}

type addRequest struct {
	Messages  []memory.Message `json:"messages"`
	UserID    string           `json:"user_id"`
	OrgID     string           `json:"org_id,omitempty"`
	ProjectID string           `json:"project_id,omitempty"`
}

// Add stores messages for userID and returns the raw response body.
func (c *Client) Add(ctx context.Context, messages []memory.Message, userID string) (json.RawMessage, error) {
	data, err := c.do(ctx, http.MethodPost, addPath, addRequest{
		Messages:  messages,
		UserID:    userID,
		OrgID:     c.orgID,
		ProjectID: c.projectID,
	})
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("mem0: malformed add response")
	}
	c.logger.Debug("add complete", "user_id", userID, "messages", len(messages))
	return json.RawMessage(data), nil
}

// parseEntries accepts both {"results": [...]} and a bare array.
func parseEntries(data []byte) ([]memory.Entry, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("mem0: malformed search response")
	}
	list := gjson.ParseBytes(data)
	if list.IsObject() {
		list = list.Get("results")
		if !list.Exists() || list.Type == gjson.Null {
			return nil, nil
		}
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("mem0: malformed search response: results is not a list")
	}

	items := list.Array()
	entries := make([]memory.Entry, 0, len(items))
	for i, item := range items {
		text := item.Get("memory")
		if !text.Exists() {
			return nil, fmt.Errorf("mem0: malformed search response: result %d has no memory", i)
		}
		entries = append(entries, memory.Entry{
			ID:     item.Get("id").String(),
			Memory: text.String(),
		})
	}
	return entries, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("mem0: encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.host+path, rdr)
	if err != nil {
		return nil, fmt.Errorf("mem0: build request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mem0: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("mem0: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(method, path, resp.StatusCode, data)
	}
	return data, nil
}

var _ memory.Store = (*Client)(nil)
