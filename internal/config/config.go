// Package config resolves runtime settings from defaults, the environment
// and CLI flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/petasbytes/memory-agent/internal/mem0"
)

// Config is the resolved runtime configuration.
type Config struct {
	Mem0 Mem0Config

	// Model is the Anthropic model id. Empty means the provider default.
	Model string

	UserID        string
	TranscriptDir string
	Debug         bool

	// TokenBudget caps the estimated chat history sent per request.
	// Zero sends the whole history.
	TokenBudget int
}

// Mem0Config holds memory store settings.
type Mem0Config struct {
	APIKey    string
	Host      string
	OrgID     string
	ProjectID string
	Timeout   time.Duration
}

// Client converts the settings into the store client's config.
func (m Mem0Config) Client() mem0.Config {
	return mem0.Config{
		APIKey:    m.APIKey,
		Host:      m.Host,
		OrgID:     m.OrgID,
		ProjectID: m.ProjectID,
		Timeout:   m.Timeout,
	}
}

// NewDefaultConfig returns the settings used when nothing overrides them.
func NewDefaultConfig() *Config {
	return &Config{
		Mem0: Mem0Config{
			Host:    mem0.DefaultHost,
			Timeout: 30 * time.Second,
		},
		UserID:        "default_user",
		TranscriptDir: ".agent",
	}
}

// Load reads a Config out of v. A missing API key is not an error here;
// it only disables memory later on.
func Load(v *viper.Viper) (*Config, error) {
	timeout, err := durationValue(v, "mem0.timeout")
	if err != nil {
		return nil, err
	}
	budget, err := intValue(v, "agent.token_budget")
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		Mem0: Mem0Config{
			APIKey:    strings.TrimSpace(v.GetString("mem0.api_key")),
			Host:      strings.TrimSpace(v.GetString("mem0.host")),
			OrgID:     v.GetString("mem0.org_id"),
			ProjectID: v.GetString("mem0.project_id"),
			Timeout:   timeout,
		},
		Model:         strings.TrimSpace(v.GetString("agent.model")),
		UserID:        strings.TrimSpace(v.GetString("agent.user_id")),
		TranscriptDir: v.GetString("agent.transcript_dir"),
		Debug:         v.GetBool("agent.debug"),
		TokenBudget:   budget,
	}
	if cfg.UserID == "" {
		return nil, fmt.Errorf("config: agent.user_id must not be empty")
	}
	if cfg.TokenBudget < 0 {
		return nil, fmt.Errorf("config: agent.token_budget must not be negative, got %d", cfg.TokenBudget)
	}
	if cfg.Mem0.Timeout < 0 {
		return nil, fmt.Errorf("config: mem0.timeout must not be negative, got %s", cfg.Mem0.Timeout)
	}
	return cfg, nil
}

// durationValue reads key strictly. Strings must carry a unit, so "30" is
// rejected instead of becoming 30ns.
func durationValue(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.Get(key)
	if s, ok := raw.(string); ok {
		d, err := time.ParseDuration(strings.TrimSpace(s))
		if err != nil {
			return 0, fmt.Errorf("config: %s: %w", key, err)
		}
		return d, nil
	}
	d, err := cast.ToDurationE(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func intValue(v *viper.Viper, key string) (int, error) {
	raw := v.Get(key)
	if s, ok := raw.(string); ok {
		raw = strings.TrimSpace(s)
	}
	n, err := cast.ToIntE(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}
