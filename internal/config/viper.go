package config

import (
	"github.com/spf13/viper"
)

// envBindings maps each config key to the environment variable it reads.
// The two prefixes (MEM0_, AGT_) predate this package, so keys are bound
// one by one rather than through a single env prefix.
var envBindings = map[string]string{
	"mem0.api_key":         "MEM0_API_KEY",
	"mem0.host":            "MEM0_HOST",
	"mem0.org_id":          "MEM0_ORG_ID",
	"mem0.project_id":      "MEM0_PROJECT_ID",
	"mem0.timeout":         "MEM0_TIMEOUT",
	"agent.user_id":        "AGT_USER_ID",
	"agent.model":          "AGT_MODEL",
	"agent.transcript_dir": "AGT_TRANSCRIPT",
	"agent.debug":          "AGT_DEBUG",
	"agent.token_budget":   "AGT_TOKEN_BUDGET",
}

// InitViper creates a *viper.Viper with defaults and environment bindings.
//
// Precedence (highest to lowest):
//  1. CLI flags (once bound via BindFlags)
//  2. Environment variables
//  3. Defaults from NewDefaultConfig()
func InitViper() *viper.Viper {
	v := viper.New()
	setViperDefaults(v)
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
	return v
}

func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	// Memory store
	v.SetDefault("mem0.host", d.Mem0.Host)
	v.SetDefault("mem0.timeout", d.Mem0.Timeout)

	// Agent
	v.SetDefault("agent.user_id", d.UserID)
	v.SetDefault("agent.transcript_dir", d.TranscriptDir)
	v.SetDefault("agent.debug", d.Debug)
	v.SetDefault("agent.token_budget", d.TokenBudget)
}
