package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag describes one CLI flag and the config key it overrides.
type Flag struct {
	Name        string
	Shorthand   string
	ViperKey    string
	Description string
}

// Flags lists the persistent flags shared by every command.
var Flags = []Flag{
	{Name: "user", Shorthand: "u", ViperKey: "agent.user_id", Description: "user id memories are scoped to"},
	{Name: "model", Shorthand: "m", ViperKey: "agent.model", Description: "Anthropic model id"},
	{Name: "transcript", ViperKey: "agent.transcript_dir", Description: "directory for per-user chat transcripts"},
	{Name: "mem0-host", ViperKey: "mem0.host", Description: "Mem0 API base URL"},
	{Name: "debug", ViperKey: "agent.debug", Description: "enable debug logging"},
}

// AddFlags registers Flags as persistent flags on cmd. Defaults stay empty
// so an unset flag never shadows the environment.
func AddFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	for _, f := range Flags {
		if f.Name == "debug" {
			pf.Bool(f.Name, false, f.Description)
			continue
		}
		pf.StringP(f.Name, f.Shorthand, "", f.Description)
	}
}

// BindFlags connects the persistent flags of cmd to v. Viper only prefers a
// bound flag when it was set on the command line.
func BindFlags(v *viper.Viper, cmd *cobra.Command) {
	for _, f := range Flags {
		if pf := cmd.PersistentFlags().Lookup(f.Name); pf != nil {
			_ = v.BindPFlag(f.ViperKey, pf)
		}
	}
}
