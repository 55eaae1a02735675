package provider

import (
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const DefaultModel = anthropic.ModelClaude3_7SonnetLatest

// NewAnthropicClient returns a client that reads ANTHROPIC_API_KEY from the
// env. Extra options are applied after the defaults.
func NewAnthropicClient(opts ...option.RequestOption) *anthropic.Client {
	c := anthropic.NewClient(opts...)
	return &c
}

// ResolveModel returns name as a model id, or DefaultModel when name is blank.
func ResolveModel(name string) anthropic.Model {
	if strings.TrimSpace(name) == "" {
		return DefaultModel
	}
	return anthropic.Model(strings.TrimSpace(name))
}
