// Package anthropic implements [memorial.Provider] for the Anthropic Messages
// API on top of github.com/anthropics/anthropic-sdk-go.
//
// The SDK's server-sent event stream is wrapped into the pull-based
// [memorial.Stream] interface; only text deltas become fragments.
package anthropic

const (
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 8192
)
