// Package openai implements [memorial.Provider] for OpenAI-compatible chat
// completion endpoints on top of github.com/openai/openai-go.
package openai

const defaultModel = "gpt-4o-mini"
