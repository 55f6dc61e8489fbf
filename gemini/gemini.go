// Package gemini implements [memorial.Provider] and [memorial.Titler] for the
// Google Gemini API.
//
// It wraps the google.golang.org/genai SDK, translating between memorial's
// domain types and the Gemini API types. Streaming uses the SDK's iter.Seq2
// iterator, wrapped into the pull-based [memorial.Stream] interface.
package gemini

const (
	defaultModel     = "gemini-3-flash-preview"
	defaultMaxTokens = 8192
)
