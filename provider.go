package memorial

import (
	"context"
	"fmt"
	"strings"
)

// Provider is a strategy pattern interface for text-generation backends.
//
// Request is passed by value, so providers may append to History without
// affecting the caller, but must not modify existing elements.
type Provider interface {
	Stream(ctx context.Context, req Request) (Stream, error)
}

// Titler summarizes a first message into a short session title. It never
// fails from the caller's perspective: internal errors map to DefaultTitle.
type Titler interface {
	Title(ctx context.Context, text string) string
}

// Turn is one prior message as seen by a provider.
type Turn struct {
	Role Role
	Text string
}

// Turns maps messages to prompt history, preserving order.
func Turns(msgs []Message) []Turn {
	if len(msgs) == 0 {
		return nil
	}
	turns := make([]Turn, len(msgs))
	for i, m := range msgs {
		turns[i] = Turn{Role: m.Role, Text: m.Content}
	}
	return turns
}

// Request carries the conversation so far and the new user text.
// The provider uses its own defaults when fields are zero.
type Request struct {
	Model        string // model ID, provider-specific; empty = provider default
	SystemPrompt string
	History      []Turn
	Text         string
}

// Validate checks universal constraints on Request.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("text must not be empty: %w", ErrValidation)
	}
	for i, t := range r.History {
		if !t.Role.Valid() {
			return fmt.Errorf("history turn %d has unknown role %q: %w", i, t.Role, ErrValidation)
		}
	}
	return nil
}
