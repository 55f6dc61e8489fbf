// Package mock provides test doubles for memorial interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/memorial"
)

// Interface compliance checks.
var (
	_ memorial.Provider = (*Provider)(nil)
	_ memorial.Titler   = (*Titler)(nil)
)

// Provider is a test double for memorial.Provider.
// Set StreamFn before calling Stream.
type Provider struct {
	StreamFn func(ctx context.Context, req memorial.Request) (memorial.Stream, error)
}

// Stream delegates to StreamFn.
func (p *Provider) Stream(ctx context.Context, req memorial.Request) (memorial.Stream, error) {
	return p.StreamFn(ctx, req)
}

// Titler is a test double for memorial.Titler.
// Set TitleFn before calling Title.
type Titler struct {
	TitleFn func(ctx context.Context, text string) string
}

// Title delegates to TitleFn.
func (t *Titler) Title(ctx context.Context, text string) string {
	return t.TitleFn(ctx, text)
}
