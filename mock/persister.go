package mock

import (
	"context"

	"github.com/fwojciec/memorial"
)

// Interface compliance check.
var _ memorial.Persister = (*Persister)(nil)

// Persister is a test double for memorial.Persister.
// LoadFn and SaveFn panic when nil to catch missing setup.
type Persister struct {
	LoadFn func(ctx context.Context) ([]memorial.Session, bool, error)
	SaveFn func(ctx context.Context, sessions []memorial.Session) error
}

// Load delegates to LoadFn.
func (p *Persister) Load(ctx context.Context) ([]memorial.Session, bool, error) {
	return p.LoadFn(ctx)
}

// Save delegates to SaveFn.
func (p *Persister) Save(ctx context.Context, sessions []memorial.Session) error {
	return p.SaveFn(ctx, sessions)
}
