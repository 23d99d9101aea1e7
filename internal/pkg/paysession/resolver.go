package paysession

import (
	"context"
	"errors"

	"github.com/vidora/vidora-web/internal/pkg/billing"
)

// Resolver applies a finished reconciliation to the stored markers.
type Resolver struct {
	Store Store
}

// ResolveSession moves the session to resolved(outcome). Resolving twice is
// not an error; the first outcome stays.
func (r Resolver) ResolveSession(ctx context.Context, sessionID string, outcome billing.Outcome) error {
	s, err := r.Store.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	next, err := s.Resolve(outcome)
	if errors.Is(err, ErrAlreadyResolved) {
		return nil
	}
	if err != nil {
		return err
	}
	return r.Store.Save(ctx, sessionID, next)
}
