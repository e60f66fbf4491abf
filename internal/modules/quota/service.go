// README: Per-caller monthly quota on extractor-backed resolutions.
package quota

import (
	"context"
	"errors"
)

type store interface {
	Consume(ctx context.Context, uid string) error
	EnsureCaller(ctx context.Context, uid string) error
	Remaining(ctx context.Context, uid string) (int, error)
}

// Service orchestrates quota logic.
type Service struct {
	store store
}

func NewService(s *Store) *Service {
	return &Service{store: s}
}

// Consume deducts one call from the caller's monthly allowance.
// A missing row is initialised and the call is consumed in the same request.
func (s *Service) Consume(ctx context.Context, uid string) error {
	err := s.store.Consume(ctx, uid)
	if !errors.Is(err, ErrExhausted) {
		return err
	}

	// Row may be missing: create it, then retry the deduction once.
	if initErr := s.store.EnsureCaller(ctx, uid); initErr != nil {
		return initErr
	}
	return s.store.Consume(ctx, uid)
}

// Remaining reports how many calls uid has left this month.
func (s *Service) Remaining(ctx context.Context, uid string) (int, error) {
	return s.store.Remaining(ctx, uid)
}
