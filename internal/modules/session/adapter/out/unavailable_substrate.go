package out

import (
	"context"
	"fmt"

	apperrors "demoprep/internal/platform/errors"
)

// UnavailableSubstrate stands in when the configured backend cannot be
// opened. Every call fails, which puts the controller in memory-only mode.
type UnavailableSubstrate struct {
	cause error
}

func NewUnavailableSubstrate(cause error) *UnavailableSubstrate {
	return &UnavailableSubstrate{cause: cause}
}

func (s *UnavailableSubstrate) err() error {
	return fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, s.cause)
}

func (s *UnavailableSubstrate) Get(context.Context, string) (string, bool, error) {
	return "", false, s.err()
}

func (s *UnavailableSubstrate) Set(context.Context, string, string) error { return s.err() }

func (s *UnavailableSubstrate) Remove(context.Context, string) error { return s.err() }

func (s *UnavailableSubstrate) Keys(context.Context) ([]string, error) { return nil, s.err() }

func (s *UnavailableSubstrate) Quota() int64 { return 0 }
