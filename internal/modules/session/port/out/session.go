package out

import (
	"context"

	"demoprep/internal/modules/session/domain"
)

// Substrate is a string key/value store with a finite quota. Set fails with
// apperrors.ErrQuotaExceeded when the write would push usage past the quota.
type Substrate interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Quota() int64
}

// SessionStore persists the session collection, the current-session pointer,
// and the schema version marker.
type SessionStore interface {
	IsAvailable(ctx context.Context) bool
	UsageRatio(ctx context.Context) float64
	WriteSessions(ctx context.Context, sessions []domain.Session) error
	ReadSessions(ctx context.Context) []domain.Session
	WriteCurrentID(ctx context.Context, id string) error
	ReadCurrentID(ctx context.Context) (string, bool)
	Migrate(ctx context.Context) (domain.MigrationResult, error)
	ClearAll(ctx context.Context) error
}

// MigrationHook runs when the stored version marker differs from the running version.
type MigrationHook func(ctx context.Context, from, to string) error

type Notifier interface {
	Notify(notice domain.Notice)
}
