package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"demoprep/internal/modules/session/domain"
	sessionout "demoprep/internal/modules/session/port/out"
	"demoprep/internal/platform/clock"
	apperrors "demoprep/internal/platform/errors"
	"demoprep/internal/platform/id"
)

// SessionRepository owns the durable session collection. Every Save and
// Delete rewrites the whole collection.
type SessionRepository struct {
	clock clock.Clock
	idGen id.Generator
	store sessionout.SessionStore
}

func NewSessionRepository(clock clock.Clock, idGen id.Generator, store sessionout.SessionStore) *SessionRepository {
	return &SessionRepository{clock: clock, idGen: idGen, store: store}
}

// Create builds a new empty session. It is not persisted until Save.
func (r *SessionRepository) Create(name string, overrides domain.MetadataOverrides) domain.Session {
	return domain.New(r.idGen.New(), name, overrides, r.clock.Now())
}

func (r *SessionRepository) LoadAll(ctx context.Context) []domain.Session {
	return r.store.ReadSessions(ctx)
}

func (r *SessionRepository) LoadByID(ctx context.Context, id string) (domain.Session, error) {
	for _, s := range r.store.ReadSessions(ctx) {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.Session{}, fmt.Errorf("session %q: %w", id, apperrors.ErrNotFound)
}

// Save upserts the session with UpdatedAt set to now and returns the stored
// copy. The returned session is valid even when the write fails.
func (r *SessionRepository) Save(ctx context.Context, session domain.Session) (domain.Session, error) {
	if strings.TrimSpace(session.ID) == "" {
		return session, fmt.Errorf("save: %w: id is required", apperrors.ErrInvalidSession)
	}
	saved := session.Clone()
	saved.UpdatedAt = r.clock.Now()
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = saved.UpdatedAt
	}
	if saved.UpdatedAt.Before(saved.CreatedAt) {
		saved.UpdatedAt = saved.CreatedAt
	}
	if err := saved.Validate(); err != nil {
		return session, err
	}

	all := r.store.ReadSessions(ctx)
	replaced := false
	for i := range all {
		if all[i].ID == saved.ID {
			all[i] = saved
			replaced = true
			break
		}
	}
	if !replaced {
		all = append(all, saved)
	}
	if err := r.store.WriteSessions(ctx, all); err != nil {
		return saved, err
	}
	return saved, nil
}

// Delete reports whether a session was removed. Deleting the session the
// current pointer refers to clears the pointer.
func (r *SessionRepository) Delete(ctx context.Context, id string) (bool, error) {
	all := r.store.ReadSessions(ctx)
	kept := make([]domain.Session, 0, len(all))
	for _, s := range all {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	if len(kept) == len(all) {
		return false, nil
	}
	if err := r.store.WriteSessions(ctx, kept); err != nil {
		return false, err
	}
	if current, ok := r.store.ReadCurrentID(ctx); ok && current == id {
		if err := r.store.WriteCurrentID(ctx, ""); err != nil {
			return true, err
		}
	}
	return true, nil
}

// SortedByUpdatedAtDesc returns the collection newest first. Ties keep
// their stored order.
func (r *SessionRepository) SortedByUpdatedAtDesc(ctx context.Context) []domain.Session {
	all := r.store.ReadSessions(ctx)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].UpdatedAt.After(all[j].UpdatedAt)
	})
	return all
}

func (r *SessionRepository) ValidateName(name string) error {
	return domain.ValidateName(name)
}

func (r *SessionRepository) CurrentID(ctx context.Context) (string, bool) {
	return r.store.ReadCurrentID(ctx)
}

func (r *SessionRepository) SetCurrentID(ctx context.Context, id string) error {
	return r.store.WriteCurrentID(ctx, id)
}

func (r *SessionRepository) Available(ctx context.Context) bool {
	return r.store.IsAvailable(ctx)
}

func (r *SessionRepository) Usage(ctx context.Context) float64 {
	return r.store.UsageRatio(ctx)
}

func (r *SessionRepository) Migrate(ctx context.Context) (domain.MigrationResult, error) {
	return r.store.Migrate(ctx)
}

func (r *SessionRepository) Reset(ctx context.Context) error {
	return r.store.ClearAll(ctx)
}
