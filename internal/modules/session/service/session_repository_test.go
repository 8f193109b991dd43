package service_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	sessionadapter "demoprep/internal/modules/session/adapter/out"
	"demoprep/internal/modules/session/domain"
	"demoprep/internal/modules/session/service"
	apperrors "demoprep/internal/platform/errors"
)

type stepClock struct {
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	v := c.now
	c.now = c.now.Add(c.step)
	return v
}

type seqID struct{ n int }

func (s *seqID) New() string {
	s.n++
	return fmt.Sprintf("sess-%d", s.n)
}

func newRepo(t *testing.T) (*service.SessionRepository, *sessionadapter.MemorySubstrate) {
	t.Helper()
	substrate := sessionadapter.NewMemorySubstrate(sessionadapter.DefaultQuotaBytes)
	clk := &stepClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), step: time.Minute}
	store := sessionadapter.NewStorageAdapter(substrate, sessionadapter.StorageOptions{})
	return service.NewSessionRepository(clk, &seqID{}, store), substrate
}

func TestCreateDoesNotPersist(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, _ := newRepo(t)
	s := repo.Create("Acme", domain.MetadataOverrides{})
	if s.ID != "sess-1" || s.Name != "Acme" {
		t.Fatalf("unexpected session: %+v", s)
	}
	if got := repo.LoadAll(ctx); len(got) != 0 {
		t.Fatalf("create must not persist, got %d sessions", len(got))
	}
	saved, err := repo.Save(ctx, s)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := repo.LoadByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("load by id: %v", err)
	}
	if loaded.Name != "Acme" {
		t.Fatalf("unexpected loaded session: %+v", loaded)
	}
}

func TestSaveIsIdempotentApartFromUpdatedAt(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, _ := newRepo(t)
	s := repo.Create("Acme", domain.MetadataOverrides{})

	first, err := repo.Save(ctx, s)
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	second, err := repo.Save(ctx, first)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Fatalf("updatedAt should advance: %v then %v", first.UpdatedAt, second.UpdatedAt)
	}
	all := repo.LoadAll(ctx)
	if len(all) != 1 {
		t.Fatalf("expected one stored session, got %d", len(all))
	}
	stored := all[0]
	stored.UpdatedAt = first.UpdatedAt
	if !reflect.DeepEqual(stored, first) {
		t.Fatalf("content changed between saves:\n%+v\n%+v", stored, first)
	}
}

func TestSaveRequiresID(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	s := domain.New("", "Acme", domain.MetadataOverrides{}, time.Now().UTC())
	if _, err := repo.Save(context.Background(), s); !errors.Is(err, apperrors.ErrInvalidSession) {
		t.Fatalf("expected invalid session, got %v", err)
	}
}

func TestDeleteClearsCurrentPointer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, _ := newRepo(t)
	a, err := repo.Save(ctx, repo.Create("A", domain.MetadataOverrides{}))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.SetCurrentID(ctx, a.ID); err != nil {
		t.Fatalf("set current: %v", err)
	}
	removed, err := repo.Delete(ctx, a.ID)
	if err != nil || !removed {
		t.Fatalf("delete: removed=%v err=%v", removed, err)
	}
	if id, ok := repo.CurrentID(ctx); ok {
		t.Fatalf("pointer should be cleared, got %q", id)
	}
	removed, err = repo.Delete(ctx, a.ID)
	if err != nil || removed {
		t.Fatalf("second delete should be a no-op: removed=%v err=%v", removed, err)
	}
	if _, err := repo.LoadByID(ctx, a.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteKeepsOtherPointer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, _ := newRepo(t)
	a, _ := repo.Save(ctx, repo.Create("A", domain.MetadataOverrides{}))
	b, _ := repo.Save(ctx, repo.Create("B", domain.MetadataOverrides{}))
	_ = repo.SetCurrentID(ctx, b.ID)
	if _, err := repo.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if id, _ := repo.CurrentID(ctx); id != b.ID {
		t.Fatalf("pointer should still be %q, got %q", b.ID, id)
	}
}

func TestSortedByUpdatedAtDesc(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, _ := newRepo(t)
	a, _ := repo.Save(ctx, repo.Create("A", domain.MetadataOverrides{}))
	_, _ = repo.Save(ctx, repo.Create("B", domain.MetadataOverrides{}))
	_, _ = repo.Save(ctx, repo.Create("C", domain.MetadataOverrides{}))
	if _, err := repo.Save(ctx, a); err != nil {
		t.Fatalf("resave: %v", err)
	}
	var names []string
	for _, s := range repo.SortedByUpdatedAtDesc(ctx) {
		names = append(names, s.Name)
	}
	if fmt.Sprint(names) != "[A C B]" {
		t.Fatalf("unexpected order: %v", names)
	}
}

func TestLoadAllSurvivesCorruption(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, substrate := newRepo(t)
	if err := substrate.Set(ctx, sessionadapter.SessionsKey, "not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if got := repo.LoadAll(ctx); len(got) != 0 {
		t.Fatalf("expected empty collection, got %d", len(got))
	}
}
