package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	sessionadapter "demoprep/internal/modules/session/adapter/out"
	"demoprep/internal/modules/session/domain"
	sessiondto "demoprep/internal/modules/session/dto"
	sessionout "demoprep/internal/modules/session/port/out"
	"demoprep/internal/modules/session/service"
	"demoprep/internal/modules/session/usecase"
	"demoprep/internal/platform/debounce"
	apperrors "demoprep/internal/platform/errors"
)

type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.now
	c.now = c.now.Add(c.step)
	return v
}

type seqID struct {
	mu sync.Mutex
	n  int
}

func (s *seqID) New() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("sess-%d", s.n)
}

type manualTimers struct {
	mu  sync.Mutex
	fns []func()
}

func (m *manualTimers) AfterFunc(_ time.Duration, fn func()) debounce.Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fns = append(m.fns, fn)
	return stopNoop{}
}

func (m *manualTimers) fire() {
	m.mu.Lock()
	fns := m.fns
	m.fns = nil
	m.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

type stopNoop struct{}

func (stopNoop) Stop() bool { return true }

type brokenSubstrate struct{}

func (brokenSubstrate) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("storage disabled")
}
func (brokenSubstrate) Set(context.Context, string, string) error { return errors.New("storage disabled") }
func (brokenSubstrate) Remove(context.Context, string) error      { return errors.New("storage disabled") }
func (brokenSubstrate) Keys(context.Context) ([]string, error)    { return nil, errors.New("storage disabled") }
func (brokenSubstrate) Quota() int64                              { return 0 }

type harness struct {
	substrate sessionout.Substrate
	clock     *stepClock
	ids       *seqID
	notices   *sessionadapter.NoticeBuffer
	timers    *manualTimers
}

func newHarness(substrate sessionout.Substrate) *harness {
	return &harness{
		substrate: substrate,
		clock:     &stepClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), step: time.Second},
		ids:       &seqID{},
		notices:   sessionadapter.NewNoticeBuffer(nil),
		timers:    &manualTimers{},
	}
}

func (h *harness) controller(autosave bool) *usecase.Controller {
	store := sessionadapter.NewStorageAdapter(h.substrate, sessionadapter.StorageOptions{})
	repo := service.NewSessionRepository(h.clock, h.ids, store)
	return usecase.NewController(repo, h.clock, h.notices, usecase.Options{Autosave: autosave, AfterFunc: h.timers.AfterFunc})
}

func (h *harness) stored(t *testing.T) []domain.Session {
	t.Helper()
	return sessionadapter.NewStorageAdapter(h.substrate, sessionadapter.StorageOptions{}).ReadSessions(context.Background())
}

func levels(notices []domain.Notice) []domain.NoticeLevel {
	out := make([]domain.NoticeLevel, 0, len(notices))
	for _, n := range notices {
		out = append(out, n.Level)
	}
	return out
}

func TestNoteLifecycleAcrossReload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(sessionadapter.NewMemorySubstrate(sessionadapter.DefaultQuotaBytes))
	first := h.controller(false)
	require.NoError(t, first.Init(ctx))

	created, err := first.CreateSession(ctx, sessiondto.CreateInput{Name: "Acme"})
	require.NoError(t, err)
	require.NoError(t, first.SetItemNote(ctx, sessiondto.ItemNoteInput{ItemID: "q-12", Content: "Follow up Tuesday"}))
	require.NoError(t, first.SaveCurrentSession(ctx))
	require.NoError(t, first.Close(ctx))

	second := h.controller(false)
	require.NoError(t, second.Init(ctx))
	current, err := second.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, created.Session.ID, current.Session.ID)
	original := current.Session.Notes.Items["q-12"]
	require.Equal(t, "Follow up Tuesday", original.Content)

	require.NoError(t, second.SetItemNote(ctx, sessiondto.ItemNoteInput{ItemID: "q-12", Content: "Follow up Wednesday"}))
	current, _ = second.Current(ctx)
	updated := current.Session.Notes.Items["q-12"]
	require.Equal(t, "Follow up Wednesday", updated.Content)
	require.True(t, updated.Timestamp.Equal(original.Timestamp))
	require.True(t, updated.LastModified.After(original.LastModified))

	require.NoError(t, second.SetItemNote(ctx, sessiondto.ItemNoteInput{ItemID: "q-12", Content: ""}))
	current, _ = second.Current(ctx)
	require.NotContains(t, current.Session.Notes.Items, "q-12")
}

func TestMutationsWithoutCurrentSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := newHarness(sessionadapter.NewMemorySubstrate(0)).controller(false)
	require.NoError(t, c.Init(ctx))

	require.ErrorIs(t, c.UpdateGeneralNotes(ctx, "x"), apperrors.ErrNoCurrentSession)
	_, err := c.ToggleSelection(ctx, sessiondto.SelectionInput{Category: "discovery", ItemID: "q-1"})
	require.ErrorIs(t, err, apperrors.ErrNoCurrentSession)
	require.ErrorIs(t, c.SaveCurrentSession(ctx), apperrors.ErrNoCurrentSession)
	_, err = c.Current(ctx)
	require.ErrorIs(t, err, apperrors.ErrNoCurrentSession)
}

func TestCreateSessionValidatesName(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(sessionadapter.NewMemorySubstrate(0))
	c := h.controller(false)
	_, err := c.CreateSession(ctx, sessiondto.CreateInput{Name: strings.Repeat("a", 101)})
	require.ErrorIs(t, err, apperrors.ErrValidation)
	require.Empty(t, h.stored(t))
}

func TestMemoryOnlyModeKeepsWorking(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(brokenSubstrate{})
	c := h.controller(false)
	require.NoError(t, c.Init(ctx))
	require.Equal(t, []domain.NoticeLevel{domain.NoticeWarning}, levels(h.notices.Drain()))

	_, err := c.CreateSession(ctx, sessiondto.CreateInput{Name: "Acme"})
	require.NoError(t, err)
	require.NoError(t, c.UpdateGeneralNotes(ctx, "kept in memory"))
	require.NoError(t, c.SaveCurrentSession(ctx))

	notices := h.notices.Drain()
	require.NotEmpty(t, notices)
	for _, n := range notices {
		require.Equal(t, domain.NoticeWarning, n.Level, n.Message)
	}
	current, err := c.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, "kept in memory", current.Session.Notes.General)

	usage := c.Usage(ctx)
	require.True(t, usage.MemoryOnly)
	require.False(t, usage.Available)

	list, err := c.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.True(t, list[0].Current)
}

func TestQuotaExceededKeepsInMemoryEdits(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(sessionadapter.NewMemorySubstrate(4096))
	c := h.controller(false)
	require.NoError(t, c.Init(ctx))
	_, err := c.CreateSession(ctx, sessiondto.CreateInput{Name: "Acme"})
	require.NoError(t, err)
	h.notices.Drain()

	big := strings.Repeat("n", 8000)
	require.NoError(t, c.UpdateGeneralNotes(ctx, big))
	require.NoError(t, c.SaveCurrentSession(ctx))

	notices := h.notices.Drain()
	require.Len(t, notices, 1)
	require.Equal(t, domain.NoticeError, notices[0].Level)
	require.Contains(t, notices[0].Message, "delete old sessions")

	current, err := c.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, big, current.Session.Notes.General)
	require.Empty(t, h.stored(t)[0].Notes.General)
}

func TestDebouncedAutosaveCoalescesAndFlushesOnClose(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(sessionadapter.NewMemorySubstrate(0))
	c := h.controller(true)
	require.NoError(t, c.Init(ctx))
	_, err := c.CreateSession(ctx, sessiondto.CreateInput{Name: "Acme"})
	require.NoError(t, err)

	for _, text := range []string{"a", "ab", "abc"} {
		require.NoError(t, c.UpdateGeneralNotes(ctx, text))
	}
	require.Empty(t, h.stored(t)[0].Notes.General, "nothing written before the quiet period")
	h.timers.fire()
	require.Equal(t, "abc", h.stored(t)[0].Notes.General)

	require.NoError(t, c.UpdateGeneralNotes(ctx, "pending at close"))
	require.NoError(t, c.Close(ctx))
	require.Equal(t, "pending at close", h.stored(t)[0].Notes.General)
	h.timers.fire()
}

func TestSwitchingSessionsFlushesPendingEdits(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(sessionadapter.NewMemorySubstrate(0))
	c := h.controller(true)
	require.NoError(t, c.Init(ctx))
	a, err := c.CreateSession(ctx, sessiondto.CreateInput{Name: "A"})
	require.NoError(t, err)
	require.NoError(t, c.UpdateGeneralNotes(ctx, "a notes"))

	_, err = c.CreateSession(ctx, sessiondto.CreateInput{Name: "B"})
	require.NoError(t, err)
	loaded, err := c.LoadSession(ctx, a.Session.ID)
	require.NoError(t, err)
	require.Equal(t, "a notes", loaded.Session.Notes.General)
}

func TestDeleteCurrentSelectsMostRecent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(sessionadapter.NewMemorySubstrate(0))
	c := h.controller(false)
	require.NoError(t, c.Init(ctx))
	a, _ := c.CreateSession(ctx, sessiondto.CreateInput{Name: "A"})
	b, _ := c.CreateSession(ctx, sessiondto.CreateInput{Name: "B"})
	cc, _ := c.CreateSession(ctx, sessiondto.CreateInput{Name: "C"})

	out, err := c.DeleteSession(ctx, cc.Session.ID)
	require.NoError(t, err)
	require.True(t, out.Deleted)
	require.Equal(t, b.Session.ID, out.CurrentID)
	current, err := c.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, b.Session.ID, current.Session.ID)

	out, err = c.DeleteSession(ctx, a.Session.ID)
	require.NoError(t, err)
	require.Equal(t, b.Session.ID, out.CurrentID, "deleting another session keeps the current one")

	out, err = c.DeleteSession(ctx, b.Session.ID)
	require.NoError(t, err)
	require.Empty(t, out.CurrentID)
	_, err = c.Current(ctx)
	require.ErrorIs(t, err, apperrors.ErrNoCurrentSession)

	reopened := h.controller(false)
	require.NoError(t, reopened.Init(ctx))
	_, err = reopened.Current(ctx)
	require.ErrorIs(t, err, apperrors.ErrNoCurrentSession)

	_, err = c.DeleteSession(ctx, "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLoadMissingSessionKeepsState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(sessionadapter.NewMemorySubstrate(0))
	c := h.controller(false)
	require.NoError(t, c.Init(ctx))
	a, _ := c.CreateSession(ctx, sessiondto.CreateInput{Name: "A"})
	h.notices.Drain()

	_, err := c.LoadSession(ctx, "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	require.Equal(t, []domain.NoticeLevel{domain.NoticeWarning}, levels(h.notices.Drain()))
	current, err := c.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, a.Session.ID, current.Session.ID)
}

func TestInitClearsStalePointer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	substrate := sessionadapter.NewMemorySubstrate(0)
	require.NoError(t, substrate.Set(ctx, sessionadapter.CurrentSessionKey, "gone"))
	h := newHarness(substrate)
	c := h.controller(false)
	require.NoError(t, c.Init(ctx))

	_, err := c.Current(ctx)
	require.ErrorIs(t, err, apperrors.ErrNoCurrentSession)
	_, ok, _ := substrate.Get(ctx, sessionadapter.CurrentSessionKey)
	require.False(t, ok)
	marker, _, _ := substrate.Get(ctx, sessionadapter.VersionKey)
	require.Equal(t, domain.AppVersion, marker)
}

func TestConcurrentDocCardsBothPersist(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(sessionadapter.NewMemorySubstrate(0))
	c := h.controller(true)
	require.NoError(t, c.Init(ctx))
	_, err := c.CreateSession(ctx, sessiondto.CreateInput{Name: "Acme"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, patch := range []sessiondto.DocPatchInput{
		{UseCaseID: "uc-7", Structured: map[string]map[string]any{"businessRequirements": {"primaryGoal": "self-service"}}},
		{UseCaseID: "uc-7", Structured: map[string]map[string]any{"technicalRequirements": {"overview": map[string]any{"dataVolume": "2TB"}}}},
	} {
		wg.Add(1)
		go func(p sessiondto.DocPatchInput) {
			defer wg.Done()
			errs <- c.UpdateUseCaseDoc(ctx, p)
		}(patch)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	require.NoError(t, c.Close(ctx))

	stored := h.stored(t)
	require.Len(t, stored, 1)
	doc := stored[0].UseCaseDocumentation["uc-7"]
	require.Equal(t, "self-service", doc.Structured[domain.SubsectionBusinessRequirements]["primaryGoal"])
	require.Equal(t, map[string]any{"dataVolume": "2TB"}, doc.Structured[domain.SubsectionTechnicalRequirements]["overview"])
	require.Empty(t, doc.Structured[domain.SubsectionTimeline])
}

func TestSelectionAndWhyEntryPoints(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(sessionadapter.NewMemorySubstrate(0))
	c := h.controller(false)
	require.NoError(t, c.Init(ctx))
	_, err := c.CreateSession(ctx, sessiondto.CreateInput{Name: "Acme"})
	require.NoError(t, err)

	out, err := c.ToggleSelection(ctx, sessiondto.SelectionInput{Category: "objections", ItemID: "o-1"})
	require.NoError(t, err)
	require.True(t, out.Selected)
	selected, err := c.IsSelected(ctx, sessiondto.SelectionInput{Category: "objections", ItemID: "o-1"})
	require.NoError(t, err)
	require.True(t, selected)

	_, err = c.ToggleSelection(ctx, sessiondto.SelectionInput{Category: "pricing", ItemID: "o-1"})
	require.ErrorIs(t, err, apperrors.ErrInvalidSession)

	require.NoError(t, c.SetWhyAnswer(ctx, sessiondto.WhyInput{Question: "why-now", Answer: "renewal"}))
	require.ErrorIs(t, c.SetWhyAnswer(ctx, sessiondto.WhyInput{Question: "why-later"}), apperrors.ErrInvalidSession)

	doc, err := c.UseCaseDoc(ctx, "uc-1")
	require.NoError(t, err)
	require.False(t, doc.Exists)
	require.Len(t, doc.Doc.Structured, len(domain.Subsections))
}

// gatedSubstrate parks the next write of the sessions record until released,
// so a test can hold an autosave mid-write.
type gatedSubstrate struct {
	sessionout.Substrate

	mu      sync.Mutex
	armed   bool
	entered chan struct{}
	release chan struct{}
}

func (g *gatedSubstrate) hold() (entered <-chan struct{}, release func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.armed = true
	g.entered = make(chan struct{})
	g.release = make(chan struct{})
	return g.entered, func() { close(g.release) }
}

func (g *gatedSubstrate) Set(ctx context.Context, key, value string) error {
	g.mu.Lock()
	parked := g.armed && key == sessionadapter.SessionsKey
	if parked {
		g.armed = false
	}
	entered, release := g.entered, g.release
	g.mu.Unlock()
	if parked {
		close(entered)
		<-release
	}
	return g.Substrate.Set(ctx, key, value)
}

// startBlockedAutosave fires the pending autosave on its own goroutine and
// returns once it is parked inside the sessions write.
func startBlockedAutosave(t *testing.T, h *harness, gate *gatedSubstrate) (release func(), done <-chan struct{}) {
	t.Helper()
	entered, release := gate.hold()
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		h.timers.fire()
	}()
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatalf("autosave never reached the sessions write")
	}
	return release, finished
}

func requireStillBlocked(t *testing.T, done <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-done:
		t.Fatalf("%s finished while an autosave write was in flight", what)
	case <-time.After(50 * time.Millisecond):
	}
}

func storedByID(sessions []domain.Session) map[string]domain.Session {
	out := make(map[string]domain.Session, len(sessions))
	for _, s := range sessions {
		out[s.ID] = s
	}
	return out
}

func TestCreateDuringAutosaveKeepsBothSessions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	gate := &gatedSubstrate{Substrate: sessionadapter.NewMemorySubstrate(0)}
	h := newHarness(gate)
	c := h.controller(true)
	require.NoError(t, c.Init(ctx))
	a, err := c.CreateSession(ctx, sessiondto.CreateInput{Name: "A"})
	require.NoError(t, err)
	require.NoError(t, c.UpdateGeneralNotes(ctx, "a notes"))

	release, autosaved := startBlockedAutosave(t, h, gate)
	var b sessiondto.SessionOutput
	var createErr error
	created := make(chan struct{})
	go func() {
		defer close(created)
		b, createErr = c.CreateSession(ctx, sessiondto.CreateInput{Name: "B"})
	}()
	requireStillBlocked(t, created, "CreateSession")
	release()
	<-autosaved
	<-created
	require.NoError(t, createErr)

	stored := storedByID(h.stored(t))
	require.Len(t, stored, 2)
	require.Equal(t, "a notes", stored[a.Session.ID].Notes.General)
	require.Contains(t, stored, b.Session.ID)
}

func TestDeleteDuringAutosaveStaysDeleted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	gate := &gatedSubstrate{Substrate: sessionadapter.NewMemorySubstrate(0)}
	h := newHarness(gate)
	c := h.controller(true)
	require.NoError(t, c.Init(ctx))
	a, err := c.CreateSession(ctx, sessiondto.CreateInput{Name: "A"})
	require.NoError(t, err)
	b, err := c.CreateSession(ctx, sessiondto.CreateInput{Name: "B"})
	require.NoError(t, err)
	require.NoError(t, c.UpdateGeneralNotes(ctx, "b notes"))

	release, autosaved := startBlockedAutosave(t, h, gate)
	var deleteErr error
	deleted := make(chan struct{})
	go func() {
		defer close(deleted)
		_, deleteErr = c.DeleteSession(ctx, a.Session.ID)
	}()
	requireStillBlocked(t, deleted, "DeleteSession")
	release()
	<-autosaved
	<-deleted
	require.NoError(t, deleteErr)

	stored := storedByID(h.stored(t))
	require.Len(t, stored, 1)
	require.NotContains(t, stored, a.Session.ID)
	require.Equal(t, "b notes", stored[b.Session.ID].Notes.General)
}

func TestCloseWaitsForInFlightAutosave(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	gate := &gatedSubstrate{Substrate: sessionadapter.NewMemorySubstrate(0)}
	h := newHarness(gate)
	c := h.controller(true)
	require.NoError(t, c.Init(ctx))
	_, err := c.CreateSession(ctx, sessiondto.CreateInput{Name: "A"})
	require.NoError(t, err)
	require.NoError(t, c.UpdateGeneralNotes(ctx, "last burst"))

	release, autosaved := startBlockedAutosave(t, h, gate)
	var closeErr error
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		closeErr = c.Close(ctx)
	}()
	requireStillBlocked(t, closed, "Close")
	release()
	<-closed
	<-autosaved
	require.NoError(t, closeErr)

	stored := h.stored(t)
	require.Len(t, stored, 1)
	require.Equal(t, "last burst", stored[0].Notes.General)
}
