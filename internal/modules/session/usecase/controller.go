package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"demoprep/internal/modules/session/domain"
	sessiondto "demoprep/internal/modules/session/dto"
	sessionin "demoprep/internal/modules/session/port/in"
	sessionout "demoprep/internal/modules/session/port/out"
	"demoprep/internal/modules/session/service"
	"demoprep/internal/platform/clock"
	"demoprep/internal/platform/debounce"
	apperrors "demoprep/internal/platform/errors"
)

const DefaultDebounce = 300 * time.Millisecond

type Options struct {
	// Autosave persists the current session after Debounce of quiet. When
	// false only SaveCurrentSession and session switches persist.
	Autosave  bool
	Debounce  time.Duration
	WarnRatio float64
	AfterFunc debounce.AfterFunc
	Logger    *zap.Logger
}

// Controller holds the current session. Mutations apply to memory first and
// are persisted later; storage failures become notices and never roll back
// the in-memory session.
type Controller struct {
	repo      *service.SessionRepository
	clock     clock.Clock
	notifier  sessionout.Notifier
	log       *zap.Logger
	warnRatio float64
	saver     *debounce.Debouncer

	mu         sync.Mutex
	current    *domain.Session
	memoryOnly bool

	saveMu sync.Mutex
}

func NewController(repo *service.SessionRepository, clk clock.Clock, notifier sessionout.Notifier, opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.WarnRatio <= 0 {
		opts.WarnRatio = 0.8
	}
	c := &Controller{
		repo:      repo,
		clock:     clk,
		notifier:  notifier,
		log:       opts.Logger.Named("session"),
		warnRatio: opts.WarnRatio,
	}
	if opts.Autosave {
		delay := opts.Debounce
		if delay <= 0 {
			delay = DefaultDebounce
		}
		var debounceOpts []debounce.Option
		if opts.AfterFunc != nil {
			debounceOpts = append(debounceOpts, debounce.WithAfterFunc(opts.AfterFunc))
		}
		c.saver = debounce.New(delay, func() { _ = c.persist(context.Background()) }, debounceOpts...)
	}
	return c
}

var _ sessionin.Usecase = (*Controller)(nil)

func (c *Controller) Init(ctx context.Context) error {
	if !c.repo.Available(ctx) {
		c.mu.Lock()
		c.memoryOnly = true
		c.mu.Unlock()
		c.notify(domain.NoticeWarning, "Storage is unavailable. Working in memory only; sessions will not be kept after you quit.")
		return nil
	}
	if result, err := c.repo.Migrate(ctx); err != nil {
		c.log.Warn("storage migration failed", zap.Error(err))
	} else if result.Migrated {
		c.log.Info("storage migrated", zap.String("from", result.Previous), zap.String("to", result.Current))
	}
	if ratio := c.repo.Usage(ctx); ratio > c.warnRatio {
		c.notify(domain.NoticeWarning, fmt.Sprintf("Storage is %.0f%% full. Delete old sessions to free space.", ratio*100))
	}

	id, ok := c.repo.CurrentID(ctx)
	if !ok {
		return nil
	}
	s, err := c.repo.LoadByID(ctx, id)
	if err != nil {
		c.log.Debug("clearing stale current session pointer", zap.String("id", id))
		if err := c.repo.SetCurrentID(ctx, ""); err != nil {
			c.log.Warn("clear current session pointer", zap.Error(err))
		}
		return nil
	}
	c.mu.Lock()
	c.current = &s
	c.mu.Unlock()
	return nil
}

func (c *Controller) LoadSession(ctx context.Context, id string) (sessiondto.SessionOutput, error) {
	c.flushPending()
	s, err := c.repo.LoadByID(ctx, id)
	if err != nil {
		if inMemory, ok := c.currentWithID(id); ok {
			return sessiondto.SessionOutput{Session: inMemory}, nil
		}
		c.notify(domain.NoticeWarning, fmt.Sprintf("Session %q was not found.", id))
		return sessiondto.SessionOutput{}, err
	}
	c.saveMu.Lock()
	c.mu.Lock()
	c.current = &s
	c.mu.Unlock()
	if err := c.repo.SetCurrentID(ctx, s.ID); err != nil {
		c.reportStorageError(err)
	}
	c.saveMu.Unlock()
	return sessiondto.SessionOutput{Session: s.Clone()}, nil
}

func (c *Controller) CreateSession(ctx context.Context, input sessiondto.CreateInput) (sessiondto.SessionOutput, error) {
	if err := domain.ValidateName(input.Name); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	c.flushPending()
	c.saveMu.Lock()
	defer c.saveMu.Unlock()
	created := c.repo.Create(input.Name, domain.MetadataOverrides{
		DemoDate:   input.DemoDate,
		DealStage:  input.DealStage,
		Industries: input.Industries,
		UseCases:   input.UseCases,
	})
	saved, err := c.repo.Save(ctx, created)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidSession) {
			return sessiondto.SessionOutput{}, err
		}
		c.reportStorageError(err)
	}
	c.mu.Lock()
	c.current = &saved
	c.mu.Unlock()
	if err := c.repo.SetCurrentID(ctx, saved.ID); err != nil {
		c.reportStorageError(err)
	}
	return sessiondto.SessionOutput{Session: saved.Clone()}, nil
}

// DeleteSession removes a session. When it was the current one, the most
// recently updated remaining session becomes current.
func (c *Controller) DeleteSession(ctx context.Context, id string) (sessiondto.DeleteOutput, error) {
	_, isCurrent := c.currentWithID(id)
	if isCurrent && c.saver != nil {
		c.saver.Cancel()
	} else {
		c.flushPending()
	}
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	removed, err := c.repo.Delete(ctx, id)
	if err != nil {
		c.reportStorageError(err)
		return sessiondto.DeleteOutput{}, nil
	}
	if !removed && !isCurrent {
		c.notify(domain.NoticeWarning, fmt.Sprintf("Session %q was not found.", id))
		return sessiondto.DeleteOutput{}, fmt.Errorf("session %q: %w", id, apperrors.ErrNotFound)
	}

	out := sessiondto.DeleteOutput{Deleted: true}
	if !isCurrent {
		if cur, ok := c.currentID(); ok {
			out.CurrentID = cur
		}
		return out, nil
	}

	remaining := c.repo.SortedByUpdatedAtDesc(ctx)
	c.mu.Lock()
	if len(remaining) == 0 {
		c.current = nil
	} else {
		next := remaining[0]
		c.current = &next
		out.CurrentID = next.ID
	}
	c.mu.Unlock()
	if err := c.repo.SetCurrentID(ctx, out.CurrentID); err != nil {
		c.reportStorageError(err)
	}
	return out, nil
}

// SaveCurrentSession persists the current session now. Storage failures are
// reported as notices, not returned.
func (c *Controller) SaveCurrentSession(ctx context.Context) error {
	if c.saver != nil {
		c.saver.Cancel()
	}
	if err := c.persist(ctx); err != nil {
		if errors.Is(err, apperrors.ErrNoCurrentSession) || errors.Is(err, apperrors.ErrInvalidSession) {
			return err
		}
		return nil
	}
	c.notify(domain.NoticeSuccess, "Session saved.")
	return nil
}

func (c *Controller) Current(context.Context) (sessiondto.SessionOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return sessiondto.SessionOutput{}, apperrors.ErrNoCurrentSession
	}
	return sessiondto.SessionOutput{Session: c.current.Clone()}, nil
}

// ListSessions returns summaries newest first. The in-memory current session
// replaces its stored copy so unsaved edits show up.
func (c *Controller) ListSessions(ctx context.Context) ([]sessiondto.SummaryOutput, error) {
	sessions := c.repo.SortedByUpdatedAtDesc(ctx)
	c.mu.Lock()
	var current *domain.Session
	if c.current != nil {
		snapshot := c.current.Clone()
		current = &snapshot
	}
	c.mu.Unlock()

	if current != nil {
		found := false
		for i := range sessions {
			if sessions[i].ID == current.ID {
				sessions[i] = *current
				found = true
				break
			}
		}
		if !found {
			sessions = append([]domain.Session{*current}, sessions...)
		}
	}

	out := make([]sessiondto.SummaryOutput, 0, len(sessions))
	for _, s := range sessions {
		sum := s.Summary()
		out = append(out, sessiondto.SummaryOutput{
			ID:              sum.ID,
			Name:            sum.Name,
			DealStage:       sum.DealStage,
			DemoDate:        sum.DemoDate,
			NoteCount:       sum.NoteCount,
			SelectedCount:   sum.SelectedCount,
			HasGeneralNotes: sum.HasGeneralNotes,
			UpdatedAt:       sum.UpdatedAt,
			Current:         current != nil && current.ID == s.ID,
		})
	}
	return out, nil
}

func (c *Controller) Usage(ctx context.Context) sessiondto.UsageOutput {
	if !c.repo.Available(ctx) {
		return sessiondto.UsageOutput{MemoryOnly: true}
	}
	c.mu.Lock()
	memoryOnly := c.memoryOnly
	c.mu.Unlock()
	ratio := c.repo.Usage(ctx)
	return sessiondto.UsageOutput{Available: true, MemoryOnly: memoryOnly, Ratio: ratio, Warning: ratio > c.warnRatio}
}

// Reset removes every stored record and forgets the current session.
func (c *Controller) Reset(ctx context.Context) error {
	if c.saver != nil {
		c.saver.Cancel()
	}
	c.saveMu.Lock()
	defer c.saveMu.Unlock()
	if err := c.repo.Reset(ctx); err != nil {
		return fmt.Errorf("reset storage: %w", err)
	}
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
	c.notify(domain.NoticeInfo, "All sessions were removed.")
	return nil
}

func (c *Controller) UpdateSessionMetadata(_ context.Context, input sessiondto.MetadataInput) (sessiondto.SessionOutput, error) {
	var out domain.Session
	err := c.mutate(func(s domain.Session) (domain.Session, error) {
		out = domain.UpdateMetadata(s, domain.MetadataPatch{
			DemoDate:   input.DemoDate,
			DealStage:  input.DealStage,
			Industries: input.Industries,
			UseCases:   input.UseCases,
		})
		return out, nil
	})
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return sessiondto.SessionOutput{Session: out.Clone()}, nil
}

// SetItemNote stores a note for an item. Content that is empty after
// trimming removes the note instead.
func (c *Controller) SetItemNote(_ context.Context, input sessiondto.ItemNoteInput) error {
	if strings.TrimSpace(input.ItemID) == "" {
		return fmt.Errorf("%w: item id is required", apperrors.ErrInvalidInput)
	}
	return c.mutate(func(s domain.Session) (domain.Session, error) {
		if strings.TrimSpace(input.Content) == "" {
			return domain.RemoveItemNote(s, input.ItemID), nil
		}
		return domain.AddOrUpdateItemNote(s, input.ItemID, input.Content, c.clock.Now()), nil
	})
}

func (c *Controller) RemoveItemNote(_ context.Context, itemID string) error {
	return c.mutate(func(s domain.Session) (domain.Session, error) {
		return domain.RemoveItemNote(s, itemID), nil
	})
}

func (c *Controller) UpdateGeneralNotes(_ context.Context, content string) error {
	return c.mutate(func(s domain.Session) (domain.Session, error) {
		return domain.UpdateGeneralNotes(s, content), nil
	})
}

func (c *Controller) ToggleSelection(_ context.Context, input sessiondto.SelectionInput) (sessiondto.SelectionOutput, error) {
	category := domain.Category(input.Category)
	selected := false
	err := c.mutate(func(s domain.Session) (domain.Session, error) {
		next, err := domain.ToggleSelection(s, category, input.ItemID)
		if err != nil {
			return s, err
		}
		selected = domain.IsSelected(next, category, input.ItemID)
		return next, nil
	})
	if err != nil {
		return sessiondto.SelectionOutput{}, err
	}
	return sessiondto.SelectionOutput{Category: input.Category, ItemID: input.ItemID, Selected: selected}, nil
}

func (c *Controller) IsSelected(_ context.Context, input sessiondto.SelectionInput) (bool, error) {
	category := domain.Category(input.Category)
	if err := category.Validate(); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return false, apperrors.ErrNoCurrentSession
	}
	return domain.IsSelected(*c.current, category, input.ItemID), nil
}

func (c *Controller) SetWhyAnswer(_ context.Context, input sessiondto.WhyInput) error {
	return c.mutate(func(s domain.Session) (domain.Session, error) {
		return domain.SetWhyAnswer(s, domain.WhyQuestion(input.Question), input.Answer)
	})
}

func (c *Controller) UpdateUseCaseDoc(_ context.Context, input sessiondto.DocPatchInput) error {
	patch := domain.DocPatch{}
	if len(input.Structured) > 0 {
		patch.Structured = make(map[domain.Subsection]domain.Fields, len(input.Structured))
		for sub, fields := range input.Structured {
			patch.Structured[domain.Subsection(sub)] = domain.Fields(fields)
		}
	}
	if input.Notes != nil {
		now := c.clock.Now()
		patch.Notes = &domain.DocNotes{
			Content:           input.Notes.Content,
			QuickCaptureItems: append([]string{}, input.Notes.QuickCaptureItems...),
			LastModified:      &now,
		}
	}
	return c.mutate(func(s domain.Session) (domain.Session, error) {
		return domain.MergeUseCaseDoc(s, input.UseCaseID, patch)
	})
}

func (c *Controller) UseCaseDoc(_ context.Context, useCaseID string) (sessiondto.UseCaseDocOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return sessiondto.UseCaseDocOutput{}, apperrors.ErrNoCurrentSession
	}
	doc, ok := c.current.UseCaseDocumentation[useCaseID]
	if !ok {
		return sessiondto.UseCaseDocOutput{UseCaseID: useCaseID, Doc: domain.NewUseCaseDoc()}, nil
	}
	return sessiondto.UseCaseDocOutput{UseCaseID: useCaseID, Exists: true, Doc: doc.Clone()}, nil
}

// Close persists a pending debounced save and stops the scheduler. It returns
// only after any save already in flight has finished.
func (c *Controller) Close(context.Context) error {
	if c.saver == nil {
		return nil
	}
	c.saver.Flush()
	c.saver.Stop()
	c.saveMu.Lock()
	defer c.saveMu.Unlock()
	return nil
}

func (c *Controller) mutate(apply func(domain.Session) (domain.Session, error)) error {
	c.mu.Lock()
	if c.current == nil {
		c.mu.Unlock()
		return apperrors.ErrNoCurrentSession
	}
	next, err := apply(*c.current)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.current = &next
	c.mu.Unlock()

	if c.saver != nil {
		c.saver.Trigger()
	}
	return nil
}

// persist writes a snapshot of the current session. Edits made while the
// write is in flight stay in memory for the next save. Every repository
// write in the controller holds saveMu, so collection rewrites never
// interleave.
func (c *Controller) persist(ctx context.Context) error {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	c.mu.Lock()
	if c.current == nil {
		c.mu.Unlock()
		return apperrors.ErrNoCurrentSession
	}
	snapshot := c.current.Clone()
	c.mu.Unlock()

	saved, err := c.repo.Save(ctx, snapshot)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidSession) {
			c.log.Error("refusing to save invalid session", zap.Error(err))
			return err
		}
		c.reportStorageError(err)
		return err
	}

	c.mu.Lock()
	if c.current != nil && c.current.ID == saved.ID {
		updated := *c.current
		updated.CreatedAt = saved.CreatedAt
		updated.UpdatedAt = saved.UpdatedAt
		c.current = &updated
	}
	c.mu.Unlock()
	c.log.Debug("session saved", zap.String("id", saved.ID))
	return nil
}

func (c *Controller) flushPending() {
	if c.saver != nil {
		c.saver.Flush()
	}
}

func (c *Controller) currentID() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return "", false
	}
	return c.current.ID, true
}

func (c *Controller) currentWithID(id string) (domain.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || c.current.ID != id {
		return domain.Session{}, false
	}
	return c.current.Clone(), true
}

func (c *Controller) reportStorageError(err error) {
	c.log.Warn("storage write failed", zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrQuotaExceeded):
		c.notify(domain.NoticeError, "Storage is full, so your last change was not saved. It is still on screen; delete old sessions to free space.")
	case errors.Is(err, apperrors.ErrStorageUnavailable):
		c.mu.Lock()
		c.memoryOnly = true
		c.mu.Unlock()
		c.notify(domain.NoticeWarning, "Storage is unavailable, so your last change may not be saved. It is still on screen.")
	default:
		c.notify(domain.NoticeError, fmt.Sprintf("Your last change may not be saved: %v", err))
	}
}

func (c *Controller) notify(level domain.NoticeLevel, message string) {
	if c.notifier == nil {
		return
	}
	c.notifier.Notify(domain.Notice{Level: level, Message: message, At: c.clock.Now()})
}
