package out

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"demoprep/internal/modules/session/domain"
	sessionout "demoprep/internal/modules/session/port/out"
	apperrors "demoprep/internal/platform/errors"
)

const (
	KeyPrefix         = "demoprep-"
	SessionsKey       = KeyPrefix + "sessions"
	CurrentSessionKey = KeyPrefix + "current-session-id"
	VersionKey        = KeyPrefix + "app-version"

	probeKey         = "__storage_test__"
	DefaultWarnRatio = 0.8
)

type StorageOptions struct {
	Version   string
	WarnRatio float64
	Hook      sessionout.MigrationHook
	Logger    *zap.Logger
}

// StorageAdapter maps the session records onto a Substrate. Reads never fail:
// missing or corrupted records read as empty, and corrupted ones are removed.
// Writes report ErrStorageUnavailable or ErrQuotaExceeded.
type StorageAdapter struct {
	substrate sessionout.Substrate
	version   string
	warnRatio float64
	hook      sessionout.MigrationHook
	log       *zap.Logger
}

func NewStorageAdapter(substrate sessionout.Substrate, opts StorageOptions) *StorageAdapter {
	if opts.Version == "" {
		opts.Version = domain.AppVersion
	}
	if opts.WarnRatio <= 0 {
		opts.WarnRatio = DefaultWarnRatio
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &StorageAdapter{
		substrate: substrate,
		version:   opts.Version,
		warnRatio: opts.WarnRatio,
		hook:      opts.Hook,
		log:       opts.Logger.Named("storage"),
	}
}

var _ sessionout.SessionStore = (*StorageAdapter)(nil)

func (a *StorageAdapter) IsAvailable(ctx context.Context) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Warn("storage probe panicked", zap.Any("panic", r))
			ok = false
		}
	}()
	if err := a.substrate.Set(ctx, probeKey, probeKey); err != nil {
		a.log.Debug("storage probe write failed", zap.Error(err))
		return false
	}
	if err := a.substrate.Remove(ctx, probeKey); err != nil {
		a.log.Debug("storage probe cleanup failed", zap.Error(err))
		return false
	}
	return true
}

// UsageRatio is an estimate of how much of the quota the app's own records
// use, in [0,1]. It is meant for warnings only.
func (a *StorageAdapter) UsageRatio(ctx context.Context) float64 {
	quota := a.substrate.Quota()
	if quota <= 0 {
		return 0
	}
	keys, err := a.substrate.Keys(ctx)
	if err != nil {
		a.log.Debug("usage scan failed", zap.Error(err))
		return 0
	}
	var used int64
	for _, key := range keys {
		if !strings.HasPrefix(key, KeyPrefix) {
			continue
		}
		value, ok, err := a.substrate.Get(ctx, key)
		if err != nil || !ok {
			continue
		}
		used += entrySize(key, value)
	}
	ratio := float64(used) / float64(quota)
	if ratio > 1 {
		ratio = 1
	}
	return ratio
}

func (a *StorageAdapter) WriteSessions(ctx context.Context, sessions []domain.Session) error {
	if !a.IsAvailable(ctx) {
		return fmt.Errorf("write sessions: %w", apperrors.ErrStorageUnavailable)
	}
	if sessions == nil {
		sessions = []domain.Session{}
	}
	payload, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}
	if err := a.substrate.Set(ctx, SessionsKey, string(payload)); err != nil {
		return fmt.Errorf("write sessions: %w", classifyWriteError(err))
	}
	if ratio := a.UsageRatio(ctx); ratio > a.warnRatio {
		a.log.Warn("storage nearly full", zap.Float64("usage", ratio), zap.Int("sessions", len(sessions)))
	}
	return nil
}

// classifyWriteError keeps quota failures as they are and reports every other
// substrate failure as the store being unusable.
func classifyWriteError(err error) error {
	if errors.Is(err, apperrors.ErrQuotaExceeded) || errors.Is(err, apperrors.ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", apperrors.ErrStorageUnavailable, err)
}

func (a *StorageAdapter) ReadSessions(ctx context.Context) []domain.Session {
	raw, ok, err := a.substrate.Get(ctx, SessionsKey)
	if err != nil {
		a.log.Warn("read sessions failed", zap.Error(err))
		return []domain.Session{}
	}
	if !ok {
		return []domain.Session{}
	}
	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		a.log.Warn("discarding stored sessions",
			zap.Error(fmt.Errorf("%w: %w", apperrors.ErrCorruptedRecord, err)),
			zap.Int("bytes", len(raw)),
		)
		if rmErr := a.substrate.Remove(ctx, SessionsKey); rmErr != nil {
			a.log.Warn("remove corrupted record failed", zap.Error(rmErr))
		}
		return []domain.Session{}
	}
	// A bad entry is dropped on its own; the next write persists the rest.
	sessions := make([]domain.Session, 0, len(entries))
	for i, entry := range entries {
		var s domain.Session
		if err := json.Unmarshal(entry, &s); err != nil {
			a.log.Warn("dropping stored session",
				zap.Error(fmt.Errorf("%w: %w", apperrors.ErrCorruptedRecord, err)),
				zap.Int("index", i),
			)
			continue
		}
		sessions = append(sessions, s)
	}
	return sessions
}

// WriteCurrentID persists the current session pointer. An empty id clears it.
func (a *StorageAdapter) WriteCurrentID(ctx context.Context, id string) error {
	if id == "" {
		if err := a.substrate.Remove(ctx, CurrentSessionKey); err != nil {
			return fmt.Errorf("clear current session: %w", classifyWriteError(err))
		}
		return nil
	}
	if err := a.substrate.Set(ctx, CurrentSessionKey, id); err != nil {
		return fmt.Errorf("write current session: %w", classifyWriteError(err))
	}
	return nil
}

func (a *StorageAdapter) ReadCurrentID(ctx context.Context) (string, bool) {
	id, ok, err := a.substrate.Get(ctx, CurrentSessionKey)
	if err != nil {
		a.log.Warn("read current session failed", zap.Error(err))
		return "", false
	}
	if !ok || strings.TrimSpace(id) == "" {
		return "", false
	}
	return id, true
}

func (a *StorageAdapter) Migrate(ctx context.Context) (domain.MigrationResult, error) {
	stored, ok, err := a.substrate.Get(ctx, VersionKey)
	if err != nil {
		return domain.MigrationResult{}, fmt.Errorf("read version marker: %w", err)
	}
	result := domain.MigrationResult{Previous: stored, Current: a.version}
	switch {
	case !ok || strings.TrimSpace(stored) == "":
		result.FirstRun = true
	case stored == a.version:
		return result, nil
	default:
		if a.hook != nil {
			if err := a.hook(ctx, stored, a.version); err != nil {
				return result, fmt.Errorf("migrate %s to %s: %w", stored, a.version, err)
			}
		}
		result.Migrated = true
		a.log.Info("storage migrated", zap.String("from", stored), zap.String("to", a.version))
	}
	if err := a.substrate.Set(ctx, VersionKey, a.version); err != nil {
		return result, fmt.Errorf("write version marker: %w", err)
	}
	return result, nil
}

// ClearAll removes every record the app owns.
func (a *StorageAdapter) ClearAll(ctx context.Context) error {
	var errs []error
	for _, key := range []string{SessionsKey, CurrentSessionKey, VersionKey} {
		if err := a.substrate.Remove(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
