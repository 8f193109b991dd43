package bootstrap

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	cataloginadapter "demoprep/internal/modules/catalog/adapter/in"
	catalogoutadapter "demoprep/internal/modules/catalog/adapter/out"
	catalogout "demoprep/internal/modules/catalog/port/out"
	catalogusecase "demoprep/internal/modules/catalog/usecase"
	exportinadapter "demoprep/internal/modules/export/adapter/in"
	exportoutadapter "demoprep/internal/modules/export/adapter/out"
	exportusecase "demoprep/internal/modules/export/usecase"
	prepinadapter "demoprep/internal/modules/prep/adapter/in"
	prepoutadapter "demoprep/internal/modules/prep/adapter/out"
	prepusecase "demoprep/internal/modules/prep/usecase"
	sessioninadapter "demoprep/internal/modules/session/adapter/in"
	sessionoutadapter "demoprep/internal/modules/session/adapter/out"
	sessionout "demoprep/internal/modules/session/port/out"
	sessionservice "demoprep/internal/modules/session/service"
	sessionusecase "demoprep/internal/modules/session/usecase"
	"demoprep/internal/platform/clock"
	"demoprep/internal/platform/config"
	"demoprep/internal/platform/id"
	uiapp "demoprep/internal/ui/app"
)

type Mode int

const (
	// ModeCLI always autosaves: each command is its own process and pending
	// edits are flushed on Close.
	ModeCLI Mode = iota
	// ModeTUI honours session.save_mode.
	ModeTUI
)

type App struct {
	SessionCLI sessioninadapter.CLIHandler
	CatalogCLI cataloginadapter.CLIHandler
	PrepCLI    prepinadapter.CLIHandler
	ExportCLI  exportinadapter.CLIHandler
	Notices    *sessionoutadapter.NoticeBuffer
	Config     config.Config

	log     *zap.Logger
	closers []func() error
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger, mode Mode) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	clk := clock.SystemClock{}
	app := &App{Config: cfg, log: log}

	substrate := app.openSubstrate(ctx, cfg)
	notices := sessionoutadapter.NewNoticeBuffer(log)
	store := sessionoutadapter.NewStorageAdapter(substrate, sessionoutadapter.StorageOptions{
		WarnRatio: cfg.Storage.WarnRatio,
		Logger:    log,
	})
	repo := sessionservice.NewSessionRepository(clk, id.UUID{}, store)
	sessionUC := sessionusecase.NewController(repo, clk, notices, sessionusecase.Options{
		Autosave:  mode == ModeCLI || cfg.Session.Autosave(),
		Debounce:  cfg.Session.Debounce,
		WarnRatio: cfg.Storage.WarnRatio,
		Logger:    log,
	})
	if err := sessionUC.Init(ctx); err != nil {
		_ = app.Close(ctx)
		return nil, fmt.Errorf("init sessions: %w", err)
	}
	app.closers = append([]func() error{func() error { return sessionUC.Close(context.Background()) }}, app.closers...)

	var source catalogout.Source
	if cfg.Catalog.Dir != "" {
		dirSource, err := catalogoutadapter.NewDirSource(cfg.Catalog.Dir)
		if err != nil {
			_ = app.Close(ctx)
			return nil, fmt.Errorf("open catalog: %w", err)
		}
		source = dirSource
	} else {
		source = catalogoutadapter.NewSampleSource()
	}
	catalogUC := catalogusecase.NewInteractor(source)

	streamer := prepoutadapter.NewAnthropicStreamer(cfg.Prep.APIKey, cfg.Prep.Model, cfg.Prep.MaxTokens)
	prepUC := prepusecase.NewInteractor(catalogUC, streamer, log)

	exportUC := exportusecase.NewInteractor(sessionUC, catalogUC, exportoutadapter.NewOSFileStore(), clk, log,
		exportoutadapter.NewMarkdownExporter(),
		exportoutadapter.NewJSONExporter(),
	)

	app.SessionCLI = sessioninadapter.NewCLIHandler(sessionUC)
	app.CatalogCLI = cataloginadapter.NewCLIHandler(catalogUC)
	app.PrepCLI = prepinadapter.NewCLIHandler(prepUC)
	app.ExportCLI = exportinadapter.NewCLIHandler(exportUC)
	app.Notices = notices
	return app, nil
}

// openSubstrate never fails: a backend that cannot be opened is replaced by
// one that reports itself unavailable, and the app runs memory-only.
func (a *App) openSubstrate(ctx context.Context, cfg config.Config) sessionout.Substrate {
	quota := cfg.Storage.QuotaBytes
	switch cfg.Storage.Driver {
	case "memory":
		return sessionoutadapter.NewMemorySubstrate(quota)
	case "redis":
		sub, err := sessionoutadapter.NewRedisSubstrate(ctx, cfg.Storage.RedisURL, cfg.Storage.RedisNamespace, quota)
		if err != nil {
			a.log.Warn("redis storage unavailable", zap.String("url", cfg.Storage.RedisURL), zap.Error(err))
			return sessionoutadapter.NewUnavailableSubstrate(err)
		}
		a.closers = append(a.closers, sub.Close)
		return sub
	default:
		sub, err := sessionoutadapter.NewSQLiteSubstrate(cfg.DBPath(), quota)
		if err != nil {
			a.log.Warn("sqlite storage unavailable", zap.String("path", cfg.DBPath()), zap.Error(err))
			return sessionoutadapter.NewUnavailableSubstrate(err)
		}
		a.closers = append(a.closers, sub.Close)
		return sub
	}
}

// Close flushes pending session edits, then releases storage.
func (a *App) Close(context.Context) error {
	var errs []error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	_ = a.log.Sync()
	return errors.Join(errs...)
}

// RunTUI blocks until the user quits or ctx is cancelled. Exports written
// from the TUI land in exportDir.
func RunTUI(ctx context.Context, app *App, exportDir string) error {
	model := uiapp.NewModel(app.SessionCLI, app.CatalogCLI, app.PrepCLI, app.ExportCLI, app.Notices, exportDir)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
