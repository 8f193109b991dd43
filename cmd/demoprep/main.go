package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"demoprep/internal/bootstrap"
	sessiondomain "demoprep/internal/modules/session/domain"
	"demoprep/internal/platform/config"
	"demoprep/internal/platform/logger"
)

// errNoticeFailure marks a run whose only failure was already reported as an
// error notice.
var errNoticeFailure = errors.New("storage error reported")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errNoticeFailure) {
			_, _ = fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		}
		os.Exit(1)
	}
}

type globalFlags struct {
	dataDir    string
	configPath string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "demoprep",
		Short:         "Demo preparation sessions, notes and prep briefs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "directory for local storage (overrides config)")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default ./demoprep.yaml)")

	root.AddCommand(newSessionCmd(flags))
	root.AddCommand(newNoteCmd(flags))
	root.AddCommand(newSelectCmd(flags))
	root.AddCommand(newWhyCmd(flags))
	root.AddCommand(newDocCmd(flags))
	root.AddCommand(newCatalogCmd(flags))
	root.AddCommand(newExportCmd(flags))
	root.AddCommand(newPrepCmd(flags))
	root.AddCommand(newTUICmd(flags))
	return root
}

// withApp builds the application, runs fn, flushes pending edits and prints
// any notices raised along the way.
func withApp(cmd *cobra.Command, flags *globalFlags, mode bootstrap.Mode, fn func(ctx context.Context, app *bootstrap.App) error) error {
	ctx := cmd.Context()
	cfg, err := config.Load(flags.configPath, flags.dataDir)
	if err != nil {
		return err
	}
	log, err := logger.New(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File, Quiet: mode == bootstrap.ModeTUI})
	if err != nil {
		return err
	}
	app, err := bootstrap.New(ctx, cfg, log, mode)
	if err != nil {
		return err
	}

	runErr := fn(ctx, app)
	closeErr := app.Close(context.WithoutCancel(ctx))
	failed := printNotices(cmd.ErrOrStderr(), app.Notices.Drain())
	switch {
	case runErr != nil:
		return runErr
	case closeErr != nil:
		return closeErr
	case failed:
		return errNoticeFailure
	}
	return nil
}

// printNotices reports whether any notice was an error.
func printNotices(w io.Writer, notices []sessiondomain.Notice) bool {
	failed := false
	for _, n := range notices {
		var paint func(format string, a ...any) string
		switch n.Level {
		case sessiondomain.NoticeError:
			paint = color.RedString
			failed = true
		case sessiondomain.NoticeWarning:
			paint = color.YellowString
		case sessiondomain.NoticeSuccess:
			paint = color.GreenString
		default:
			paint = color.CyanString
		}
		_, _ = fmt.Fprintln(w, paint("%s: %s", n.Level, n.Message))
	}
	return failed
}
