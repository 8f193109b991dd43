package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"demoprep/internal/bootstrap"
)

func newTUICmd(flags *globalFlags) *cobra.Command {
	var exportDir string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Run the demoprep terminal UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.New("tui needs an interactive terminal")
			}
			return withApp(cmd, flags, bootstrap.ModeTUI, func(ctx context.Context, app *bootstrap.App) error {
				return bootstrap.RunTUI(ctx, app, exportDir)
			})
		},
	}
	cmd.Flags().StringVar(&exportDir, "export-dir", ".", "directory for exports written from the TUI")
	return cmd
}
