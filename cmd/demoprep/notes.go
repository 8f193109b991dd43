package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"demoprep/internal/bootstrap"
)

// readText returns the joined args, or stdin when the only arg is "-".
func readText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(raw), nil
	}
	return strings.Join(args, " "), nil
}

func newNoteCmd(flags *globalFlags) *cobra.Command {
	note := &cobra.Command{Use: "note", Short: "Item notes and general notes of the current session"}

	set := &cobra.Command{
		Use:   "set <item-id> <text...|->",
		Short: "Add or replace the note on a catalog item (empty text removes it)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd, args[1:])
			if err != nil {
				return err
			}
			return withApp(cmd, flags, bootstrap.ModeCLI, func(ctx context.Context, app *bootstrap.App) error {
				return app.SessionCLI.SetNote(ctx, args[0], text)
			})
		},
	}

	rm := &cobra.Command{
		Use:   "rm <item-id>",
		Short: "Remove the note on a catalog item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, bootstrap.ModeCLI, func(ctx context.Context, app *bootstrap.App) error {
				return app.SessionCLI.RemoveNote(ctx, args[0])
			})
		},
	}

	general := &cobra.Command{
		Use:   "general <text...|->",
		Short: "Replace the general notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd, args)
			if err != nil {
				return err
			}
			return withApp(cmd, flags, bootstrap.ModeCLI, func(ctx context.Context, app *bootstrap.App) error {
				return app.SessionCLI.GeneralNotes(ctx, text)
			})
		},
	}

	note.AddCommand(set, rm, general)
	return note
}

func newSelectCmd(flags *globalFlags) *cobra.Command {
	sel := &cobra.Command{Use: "select", Short: "Catalog item selection for export"}
	sel.AddCommand(&cobra.Command{
		Use:   "toggle <discovery|usecases|differentiators|objections> <item-id>",
		Short: "Select or deselect a catalog item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, bootstrap.ModeCLI, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SessionCLI.Toggle(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				state := "deselected"
				if out.Selected {
					state = "selected"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s/%s\n", state, out.Category, out.ItemID)
				return nil
			})
		},
	})
	return sel
}

func newWhyCmd(flags *globalFlags) *cobra.Command {
	why := &cobra.Command{Use: "why", Short: "The three whys of the current session"}
	why.AddCommand(&cobra.Command{
		Use:   "set <why-change|why-now|why-thoughtspot> <answer...|->",
		Short: "Set an answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			answer, err := readText(cmd, args[1:])
			if err != nil {
				return err
			}
			return withApp(cmd, flags, bootstrap.ModeCLI, func(ctx context.Context, app *bootstrap.App) error {
				return app.SessionCLI.SetWhy(ctx, args[0], answer)
			})
		},
	})
	return why
}

func newDocCmd(flags *globalFlags) *cobra.Command {
	doc := &cobra.Command{Use: "doc", Short: "Per use case documentation of the current session"}

	set := &cobra.Command{
		Use:   "set <use-case-id> <subsection> <field=value>...",
		Short: "Merge fields into one documentation subsection",
		Long: "Subsections: customerContext, stakeholders, timeline, businessRequirements, technicalRequirements.\n" +
			"Values that parse as JSON (numbers, lists, objects) are stored decoded. Other fields are kept.",
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, bootstrap.ModeCLI, func(ctx context.Context, app *bootstrap.App) error {
				return app.SessionCLI.SetDocFields(ctx, args[0], args[1], args[2:])
			})
		},
	}

	var capture []string
	notes := &cobra.Command{
		Use:   "notes <use-case-id> <text...|->",
		Short: "Replace the free-form notes of a use case",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd, args[1:])
			if err != nil {
				return err
			}
			return withApp(cmd, flags, bootstrap.ModeCLI, func(ctx context.Context, app *bootstrap.App) error {
				return app.SessionCLI.SetDocNotes(ctx, args[0], text, capture)
			})
		},
	}
	notes.Flags().StringSliceVar(&capture, "capture", nil, "quick capture items")

	show := &cobra.Command{
		Use:   "show <use-case-id>",
		Short: "Print a use case's documentation as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, bootstrap.ModeCLI, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SessionCLI.Doc(ctx, args[0])
				if err != nil {
					return err
				}
				if !out.Exists {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "no documentation for %s yet\n", args[0])
					return nil
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out.Doc)
			})
		},
	}

	doc.AddCommand(set, notes, show)
	return doc
}

func newCatalogCmd(flags *globalFlags) *cobra.Command {
	catalog := &cobra.Command{Use: "catalog", Short: "Browse the reference library"}

	var query, industry string
	list := &cobra.Command{
		Use:   "list <discovery|usecases|differentiators|objections>",
		Short: "List catalog items of a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, bootstrap.ModeCLI, func(ctx context.Context, app *bootstrap.App) error {
				items, err := app.CatalogCLI.List(ctx, args[0], query, industry)
				if err != nil {
					return err
				}
				for _, item := range items {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", item.ID, item.Group, item.Title)
				}
				return nil
			})
		},
	}
	list.Flags().StringVar(&query, "query", "", "case-insensitive text filter")
	list.Flags().StringVar(&industry, "industry", "", "only discovery questions tagged with this industry")

	industries := &cobra.Command{
		Use:   "industries",
		Short: "List the industries discovery questions are tagged with",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, bootstrap.ModeCLI, func(ctx context.Context, app *bootstrap.App) error {
				values, err := app.CatalogCLI.Industries(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(values, "\n"))
				return nil
			})
		},
	}

	catalog.AddCommand(list, industries)
	return catalog
}

func newExportCmd(flags *globalFlags) *cobra.Command {
	var format, out, dir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the current session with its selected catalog items",
		Long:  "With nothing selected the whole library is included. Re-exporting Markdown to an existing file only rewrites the generated block.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, bootstrap.ModeCLI, func(ctx context.Context, app *bootstrap.App) error {
				if out == "" && dir == "" {
					dir = "."
				}
				if out == "-" {
					out = ""
					dir = ""
				}
				res, err := app.ExportCLI.Export(ctx, format, out, dir)
				if err != nil {
					return err
				}
				if res.Path == "" {
					_, err := cmd.OutOrStdout().Write(res.Data)
					return err
				}
				verb := "exported"
				if res.Updated {
					verb = "updated"
				}
				scope := fmt.Sprintf("%d items", res.ItemCount)
				if res.AllItems {
					scope += ", nothing selected so the full library is included"
				}
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s %s (%s)\n", verb, res.Path, scope)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "markdown", "markdown or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, or - for stdout")
	cmd.Flags().StringVar(&dir, "dir", "", "output directory; the file is named after the session")
	return cmd
}

func newPrepCmd(flags *globalFlags) *cobra.Command {
	var profiles, profileFiles []string
	var extra string
	cmd := &cobra.Command{
		Use:   "prep <company>",
		Short: "Stream a personalized prep brief for a prospect",
		Long:  "Needs ANTHROPIC_API_KEY. Ctrl-C stops the stream and keeps what arrived so far.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range profileFiles {
				raw, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read profile: %w", err)
				}
				profiles = append(profiles, string(raw))
			}
			return withApp(cmd, flags, bootstrap.ModeCLI, func(ctx context.Context, app *bootstrap.App) error {
				if timeout := app.Config.Prep.Timeout; timeout > 0 {
					var cancel context.CancelFunc
					ctx, cancel = context.WithTimeout(ctx, timeout)
					defer cancel()
				}
				w := cmd.OutOrStdout()
				res, err := app.PrepCLI.Generate(ctx, strings.Join(args, " "), profiles, extra, func(chunk string) {
					_, _ = io.WriteString(w, chunk)
				})
				_, _ = fmt.Fprintln(w)
				if err != nil {
					return err
				}
				if res.Result.Interrupted {
					_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "generation interrupted, partial brief shown above")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVar(&profiles, "profile", nil, "stakeholder profile text (repeatable)")
	cmd.Flags().StringArrayVar(&profileFiles, "profile-file", nil, "file holding a stakeholder profile (repeatable)")
	cmd.Flags().StringVar(&extra, "context", "", "additional context")
	return cmd
}
