package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"demoprep/internal/bootstrap"
	sessiondomain "demoprep/internal/modules/session/domain"
)

const dateLayout = "2006-01-02"

func newSessionCmd(flags *globalFlags) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Create, switch and manage demo prep sessions"}

	var demoDate, dealStage string
	var industries, useCases []string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a session and make it current",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, bootstrap.ModeCLI, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SessionCLI.Create(ctx, strings.Join(args, " "), demoDate, dealStage, industries, useCases)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", out.Session.Name, out.Session.ID)
				return nil
			})
		},
	}
	create.Flags().StringVar(&demoDate, "demo-date", "", "demo date, YYYY-MM-DD (default today)")
	create.Flags().StringVar(&dealStage, "deal-stage", "", "deal stage (default Discovery)")
	create.Flags().StringSliceVar(&industries, "industries", nil, "industries")
	create.Flags().StringSliceVar(&useCases, "use-cases", nil, "use case ids")

	list := &cobra.Command{
		Use:   "list",
		Short: "List sessions, most recently updated first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, bootstrap.ModeCLI, func(ctx context.Context, app *bootstrap.App) error {
				sessions, err := app.SessionCLI.List(ctx)
				if err != nil {
					return err
				}
				if len(sessions) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
					return nil
				}
				for _, s := range sessions {
					marker := " "
					if s.Current {
						marker = "*"
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\t%s\t%s\t%s\tnotes=%d selected=%d\n",
						marker, s.ID, s.Name, s.DealStage, s.DemoDate.Format(dateLayout), s.NoteCount, s.SelectedCount)
				}
				return nil
			})
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, bootstrap.ModeCLI, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SessionCLI.Show(ctx)
				if err != nil {
					return err
				}
				printSession(cmd.OutOrStdout(), out.Session)
				return nil
			})
		},
	}

	use := &cobra.Command{
		Use:   "use <id>",
		Short: "Make a stored session current",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, bootstrap.ModeCLI, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SessionCLI.Use(ctx, args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "current session: %s (%s)\n", out.Session.Name, out.Session.ID)
				return nil
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, bootstrap.ModeCLI, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SessionCLI.Delete(ctx, args[0])
				if err != nil {
					return err
				}
				current := out.CurrentID
				if current == "" {
					current = "none"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s, current session: %s\n", args[0], current)
				return nil
			})
		},
	}

	save := &cobra.Command{
		Use:   "save",
		Short: "Persist the current session now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, bootstrap.ModeCLI, func(ctx context.Context, app *bootstrap.App) error {
				return app.SessionCLI.Save(ctx)
			})
		},
	}

	var yes bool
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Delete every session and stored record",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Delete ALL sessions? This cannot be undone. [y/N] ") {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "aborted")
				return nil
			}
			return withApp(cmd, flags, bootstrap.ModeCLI, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.SessionCLI.Reset(ctx); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "all sessions removed")
				return nil
			})
		},
	}
	reset.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")

	usage := &cobra.Command{
		Use:   "usage",
		Short: "Show storage usage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, bootstrap.ModeCLI, func(ctx context.Context, app *bootstrap.App) error {
				u := app.SessionCLI.Usage(ctx)
				line := fmt.Sprintf("storage: %s driver, %.1f%% of quota used", app.Config.Storage.Driver, u.Ratio*100)
				switch {
				case u.MemoryOnly || !u.Available:
					line = color.YellowString("storage unavailable, running memory-only")
				case u.Warning:
					line = color.YellowString(line)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), line)
				return nil
			})
		},
	}

	var updDate, updStage string
	var updIndustries, updUseCases []string
	update := &cobra.Command{
		Use:   "update",
		Short: "Change metadata of the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var datePtr, stagePtr *string
			if cmd.Flags().Changed("demo-date") {
				datePtr = &updDate
			}
			if cmd.Flags().Changed("deal-stage") {
				stagePtr = &updStage
			}
			var ind, uc []string
			if cmd.Flags().Changed("industries") {
				ind = nonNilSlice(updIndustries)
			}
			if cmd.Flags().Changed("use-cases") {
				uc = nonNilSlice(updUseCases)
			}
			return withApp(cmd, flags, bootstrap.ModeCLI, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SessionCLI.UpdateMetadata(ctx, datePtr, stagePtr, ind, uc)
				if err != nil {
					return err
				}
				printSession(cmd.OutOrStdout(), out.Session)
				return nil
			})
		},
	}
	update.Flags().StringVar(&updDate, "demo-date", "", "demo date, YYYY-MM-DD")
	update.Flags().StringVar(&updStage, "deal-stage", "", "deal stage")
	update.Flags().StringSliceVar(&updIndustries, "industries", nil, "industries (replaces the list)")
	update.Flags().StringSliceVar(&updUseCases, "use-cases", nil, "use case ids (replaces the list)")

	session.AddCommand(create, list, show, use, del, save, reset, usage, update)
	return session
}

func printSession(w io.Writer, s sessiondomain.Session) {
	_, _ = fmt.Fprintf(w, "id:          %s\nname:        %s\ndemo date:   %s\ndeal stage:  %s\nindustries:  %s\nuse cases:   %s\nupdated:     %s\n",
		s.ID, s.Name, s.Metadata.DemoDate.Format(dateLayout), s.Metadata.DealStage,
		strings.Join(s.Metadata.Industries, ", "), strings.Join(s.Metadata.UseCases, ", "),
		s.UpdatedAt.Local().Format("2006-01-02 15:04"))

	for _, category := range sessiondomain.Categories {
		if ids := s.SelectedItems[category]; len(ids) > 0 {
			_, _ = fmt.Fprintf(w, "selected %s: %s\n", category, strings.Join(ids, ", "))
		}
	}
	if len(s.Notes.Items) > 0 {
		_, _ = fmt.Fprintln(w, "notes:")
		ids := make([]string, 0, len(s.Notes.Items))
		for itemID := range s.Notes.Items {
			ids = append(ids, itemID)
		}
		sort.Strings(ids)
		for _, itemID := range ids {
			_, _ = fmt.Fprintf(w, "  %s: %s\n", itemID, s.Notes.Items[itemID].Content)
		}
	}
	if s.HasGeneralNotes() {
		_, _ = fmt.Fprintf(w, "general notes:\n%s\n", s.Notes.General)
	}
	for _, q := range sessiondomain.WhyQuestions {
		if answer := s.ThreeWhys[q]; strings.TrimSpace(answer) != "" {
			_, _ = fmt.Fprintf(w, "%s: %s\n", q, answer)
		}
	}
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	_, _ = fmt.Fprint(out, prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func nonNilSlice(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
