package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"distracted/internal/bootstrap"
	sessiondto "distracted/internal/modules/session/dto"
	"distracted/internal/platform/clock"
	"distracted/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataDir string

	root := &cobra.Command{
		Use:           "distracted",
		Short:         "Stay on task while the room fights for your attention",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataDir, "data", ".", "data directory (catalog, reports, recognizers)")

	root.AddCommand(newPlayCmd(&dataDir))
	root.AddCommand(newRunCmd(&dataDir))
	root.AddCommand(newSimulateCmd(&dataDir))
	root.AddCommand(newHistoryCmd(&dataDir))
	root.AddCommand(newReportCmd(&dataDir))
	root.AddCommand(newCatalogCmd(&dataDir))
	root.AddCommand(newRecognizerCmd(&dataDir))
	return root
}

func loadApp(dataDir string, opts bootstrap.Options) (*bootstrap.App, error) {
	cfg, err := config.New(dataDir)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg, opts)
}

func newPlayCmd(dataDir *string) *cobra.Command {
	var chapter, recognizer string
	var seed int64
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir, bootstrap.Options{LogToFile: true})
			if err != nil {
				return err
			}
			defer app.Close()
			if recognizer != "" {
				if err := app.UseRecognizer(context.Background(), recognizer); err != nil {
					return err
				}
			}
			return bootstrap.RunTUI(app, chapter, seed)
		},
	}
	cmd.Flags().StringVar(&chapter, "chapter", "", "chapter id (random when empty)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "session seed (random when 0)")
	cmd.Flags().StringVar(&recognizer, "recognizer", "", "recognizer plugin feeding labels")
	return cmd
}

func newRunCmd(dataDir *string) *cobra.Command {
	var chapter, recognizer string
	var seed int64
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Play headless; labels come from a recognizer or stdin",
		Long: "Play headless. Without --recognizer every word typed on stdin is a seen label,\n" +
			"and lines starting with ':' are actions: :dismiss, :escape, :recover, :distract [id].",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir, bootstrap.Options{LogCues: true})
			if err != nil {
				return err
			}
			defer app.Close()
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			if recognizer != "" {
				if err := app.UseRecognizer(ctx, recognizer); err != nil {
					return err
				}
			} else {
				feed := app.UseManualFeed()
				errOut := cmd.ErrOrStderr()
				go readInput(cmd.InOrStdin(), feed.Push, func(line string) {
					if err := runAction(ctx, app, line); err != nil {
						_, _ = fmt.Fprintln(errOut, err)
					}
				})
			}
			out := cmd.OutOrStdout()
			report, err := app.SessionCLI.Play(ctx, chapter, seed, func(cue sessiondto.CueOutput) {
				_, _ = fmt.Fprintf(out, "[%s] %s\n", formatClock(cue.ElapsedSeconds), cue.Message)
			})
			if err != nil {
				return err
			}
			printReport(out, report)
			return nil
		},
	}
	cmd.Flags().StringVar(&chapter, "chapter", "", "chapter id (random when empty)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "session seed (random when 0)")
	cmd.Flags().StringVar(&recognizer, "recognizer", "", "recognizer plugin; stdin labels when empty")
	return cmd
}

// readInput pushes every whitespace-separated word on stdin as a label.
// Lines starting with ':' are player actions.
func readInput(r io.Reader, push func(...string), action func(string)) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, ":") {
			action(strings.TrimPrefix(line, ":"))
			continue
		}
		if fields := strings.Fields(line); len(fields) > 0 {
			push(fields...)
		}
	}
}

func runAction(ctx context.Context, app *bootstrap.App, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "dismiss":
		return app.SessionCLI.Dismiss(ctx)
	case "escape":
		return app.SessionCLI.Escape(ctx)
	case "recover":
		return app.SessionCLI.Recover(ctx)
	case "distract":
		entryID := ""
		if len(fields) > 1 {
			entryID = fields[1]
		}
		out, err := app.SessionCLI.Distract(ctx, entryID)
		if err == nil && !out.Fired {
			return fmt.Errorf("another distraction is still active")
		}
		return err
	default:
		return fmt.Errorf("unknown action %q (dismiss, escape, recover, distract [id])", fields[0])
	}
}

func newSimulateCmd(dataDir *string) *cobra.Command {
	var chapter string
	var seed int64
	var hitRate float64
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play a session on virtual time with a seeded player",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if hitRate < 0 || hitRate > 1 {
				return fmt.Errorf("--hit-rate must be within [0, 1]")
			}
			clk := clock.NewManual(time.Now())
			app, err := loadApp(*dataDir, bootstrap.Options{Clock: clk, LogCues: true})
			if err != nil {
				return err
			}
			defer app.Close()
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			report, err := bootstrap.Simulate(cmd.Context(), app, clk, chapter, seed, hitRate)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().StringVar(&chapter, "chapter", "", "chapter id (random when empty)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "session seed (random when 0)")
	cmd.Flags().Float64Var(&hitRate, "hit-rate", 0.35, "chance per poll that the player sees its target")
	return cmd
}

func newHistoryCmd(dataDir *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved sessions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer app.Close()
			items, err := app.SessionCLI.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
				return nil
			}
			for _, r := range items {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\tscore=%d focus=%d tasks=%d/%d\n",
					r.SessionID, r.StartedAt.Local().Format("2006-01-02 15:04"), r.ChapterTitle, r.State,
					r.FinalScore, r.FinalFocus, r.TasksCompleted, r.TasksCompleted+r.TasksSkipped)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum sessions to list")
	return cmd
}

func newReportCmd(dataDir *string) *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "report --id <session-id>",
		Short: "Show one saved session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(sessionID) == "" {
				return fmt.Errorf("--id is required")
			}
			app, err := loadApp(*dataDir, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer app.Close()
			report, err := app.SessionCLI.GetReport(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "id", "", "session id")
	return cmd
}

func newCatalogCmd(dataDir *string) *cobra.Command {
	catalog := &cobra.Command{Use: "catalog", Short: "Inspect chapters and distractions"}
	catalog.AddCommand(&cobra.Command{
		Use:   "chapters",
		Short: "List chapters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer app.Close()
			chapters, err := app.CatalogCLI.Chapters(cmd.Context())
			if err != nil {
				return err
			}
			for _, ch := range chapters {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d tasks\n", ch.ID, ch.Title, ch.TaskCount)
			}
			return nil
		},
	})
	catalog.AddCommand(&cobra.Command{
		Use:   "distractions",
		Short: "List distractions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer app.Close()
			items, err := app.CatalogCLI.Distractions(cmd.Context())
			if err != nil {
				return err
			}
			for _, d := range items {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\teffect=%s target=%s\n", d.ID, d.Category, d.Title, d.SpecialEffect, d.TargetLabel)
			}
			return nil
		},
	})
	return catalog
}

func newRecognizerCmd(dataDir *string) *cobra.Command {
	recognizer := &cobra.Command{Use: "recognizer", Short: "Recognizer plugin operations"}
	recognizer.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List recognizer manifests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer app.Close()
			items, err := app.RecognitionCLI.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(items) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no recognizers configured")
				return nil
			}
			for _, r := range items {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s@%s enabled=%t min_confidence=%.2f binary=%s\n", r.Name, r.Version, r.Enabled, r.MinConfidence, r.Binary)
			}
			return nil
		},
	})
	recognizer.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Validate recognizer checksums and lifecycle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer app.Close()
			results, err := app.RecognitionCLI.Doctor(cmd.Context())
			if err != nil {
				return err
			}
			if len(results) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no recognizers configured")
				return nil
			}
			for _, r := range results {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s checksum=%t binary=%t lifecycle=%t", r.Name, r.ChecksumValid, r.BinaryReachable, r.LifecycleOK)
				if len(r.Vocabulary) > 0 {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), " vocabulary=%s", strings.Join(r.Vocabulary, ","))
				}
				if r.Error != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), " error=%q", r.Error)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	})

	var name string
	var count int
	probe := &cobra.Command{
		Use:   "probe --name <recognizer>",
		Short: "Pull a few frames from a recognizer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("--name is required")
			}
			app, err := loadApp(*dataDir, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer app.Close()
			frames, err := app.RecognitionCLI.Probe(cmd.Context(), name, count, 2*time.Second)
			for _, f := range frames {
				labels := make([]string, 0, len(f.Labels))
				for _, l := range f.Labels {
					labels = append(labels, fmt.Sprintf("%s:%.2f", l.Name, l.Confidence))
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "#%d %s\n", f.Sequence, strings.Join(labels, " "))
			}
			return err
		},
	}
	probe.Flags().StringVar(&name, "name", "", "recognizer name")
	probe.Flags().IntVar(&count, "count", 5, "frames to pull")
	recognizer.AddCommand(probe)
	return recognizer
}

func printReport(w io.Writer, r sessiondto.ReportOutput) {
	_, _ = fmt.Fprintf(w, "session %s (%s) %s\n", r.SessionID, r.ChapterTitle, r.State)
	_, _ = fmt.Fprintf(w, "seed=%d played=%s score=%d focus=%d\n", r.Seed, formatClock(r.ElapsedSeconds), r.FinalScore, r.FinalFocus)
	_, _ = fmt.Fprintf(w, "tasks: %d completed, %d timed out\n", r.TasksCompleted, r.TasksSkipped)
	_, _ = fmt.Fprintf(w, "distractions: %d fired, %d resolved, %d held back\n", r.DistractionsTriggered, r.DistractionsResolved, r.DistractionsSuppressed)
	for _, d := range r.Distractions {
		_, _ = fmt.Fprintf(w, "  %s\t%s\t%s\n", d.Title, d.Source, d.Resolution)
	}
	if r.NotePath != "" {
		_, _ = fmt.Fprintf(w, "note: %s\n", r.NotePath)
	}
}

func formatClock(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
