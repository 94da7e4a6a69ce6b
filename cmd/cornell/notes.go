package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/jackzampolin/cornell/internal/notes"
	"github.com/jackzampolin/cornell/internal/output"
	"github.com/jackzampolin/cornell/internal/svcctx"
)

var (
	notesWatch       bool
	notesConcurrency int
	notesMetricsFile string
	notesSave        bool
	notesStats       bool
)

// watchDebounce collapses the burst of events editors emit on save.
const watchDebounce = 150 * time.Millisecond

var notesCmd = &cobra.Command{
	Use:   "notes [file]",
	Short: "Generate Cornell Notes from a text file",
	Long: `Generate Cornell Notes from plain text.

The text is split into sections: a line followed by a line of === or ---
starts a heading section, and blank lines separate paragraphs. Each
section becomes a note page with a main idea, supporting details, a cue
question and an analysis. The whole document gets a summary and an
overall analysis.

Reads stdin when no file is given.

Examples:
  cornell notes lecture.txt
  cornell notes lecture.txt -o json
  cornell notes lecture.txt --watch          # Re-run on every save
  cat lecture.txt | cornell notes --concurrency 4`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadServices(cmd)
		if err != nil {
			return err
		}
		input := inputArg(args)

		if notesWatch {
			if input == "" || input == "-" {
				return fmt.Errorf("--watch requires a file argument")
			}
			return watchNotes(cmd, s, input)
		}

		err = runNotes(cmd, s, input)
		if merr := writeMetrics(cmd.Context(), notesMetricsFile); merr != nil {
			s.Logger.Warn("metrics export failed", "error", merr)
		}
		return err
	},
}

func init() {
	notesCmd.Flags().BoolVarP(&notesWatch, "watch", "w", false, "re-generate notes whenever the file changes")
	notesCmd.Flags().IntVar(&notesConcurrency, "concurrency", 0, "sections processed at once (default: notes.concurrency from config)")
	notesCmd.Flags().StringVar(&notesMetricsFile, "metrics-file", "", "write Prometheus metrics to this file (default: metrics_file from config)")
	notesCmd.Flags().BoolVar(&notesSave, "save", false, "also save the notes under {home}/notes")
	notesCmd.Flags().BoolVar(&notesStats, "stats", false, "print capability call statistics to stderr")

	rootCmd.AddCommand(notesCmd)
}

// runNotes synthesizes notes for one input and writes them to stdout.
func runNotes(cmd *cobra.Command, s *svcctx.Services, input string) error {
	ctx := cmd.Context()

	text, err := readInput(cmd, input)
	if err != nil {
		return err
	}

	syn, err := s.Synthesizer(notesConcurrency)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := syn.Synthesize(ctx, text)
	if err != nil {
		return noteError(err)
	}
	rec := svcctx.MetricsFrom(ctx)
	rec.RecordDocument()
	for _, p := range result.Pages {
		rec.RecordPage(p.PageType.String())
	}
	s.Logger.Debug("generated notes",
		"input", displayName(input),
		"pages", len(result.Pages),
		"duration", time.Since(start),
	)

	if err := output.To(cmd.OutOrStdout(), format(), result); err != nil {
		return err
	}
	if notesSave {
		if err := saveNotes(ctx, input, result); err != nil {
			return err
		}
	}
	if notesStats {
		return printStats(cmd)
	}
	return nil
}

func saveNotes(ctx context.Context, input string, result *notes.Result) (err error) {
	h := svcctx.HomeFrom(ctx)
	if err := h.EnsureExists(); err != nil {
		return err
	}
	path := h.NotesPath(input, format().Ext())
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to save notes: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to save notes: %w", cerr)
		}
	}()
	if err := output.To(f, format(), result); err != nil {
		return fmt.Errorf("failed to save notes: %w", err)
	}
	svcctx.LoggerFrom(ctx).Info("saved notes", "file", path)
	return nil
}

// printStats writes the capability call summary to stderr.
func printStats(cmd *cobra.Command) error {
	summary, err := svcctx.MetricsFrom(cmd.Context()).Summary()
	if err != nil {
		return err
	}
	return output.To(cmd.ErrOrStderr(), format(), summary)
}

// noteError formats a capability failure for the terminal.
func noteError(err error) error {
	var capErr *notes.CapabilityError
	if !errors.As(err, &capErr) {
		return fmt.Errorf("note generation failed: %w", err)
	}
	where := fmt.Sprintf("section %d", capErr.Section)
	if capErr.Section == notes.DocumentIndex {
		where = "whole document"
	}
	return fmt.Errorf("note generation failed at %s (%s): %w", capErr.Capability, where, capErr.Err)
}

// watchNotes runs once, then again on every change to input until the
// context is cancelled. Failed runs are reported and watching continues.
func watchNotes(cmd *cobra.Command, s *svcctx.Services, input string) error {
	ctx := cmd.Context()
	target, err := filepath.Abs(input)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so editors that replace the file are still seen
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", input, err)
	}
	if s.Config.ConfigFile() != "" {
		s.Config.WatchConfig()
	}

	run := func() {
		if err := runNotes(cmd, s, input); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		}
		if err := writeMetrics(ctx, notesMetricsFile); err != nil {
			s.Logger.Warn("metrics export failed", "error", err)
		}
	}

	run()
	s.Logger.Info("watching for changes", "file", target)
	return watchLoop(ctx, watcher, target, cmd.OutOrStdout(), run)
}

func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, target string, out io.Writer, run func()) error {
	var (
		timer   *time.Timer
		trigger <-chan time.Time
	)
	logger := svcctx.LoggerFrom(ctx)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(watchDebounce)
			trigger = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		case <-trigger:
			trigger = nil
			if format() == output.FormatYAML {
				fmt.Fprintln(out, "---")
			}
			run()
		}
	}
}
