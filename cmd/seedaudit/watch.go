package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/permahub/seedaudit/internal/logger"
	"github.com/permahub/seedaudit/internal/report"
	"github.com/permahub/seedaudit/internal/similarity"
)

// watchDebounce collapses the burst of events an editor save produces
const watchDebounce = 300 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [seed-files...]",
	Short: "Re-run the analysis whenever a seed file changes",
	Long: `Watch the seed files and re-run the analysis after every change. The JSON
report is rewritten each time; runs are not recorded in the history.

Stop with Ctrl-C.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	paths := seedPaths(cfg, args)
	if len(paths) == 0 {
		return errors.New("no seed files to watch")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	targets, dirs, err := watchTargets(paths)
	if err != nil {
		return err
	}
	// Directories are watched so that files replaced by rename or created
	// later are still seen.
	for _, dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			logger.Warn("Not watching %s: %v", dir, err)
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	out := cmd.OutOrStdout()
	rerun := func() {
		if err := analyzeAndWrite(ctx, out, paths, cfg.Thresholds, cfg.ReportPath); err != nil {
			printFatal(cmd.ErrOrStderr(), err, verbose)
		}
		fmt.Fprintf(out, "\n%s\n", color.HiBlackString("Watching %d seed files, Ctrl-C to stop", len(paths)))
	}
	rerun()

	return watchLoop(ctx, watcher.Events, watcher.Errors, targets, watchDebounce, rerun)
}

// watchLoop calls rerun once events on targets have been quiet for debounce.
// It returns nil when ctx is done.
func watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error,
	targets map[string]bool, debounce time.Duration, rerun func()) error {
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !isRelevant(ev, targets) {
				continue
			}
			logger.Debug("%s %s", ev.Op, ev.Name)
			timer.Reset(debounce)
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		case <-timer.C:
			rerun()
		}
	}
}

func isRelevant(ev fsnotify.Event, targets map[string]bool) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return targets[abs]
}

// watchTargets returns the absolute seed paths and their distinct
// directories in first-seen order
func watchTargets(paths []string) (map[string]bool, []string, error) {
	targets := make(map[string]bool, len(paths))
	seenDir := make(map[string]bool)
	var dirs []string
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		targets[abs] = true
		if dir := filepath.Dir(abs); !seenDir[dir] {
			seenDir[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return targets, dirs, nil
}

func analyzeAndWrite(ctx context.Context, out io.Writer, paths []string, thresholds similarity.Config, reportPath string) error {
	r, err := analyze(ctx, paths, thresholds, time.Now())
	if err != nil {
		return err
	}
	report.NewConsole(out, verbose).Render(r)
	return report.WriteJSON(reportPath, r)
}
