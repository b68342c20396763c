package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/permahub/seedaudit/internal/config"
	"github.com/permahub/seedaudit/internal/logger"
	"github.com/permahub/seedaudit/internal/overlap"
	"github.com/permahub/seedaudit/internal/report"
	"github.com/permahub/seedaudit/internal/seedfile"
	"github.com/permahub/seedaudit/internal/similarity"
	"github.com/permahub/seedaudit/internal/storage/sqlite"
	"github.com/permahub/seedaudit/internal/types"
)

var (
	reportPath   string
	baselinePath string
	noHistory    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [seed-files...]",
	Short: "Report duplicate slugs and content overlaps",
	Long: `Parse the seed files, compare every pair of records of the same kind and
print the report. The JSON report is rewritten on every run and the run is
recorded in the history database.

Seed files given as arguments replace the list from the configuration file.

Examples:
  seedaudit analyze
  seedaudit analyze supabase/seeds/*.sql --no-history
  seedaudit analyze --baseline previous-report.json`,
	RunE: runAnalyze,
}

func init() {
	addAnalyzeFlags(analyzeCmd)
	rootCmd.AddCommand(analyzeCmd)
}

func addAnalyzeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&reportPath, "report", "o", "", "JSON report path (default from config)")
	cmd.Flags().StringVar(&baselinePath, "baseline", "", "previous JSON report to diff against")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record the run in the history database")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if reportPath != "" {
		cfg.ReportPath = reportPath
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	r, err := analyze(ctx, seedPaths(cfg, args), cfg.Thresholds, time.Now())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	console := report.NewConsole(out, verbose)
	console.Render(r)

	if err := report.WriteJSON(cfg.ReportPath, r); err != nil {
		return err
	}
	fmt.Fprintf(out, "Report written to %s\n", color.CyanString(cfg.ReportPath))

	if baselinePath != "" {
		baseline, err := report.LoadJSON(baselinePath)
		if err != nil {
			return fmt.Errorf("loading baseline: %w", err)
		}
		fmt.Fprintln(out)
		console.RenderDelta(baselinePath, report.Compare(baseline, r))
	}

	if noHistory {
		return nil
	}
	return recordRun(ctx, out, cfg.HistoryDB, r)
}

// analyze loads paths and runs the overlap analysis
func analyze(ctx context.Context, paths []string, thresholds similarity.Config, now time.Time) (*report.Report, error) {
	logger.Section("Loading seed files")
	logger.Info("Thresholds: %s", thresholds)
	corpus, err := seedfile.Load(paths)
	if err != nil {
		return nil, err
	}
	for _, f := range corpus.Files {
		if f.Missing {
			logger.Warn("File not found: %s", f.Path)
			continue
		}
		logger.Debug("%s: %d guides, %d events, %d locations, %d skipped tuples",
			f.Name, f.Counts[types.KindGuide], f.Counts[types.KindEvent], f.Counts[types.KindLocation], len(f.Warnings))
	}

	logger.Section("Comparing records")
	start := time.Now()
	analysis, err := overlap.NewAnalyzer(similarity.NewScorer(thresholds)).Analyze(ctx, corpus.Records)
	if err != nil {
		return nil, err
	}
	for _, k := range analysis.Kinds {
		logger.Debug("%s: %d comparisons, %d flagged", k.Kind.Plural(), k.Comparisons, len(k.Overlaps))
	}
	logger.Info("Analysis took %s", time.Since(start).Round(time.Millisecond))

	return report.Build(corpus, analysis, report.Options{
		Thresholds:  thresholds,
		Verbose:     verbose,
		GeneratedAt: now,
	}), nil
}

func recordRun(ctx context.Context, out io.Writer, dbPath string, r *report.Report) error {
	store, err := sqlite.New(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("opening history database: %w", err)
	}
	defer func() { _ = store.Close() }()

	runID := uuid.NewString()
	if err := store.RecordRun(ctx, runID, r); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	logger.Info("Recorded run %s in %s", runID, dbPath)
	fmt.Fprintf(out, "Run %s recorded\n", color.HiBlackString(runID))
	return nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded configuration from %s", configPath)
	return cfg, nil
}

// seedPaths returns args when given, otherwise the configured seed files
func seedPaths(cfg *config.Config, args []string) []string {
	if len(args) > 0 {
		return args
	}
	return cfg.SeedFiles
}
