package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/permahub/seedaudit/internal/storage/sqlite"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List recorded analysis runs",
	Long: `List the most recent analysis runs from the history database, newest first.
With a run ID, list the findings recorded for that run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "maximum number of runs to list (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := sqlite.New(ctx, cfg.HistoryDB)
	if err != nil {
		return fmt.Errorf("opening history database: %w", err)
	}
	defer func() { _ = store.Close() }()

	out := cmd.OutOrStdout()
	cyan := color.New(color.FgCyan).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	if len(args) == 1 {
		findings, err := store.GetFindings(ctx, args[0])
		if err != nil {
			return err
		}
		if len(findings) == 0 {
			fmt.Fprintln(out, "No findings recorded for this run.")
			return nil
		}
		for _, f := range findings {
			if f.Type == sqlite.FindingDuplicateSlug {
				fmt.Fprintf(out, "%-9s %s duplicate slug %q (%s, %s)\n",
					f.Kind, red("SLUG"), f.Slug, f.SourceA, f.SourceB)
				continue
			}
			fmt.Fprintf(out, "%-9s %-8s %5.1f%% content %5.1f%% slug (%s, %s)\n",
				f.Kind, f.Severity, f.ContentSimilarity*100, f.SlugSimilarity*100, f.SourceA, f.SourceB)
		}
		return nil
	}

	runs, err := store.ListRuns(ctx, historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}

	for _, r := range runs {
		fmt.Fprintf(out, "%s  %s  items %d  slugs %s  critical %s  warning %d  info %d",
			cyan(r.ID), r.GeneratedAt.Local().Format("2006-01-02 15:04:05"),
			r.Totals.TotalItems, red(r.Totals.DuplicateSlugs), red(r.Totals.Critical),
			r.Totals.Warning, r.Totals.Info)
		if r.MissingFiles > 0 {
			fmt.Fprintf(out, "  %s", yellow(fmt.Sprintf("%d/%d files missing", r.MissingFiles, r.SeedFiles)))
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "\n%s\n", gray("Use 'seedaudit history <run-id>' to list the findings of a run"))
	return nil
}
