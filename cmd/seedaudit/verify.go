package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/permahub/seedaudit/internal/seedfile"
	"github.com/permahub/seedaudit/internal/types"
	"github.com/permahub/seedaudit/internal/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [seed-files...]",
	Short: "Check seed records against the wiki content guidelines",
	Long: `Score every guide for length, summary and structure and lint the slugs,
titles and descriptions of every record. Guides pass at 80%.

Findings are advisory: the command only fails when the seed files cannot
be read.`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	corpus, err := seedfile.Load(seedPaths(cfg, args))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	for _, path := range corpus.Missing() {
		fmt.Fprintf(out, "%s File not found: %s\n", yellow("⚠"), path)
	}

	var all []*types.ContentRecord
	for _, kind := range types.AllKinds {
		all = append(all, corpus.Records[kind]...)
	}
	summary := verify.All(all)

	current := types.Kind("")
	for _, res := range summary.Results {
		rec := res.Record
		if rec.Kind != current {
			current = rec.Kind
			fmt.Fprintf(out, "\n%s (%d)\n\n", rec.Kind.Label(), summary.Total[rec.Kind])
		}

		status := green("PASS")
		if !res.Passes {
			status = red("FAIL")
		}
		line := fmt.Sprintf("  [%s] %s", status, rec.DisplayTitle())
		if rec.HasSlug() {
			line += gray(" (" + rec.Slug + ")")
		}
		if res.Scores != nil {
			line += fmt.Sprintf(" %.1f%%", res.Scores.Overall)
		}
		fmt.Fprintf(out, "%s %s\n", line, gray(rec.SourceFile))

		for _, issue := range res.Issues {
			fmt.Fprintf(out, "      %s %s\n", red("✗"), issue)
		}
		if verbose {
			for _, r := range res.Recommendations {
				fmt.Fprintf(out, "      %s %s\n", yellow("→"), r)
			}
		}
	}

	passing, total := summary.Counts()
	fmt.Fprintln(out)
	if total == 0 {
		fmt.Fprintf(out, "%s No content found in the seed files\n", yellow("⚠"))
		return nil
	}
	fmt.Fprintf(out, "Passing: %d/%d\n", passing, total)
	fmt.Fprintf(out, "Failing: %d/%d\n\n", total-passing, total)
	if passing < total {
		fmt.Fprintf(out, "%s Seed files need fixes before migration\n", yellow("⚠"))
	} else {
		fmt.Fprintf(out, "%s Seed files ready for migration\n", green("✓"))
	}
	return nil
}
