package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/permahub/seedaudit/internal/types"
)

const ruleWidth = 80

// Console renders a report for humans. Info overlaps and parser warnings are
// only listed when verbose; duplicate slugs are always listed.
type Console struct {
	w       io.Writer
	verbose bool
}

// NewConsole creates a console renderer writing to w
func NewConsole(w io.Writer, verbose bool) *Console {
	return &Console{w: w, verbose: verbose}
}

// Render prints the full report: parsing summary, per-kind findings and
// the recommendations block.
func (c *Console) Render(r *Report) {
	c.renderHeader()
	c.renderFiles(r)
	for _, k := range r.Kinds {
		c.renderKind(k)
	}
	c.renderRecommendations()
}

func (c *Console) renderHeader() {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(c.w, "%s\n\n", bold("Analyzing wiki seed files for duplicates and overlaps"))
	fmt.Fprintf(c.w, "%s\n\n", strings.Repeat("=", ruleWidth))
}

func (c *Console) renderFiles(r *Report) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	for _, f := range r.Files {
		if !f.Found {
			fmt.Fprintf(c.w, "%s File not found: %s\n\n", yellow("⚠"), f.Path)
			continue
		}
		fmt.Fprintf(c.w, "Parsing: %s\n", cyan(f.Name))
		fmt.Fprintf(c.w, "   %s Guides: %d, Events: %d, Locations: %d\n",
			green("✓"), f.Counts[types.KindGuide], f.Counts[types.KindEvent], f.Counts[types.KindLocation])
		switch {
		case c.verbose:
			for _, w := range f.Warnings {
				fmt.Fprintf(c.w, "   %s %s\n", yellow("skipped"), w)
			}
		case len(f.Warnings) > 0:
			fmt.Fprintf(c.w, "   %s %d tuple(s) skipped (use --verbose for details)\n", yellow("⚠"), len(f.Warnings))
		}
		fmt.Fprintln(c.w)
	}

	fmt.Fprintln(c.w, strings.Repeat("=", ruleWidth))
	fmt.Fprintf(c.w, "\nTotal content parsed:\n\n")
	for _, k := range r.Kinds {
		fmt.Fprintf(c.w, "   %-10s %d\n", capitalize(k.Kind.Plural())+":", k.Summary.TotalItems)
	}
	fmt.Fprintf(c.w, "\n%s\n", strings.Repeat("=", ruleWidth))
}

func (c *Console) renderKind(k KindReport) {
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	blue := color.New(color.FgBlue).SprintFunc()

	fmt.Fprintf(c.w, "\nAnalyzing %s for duplicates and overlaps\n\n", k.Label)
	fmt.Fprintf(c.w, "%s\n\n", strings.Repeat("-", ruleWidth))

	if k.Summary.TotalItems == 0 {
		fmt.Fprintf(c.w, "   No %s found.\n\n", strings.ToLower(k.Label))
		return
	}

	if len(k.DuplicateSlugs) > 0 {
		fmt.Fprintf(c.w, "%s\n\n", red(fmt.Sprintf("DUPLICATE SLUGS (%d)", len(k.DuplicateSlugs))))
		for _, d := range k.DuplicateSlugs {
			fmt.Fprintf(c.w, "   Slug: %q\n", d.Slug)
			for _, rec := range d.Records {
				fmt.Fprintf(c.w, "      - %s (%s)\n", rec.Title, rec.SourceFile)
			}
			fmt.Fprintln(c.w)
		}
	} else {
		fmt.Fprintf(c.w, "%s No duplicate slugs found\n\n", green("✓"))
	}

	if len(k.Overlaps) > 0 {
		fmt.Fprintf(c.w, "%s\n\n", yellow(fmt.Sprintf("CONTENT OVERLAPS (%d total)", len(k.Overlaps))))
		c.renderBucket(k, types.SeverityCritical, red("CRITICAL (>50% similar)"), true)
		c.renderBucket(k, types.SeverityWarning, yellow("WARNING (>40% similar)"), true)
		c.renderBucket(k, types.SeverityInfo, blue("INFO (>30% similar)"), c.verbose)
	} else {
		fmt.Fprintf(c.w, "%s No significant content overlaps found\n\n", green("✓"))
	}

	fmt.Fprintln(c.w, strings.Repeat("-", ruleWidth))
	fmt.Fprintf(c.w, "\nSummary for %s:\n", k.Label)
	fmt.Fprintf(c.w, "   Total items:       %d\n", k.Summary.TotalItems)
	fmt.Fprintf(c.w, "   Duplicate slugs:   %d\n", k.Summary.DuplicateSlugs)
	fmt.Fprintf(c.w, "   Content overlaps:  %d\n", k.Summary.Overlaps)
	if k.Summary.Overlaps > 0 {
		fmt.Fprintf(c.w, "      Critical: %d, Warnings: %d, Info: %d\n",
			k.Summary.Critical, k.Summary.Warning, k.Summary.Info)
	}
	fmt.Fprintln(c.w)
}

func (c *Console) renderBucket(k KindReport, sev types.Severity, heading string, show bool) {
	var bucket []Overlap
	for _, o := range k.Overlaps {
		if o.Severity == sev {
			bucket = append(bucket, o)
		}
	}
	if len(bucket) == 0 || !show {
		return
	}

	fmt.Fprintf(c.w, "   %s: %d\n\n", heading, len(bucket))
	for _, o := range bucket {
		fmt.Fprintf(c.w, "   %s: %s%% content, %s%% slug similarity\n", o.Severity, o.ContentPercent, o.SlugPercent)
		for i, rec := range o.Records {
			fmt.Fprintf(c.w, "      %d. %q\n", i+1, rec.Title)
			fmt.Fprintf(c.w, "         Slug: %s\n", rec.Slug)
			fmt.Fprintf(c.w, "         Source: %s\n", rec.SourceFile)
			fmt.Fprintf(c.w, "         Words: %d\n", rec.WordCount)
		}
		fmt.Fprintln(c.w)
	}
}

func (c *Console) renderRecommendations() {
	green := color.New(color.FgGreen).SprintFunc()

	fmt.Fprintln(c.w, strings.Repeat("=", ruleWidth))
	fmt.Fprintf(c.w, "\n%s\n\n", green("Analysis complete"))
	fmt.Fprintln(c.w, "Recommendations:")
	fmt.Fprintln(c.w, "   1. Review all CRITICAL overlaps - likely duplicates")
	fmt.Fprintln(c.w, "   2. Check WARNING overlaps - may need consolidation")
	fmt.Fprintln(c.w, "   3. Fix duplicate slugs immediately - will cause database errors")
	if !c.verbose {
		fmt.Fprintln(c.w, "   4. Run with --verbose to see INFO level overlaps")
	}
	fmt.Fprintln(c.w)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
