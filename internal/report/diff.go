package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/permahub/seedaudit/internal/types"
)

// KindDelta lists the findings of one kind that appeared or disappeared
// since the baseline
type KindDelta struct {
	Kind                   types.Kind
	NewDuplicateSlugs      []DuplicateSlug
	ResolvedDuplicateSlugs []DuplicateSlug
	NewOverlaps            []Overlap
	ResolvedOverlaps       []Overlap
}

// Empty reports whether nothing changed for the kind
func (d KindDelta) Empty() bool {
	return len(d.NewDuplicateSlugs) == 0 && len(d.ResolvedDuplicateSlugs) == 0 &&
		len(d.NewOverlaps) == 0 && len(d.ResolvedOverlaps) == 0
}

// Delta is the difference between a baseline report and the current one
type Delta struct {
	Kinds []KindDelta
}

// Empty reports whether no kind changed
func (d Delta) Empty() bool {
	for _, k := range d.Kinds {
		if !k.Empty() {
			return false
		}
	}
	return true
}

// Compare diffs cur against prev. Findings are matched by the fingerprints
// of their records regardless of order, so moving a record to another file
// or position does not count as a change. Identical copies are counted, so
// a third copy of a record adds findings. Severity changes of a pair that
// is flagged in both reports are not reported.
func Compare(prev, cur *Report) Delta {
	var d Delta
	for _, kind := range types.AllKinds {
		var before, after KindReport
		if k := prev.Kind(kind); k != nil {
			before = *k
		}
		if k := cur.Kind(kind); k != nil {
			after = *k
		}

		kd := KindDelta{Kind: kind}
		kd.NewDuplicateSlugs, kd.ResolvedDuplicateSlugs = diffFindings(
			before.DuplicateSlugs, after.DuplicateSlugs,
			func(s DuplicateSlug) string { return s.Slug + "|" + pairKey(s.Records) })
		kd.NewOverlaps, kd.ResolvedOverlaps = diffFindings(
			before.Overlaps, after.Overlaps,
			func(o Overlap) string { return pairKey(o.Records) })
		d.Kinds = append(d.Kinds, kd)
	}
	return d
}

// diffFindings matches before and after as multisets of keys. An item of
// after is added when before has fewer items with its key, and an item of
// before is removed when after has fewer. Input order is kept.
func diffFindings[T any](before, after []T, key func(T) string) (added, removed []T) {
	countBefore := make(map[string]int, len(before))
	for _, b := range before {
		countBefore[key(b)]++
	}
	countAfter := make(map[string]int, len(after))
	for _, a := range after {
		countAfter[key(a)]++
	}

	unmatched := make(map[string]int, len(countBefore))
	for k, n := range countBefore {
		unmatched[k] = n
	}
	for _, a := range after {
		k := key(a)
		if unmatched[k] > 0 {
			unmatched[k]--
			continue
		}
		added = append(added, a)
	}

	for _, b := range before {
		k := key(b)
		if countAfter[k] > 0 {
			countAfter[k]--
			continue
		}
		removed = append(removed, b)
	}
	return added, removed
}

func pairKey(records []RecordRef) string {
	fps := make([]string, len(records))
	for i, r := range records {
		fps[i] = r.Fingerprint
	}
	sort.Strings(fps)
	return strings.Join(fps, "+")
}

// RenderDelta prints the findings that changed since the baseline
func (c *Console) RenderDelta(baseline string, d Delta) {
	red := color.New(color.FgRed).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	fmt.Fprintf(c.w, "Changes since baseline %s:\n\n", baseline)
	if d.Empty() {
		fmt.Fprintf(c.w, "   %s No new or resolved findings\n\n", green("✓"))
		return
	}

	for _, k := range d.Kinds {
		if k.Empty() {
			continue
		}
		fmt.Fprintf(c.w, "   %s\n", k.Kind.Label())
		for _, s := range k.NewDuplicateSlugs {
			fmt.Fprintf(c.w, "      %s duplicate slug %q (%s)\n", red("+"), s.Slug, sources(s.Records))
		}
		for _, s := range k.ResolvedDuplicateSlugs {
			fmt.Fprintf(c.w, "      %s duplicate slug %q (%s)\n", green("-"), s.Slug, sources(s.Records))
		}
		for _, o := range k.NewOverlaps {
			fmt.Fprintf(c.w, "      %s %s overlap %s (%s%% content)\n", red("+"), o.Severity, titles(o.Records), o.ContentPercent)
		}
		for _, o := range k.ResolvedOverlaps {
			fmt.Fprintf(c.w, "      %s %s overlap %s (%s%% content)\n", green("-"), o.Severity, titles(o.Records), o.ContentPercent)
		}
		fmt.Fprintln(c.w)
	}
}

func sources(records []RecordRef) string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.SourceFile
	}
	return strings.Join(out, ", ")
}

func titles(records []RecordRef) string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = fmt.Sprintf("%q", r.Title)
	}
	return strings.Join(out, " / ")
}
