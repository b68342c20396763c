// Package overlap runs the all-pairs duplicate analysis over seed records.
//
// Two signals are reported per kind. Slug collisions are exact matches of
// non-empty slugs and will violate the unique constraint when the seeds are
// applied, so they are always reported. Content overlaps are pairs flagged by
// the similarity engine, classified Critical, Warning or Info.
package overlap

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/permahub/seedaudit/internal/similarity"
	"github.com/permahub/seedaudit/internal/types"
)

// SimilarityResult is a flagged pair of records of the same kind.
// RecordA always precedes RecordB in the analysed record list.
type SimilarityResult struct {
	RecordA           *types.ContentRecord
	RecordB           *types.ContentRecord
	ContentSimilarity float64
	SlugSimilarity    float64
	Severity          types.Severity
}

// SlugCollision pairs a record with the first earlier record that carries
// the same slug
type SlugCollision struct {
	Slug      string
	First     *types.ContentRecord
	Duplicate *types.ContentRecord
}

// Summary holds the per-kind counts shown in the report
type Summary struct {
	TotalItems     int `json:"total_items"`
	DuplicateSlugs int `json:"duplicate_slugs"`
	Overlaps       int `json:"content_overlaps"`
	Critical       int `json:"critical"`
	Warning        int `json:"warning"`
	Info           int `json:"info"`
}

// KindResult is the analysis of one kind's record pool
type KindResult struct {
	Kind           types.Kind
	Records        []*types.ContentRecord
	DuplicateSlugs []SlugCollision
	// Overlaps are in pair order (i, j) with i < j
	Overlaps    []SimilarityResult
	Comparisons int
	Summary     Summary
}

// BySeverity returns the overlaps of one severity, keeping pair order
func (r *KindResult) BySeverity(sev types.Severity) []SimilarityResult {
	var out []SimilarityResult
	for _, o := range r.Overlaps {
		if o.Severity == sev {
			out = append(out, o)
		}
	}
	return out
}

// Validate checks that the summary agrees with the collected findings
func (r *KindResult) Validate() error {
	if r.Summary.TotalItems != len(r.Records) {
		return fmt.Errorf("summary.total_items (%d) does not match records length (%d)",
			r.Summary.TotalItems, len(r.Records))
	}
	if r.Summary.DuplicateSlugs != len(r.DuplicateSlugs) {
		return fmt.Errorf("summary.duplicate_slugs (%d) does not match duplicate_slugs length (%d)",
			r.Summary.DuplicateSlugs, len(r.DuplicateSlugs))
	}
	if r.Summary.Overlaps != len(r.Overlaps) {
		return fmt.Errorf("summary.content_overlaps (%d) does not match overlaps length (%d)",
			r.Summary.Overlaps, len(r.Overlaps))
	}
	if sum := r.Summary.Critical + r.Summary.Warning + r.Summary.Info; sum != r.Summary.Overlaps {
		return fmt.Errorf("severity counts (%d) do not add up to content_overlaps (%d)", sum, r.Summary.Overlaps)
	}
	n := len(r.Records)
	if want := n * (n - 1) / 2; r.Comparisons != want {
		return fmt.Errorf("comparisons (%d) should be n(n-1)/2 = %d", r.Comparisons, want)
	}
	for _, o := range r.Overlaps {
		if o.RecordA.Kind != r.Kind || o.RecordB.Kind != r.Kind {
			return fmt.Errorf("overlap %q/%q crosses kinds", o.RecordA.Slug, o.RecordB.Slug)
		}
	}
	return nil
}

// Analysis holds the results of every kind in report order
type Analysis struct {
	Kinds []*KindResult
}

// Get returns the result for kind, or nil
func (a *Analysis) Get(kind types.Kind) *KindResult {
	for _, k := range a.Kinds {
		if k.Kind == kind {
			return k
		}
	}
	return nil
}

// Analyzer compares records using a similarity scorer
type Analyzer struct {
	scorer *similarity.Scorer
}

// NewAnalyzer creates an analyzer
func NewAnalyzer(scorer *similarity.Scorer) *Analyzer {
	return &Analyzer{scorer: scorer}
}

// Compare scores two records and reports whether the pair is flagged.
// Records of different kinds are never flagged.
func (a *Analyzer) Compare(x, y *types.ContentRecord) (SimilarityResult, bool) {
	if x.Kind != y.Kind {
		return SimilarityResult{}, false
	}
	content := a.scorer.Content(x.BodyText, y.BodyText)
	slug := a.scorer.Slug(x.Slug, y.Slug)
	res := SimilarityResult{
		RecordA:           x,
		RecordB:           y,
		ContentSimilarity: content,
		SlugSimilarity:    slug,
		Severity:          a.scorer.Severity(content),
	}
	return res, a.scorer.Flagged(content, slug)
}

// AnalyzeKind runs slug-collision detection and the all-pairs comparison
// over records. Records of other kinds are left out of the pool.
func (a *Analyzer) AnalyzeKind(ctx context.Context, kind types.Kind, records []*types.ContentRecord) (*KindResult, error) {
	res := &KindResult{Kind: kind}
	for _, r := range records {
		if r.Kind == kind {
			res.Records = append(res.Records, r)
		}
	}

	res.DuplicateSlugs = findSlugCollisions(res.Records)

	for i := 0; i < len(res.Records); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for j := i + 1; j < len(res.Records); j++ {
			res.Comparisons++
			if o, flagged := a.Compare(res.Records[i], res.Records[j]); flagged {
				res.Overlaps = append(res.Overlaps, o)
			}
		}
	}

	res.Summary = summarize(res)
	return res, nil
}

// Analyze runs AnalyzeKind for every kind. Kinds are independent and run
// concurrently; each goroutine writes only its own slot.
func (a *Analyzer) Analyze(ctx context.Context, byKind map[types.Kind][]*types.ContentRecord) (*Analysis, error) {
	results := make([]*KindResult, len(types.AllKinds))

	g, ctx := errgroup.WithContext(ctx)
	for i, kind := range types.AllKinds {
		g.Go(func() error {
			res, err := a.AnalyzeKind(ctx, kind, byKind[kind])
			if err != nil {
				return fmt.Errorf("analyzing %s: %w", kind.Plural(), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Analysis{Kinds: results}, nil
}

func findSlugCollisions(records []*types.ContentRecord) []SlugCollision {
	var collisions []SlugCollision
	first := make(map[string]*types.ContentRecord)
	for _, r := range records {
		if !r.HasSlug() {
			continue
		}
		if prev, ok := first[r.Slug]; ok {
			collisions = append(collisions, SlugCollision{Slug: r.Slug, First: prev, Duplicate: r})
			continue
		}
		first[r.Slug] = r
	}
	return collisions
}

func summarize(r *KindResult) Summary {
	s := Summary{
		TotalItems:     len(r.Records),
		DuplicateSlugs: len(r.DuplicateSlugs),
		Overlaps:       len(r.Overlaps),
	}
	for _, o := range r.Overlaps {
		switch o.Severity {
		case types.SeverityCritical:
			s.Critical++
		case types.SeverityWarning:
			s.Warning++
		default:
			s.Info++
		}
	}
	return s
}
