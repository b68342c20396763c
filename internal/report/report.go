// Package report turns an analysis into the JSON artifact and the console
// report, and compares a report against a previous baseline.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/mod/semver"

	"github.com/permahub/seedaudit/internal/overlap"
	"github.com/permahub/seedaudit/internal/seedfile"
	"github.com/permahub/seedaudit/internal/similarity"
	"github.com/permahub/seedaudit/internal/types"
)

// SchemaVersion is the version of the JSON report layout. A baseline can be
// compared only when its major version matches.
const SchemaVersion = "v1.0.0"

// ErrIncompatibleSchema is returned when a baseline report was written by an
// incompatible layout
var ErrIncompatibleSchema = errors.New("incompatible report schema")

// Report is the JSON artifact written after every run
type Report struct {
	SchemaVersion string            `json:"schema_version"`
	GeneratedAt   time.Time         `json:"generated_at"`
	Verbose       bool              `json:"verbose"`
	Thresholds    similarity.Config `json:"thresholds"`
	Files         []FileSummary     `json:"files"`
	Kinds         []KindReport      `json:"kinds"`
}

// FileSummary is the parse outcome of one seed file
type FileSummary struct {
	Path     string             `json:"path"`
	Name     string             `json:"name"`
	Found    bool               `json:"found"`
	Counts   map[types.Kind]int `json:"counts,omitempty"`
	Warnings []string           `json:"warnings,omitempty"`
}

// RecordRef identifies a record in the report
type RecordRef struct {
	Title         string `json:"title"`
	Slug          string `json:"slug,omitempty"`
	SourceFile    string `json:"source_file"`
	SequenceIndex int    `json:"sequence_index"`
	WordCount     int    `json:"word_count"`
	Fingerprint   string `json:"fingerprint"`
}

// DuplicateSlug lists the first record with a slug and a later duplicate
type DuplicateSlug struct {
	Slug    string      `json:"slug"`
	Records []RecordRef `json:"records"`
}

// Overlap is a flagged pair. Percentages are rounded to one decimal.
type Overlap struct {
	Severity          types.Severity `json:"severity"`
	ContentSimilarity float64        `json:"content_similarity"`
	SlugSimilarity    float64        `json:"slug_similarity"`
	ContentPercent    string         `json:"content_percent"`
	SlugPercent       string         `json:"slug_percent"`
	Records           []RecordRef    `json:"records"`
}

// KindReport holds the findings for one kind
type KindReport struct {
	Kind           types.Kind      `json:"kind"`
	Label          string          `json:"label"`
	Summary        overlap.Summary `json:"summary"`
	DuplicateSlugs []DuplicateSlug `json:"duplicate_slugs"`
	Overlaps       []Overlap       `json:"overlaps"`
}

// Options control report metadata
type Options struct {
	Thresholds  similarity.Config
	Verbose     bool
	GeneratedAt time.Time
}

// Build assembles the report from the loaded corpus and its analysis.
// Every flagged pair is included, Info pairs too.
func Build(corpus *seedfile.Corpus, analysis *overlap.Analysis, opts Options) *Report {
	r := &Report{
		SchemaVersion: SchemaVersion,
		GeneratedAt:   opts.GeneratedAt.UTC(),
		Verbose:       opts.Verbose,
		Thresholds:    opts.Thresholds,
		Files:         make([]FileSummary, 0, len(corpus.Files)),
		Kinds:         make([]KindReport, 0, len(analysis.Kinds)),
	}

	for _, f := range corpus.Files {
		fs := FileSummary{Path: f.Path, Name: f.Name, Found: !f.Missing}
		if !f.Missing {
			fs.Counts = f.Counts
		}
		for _, w := range f.Warnings {
			fs.Warnings = append(fs.Warnings, w.Error())
		}
		r.Files = append(r.Files, fs)
	}

	for _, k := range analysis.Kinds {
		r.Kinds = append(r.Kinds, buildKind(k))
	}
	return r
}

func buildKind(k *overlap.KindResult) KindReport {
	kr := KindReport{
		Kind:           k.Kind,
		Label:          k.Kind.Label(),
		Summary:        k.Summary,
		DuplicateSlugs: make([]DuplicateSlug, 0, len(k.DuplicateSlugs)),
		Overlaps:       make([]Overlap, 0, len(k.Overlaps)),
	}
	for _, c := range k.DuplicateSlugs {
		kr.DuplicateSlugs = append(kr.DuplicateSlugs, DuplicateSlug{
			Slug:    c.Slug,
			Records: []RecordRef{refOf(c.First), refOf(c.Duplicate)},
		})
	}
	for _, o := range k.Overlaps {
		kr.Overlaps = append(kr.Overlaps, Overlap{
			Severity:          o.Severity,
			ContentSimilarity: o.ContentSimilarity,
			SlugSimilarity:    o.SlugSimilarity,
			ContentPercent:    Percent(o.ContentSimilarity),
			SlugPercent:       Percent(o.SlugSimilarity),
			Records:           []RecordRef{refOf(o.RecordA), refOf(o.RecordB)},
		})
	}
	return kr
}

func refOf(r *types.ContentRecord) RecordRef {
	return RecordRef{
		Title:         r.DisplayTitle(),
		Slug:          r.Slug,
		SourceFile:    r.SourceFile,
		SequenceIndex: r.SequenceIndex,
		WordCount:     r.WordCount,
		Fingerprint:   r.Fingerprint(),
	}
}

// Percent formats a similarity in [0,1] as a percentage with one decimal
func Percent(v float64) string {
	return fmt.Sprintf("%.1f", v*100)
}

// Kind returns the report of one kind, or nil
func (r *Report) Kind(kind types.Kind) *KindReport {
	for i := range r.Kinds {
		if r.Kinds[i].Kind == kind {
			return &r.Kinds[i]
		}
	}
	return nil
}

// Totals sums the per-kind summaries
func (r *Report) Totals() overlap.Summary {
	var t overlap.Summary
	for _, k := range r.Kinds {
		t.TotalItems += k.Summary.TotalItems
		t.DuplicateSlugs += k.Summary.DuplicateSlugs
		t.Overlaps += k.Summary.Overlaps
		t.Critical += k.Summary.Critical
		t.Warning += k.Summary.Warning
		t.Info += k.Summary.Info
	}
	return t
}

// WriteJSON writes r to path, replacing any previous report
func WriteJSON(path string, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}

// LoadJSON reads a previously written report. Reports whose schema major
// version differs from SchemaVersion are rejected with ErrIncompatibleSchema.
func LoadJSON(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", path, err)
	}
	if !semver.IsValid(r.SchemaVersion) {
		return nil, fmt.Errorf("%w: invalid schema_version %q", ErrIncompatibleSchema, r.SchemaVersion)
	}
	if semver.Major(r.SchemaVersion) != semver.Major(SchemaVersion) {
		return nil, fmt.Errorf("%w: %s is not compatible with %s",
			ErrIncompatibleSchema, r.SchemaVersion, SchemaVersion)
	}
	return &r, nil
}
