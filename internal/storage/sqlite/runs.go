package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/permahub/seedaudit/internal/overlap"
	"github.com/permahub/seedaudit/internal/report"
	"github.com/permahub/seedaudit/internal/types"
)

// timeFormat sorts lexically in chronological order for UTC times
const timeFormat = "2006-01-02T15:04:05.000000000Z"

// ErrRunNotFound is returned when a run ID is not in the history
var ErrRunNotFound = errors.New("run not found")

// FindingType distinguishes the two kinds of stored findings
type FindingType string

const (
	FindingDuplicateSlug FindingType = "duplicate_slug"
	FindingOverlap       FindingType = "overlap"
)

// Run summarizes one recorded analysis run
type Run struct {
	ID            string
	GeneratedAt   time.Time
	SchemaVersion string
	SeedFiles     int
	MissingFiles  int
	Totals        overlap.Summary
}

// Finding is one stored duplicate slug or overlap. RecordA and RecordB are
// record fingerprints.
type Finding struct {
	RunID             string
	Kind              types.Kind
	Type              FindingType
	Severity          types.Severity
	Slug              string
	ContentSimilarity float64
	SlugSimilarity    float64
	RecordA           string
	RecordB           string
	SourceA           string
	SourceB           string
}

// RecordRun stores the summary and every finding of r under runID
func (s *Store) RecordRun(ctx context.Context, runID string, r *report.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	missing := 0
	for _, f := range r.Files {
		if !f.Found {
			missing++
		}
	}
	totals := r.Totals()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, generated_at, schema_version, seed_files, missing_files,
		                  total_items, duplicate_slugs, overlaps, critical, warning, info)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, r.GeneratedAt.UTC().Format(timeFormat), r.SchemaVersion, len(r.Files), missing,
		totals.TotalItems, totals.DuplicateSlugs, totals.Overlaps, totals.Critical, totals.Warning, totals.Info)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_findings (run_id, kind, finding_type, severity, slug,
		                          content_similarity, slug_similarity,
		                          record_a, record_b, source_a, source_b)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare finding insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, k := range r.Kinds {
		for _, d := range k.DuplicateSlugs {
			a, b := pair(d.Records)
			if _, err := stmt.ExecContext(ctx, runID, string(k.Kind), string(FindingDuplicateSlug), "", d.Slug, 0.0, 1.0,
				a.Fingerprint, b.Fingerprint, a.SourceFile, b.SourceFile); err != nil {
				return fmt.Errorf("failed to insert duplicate slug finding: %w", err)
			}
		}
		for _, o := range k.Overlaps {
			a, b := pair(o.Records)
			if _, err := stmt.ExecContext(ctx, runID, string(k.Kind), string(FindingOverlap), string(o.Severity), a.Slug,
				o.ContentSimilarity, o.SlugSimilarity,
				a.Fingerprint, b.Fingerprint, a.SourceFile, b.SourceFile); err != nil {
				return fmt.Errorf("failed to insert overlap finding: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

func pair(records []report.RecordRef) (report.RecordRef, report.RecordRef) {
	var a, b report.RecordRef
	if len(records) > 0 {
		a = records[0]
	}
	if len(records) > 1 {
		b = records[1]
	}
	return a, b
}

// ListRuns returns the most recent runs, newest first. A limit of zero or
// less returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, generated_at, schema_version, seed_files, missing_files,
		       total_items, duplicate_slugs, overlaps, critical, warning, info
		FROM runs
		ORDER BY generated_at DESC, rowid DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		var generatedAt string
		if err := rows.Scan(&r.ID, &generatedAt, &r.SchemaVersion, &r.SeedFiles, &r.MissingFiles,
			&r.Totals.TotalItems, &r.Totals.DuplicateSlugs, &r.Totals.Overlaps,
			&r.Totals.Critical, &r.Totals.Warning, &r.Totals.Info); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if r.GeneratedAt, err = time.Parse(timeFormat, generatedAt); err != nil {
			return nil, fmt.Errorf("invalid generated_at for run %s: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run rows: %w", err)
	}
	return runs, nil
}

// GetFindings returns the findings of a run in insertion order
func (s *Store) GetFindings(ctx context.Context, runID string) ([]Finding, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM runs WHERE id = ?", runID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, kind, finding_type, severity, slug,
		       content_similarity, slug_similarity,
		       record_a, record_b, source_a, source_b
		FROM run_findings
		WHERE run_id = ?
		ORDER BY id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query findings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var findings []Finding
	for rows.Next() {
		var f Finding
		if err := rows.Scan(&f.RunID, &f.Kind, &f.Type, &f.Severity, &f.Slug,
			&f.ContentSimilarity, &f.SlugSimilarity,
			&f.RecordA, &f.RecordB, &f.SourceA, &f.SourceB); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		findings = append(findings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating finding rows: %w", err)
	}
	return findings, nil
}
