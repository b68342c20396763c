package sqlite

const schema = `
-- One row per analysis run
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    generated_at TEXT NOT NULL,
    schema_version TEXT NOT NULL,
    seed_files INTEGER NOT NULL DEFAULT 0,
    missing_files INTEGER NOT NULL DEFAULT 0,
    total_items INTEGER NOT NULL DEFAULT 0,
    duplicate_slugs INTEGER NOT NULL DEFAULT 0,
    overlaps INTEGER NOT NULL DEFAULT 0,
    critical INTEGER NOT NULL DEFAULT 0,
    warning INTEGER NOT NULL DEFAULT 0,
    info INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_generated_at ON runs(generated_at);

-- Findings of a run: duplicate slugs and flagged overlaps
CREATE TABLE IF NOT EXISTS run_findings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    kind TEXT NOT NULL CHECK(kind IN ('guide', 'event', 'location')),
    finding_type TEXT NOT NULL CHECK(finding_type IN ('duplicate_slug', 'overlap')),
    severity TEXT NOT NULL DEFAULT '',
    slug TEXT NOT NULL DEFAULT '',
    content_similarity REAL NOT NULL DEFAULT 0,
    slug_similarity REAL NOT NULL DEFAULT 0,
    record_a TEXT NOT NULL,
    record_b TEXT NOT NULL,
    source_a TEXT NOT NULL DEFAULT '',
    source_b TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_run_findings_run ON run_findings(run_id);
`
