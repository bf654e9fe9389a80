package store

// SchemaVersion is the current schema version.
const SchemaVersion = 1

// CoreSchema contains the table definitions for notebooks, authors, and
// entries, plus the indexes the causal-position service and entropy
// engine rely on for efficient per-notebook scans.
const CoreSchema = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY,
	applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS authors (
	id TEXT PRIMARY KEY,
	public_key BLOB,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS notebooks (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	owner_id TEXT NOT NULL REFERENCES authors(id),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS entries (
	id TEXT PRIMARY KEY,
	notebook_id TEXT NOT NULL REFERENCES notebooks(id) ON DELETE CASCADE,
	author_id TEXT NOT NULL REFERENCES authors(id),
	content BLOB NOT NULL,
	content_type TEXT NOT NULL,
	topic TEXT,
	reference_ids TEXT NOT NULL DEFAULT '[]',
	revision_of TEXT,
	signature BLOB,
	sequence INTEGER NOT NULL,
	entries_since_last_by_author INTEGER NOT NULL DEFAULT 0,
	total_notebook_entries INTEGER NOT NULL DEFAULT 0,
	recent_entropy REAL NOT NULL DEFAULT 0,
	entries_revised INTEGER NOT NULL DEFAULT 0,
	references_broken INTEGER NOT NULL DEFAULT 0,
	catalog_shift REAL NOT NULL DEFAULT 0 CHECK (catalog_shift >= 0.0 AND catalog_shift <= 1.0),
	orphan BOOLEAN NOT NULL DEFAULT 0,
	cumulative_cost REAL NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_entries_notebook_sequence ON entries(notebook_id, sequence);
CREATE INDEX IF NOT EXISTS idx_entries_notebook_author ON entries(notebook_id, author_id);
CREATE INDEX IF NOT EXISTS idx_entries_notebook_created ON entries(notebook_id, created_at);

CREATE TABLE IF NOT EXISTS processed_propagation_jobs (
	job_id TEXT PRIMARY KEY,
	processed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
