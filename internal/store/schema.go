package store

// schema is created on first open (spec §4.1). SQLite enforces the cascade
// deletes described in spec §3 (files own symbols; edges live as long as
// both endpoints) via ON DELETE CASCADE, which requires PRAGMA foreign_keys
// to be turned on per-connection (done in Open).
const schema = `
CREATE TABLE IF NOT EXISTS files (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	path TEXT NOT NULL UNIQUE,
	language TEXT NOT NULL DEFAULT '',
	hash INTEGER NOT NULL,
	mtime INTEGER NOT NULL DEFAULT 0,
	line_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS symbols (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	file_id INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	qualified_name TEXT NOT NULL DEFAULT '',
	kind TEXT NOT NULL,
	signature TEXT NOT NULL DEFAULT '',
	line_start INTEGER NOT NULL DEFAULT 0,
	line_end INTEGER NOT NULL DEFAULT 0,
	docstring TEXT NOT NULL DEFAULT '',
	visibility TEXT NOT NULL DEFAULT 'public',
	is_exported INTEGER NOT NULL DEFAULT 0,
	parent_id INTEGER REFERENCES symbols(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_symbols_file ON symbols(file_id);
CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name);
CREATE INDEX IF NOT EXISTS idx_symbols_qname ON symbols(qualified_name);
CREATE INDEX IF NOT EXISTS idx_symbols_line ON symbols(file_id, line_start, line_end);

CREATE TABLE IF NOT EXISTS edges (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source_id INTEGER NOT NULL REFERENCES symbols(id) ON DELETE CASCADE,
	target_id INTEGER NOT NULL REFERENCES symbols(id) ON DELETE CASCADE,
	kind TEXT NOT NULL,
	line INTEGER NOT NULL DEFAULT 0,
	UNIQUE(source_id, target_id, kind)
);

CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_id);
CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_id);

CREATE TABLE IF NOT EXISTS file_edges (
	source_file_id INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	target_file_id INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	kind TEXT NOT NULL DEFAULT 'imports',
	symbol_count INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (source_file_id, target_file_id, kind)
);

CREATE TABLE IF NOT EXISTS graph_metrics (
	symbol_id INTEGER PRIMARY KEY REFERENCES symbols(id) ON DELETE CASCADE,
	in_degree INTEGER NOT NULL DEFAULT 0,
	out_degree INTEGER NOT NULL DEFAULT 0,
	betweenness REAL NOT NULL DEFAULT 0,
	pagerank REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS clusters (
	symbol_id INTEGER PRIMARY KEY REFERENCES symbols(id) ON DELETE CASCADE,
	cluster_id INTEGER NOT NULL,
	cluster_label TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS file_stats (
	file_id INTEGER PRIMARY KEY REFERENCES files(id) ON DELETE CASCADE,
	complexity REAL NOT NULL DEFAULT 0,
	commit_count INTEGER NOT NULL DEFAULT 0,
	total_churn INTEGER NOT NULL DEFAULT 0,
	distinct_authors INTEGER NOT NULL DEFAULT 0
);

-- Auxiliary git-history tables (spec §6): exposed by the Store, populated by
-- an optional external collector, never written by this core.
CREATE TABLE IF NOT EXISTS git_commits (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	author TEXT NOT NULL DEFAULT '',
	message TEXT NOT NULL DEFAULT '',
	timestamp INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS git_file_changes (
	commit_id INTEGER NOT NULL REFERENCES git_commits(id) ON DELETE CASCADE,
	file_id INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	lines_added INTEGER NOT NULL DEFAULT 0,
	lines_removed INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS git_cochange (
	file_id_a INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	file_id_b INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	cochange_count INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (file_id_a, file_id_b)
);
`
