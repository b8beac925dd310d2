package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Settings: one row per user setting, values stored as text
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Whitelist: ordered list of normalized domains
CREATE TABLE IF NOT EXISTS whitelist (
    position INTEGER NOT NULL,
    domain TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_whitelist_position ON whitelist(position);

-- Annotation runs: one row per annotated document
CREATE TABLE IF NOT EXISTS annotation_runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    source TEXT NOT NULL,
    domain TEXT,
    mode TEXT NOT NULL,
    found_count INTEGER DEFAULT 0,
    annotated_count INTEGER DEFAULT 0,
    failed_count INTEGER DEFAULT 0,
    salary TEXT,
    currency TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON annotation_runs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_runs_domain ON annotation_runs(domain);
`
