package observability

// Schema is the DDL for the analysis event log. Pass it to
// dbopen.WithSchema when opening the audit database.
const Schema = `
CREATE TABLE IF NOT EXISTS analysis_events (
    event_id       TEXT PRIMARY KEY,
    original_url   TEXT NOT NULL,
    minimal_url    TEXT NOT NULL,
    status         TEXT NOT NULL,
    similarity     REAL NOT NULL DEFAULT 0,
    param_count    INTEGER NOT NULL DEFAULT 0,
    required_count INTEGER NOT NULL DEFAULT 0,
    elapsed_ms     INTEGER NOT NULL DEFAULT 0,
    error          TEXT,
    created_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analysis_events_created
    ON analysis_events(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_analysis_events_url
    ON analysis_events(original_url, created_at DESC);
`
