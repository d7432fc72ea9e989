package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the audit tables. analyzed_at is stored as Unix
// nanoseconds so both drivers compare and sort it the same way. flag_kinds
// holds "|kind|kind|" for LIKE filtering; topics and flags are JSON.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_records (
    id TEXT PRIMARY KEY,
    content_hash TEXT NOT NULL,
    request_id TEXT NOT NULL DEFAULT '',

    -- Content shape
    content_length INTEGER NOT NULL,
    language TEXT NOT NULL,
    topics TEXT NOT NULL DEFAULT '[]',
    mention_count INTEGER NOT NULL DEFAULT 0,

    -- Scores
    sentiment_score REAL NOT NULL,
    sentiment_confidence REAL NOT NULL,
    toxicity_score REAL NOT NULL,
    toxicity_confidence REAL NOT NULL,
    confidence REAL NOT NULL,

    -- Decision
    flags TEXT NOT NULL DEFAULT '[]',
    flag_kinds TEXT NOT NULL DEFAULT '',
    recommended_action TEXT NOT NULL,
    degraded INTEGER NOT NULL DEFAULT 0,

    analyzed_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_analyzed_at ON audit_records(analyzed_at);
CREATE INDEX IF NOT EXISTS idx_audit_content_hash ON audit_records(content_hash);
CREATE INDEX IF NOT EXISTS idx_audit_action ON audit_records(recommended_action);
CREATE INDEX IF NOT EXISTS idx_audit_language ON audit_records(language);
CREATE INDEX IF NOT EXISTS idx_audit_toxicity ON audit_records(toxicity_score);
CREATE INDEX IF NOT EXISTS idx_audit_request_id ON audit_records(request_id);
`

// InsertSchemaVersion records the schema version once.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion returns the newest applied schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const recordColumns = `id, content_hash, request_id,
	content_length, language, topics, mention_count,
	sentiment_score, sentiment_confidence, toxicity_score, toxicity_confidence, confidence,
	flags, flag_kinds, recommended_action, degraded,
	analyzed_at`

const insertRecord = `INSERT INTO audit_records (` + recordColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
