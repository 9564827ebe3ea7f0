package prompt

// SchemaDDL defines the SQLite schema for the wayfarer prompt database.
// Execute against a SQLite database with: db.Exec(SchemaDDL)
//
// The secondary index on sync_status makes pending-work enumeration cheap;
// the index on remote_id maps remote notifications back to local rows.
const SchemaDDL = `
-- Locally captured prompts and their replication state
CREATE TABLE IF NOT EXISTS prompts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    text TEXT NOT NULL,
    timestamp INTEGER NOT NULL,
    sync_status TEXT NOT NULL DEFAULT 'pending',
    remote_id TEXT,
    attempts INTEGER NOT NULL DEFAULT 0,
    last_error TEXT
);

CREATE INDEX IF NOT EXISTS idx_prompts_sync_status ON prompts(sync_status);
CREATE INDEX IF NOT EXISTS idx_prompts_remote_id ON prompts(remote_id);
`
