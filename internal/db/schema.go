package db

// SchemaSQL is the complete schema for the index side of the hybrid
// store: tide rows, per-tide analytics and per-user-per-day rollups.
//
// This is the SINGLE SOURCE OF TRUTH for the index schema. Tests apply
// it via GetSchemaSQL() so repository code and tests cannot drift: a
// column referenced by an adapter but missing here fails immediately
// with "no such column".
//
// The document blobs are NOT modeled here. The index holds the summary
// projection and denormalized counters only; the authoritative nested
// history lives in the document store, one JSON blob per tide.
const SchemaSQL = `
-- Tide index rows (summary projection over the document blobs)
CREATE TABLE IF NOT EXISTS tides (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	flow_type TEXT NOT NULL CHECK(flow_type IN ('daily', 'weekly', 'monthly', 'project', 'seasonal')),
	status TEXT NOT NULL CHECK(status IN ('active', 'paused', 'completed')) DEFAULT 'active',
	parent_tide_id TEXT,
	date_start TEXT,
	date_end TEXT,
	auto_created INTEGER NOT NULL DEFAULT 0,
	doc_key TEXT NOT NULL,
	flow_count INTEGER NOT NULL DEFAULT 0,
	total_duration INTEGER NOT NULL DEFAULT 0,
	last_flow_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

-- Exactly one auto-created tide per (user, flow_type, date_start).
CREATE UNIQUE INDEX IF NOT EXISTS idx_tides_auto_range
	ON tides(user_id, flow_type, date_start) WHERE auto_created = 1;

CREATE INDEX IF NOT EXISTS idx_tides_user_created
	ON tides(user_id, created_at DESC);

-- Per-tide derived aggregates (best-effort cache, 1:1 with tides)
CREATE TABLE IF NOT EXISTS tide_analytics (
	tide_id TEXT PRIMARY KEY,
	total_sessions INTEGER NOT NULL DEFAULT 0,
	total_duration INTEGER NOT NULL DEFAULT 0,
	avg_intensity REAL NOT NULL DEFAULT 0,
	last_session_at DATETIME
);

-- Per-user-per-day activity rollups
CREATE TABLE IF NOT EXISTS user_activity_rollups (
	user_id TEXT NOT NULL,
	date TEXT NOT NULL,
	period_type TEXT NOT NULL,
	flow_count INTEGER NOT NULL DEFAULT 0,
	total_duration INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, date, period_type)
);
`

// GetSchemaSQL returns the authoritative schema for tests and tooling.
func GetSchemaSQL() string {
	return SchemaSQL
}
