package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the tables the assistant reads and the audit table
// it writes. The platform's own migrations normally own these; this exists
// so a standalone deployment boots against an empty database.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082801)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS leaks (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	source TEXT NOT NULL,
	severity TEXT NOT NULL,
	status TEXT NOT NULL,
	record_count BIGINT NOT NULL DEFAULT 0,
	seller_handle TEXT,
	description TEXT,
	affected_domains JSONB NOT NULL DEFAULT '[]'::jsonb,
	discovered_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leaks_status ON leaks(status);
CREATE INDEX IF NOT EXISTS idx_leaks_discovered_at ON leaks(discovered_at DESC);

CREATE TABLE IF NOT EXISTS sellers (
	id TEXT PRIMARY KEY,
	handle TEXT NOT NULL,
	marketplace TEXT NOT NULL,
	reputation DOUBLE PRECISION NOT NULL DEFAULT 0,
	listing_count INTEGER NOT NULL DEFAULT 0,
	first_seen_at TIMESTAMPTZ NOT NULL,
	last_seen_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS channels (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	platform TEXT NOT NULL,
	monitored BOOLEAN NOT NULL DEFAULT TRUE,
	leak_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS monitoring_jobs (
	id TEXT PRIMARY KEY,
	channel_id TEXT NOT NULL,
	schedule TEXT NOT NULL,
	status TEXT NOT NULL,
	last_run_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS evidence (
	id TEXT PRIMARY KEY,
	leak_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	sha256 TEXT NOT NULL,
	captured_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_evidence_leak_id ON evidence(leak_id);

CREATE TABLE IF NOT EXISTS reports (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	kind TEXT NOT NULL,
	status TEXT NOT NULL,
	requested_by TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS platform_users (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	role TEXT NOT NULL,
	last_active_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS knowledge_entries (
	id TEXT PRIMARY KEY,
	category TEXT NOT NULL,
	title TEXT NOT NULL,
	title_ar TEXT,
	content TEXT NOT NULL,
	content_ar TEXT,
	tags JSONB NOT NULL DEFAULT '[]'::jsonb,
	embedding JSONB,
	view_count INTEGER NOT NULL DEFAULT 0,
	helpful_count INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_knowledge_category ON knowledge_entries(category);

CREATE TABLE IF NOT EXISTS assistant_audit (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	user_name TEXT,
	query TEXT NOT NULL,
	tools_used JSONB NOT NULL DEFAULT '[]'::jsonb,
	step_count INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_assistant_audit_user ON assistant_audit(user_id, created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
