// Package db provides PostgreSQL persistence for job summaries and company
// profiles.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the tables the pipeline writes to if they do not
// already exist. Safe to run on every startup.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, createJobsTable); err != nil {
		return fmt.Errorf("failed to create jobs table: %w", err)
	}
	if _, err := db.pool.Exec(ctx, createCompanyProfilesTable); err != nil {
		return fmt.Errorf("failed to create company_profiles table: %w", err)
	}
	return nil
}

const createJobsTable = `
CREATE TABLE IF NOT EXISTS jobs (
    id              UUID PRIMARY KEY,
    provider_job_id TEXT NOT NULL UNIQUE,
    company_id      UUID NOT NULL,
    company_name    TEXT NOT NULL,
    job_title       TEXT NOT NULL,
    location        TEXT,
    description     TEXT,
    division        TEXT,
    confidence      INTEGER NOT NULL DEFAULT 0,
    reasoning       TEXT,
    source_name     TEXT,
    source_link     TEXT,
    highlights      JSONB,
    posted_at       TIMESTAMPTZ,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_jobs_updated_at ON jobs (updated_at DESC);
CREATE INDEX IF NOT EXISTS idx_jobs_company_id ON jobs (company_id);
`

const createCompanyProfilesTable = `
CREATE TABLE IF NOT EXISTS company_profiles (
    id             UUID PRIMARY KEY,
    company_name   TEXT NOT NULL,
    division       TEXT,
    hierarchy      JSONB,
    analysis_notes TEXT,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_company_profiles_updated_at ON company_profiles (updated_at DESC);
`
