package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/job-radar/internal/types"
)

const jobColumns = `id, provider_job_id, company_id, company_name, job_title, location,
	        description, division, confidence, reasoning, source_name, source_link,
	        highlights, posted_at, created_at, updated_at`

// GetJobByProviderID retrieves a job summary by the provider's job identifier
func (db *DB) GetJobByProviderID(ctx context.Context, providerJobID string) (*types.JobSummary, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE provider_job_id = $1`,
		providerJobID,
	)
	job, err := scanJob(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job %s: %w", providerJobID, err)
	}
	return job, nil
}

// UpsertJob inserts a job summary, or updates the existing row with the same
// provider job id while keeping its identity and creation time.
func (db *DB) UpsertJob(ctx context.Context, job *types.JobSummary) error {
	highlightsJSON, err := json.Marshal(job.Highlights)
	if err != nil {
		return fmt.Errorf("failed to marshal highlights: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO jobs (id, provider_job_id, company_id, company_name, job_title, location,
		                   description, division, confidence, reasoning, source_name, source_link,
		                   highlights, posted_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 ON CONFLICT (provider_job_id) DO UPDATE SET
		     company_id = $3,
		     company_name = $4,
		     job_title = $5,
		     location = $6,
		     description = $7,
		     division = $8,
		     confidence = $9,
		     reasoning = $10,
		     source_name = $11,
		     source_link = $12,
		     highlights = $13,
		     posted_at = $14,
		     updated_at = $16`,
		job.ID, job.ProviderJobID, job.CompanyID, job.CompanyName, job.JobTitle, job.Location,
		job.Description, nullIfEmpty(job.Division), job.Confidence, nullIfEmpty(job.Reasoning),
		nullIfEmpty(job.SourceName), nullIfEmpty(job.SourceLink),
		highlightsJSON, job.PostedAt, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert job %s: %w", job.ProviderJobID, err)
	}
	return nil
}

// GetJobsSince retrieves jobs updated at or after the cutoff, newest first.
// Rows that fail to scan are logged and skipped so one bad record cannot
// empty the listing.
func (db *DB) GetJobsSince(ctx context.Context, since time.Time) ([]types.JobSummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE updated_at >= $1 ORDER BY updated_at DESC`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []types.JobSummary
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			log.Printf("db: skipping unreadable job row: %v", err)
			continue
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read job rows: %w", err)
	}
	return jobs, nil
}

// DeleteJob removes a job summary by provider job id
func (db *DB) DeleteJob(ctx context.Context, providerJobID string) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM jobs WHERE provider_job_id = $1`, providerJobID)
	if err != nil {
		return fmt.Errorf("failed to delete job %s: %w", providerJobID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("job not found: %s", providerJobID)
	}
	return nil
}

func scanJob(row pgx.Row) (*types.JobSummary, error) {
	var job types.JobSummary
	var division, reasoning, sourceName, sourceLink *string
	var highlightsJSON []byte

	err := row.Scan(&job.ID, &job.ProviderJobID, &job.CompanyID, &job.CompanyName,
		&job.JobTitle, &job.Location, &job.Description, &division, &job.Confidence,
		&reasoning, &sourceName, &sourceLink, &highlightsJSON,
		&job.PostedAt, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}

	job.Division = deref(division)
	job.Reasoning = deref(reasoning)
	job.SourceName = deref(sourceName)
	job.SourceLink = deref(sourceLink)
	if len(highlightsJSON) > 0 {
		_ = json.Unmarshal(highlightsJSON, &job.Highlights)
	}
	return &job, nil
}

// nullIfEmpty returns nil if the string is empty, otherwise a pointer to the string
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
