package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/job-radar/internal/types"
)

const companyColumns = `id, company_name, division, hierarchy, analysis_notes, created_at, updated_at`

// GetCompanyProfile retrieves the profile for a company
func (db *DB) GetCompanyProfile(ctx context.Context, id uuid.UUID) (*types.CompanyProfile, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM company_profiles WHERE id = $1`,
		id,
	)
	profile, err := scanCompanyProfile(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company profile: %w", err)
	}
	return profile, nil
}

// UpsertCompanyProfile inserts a company profile, or updates the existing row
// with the same company id while keeping its creation time.
func (db *DB) UpsertCompanyProfile(ctx context.Context, profile *types.CompanyProfile) error {
	hierarchyJSON, err := json.Marshal(profile.Hierarchy)
	if err != nil {
		return fmt.Errorf("failed to marshal hierarchy: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO company_profiles (id, company_name, division, hierarchy, analysis_notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
		     company_name = $2,
		     division = $3,
		     hierarchy = $4,
		     analysis_notes = $5,
		     updated_at = $7`,
		profile.ID, profile.CompanyName, nullIfEmpty(profile.Division), hierarchyJSON,
		nullIfEmpty(profile.AnalysisNotes), profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert company profile %s: %w", profile.CompanyName, err)
	}
	return nil
}

// GetCompanyProfilesSince retrieves profiles updated at or after the cutoff,
// newest first. Unreadable rows are logged and skipped.
func (db *DB) GetCompanyProfilesSince(ctx context.Context, since time.Time) ([]types.CompanyProfile, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+companyColumns+` FROM company_profiles WHERE updated_at >= $1 ORDER BY updated_at DESC`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list company profiles: %w", err)
	}
	defer rows.Close()

	var profiles []types.CompanyProfile
	for rows.Next() {
		profile, err := scanCompanyProfile(rows)
		if err != nil {
			log.Printf("db: skipping unreadable company profile row: %v", err)
			continue
		}
		profiles = append(profiles, *profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read company profile rows: %w", err)
	}
	return profiles, nil
}

// DeleteCompanyProfile removes a company profile
func (db *DB) DeleteCompanyProfile(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM company_profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete company profile: %w", err)
	}
	return nil
}

func scanCompanyProfile(row pgx.Row) (*types.CompanyProfile, error) {
	var p types.CompanyProfile
	var division, notes *string
	var hierarchyJSON []byte

	err := row.Scan(&p.ID, &p.CompanyName, &division, &hierarchyJSON, &notes,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	p.Division = deref(division)
	p.AnalysisNotes = deref(notes)
	if len(hierarchyJSON) > 0 {
		_ = json.Unmarshal(hierarchyJSON, &p.Hierarchy)
	}
	return &p, nil
}
