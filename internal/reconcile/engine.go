// Package reconcile merges ingested job summaries into per-company profiles.
package reconcile

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-radar/internal/inference"
	"github.com/jonathan/job-radar/internal/types"
)

// DefaultWindow is the rolling cutoff for job summaries considered by one
// reconciliation pass.
const DefaultWindow = 7 * 24 * time.Hour

// JobStore provides the job summaries to reconcile.
type JobStore interface {
	GetJobsSince(ctx context.Context, since time.Time) ([]types.JobSummary, error)
}

// CompanyStore is the profile persistence surface. Lookups return (nil, nil)
// when no profile exists.
type CompanyStore interface {
	GetCompanyProfile(ctx context.Context, id uuid.UUID) (*types.CompanyProfile, error)
	UpsertCompanyProfile(ctx context.Context, profile *types.CompanyProfile) error
}

// HierarchyExtractor produces a best-effort leadership hierarchy. Nil means
// the extraction failed or found nothing.
type HierarchyExtractor interface {
	ExtractHierarchy(ctx context.Context, companyName, division string) []types.HierarchyItem
}

// Engine is the company profile reconciliation engine.
type Engine struct {
	jobs      JobStore
	companies CompanyStore
	extractor HierarchyExtractor
	window    time.Duration
	now       func() time.Time
}

// NewEngine creates a reconciliation engine. All collaborators are required.
func NewEngine(jobs JobStore, companies CompanyStore, extractor HierarchyExtractor, window time.Duration) (*Engine, error) {
	if jobs == nil {
		return nil, fmt.Errorf("job store is required")
	}
	if companies == nil {
		return nil, fmt.Errorf("company store is required")
	}
	if extractor == nil {
		return nil, fmt.Errorf("hierarchy extractor is required")
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Engine{
		jobs:      jobs,
		companies: companies,
		extractor: extractor,
		window:    window,
		now:       time.Now,
	}, nil
}

// UpdateCompanyProfiles merges recently updated job summaries into company
// profiles. Returns false when there was nothing to reconcile. A per-company
// failure is logged and the batch continues; the return value reflects
// whether records were processed, not whether every merge succeeded.
func (e *Engine) UpdateCompanyProfiles(ctx context.Context) bool {
	cutoff := e.now().Add(-e.window)
	jobs, err := e.jobs.GetJobsSince(ctx, cutoff)
	if err != nil {
		log.Printf("reconcile: failed to load job summaries: %v", err)
		return false
	}
	if len(jobs) == 0 {
		return false
	}

	groups := make(map[uuid.UUID][]types.JobSummary)
	var order []uuid.UUID
	for _, job := range jobs {
		if _, seen := groups[job.CompanyID]; !seen {
			order = append(order, job.CompanyID)
		}
		groups[job.CompanyID] = append(groups[job.CompanyID], job)
	}

	for _, id := range order {
		group := groups[id]
		if err := e.reconcileCompany(ctx, id, group); err != nil {
			log.Printf("reconcile: %s (%s): %v", group[0].CompanyName, id, err)
		}
	}
	return true
}

// reconcileCompany folds one company's window of job summaries into its
// profile. The profile is loaded once and the hierarchy extractor is called
// at most once per company per pass.
func (e *Engine) reconcileCompany(ctx context.Context, id uuid.UUID, group []types.JobSummary) error {
	existing, err := e.companies.GetCompanyProfile(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	now := e.now()
	if existing == nil {
		profile := types.CompanyProfile{
			ID:          id,
			CompanyName: group[0].CompanyName,
			Division:    firstDivision(group),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		profile.Hierarchy = inference.CleanHierarchy(
			e.extractor.ExtractHierarchy(ctx, profile.CompanyName, profile.Division))
		if err := e.companies.UpsertCompanyProfile(ctx, &profile); err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}
		return nil
	}

	merged := *existing
	var changed bool
	for _, job := range group {
		var did bool
		merged, did = mergeProfile(merged, job)
		changed = changed || did
	}
	if len(merged.Hierarchy) == 0 {
		items := inference.CleanHierarchy(
			e.extractor.ExtractHierarchy(ctx, merged.CompanyName, merged.Division))
		var filled bool
		merged, filled = mergeHierarchy(merged, items)
		changed = changed || filled
	}

	if !changed {
		return nil
	}
	merged.UpdatedAt = now
	if err := e.companies.UpsertCompanyProfile(ctx, &merged); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

func firstDivision(group []types.JobSummary) string {
	for _, job := range group {
		if job.Division != "" {
			return job.Division
		}
	}
	return ""
}
