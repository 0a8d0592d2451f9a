// Package ingest filters, normalizes, enriches, and persists job postings
// fetched from the search provider.
package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-radar/internal/types"
)

// Searcher fetches raw postings for a (query, location) pair. Implementations
// never return an error; failures surface as an empty slice.
type Searcher interface {
	FetchJobs(ctx context.Context, query, location string) []types.JobPosting
}

// DivisionInferrer produces a best-effort division inference. Nil means the
// call failed and the posting proceeds without enrichment.
type DivisionInferrer interface {
	Infer(ctx context.Context, companyName, description string) *types.DivisionInference
}

// JobStore is the persistence surface the engine needs. Upserts are keyed by
// provider job id; lookups return (nil, nil) when the record does not exist.
type JobStore interface {
	GetJobByProviderID(ctx context.Context, providerJobID string) (*types.JobSummary, error)
	UpsertJob(ctx context.Context, summary *types.JobSummary) error
}

// Engine is the job ingestion and validation engine.
type Engine struct {
	search    Searcher
	inference DivisionInferrer
	jobs      JobStore
	policy    Policy
	query     string
	location  string
	now       func() time.Time
}

// NewEngine creates an ingestion engine. All collaborators and the search
// terms are required; a nil collaborator is a programmer error and fails
// construction.
func NewEngine(search Searcher, inference DivisionInferrer, jobs JobStore, policy Policy, query, location string) (*Engine, error) {
	if search == nil {
		return nil, fmt.Errorf("searcher is required")
	}
	if inference == nil {
		return nil, fmt.Errorf("division inferrer is required")
	}
	if jobs == nil {
		return nil, fmt.Errorf("job store is required")
	}
	if query == "" || location == "" {
		return nil, fmt.Errorf("search query and location are required")
	}
	return &Engine{
		search:    search,
		inference: inference,
		jobs:      jobs,
		policy:    policy,
		query:     query,
		location:  location,
		now:       time.Now,
	}, nil
}

// UpdateJobSource fetches the current postings and processes each one:
// validate, normalize, deduplicate, infer, persist. Returns false when
// retrieval produced nothing; per-posting failures are logged and the batch
// continues.
func (e *Engine) UpdateJobSource(ctx context.Context) bool {
	postings := e.search.FetchJobs(ctx, e.query, e.location)
	if len(postings) == 0 {
		log.Printf("ingest: no postings retrieved for %q in %q", e.query, e.location)
		return false
	}

	accepted := 0
	for _, posting := range postings {
		if e.processPosting(ctx, posting) {
			accepted++
		}
	}
	log.Printf("ingest: processed %d postings, accepted %d", len(postings), accepted)
	return true
}

func (e *Engine) processPosting(ctx context.Context, posting types.JobPosting) bool {
	title := NormalizeTitle(posting.Title)

	if rej := e.policy.Validate(posting, title); rej != nil {
		log.Printf("ingest: skipped %q at %q (%s)", posting.Title, posting.CompanyName, rej)
		return false
	}

	existing, err := e.jobs.GetJobByProviderID(ctx, posting.JobID)
	if err != nil {
		log.Printf("ingest: lookup failed for provider job %s: %v", posting.JobID, err)
		return false
	}

	now := e.now()
	summary := e.buildSummary(posting, title, now)

	if existing != nil {
		// Re-ingestion of a known posting refreshes its mutable fields but
		// keeps identity, creation time, and the prior inference; no second
		// model call.
		summary.ID = existing.ID
		summary.CreatedAt = existing.CreatedAt
		summary.Division = existing.Division
		summary.Confidence = existing.Confidence
		summary.Reasoning = existing.Reasoning
	} else if inf := e.inference.Infer(ctx, posting.CompanyName, posting.Description); inf != nil {
		summary.Division = inf.Division
		summary.Confidence = inf.Confidence
		summary.Reasoning = inf.Reasoning
	}

	if err := e.jobs.UpsertJob(ctx, &summary); err != nil {
		log.Printf("ingest: failed to persist provider job %s: %v", posting.JobID, err)
		return false
	}
	return true
}

func (e *Engine) buildSummary(posting types.JobPosting, title string, now time.Time) types.JobSummary {
	sourceLink := posting.ShareLink
	if sourceLink == "" && len(posting.ApplyLinks) > 0 {
		sourceLink = posting.ApplyLinks[0].Link
	}

	return types.JobSummary{
		ID:            uuid.New(),
		ProviderJobID: posting.JobID,
		CompanyID:     types.CompanyID(posting.CompanyName),
		CompanyName:   posting.CompanyName,
		JobTitle:      title,
		Location:      posting.Location,
		Description:   posting.Description,
		SourceName:    posting.Via,
		SourceLink:    sourceLink,
		Highlights:    posting.Highlights,
		PostedAt:      posting.PostedAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
