// Package display serves paginated, date-ordered views of jobs and companies
// from in-memory snapshots refreshed on demand.
package display

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonathan/job-radar/internal/types"
)

// DefaultSnapshotTTL is how long a built snapshot is reused before the next
// request rebuilds it.
const DefaultSnapshotTTL = 5 * time.Minute

// JobLister loads job summaries updated at or after a cutoff.
type JobLister interface {
	GetJobsSince(ctx context.Context, since time.Time) ([]types.JobSummary, error)
}

// CompanyLister loads company profiles updated at or after a cutoff.
type CompanyLister interface {
	GetCompanyProfilesSince(ctx context.Context, since time.Time) ([]types.CompanyProfile, error)
}

// Repository builds and serves paginated snapshots. Concurrent rebuilds of
// the same snapshot collapse into a single store read.
type Repository struct {
	jobs      JobLister
	companies CompanyLister
	ttl       time.Duration
	group     singleflight.Group
	now       func() time.Time

	mu        sync.Mutex
	jobSnaps  map[int64]*snapshot[types.JobSummary]
	compSnaps map[int64]*snapshot[types.CompanyProfile]
}

type snapshot[T any] struct {
	items   []T
	builtAt time.Time
}

// NewRepository creates a display repository. Both listers are required.
func NewRepository(jobs JobLister, companies CompanyLister, ttl time.Duration) (*Repository, error) {
	if jobs == nil {
		return nil, fmt.Errorf("job lister is required")
	}
	if companies == nil {
		return nil, fmt.Errorf("company lister is required")
	}
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &Repository{
		jobs:      jobs,
		companies: companies,
		ttl:       ttl,
		now:       time.Now,
		jobSnaps:  make(map[int64]*snapshot[types.JobSummary]),
		compSnaps: make(map[int64]*snapshot[types.CompanyProfile]),
	}, nil
}

// PaginatedJobs returns the page of job summaries updated at or after from,
// most recent first. Pages are zero-based; pages past the end are empty.
func (r *Repository) PaginatedJobs(ctx context.Context, from time.Time, page, pageSize int) ([]types.JobSummary, error) {
	if err := checkPageArgs(page, pageSize); err != nil {
		return nil, err
	}

	items, err := buildOrReuse(ctx, r, r.jobSnaps, "jobs", from, func() ([]types.JobSummary, error) {
		loaded, err := r.jobs.GetJobsSince(ctx, from)
		if err != nil {
			return nil, fmt.Errorf("failed to load job snapshot: %w", err)
		}
		sort.SliceStable(loaded, func(i, j int) bool {
			return loaded[i].UpdatedAt.After(loaded[j].UpdatedAt)
		})
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return pageOf(items, page, pageSize), nil
}

// PaginatedCompanies returns the page of company profiles updated at or
// after from, most recent first.
func (r *Repository) PaginatedCompanies(ctx context.Context, from time.Time, page, pageSize int) ([]types.CompanyProfile, error) {
	if err := checkPageArgs(page, pageSize); err != nil {
		return nil, err
	}

	items, err := buildOrReuse(ctx, r, r.compSnaps, "companies", from, func() ([]types.CompanyProfile, error) {
		loaded, err := r.companies.GetCompanyProfilesSince(ctx, from)
		if err != nil {
			return nil, fmt.Errorf("failed to load company snapshot: %w", err)
		}
		sort.SliceStable(loaded, func(i, j int) bool {
			return loaded[i].UpdatedAt.After(loaded[j].UpdatedAt)
		})
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return pageOf(items, page, pageSize), nil
}

// Invalidate drops all built snapshots so the next request rebuilds.
func (r *Repository) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.jobSnaps)
	clear(r.compSnaps)
}

func checkPageArgs(page, pageSize int) error {
	if pageSize <= 0 {
		return fmt.Errorf("page size must be positive, got %d", pageSize)
	}
	if page < 0 {
		return fmt.Errorf("page must be non-negative, got %d", page)
	}
	return nil
}

// buildOrReuse returns a fresh-enough snapshot for key, rebuilding it under
// singleflight when stale. The snapshot maps are keyed by the cutoff so
// different from dates do not share views.
func buildOrReuse[T any](ctx context.Context, r *Repository, snaps map[int64]*snapshot[T], kind string, from time.Time, build func() ([]T, error)) ([]T, error) {
	key := from.Unix()

	r.mu.Lock()
	if snap, ok := snaps[key]; ok && r.now().Sub(snap.builtAt) < r.ttl {
		items := snap.items
		r.mu.Unlock()
		return items, nil
	}
	r.mu.Unlock()

	v, err, _ := r.group.Do(fmt.Sprintf("%s:%d", kind, key), func() (any, error) {
		items, err := build()
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		snaps[key] = &snapshot[T]{items: items, builtAt: r.now()}
		r.mu.Unlock()
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]T), nil
}

// pageOf slices out the zero-based page. Out-of-range pages are empty, never
// an error.
func pageOf[T any](items []T, page, pageSize int) []T {
	start := page * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
