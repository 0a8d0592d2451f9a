package reconcile

import (
	"github.com/jonathan/job-radar/internal/types"
)

// mergeProfile folds the information carried by a job summary into an
// existing profile. It operates on copies and returns a new value; changed
// reports whether any field actually differed, so an unchanged merge causes
// no write. Fields the incoming source leaves empty never clobber existing
// data.
func mergeProfile(existing types.CompanyProfile, job types.JobSummary) (types.CompanyProfile, bool) {
	merged := existing
	changed := false

	if merged.CompanyName == "" && job.CompanyName != "" {
		merged.CompanyName = job.CompanyName
		changed = true
	}
	if merged.Division == "" && job.Division != "" {
		merged.Division = job.Division
		changed = true
	}

	return merged, changed
}

// mergeHierarchy fills an empty hierarchy from freshly extracted items.
// A profile that already has hierarchy data keeps it.
func mergeHierarchy(existing types.CompanyProfile, items []types.HierarchyItem) (types.CompanyProfile, bool) {
	if len(existing.Hierarchy) > 0 || len(items) == 0 {
		return existing, false
	}
	merged := existing
	merged.Hierarchy = items
	return merged, true
}
