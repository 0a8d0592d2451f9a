package ingest

import (
	"fmt"
	"strings"

	"github.com/jonathan/job-radar/internal/types"
)

// Policy holds the validation rules applied to raw postings. Zero values get
// the built-in defaults from DefaultPolicy.
type Policy struct {
	// AgencyMarkers reject postings whose company name contains any marker
	// (recruiting and staffing agencies are not real hiring companies).
	AgencyMarkers []string
	// AllowedRegions are the served geographic regions; a posting whose
	// location resolves to none of them is dropped.
	AllowedRegions []string
}

// DefaultPolicy returns the standing business rules: the Carolinas, no
// agencies.
func DefaultPolicy() Policy {
	return Policy{
		AgencyMarkers: []string{
			"recruit",
			"staffing",
			"talent",
			"consulting group",
			"robert half",
			"insight global",
			"teksystems",
			"apex systems",
			"randstad",
			"aerotek",
			"kforce",
		},
		AllowedRegions: []string{
			"nc",
			"sc",
			"north carolina",
			"south carolina",
		},
	}
}

// Rejection describes why a posting was skipped. Rejections are expected
// filtering outcomes, not errors.
type Rejection struct {
	Rule   string
	Detail string
}

func (r *Rejection) String() string {
	return fmt.Sprintf("%s: %s", r.Rule, r.Detail)
}

// rejectionRules is the ordered rule table; the first matching rule wins.
type rejectionRule struct {
	name  string
	match func(p Policy, posting types.JobPosting, title string) (bool, string)
}

var rejectionRules = []rejectionRule{
	{
		name: "missing_provider_id",
		match: func(_ Policy, posting types.JobPosting, _ string) (bool, string) {
			return strings.TrimSpace(posting.JobID) == "", "posting has no provider job id"
		},
	},
	{
		name: "empty_company",
		match: func(_ Policy, posting types.JobPosting, _ string) (bool, string) {
			return strings.TrimSpace(posting.CompanyName) == "", "company name is empty"
		},
	},
	{
		name: "empty_description",
		match: func(_ Policy, posting types.JobPosting, _ string) (bool, string) {
			return strings.TrimSpace(posting.Description) == "", "description is empty"
		},
	},
	{
		name: "remote_location",
		match: func(_ Policy, posting types.JobPosting, _ string) (bool, string) {
			return strings.Contains(strings.ToLower(posting.Location), "remote"), "remote postings are out of scope"
		},
	},
	{
		name: "data_center_title",
		match: func(_ Policy, _ types.JobPosting, title string) (bool, string) {
			return strings.Contains(strings.ToLower(title), "center"), "data-center roles excluded"
		},
	},
	{
		name: "agency_company",
		match: func(p Policy, posting types.JobPosting, _ string) (bool, string) {
			company := strings.ToLower(posting.CompanyName)
			for _, marker := range p.AgencyMarkers {
				if strings.Contains(company, marker) {
					return true, fmt.Sprintf("company matches agency marker %q", marker)
				}
			}
			return false, ""
		},
	},
	{
		name: "out_of_region",
		match: func(p Policy, posting types.JobPosting, _ string) (bool, string) {
			return !p.inRegion(posting.Location), fmt.Sprintf("location %q outside served regions", posting.Location)
		},
	},
}

// Validate checks a posting against the rule table. It returns nil when the
// posting is accepted, otherwise the first rejection that applies. The title
// argument is the already-normalized job title.
func (p Policy) Validate(posting types.JobPosting, title string) *Rejection {
	pol := p.withDefaults()
	for _, rule := range rejectionRules {
		if hit, detail := rule.match(pol, posting, title); hit {
			return &Rejection{Rule: rule.name, Detail: detail}
		}
	}
	return nil
}

func (p Policy) withDefaults() Policy {
	def := DefaultPolicy()
	if len(p.AgencyMarkers) == 0 {
		p.AgencyMarkers = def.AgencyMarkers
	}
	if len(p.AllowedRegions) == 0 {
		p.AllowedRegions = def.AllowedRegions
	}
	return p
}

// inRegion resolves a location to a served region. "City, ST" forms compare
// the state token; free-form locations fall back to containment of a full
// region name.
func (p Policy) inRegion(location string) bool {
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" {
		return false
	}

	if i := strings.LastIndex(loc, ","); i >= 0 {
		state := strings.TrimSpace(loc[i+1:])
		// "nc (+2 others)" resolves to "nc"
		if j := strings.Index(state, "("); j >= 0 {
			state = strings.TrimSpace(state[:j])
		}
		// The segment may be an abbreviation ("nc") or a full state name
		// ("north carolina"), possibly with trailing noise; compare the
		// whole segment and its leading one- and two-word prefixes.
		fields := strings.Fields(state)
		candidates := []string{state}
		if len(fields) > 0 {
			candidates = append(candidates, fields[0])
		}
		if len(fields) > 1 {
			candidates = append(candidates, fields[0]+" "+fields[1])
		}
		for _, region := range p.AllowedRegions {
			for _, cand := range candidates {
				if cand == region {
					return true
				}
			}
		}
		return false
	}

	for _, region := range p.AllowedRegions {
		// Two-letter abbreviations are too ambiguous for containment.
		if len(region) > 2 && strings.Contains(loc, region) {
			return true
		}
	}
	return false
}
