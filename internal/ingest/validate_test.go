package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-radar/internal/types"
)

func validPosting() types.JobPosting {
	return types.JobPosting{
		JobID:       "abc123",
		Title:       "Senior Data Engineer",
		CompanyName: "Acme Inc",
		Location:    "Charlotte, NC",
		Description: "build pipelines",
	}
}

func TestValidateAcceptsValidPosting(t *testing.T) {
	p := DefaultPolicy()
	assert.Nil(t, p.Validate(validPosting(), "Senior Data Engineer"))
}

func TestValidateAcceptsFullStateNameLocation(t *testing.T) {
	p := DefaultPolicy()

	for _, location := range []string{
		"Charlotte, North Carolina",
		"Fort Mill, South Carolina",
		"Raleigh, North Carolina (+3 others)",
	} {
		t.Run(location, func(t *testing.T) {
			posting := validPosting()
			posting.Location = location
			assert.Nil(t, p.Validate(posting, "Senior Data Engineer"))
		})
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*types.JobPosting)
		title    string
		wantRule string
	}{
		{
			name:     "Missing provider id",
			mutate:   func(p *types.JobPosting) { p.JobID = "" },
			title:    "Senior Data Engineer",
			wantRule: "missing_provider_id",
		},
		{
			name:     "Empty company",
			mutate:   func(p *types.JobPosting) { p.CompanyName = "  " },
			title:    "Senior Data Engineer",
			wantRule: "empty_company",
		},
		{
			name:     "Empty description",
			mutate:   func(p *types.JobPosting) { p.Description = "" },
			title:    "Senior Data Engineer",
			wantRule: "empty_description",
		},
		{
			name:     "Remote location",
			mutate:   func(p *types.JobPosting) { p.Location = "Remote" },
			title:    "Senior Data Engineer",
			wantRule: "remote_location",
		},
		{
			name:     "Remote anywhere in location",
			mutate:   func(p *types.JobPosting) { p.Location = "Charlotte, NC (Remote)" },
			title:    "Senior Data Engineer",
			wantRule: "remote_location",
		},
		{
			name:     "Data center title",
			mutate:   func(p *types.JobPosting) {},
			title:    "Data Center Technician",
			wantRule: "data_center_title",
		},
		{
			name:     "Staffing agency",
			mutate:   func(p *types.JobPosting) { p.CompanyName = "TalentBridge Staffing" },
			title:    "Senior Data Engineer",
			wantRule: "agency_company",
		},
		{
			name:     "Recruiter marker",
			mutate:   func(p *types.JobPosting) { p.CompanyName = "Apex Recruiting Partners" },
			title:    "Senior Data Engineer",
			wantRule: "agency_company",
		},
		{
			name:     "Out of region state",
			mutate:   func(p *types.JobPosting) { p.Location = "Austin, TX" },
			title:    "Senior Data Engineer",
			wantRule: "out_of_region",
		},
		{
			name:     "No resolvable region",
			mutate:   func(p *types.JobPosting) { p.Location = "Anywhere" },
			title:    "Senior Data Engineer",
			wantRule: "out_of_region",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posting := validPosting()
			tt.mutate(&posting)

			rej := DefaultPolicy().Validate(posting, tt.title)
			require.NotNil(t, rej)
			assert.Equal(t, tt.wantRule, rej.Rule)
		})
	}
}

func TestValidateRemoteWinsRegardlessOfOtherFields(t *testing.T) {
	posting := validPosting()
	posting.Location = "Remote"
	posting.CompanyName = "TalentBridge Staffing" // would also reject

	rej := DefaultPolicy().Validate(posting, "Senior Data Engineer")
	require.NotNil(t, rej)
	assert.Equal(t, "remote_location", rej.Rule)
}

func TestInRegion(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		location string
		want     bool
	}{
		{"Charlotte, NC", true},
		{"charlotte, nc", true},
		{"Fort Mill, SC", true},
		{"Charlotte, NC (+2 others)", true},
		{"Charlotte, North Carolina", true},
		{"Columbia, South Carolina", true},
		{"Durham, North Carolina (+2 others)", true},
		{"North Carolina", true},
		{"Austin, TX", false},
		{"New York, NY", false},
		{"Portland, North Dakota", false},
		{"", false},
		{"Somewhere", false},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			assert.Equal(t, tt.want, p.inRegion(tt.location))
		})
	}
}

func TestValidateZeroPolicyUsesDefaults(t *testing.T) {
	var p Policy

	posting := validPosting()
	posting.CompanyName = "Insight Global"
	rej := p.Validate(posting, "Senior Data Engineer")
	require.NotNil(t, rej)
	assert.Equal(t, "agency_company", rej.Rule)
}
