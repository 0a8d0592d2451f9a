// Package types defines the core data structures shared across the ingestion
// and reconciliation pipeline.
package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// companyNamespace is the fixed UUID namespace for deterministic company IDs.
// Changing it changes every company identifier, so it is frozen.
var companyNamespace = uuid.MustParse("7a3c91de-44f2-4b8a-9c55-1d2f6e8b0a17")

// JobPosting is a raw posting as returned by the search provider.
// It is never persisted directly; accepted postings become JobSummary records.
type JobPosting struct {
	JobID       string         `json:"job_id"`
	Title       string         `json:"title"`
	CompanyName string         `json:"company_name"`
	Location    string         `json:"location"`
	Description string         `json:"description"`
	Via         string         `json:"via,omitempty"`
	ShareLink   string         `json:"share_link,omitempty"`
	Highlights  []JobHighlight `json:"job_highlights,omitempty"`
	ApplyLinks  []ApplyOption  `json:"apply_options,omitempty"`
	PostedAt    *time.Time     `json:"posted_at,omitempty"`
}

// JobHighlight is one titled section of provider highlights
// (e.g. "Qualifications", "Benefits").
type JobHighlight struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

// ApplyOption is a single application link offered by the provider.
type ApplyOption struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// JobSummary is the canonical, persisted representation of an accepted posting.
type JobSummary struct {
	ID            uuid.UUID      `json:"id"`
	ProviderJobID string         `json:"provider_job_id"`
	CompanyID     uuid.UUID      `json:"company_id"`
	CompanyName   string         `json:"company_name"`
	JobTitle      string         `json:"job_title"`
	Location      string         `json:"location"`
	Description   string         `json:"description"`
	Division      string         `json:"division,omitempty"`
	Confidence    int            `json:"confidence"`
	Reasoning     string         `json:"reasoning,omitempty"`
	SourceName    string         `json:"source_name,omitempty"`
	SourceLink    string         `json:"source_link,omitempty"`
	Highlights    []JobHighlight `json:"highlights,omitempty"`
	PostedAt      *time.Time     `json:"posted_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// HierarchyItem is one person in an organizational hierarchy.
type HierarchyItem struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// CompanyProfile aggregates division and hierarchy information for one company.
// Exactly one profile exists per company ID.
type CompanyProfile struct {
	ID            uuid.UUID       `json:"id"`
	CompanyName   string          `json:"company_name"`
	Division      string          `json:"division,omitempty"`
	Hierarchy     []HierarchyItem `json:"hierarchy,omitempty"`
	AnalysisNotes string          `json:"analysis_notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// DivisionInference is the transient result of one AI inference call.
// It is folded into JobSummary and CompanyProfile, never persisted on its own.
type DivisionInference struct {
	Division   string `json:"division"`
	Reasoning  string `json:"reasoning"`
	Confidence int    `json:"confidence"`
}

// CompanyID derives the deterministic identifier for a company name.
// Names that differ only in case or whitespace map to the same ID.
func CompanyID(name string) uuid.UUID {
	return uuid.NewSHA1(companyNamespace, []byte(NormalizeCompanyName(name)))
}

// NormalizeCompanyName lowercases a company name and collapses internal
// whitespace so formatting variants hash identically.
func NormalizeCompanyName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
