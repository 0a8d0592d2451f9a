package search

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/job-radar/internal/types"
)

// response mirrors the provider's google_jobs payload.
type response struct {
	JobsResults []jobResult `json:"jobs_results"`
	Error       string      `json:"error"`
}

type jobResult struct {
	JobID              string               `json:"job_id"`
	Title              string               `json:"title"`
	CompanyName        string               `json:"company_name"`
	Location           string               `json:"location"`
	Description        string               `json:"description"`
	Via                string               `json:"via"`
	ShareLink          string               `json:"share_link"`
	JobHighlights      []types.JobHighlight `json:"job_highlights"`
	ApplyOptions       []types.ApplyOption  `json:"apply_options"`
	DetectedExtensions struct {
		PostedAt string `json:"posted_at"`
	} `json:"detected_extensions"`
}

// parseResponse extracts postings from a raw provider body.
func parseResponse(body []byte) ([]types.JobPosting, error) {
	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("failed to parse provider response: %w", err)
	}
	if r.Error != "" {
		return nil, fmt.Errorf("provider error: %s", r.Error)
	}

	postings := make([]types.JobPosting, 0, len(r.JobsResults))
	for _, jr := range r.JobsResults {
		p := types.JobPosting{
			JobID:       jr.JobID,
			Title:       jr.Title,
			CompanyName: jr.CompanyName,
			Location:    jr.Location,
			Description: flattenHTML(jr.Description),
			Via:         strings.TrimPrefix(jr.Via, "via "),
			ShareLink:   jr.ShareLink,
			Highlights:  jr.JobHighlights,
			ApplyLinks:  jr.ApplyOptions,
			PostedAt:    parsePostedAt(jr.DetectedExtensions.PostedAt, time.Now()),
		}
		postings = append(postings, p)
	}
	return postings, nil
}

// flattenHTML reduces a description that carries markup to plain text.
// Plain-text descriptions pass through untouched.
func flattenHTML(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	text := doc.Text()
	// Collapse runs of blank space left behind by block elements.
	lines := strings.Fields(text)
	return strings.Join(lines, " ")
}

// parsePostedAt converts the provider's relative "N units ago" stamp to an
// absolute time. Unrecognized forms yield nil.
func parsePostedAt(s string, now time.Time) *time.Time {
	s = strings.TrimSpace(strings.ToLower(s))
	fields := strings.Fields(s)
	if len(fields) != 3 || fields[2] != "ago" {
		return nil
	}

	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return nil
	}

	var unit time.Duration
	switch strings.TrimSuffix(fields[1], "s") {
	case "minute":
		unit = time.Minute
	case "hour":
		unit = time.Hour
	case "day":
		unit = 24 * time.Hour
	case "week":
		unit = 7 * 24 * time.Hour
	case "month":
		unit = 30 * 24 * time.Hour
	default:
		return nil
	}

	t := now.Add(-time.Duration(n) * unit)
	return &t
}
