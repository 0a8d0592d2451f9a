package server

import (
	"net/http"
	"strconv"
	"time"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	// defaultLookback bounds listings when the caller gives no cutoff.
	defaultLookback = 30 * 24 * time.Hour
	maxLookback     = 90 * 24 * time.Hour
)

// parseQueryInt parses an integer query parameter with default and max values
func parseQueryInt(r *http.Request, key string, defaultValue, maxValue int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		return defaultValue
	}
	if maxValue > 0 && val > maxValue {
		return maxValue
	}
	return val
}

// parseQueryFrom parses the "from" cutoff, accepting RFC 3339 timestamps or
// bare dates. Absent or unparseable values fall back to the default lookback;
// cutoffs older than the maximum lookback are clamped. Cutoffs are truncated
// to the hour so requests arriving close together share one display snapshot.
func parseQueryFrom(r *http.Request) time.Time {
	floor := time.Now().Add(-maxLookback)

	from := time.Now().Add(-defaultLookback)
	if valStr := r.URL.Query().Get("from"); valStr != "" {
		parsed, err := time.Parse(time.RFC3339, valStr)
		if err != nil {
			parsed, err = time.Parse("2006-01-02", valStr)
		}
		if err == nil {
			from = parsed
		}
	}

	if from.Before(floor) {
		from = floor
	}
	return from.Truncate(time.Hour)
}

// handleListJobs returns one page of recent job summaries, newest first.
// Each listing request also gives the scheduler a chance to start a cycle.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	s.trigger.MaybeRun()

	page := parseQueryInt(r, "page", 0, 0)
	pageSize := parseQueryInt(r, "page_size", defaultPageSize, maxPageSize)
	if pageSize == 0 {
		pageSize = defaultPageSize
	}
	from := parseQueryFrom(r)

	jobs, err := s.jobs.PaginatedJobs(r.Context(), from, page, pageSize)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to load jobs: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"jobs":      jobs,
		"count":     len(jobs),
		"page":      page,
		"page_size": pageSize,
		"from":      from.UTC().Format(time.RFC3339),
	})
}

// handleListCompanies returns one page of recent company profiles, newest first.
func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	s.trigger.MaybeRun()

	page := parseQueryInt(r, "page", 0, 0)
	pageSize := parseQueryInt(r, "page_size", defaultPageSize, maxPageSize)
	if pageSize == 0 {
		pageSize = defaultPageSize
	}
	from := parseQueryFrom(r)

	companies, err := s.companies.PaginatedCompanies(r.Context(), from, page, pageSize)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to load companies: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"companies": companies,
		"count":     len(companies),
		"page":      page,
		"page_size": pageSize,
		"from":      from.UTC().Format(time.RFC3339),
	})
}
