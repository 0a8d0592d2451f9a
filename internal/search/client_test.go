package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-radar/internal/cache"
)

const sampleBody = `{
	"jobs_results": [
		{
			"job_id": "abc123",
			"title": "Senior Data Engineer",
			"company_name": "Acme Inc",
			"location": "Charlotte, NC",
			"description": "build pipelines",
			"via": "via LinkedIn",
			"share_link": "https://example.com/job/abc123",
			"detected_extensions": {"posted_at": "2 days ago"},
			"job_highlights": [{"title": "Qualifications", "items": ["SQL", "Python"]}],
			"apply_options": [{"title": "LinkedIn", "link": "https://example.com/apply"}]
		}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, store *cache.Cache) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient("test-key", store, &Options{
		BaseURL:        srv.URL,
		Timeout:        time.Second,
		CacheTTL:       time.Minute,
		RequestsPerMin: 600,
	})
	require.NoError(t, err)
	return c, srv
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient("", nil, nil)
	assert.Error(t, err)
}

func TestFetchJobsSuccess(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "google_jobs", r.URL.Query().Get("engine"))
		assert.Equal(t, "data engineer", r.URL.Query().Get("q"))
		w.Write([]byte(sampleBody))
	}, nil)

	postings := c.FetchJobs(context.Background(), "data engineer", "Charlotte, NC")
	require.Len(t, postings, 1)

	p := postings[0]
	assert.Equal(t, "abc123", p.JobID)
	assert.Equal(t, "Acme Inc", p.CompanyName)
	assert.Equal(t, "LinkedIn", p.Via, "via prefix stripped")
	require.Len(t, p.Highlights, 1)
	assert.Equal(t, []string{"SQL", "Python"}, p.Highlights[0].Items)
	require.NotNil(t, p.PostedAt)
}

func TestFetchJobsEmptyOnTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c, err := NewClient("test-key", nil, &Options{BaseURL: srv.URL, Timeout: time.Second, RequestsPerMin: 600})
	require.NoError(t, err)

	assert.Empty(t, c.FetchJobs(context.Background(), "q", "loc"))
}

func TestFetchJobsEmptyOnErrorStatus(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}, nil)

	assert.Empty(t, c.FetchJobs(context.Background(), "q", "loc"))
}

func TestFetchJobsEmptyOnMalformedBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}, nil)

	assert.Empty(t, c.FetchJobs(context.Background(), "q", "loc"))
}

func TestFetchJobsEmptyOnProviderError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "Your searches have run out"}`))
	}, nil)

	assert.Empty(t, c.FetchJobs(context.Background(), "q", "loc"))
}

func TestFetchJobsServedFromCacheOnSecondCall(t *testing.T) {
	var calls atomic.Int32
	store := cache.New("")
	defer store.Close()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(sampleBody))
	}, store)

	ctx := context.Background()
	first := c.FetchJobs(ctx, "data engineer", "Charlotte, NC")
	second := c.FetchJobs(ctx, "data engineer", "Charlotte, NC")

	assert.Len(t, first, 1)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load(), "second call should hit the cache")
}

func TestFetchJobsFailedCallNotCached(t *testing.T) {
	var calls atomic.Int32
	store := cache.New("")
	defer store.Close()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(sampleBody))
	}, store)

	ctx := context.Background()
	assert.Empty(t, c.FetchJobs(ctx, "q", "loc"))
	assert.Len(t, c.FetchJobs(ctx, "q", "loc"), 1, "retry after failure should reach the provider")
	assert.Equal(t, int32(2), calls.Load())
}
