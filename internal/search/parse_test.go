package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponseEmptyResults(t *testing.T) {
	postings, err := parseResponse([]byte(`{"jobs_results": []}`))
	require.NoError(t, err)
	assert.Empty(t, postings)
}

func TestParseResponseMissingResultsKey(t *testing.T) {
	postings, err := parseResponse([]byte(`{"search_metadata": {}}`))
	require.NoError(t, err)
	assert.Empty(t, postings)
}

func TestFlattenHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Plain text untouched", "build pipelines", "build pipelines"},
		{"Tags stripped", "<p>build <b>pipelines</b></p>", "build pipelines"},
		{"Block elements collapse", "<div>build</div>\n<div>pipelines</div>", "build pipelines"},
		{"Empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, flattenHTML(tt.input))
		})
	}
}

func TestParsePostedAt(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
		want  *time.Time
	}{
		{"Days", "2 days ago", timePtr(now.Add(-48 * time.Hour))},
		{"Single day", "1 day ago", timePtr(now.Add(-24 * time.Hour))},
		{"Hours", "3 hours ago", timePtr(now.Add(-3 * time.Hour))},
		{"Weeks", "1 week ago", timePtr(now.Add(-7 * 24 * time.Hour))},
		{"Unrecognized", "yesterday", nil},
		{"Garbage number", "x days ago", nil},
		{"Empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parsePostedAt(tt.input, now)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }
