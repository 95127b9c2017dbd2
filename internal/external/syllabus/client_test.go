package syllabus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coogplanner/backend/internal/contracts"
	"github.com/coogplanner/backend/pkg/config"
	"github.com/coogplanner/backend/pkg/httputil"
	"github.com/coogplanner/backend/pkg/logger"
)

const resultsFixture = `
<html><body>
<table class="syllabus-results">
  <thead><tr><th>Course</th><th>Title</th><th>Instructor</th><th>Term</th><th></th></tr></thead>
  <tbody>
    <tr>
      <td class="course">COSC 3320</td>
      <td class="title">Algorithms and Data Structures</td>
      <td class="instructor">A. Lovelace</td>
      <td class="term">Fall 2024</td>
      <td class="file"><a href="/files/cosc3320-f24.pdf">View</a></td>
    </tr>
    <tr>
      <td class="course">COSC 3320</td>
      <td class="title">Algorithms and Data Structures</td>
      <td class="instructor">C. Babbage</td>
      <td class="term">Spring 2024</td>
      <td class="file"><a href="https://cdn.example.edu/cosc3320-s24.pdf">View</a></td>
    </tr>
    <tr>
      <td class="course">COSC 3320</td>
      <td class="title">Pending upload</td>
      <td class="instructor"></td>
      <td class="term">Fall 2025</td>
      <td class="file"></td>
    </tr>
  </tbody>
</table>
</body></html>`

func TestParseSearchResults(t *testing.T) {
	entries, err := parseSearchResults(strings.NewReader(resultsFixture), "https://syllabi.example.edu")
	require.NoError(t, err)
	require.Len(t, entries, 2, "rows without a document link are skipped")

	assert.Equal(t, Syllabus{
		CourseCode: "COSC 3320",
		Title:      "Algorithms and Data Structures",
		Instructor: "A. Lovelace",
		Term:       "Fall 2024",
		URL:        "https://syllabi.example.edu/files/cosc3320-f24.pdf",
	}, entries[0])

	// Absolute links pass through untouched.
	assert.Equal(t, "https://cdn.example.edu/cosc3320-s24.pdf", entries[1].URL)
}

func TestParseSearchResultsEmptyPage(t *testing.T) {
	entries, err := parseSearchResults(strings.NewReader("<html><body><p>No results</p></body></html>"), "https://x")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "COSC 3320", r.URL.Query().Get("course"))
		w.Write([]byte(resultsFixture))
	}))
	defer server.Close()

	client := NewClient(httputil.New(logger.NewNop()), logger.NewNop(), config.SyllabusConfig{
		BaseURL:    server.URL,
		RatePerSec: 100,
	})

	entries, err := client.Search(context.Background(), contracts.CourseCode{Subject: "COSC", Number: "3320"})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSearchUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(httputil.New(logger.NewNop()).DisableRetry(), logger.NewNop(), config.SyllabusConfig{
		BaseURL:    server.URL,
		RatePerSec: 100,
	})

	_, err := client.Search(context.Background(), contracts.CourseCode{Subject: "COSC", Number: "3320"})
	assert.Error(t, err)
}
