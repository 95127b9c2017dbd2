package syllabus

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/coogplanner/backend/internal/contracts"
	"github.com/coogplanner/backend/pkg/config"
	"github.com/coogplanner/backend/pkg/httputil"
	"github.com/coogplanner/backend/pkg/logger"
)

// Syllabus is one published syllabus entry for a course section.
type Syllabus struct {
	CourseCode string `json:"courseCode"`
	Title      string `json:"title"`
	Instructor string `json:"instructor"`
	Term       string `json:"term"`
	URL        string `json:"url"`
}

// Client handles communication with the university syllabus portal. The
// portal serves HTML search results; this client turns them into structured
// entries for the JSON proxy endpoint.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	limiter    *rate.Limiter
}

// NewClient creates a new syllabus portal client
func NewClient(httpClient *httputil.Client, log *logger.Logger, cfg config.SyllabusConfig) *Client {
	perSec := cfg.RatePerSec
	if perSec <= 0 {
		perSec = 1
	}
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		limiter:    rate.NewLimiter(rate.Limit(perSec), 1),
	}
}

// Search fetches the syllabi published for a course.
func (c *Client) Search(ctx context.Context, code contracts.CourseCode) ([]Syllabus, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("course", code.Subject+" "+code.Number)
	searchURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	resp, err := c.httpClient.Get(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("syllabus search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("syllabus portal returned status %d", resp.StatusCode)
	}

	entries, err := parseSearchResults(resp.Body, c.baseURL)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"course":  code.Display(),
		"results": len(entries),
	}).Debug("syllabus search completed")

	return entries, nil
}

// parseSearchResults extracts syllabus rows from the portal's results table.
func parseSearchResults(body io.Reader, baseURL string) ([]Syllabus, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse syllabus results: %w", err)
	}

	entries := make([]Syllabus, 0)
	doc.Find("table.syllabus-results tbody tr").Each(func(_ int, row *goquery.Selection) {
		entry := Syllabus{
			CourseCode: strings.TrimSpace(row.Find("td.course").Text()),
			Title:      strings.TrimSpace(row.Find("td.title").Text()),
			Instructor: strings.TrimSpace(row.Find("td.instructor").Text()),
			Term:       strings.TrimSpace(row.Find("td.term").Text()),
		}

		if href, ok := row.Find("td.file a").Attr("href"); ok {
			entry.URL = resolveURL(baseURL, strings.TrimSpace(href))
		}

		// Rows without a document link are placeholders on the portal.
		if entry.URL != "" {
			entries = append(entries, entry)
		}
	})

	return entries, nil
}

func resolveURL(baseURL, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return baseURL + href
}
