package handlers

import (
	"context"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/coogplanner/backend/internal/catalog"
	"github.com/coogplanner/backend/internal/contracts"
	"github.com/coogplanner/backend/internal/external/syllabus"
	"github.com/coogplanner/backend/pkg/logger"
)

// SyllabusSearcher is the portal-client surface the proxy needs.
type SyllabusSearcher interface {
	Search(ctx context.Context, code contracts.CourseCode) ([]syllabus.Syllabus, error)
}

// SyllabusResponse is the proxy's wire contract. Upstream failures are
// swallowed into an empty list plus an error message; the endpoint answers
// 200 for everything except a missing courseCode parameter.
type SyllabusResponse struct {
	CourseCode string              `json:"courseCode"`
	Syllabi    []syllabus.Syllabus `json:"syllabi"`
	Error      string              `json:"error,omitempty"`
}

// SyllabusHandler proxies the third-party syllabus portal
type SyllabusHandler struct {
	searcher SyllabusSearcher
	logger   *logger.Logger

	// Short in-process cache so repeated views of one course page don't
	// hammer the portal.
	responses *gocache.Cache
}

// NewSyllabusHandler creates a new syllabus proxy handler
func NewSyllabusHandler(searcher SyllabusSearcher, log *logger.Logger, responseTTL time.Duration) *SyllabusHandler {
	if responseTTL <= 0 {
		responseTTL = 10 * time.Minute
	}
	return &SyllabusHandler{
		searcher:  searcher,
		logger:    log,
		responses: gocache.New(responseTTL, 2*responseTTL),
	}
}

// GetSyllabi proxies a syllabus search for one course
// GET /api/syllabi?courseCode=COSC%203320
func (h *SyllabusHandler) GetSyllabi(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("courseCode")
	if raw == "" {
		respondError(w, http.StatusBadRequest, "courseCode query parameter is required")
		return
	}

	code := catalog.ParseCourseCode(raw)
	if !code.Valid() {
		respondJSON(w, http.StatusOK, SyllabusResponse{
			CourseCode: raw,
			Syllabi:    []syllabus.Syllabus{},
			Error:      "unrecognized course code",
		})
		return
	}

	cacheKey := code.Display()
	if cached, ok := h.responses.Get(cacheKey); ok {
		respondJSON(w, http.StatusOK, cached.(SyllabusResponse))
		return
	}

	entries, err := h.searcher.Search(r.Context(), code)
	if err != nil {
		h.logger.WithError(err).WithField("course", code.Display()).Warn("syllabus portal lookup failed")
		respondJSON(w, http.StatusOK, SyllabusResponse{
			CourseCode: raw,
			Syllabi:    []syllabus.Syllabus{},
			Error:      "syllabus service unavailable",
		})
		return
	}

	if entries == nil {
		entries = []syllabus.Syllabus{}
	}
	resp := SyllabusResponse{CourseCode: raw, Syllabi: entries}
	h.responses.SetDefault(cacheKey, resp)

	respondJSON(w, http.StatusOK, resp)
}
