package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/coogplanner/backend/internal/contracts"
	"github.com/coogplanner/backend/pkg/logger"
)

// CourseLoader is the loader surface the course endpoints need. Satisfied
// by *catalog.Loader; tests substitute a stub.
type CourseLoader interface {
	CourseByCode(ctx context.Context, code string) (*contracts.Course, error)
	CourseHeaderByCode(ctx context.Context, code string) (*contracts.CourseHeader, error)
}

// CourseHandler serves course lookups to the web client
type CourseHandler struct {
	loader CourseLoader
	logger *logger.Logger
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(loader CourseLoader, log *logger.Logger) *CourseHandler {
	return &CourseHandler{
		loader: loader,
		logger: log,
	}
}

// GetCourse returns the full course aggregate
// GET /api/courses/{code}
func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := mux.Vars(r)["code"]

	course, err := h.loader.CourseByCode(ctx, code)
	if err != nil {
		h.logger.WithError(err).WithField("code", code).Error("Failed to load course")
		respondError(w, http.StatusInternalServerError, "Failed to load course")
		return
	}

	if course == nil {
		respondError(w, http.StatusNotFound, "course not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    course,
	})
}

// GetCourseHeader returns the lightweight header projection
// GET /api/courses/{code}/header
func (h *CourseHandler) GetCourseHeader(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := mux.Vars(r)["code"]

	header, err := h.loader.CourseHeaderByCode(ctx, code)
	if err != nil {
		h.logger.WithError(err).WithField("code", code).Error("Failed to load course header")
		respondError(w, http.StatusInternalServerError, "Failed to load course header")
		return
	}

	if header == nil {
		respondError(w, http.StatusNotFound, "course not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    header,
	})
}
