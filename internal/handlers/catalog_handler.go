package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wencuts/masterclass/internal/catalog"
	"github.com/wencuts/masterclass/internal/models"
	"go.uber.org/zap"
)

// CatalogService is the interface that wraps the course catalog store.
type CatalogService interface {
	// Method FetchAllCourses refreshes the public course list.
	FetchAllCourses(ctx context.Context) error
	// Method FetchCourse refreshes a single course and makes it current.
	FetchCourse(ctx context.Context, id string) (*models.Course, error)
	// Method FetchEnrolledCourses refreshes the enrolled subset.
	FetchEnrolledCourses(ctx context.Context, userID string) error
	// Method FetchCourseLessons refreshes the ordered lesson list.
	FetchCourseLessons(ctx context.Context, courseID string) error
	// Method Snapshot returns the current catalog state.
	Snapshot() catalog.State
}

// CatalogHandler handles course and lesson HTTP requests
type CatalogHandler struct {
	BaseHandler
	courses  CatalogService
	sessions SessionService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(courses CatalogService, sessions SessionService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler: BaseHandler{Logger: logger},
		courses:     courses,
		sessions:    sessions,
	}
}

// RegisterRoutes registers all catalog handler routes
// Note: This assumes the router is already scoped to /api/v1
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/courses", h.ListCourses)
	r.Get("/courses/{id}", h.GetCourse)
	r.Get("/courses/{id}/lessons", h.ListLessons)
	r.Get("/my/courses", h.ListEnrolledCourses)
}

// ListCourses handles GET /courses
func (h *CatalogHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	if err := h.courses.FetchAllCourses(r.Context()); err != nil {
		h.RespondFailure(w, err, "Failed to fetch courses")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{
		"courses": h.courses.Snapshot().Courses,
	})
}

// GetCourse handles GET /courses/{id}
func (h *CatalogHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "id")

	course, err := h.courses.FetchCourse(r.Context(), courseID)
	if err != nil {
		h.RespondFailure(w, err, "Failed to fetch course")
		return
	}

	h.RespondJSON(w, http.StatusOK, course)
}

// ListLessons handles GET /courses/{id}/lessons. Lessons are returned
// in position order with a display duration attached.
func (h *CatalogHandler) ListLessons(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "id")

	if err := h.courses.FetchCourseLessons(r.Context(), courseID); err != nil {
		h.RespondFailure(w, err, "Failed to fetch course lessons")
		return
	}

	lessons := h.courses.Snapshot().CurrentLessons
	type lessonView struct {
		models.Lesson
		DisplayDuration string `json:"display_duration"`
	}
	views := make([]lessonView, 0, len(lessons))
	for _, l := range lessons {
		views = append(views, lessonView{Lesson: l, DisplayDuration: l.FormattedDuration()})
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{"lessons": views})
}

// ListEnrolledCourses handles GET /my/courses
func (h *CatalogHandler) ListEnrolledCourses(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Snapshot()
	if !sess.IsAuthenticated || sess.User == nil {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.courses.FetchEnrolledCourses(r.Context(), sess.User.ID); err != nil {
		h.RespondFailure(w, err, "Failed to fetch enrolled courses")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{
		"courses": h.courses.Snapshot().EnrolledCourses,
	})
}
