package handlers

import (
	"errors"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/wencuts/masterclass/internal/catalog"
	"github.com/wencuts/masterclass/internal/models"
	"github.com/wencuts/masterclass/internal/playback"
	"go.uber.org/zap"
)

// PlaybackService is the interface that wraps the playback bootstrap.
type PlaybackService interface {
	// Method Start resolves a manifest URL and hands it to a fresh
	// player instance.
	Start(language, lessonID string, downlinkMbps float64, haveEstimate bool) (string, playback.Tier, error)
	// Method Stop tears down the current player instance.
	Stop()
	// Method HandleEvent routes a reported player error through the
	// recovery policy.
	HandleEvent(ev playback.Event)
}

// EntitlementSource is the interface that answers course ownership
// questions from the catalog.
type EntitlementSource interface {
	// Method IsEnrolled reports enrolled-subset membership.
	IsEnrolled(courseID string) bool
	// Method CourseByID returns a cached course record.
	CourseByID(courseID string) (*models.Course, bool)
}

// PlaybackHandler handles lesson streaming HTTP requests. It is only
// reachable through routes that require an authenticated, entitled
// caller, and it re-checks both before resolving a manifest.
type PlaybackHandler struct {
	BaseHandler
	player   PlaybackService
	relay    *playback.ClientRelay
	courses  EntitlementSource
	sessions SessionService
}

// NewPlaybackHandler creates a new playback handler
func NewPlaybackHandler(player PlaybackService, relay *playback.ClientRelay, courses EntitlementSource, sessions SessionService, logger *zap.Logger) *PlaybackHandler {
	return &PlaybackHandler{
		BaseHandler: BaseHandler{Logger: logger},
		player:      player,
		relay:       relay,
		courses:     courses,
		sessions:    sessions,
	}
}

// RegisterRoutes registers all playback handler routes
// Note: This assumes the router is already scoped to /api/v1
func (h *PlaybackHandler) RegisterRoutes(r chi.Router) {
	r.Get("/courses/{courseID}/lessons/{lessonID}/manifest", h.ResolveManifest)
	r.Post("/playback/stop", h.StopPlayback)
	r.Get("/playback/directives", h.Directives)
	r.Post("/playback/events", h.ReportEvent)
}

// ResolveManifest handles GET /courses/{courseID}/lessons/{lessonID}/manifest.
// The optional downlink query parameter carries the caller's
// network-information reading in Mbps; when absent the lowest tier is
// selected.
func (h *PlaybackHandler) ResolveManifest(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")
	lessonID := chi.URLParam(r, "lessonID")

	sess := h.sessions.Snapshot()
	if !sess.IsAuthenticated || sess.User == nil {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if !h.entitled(sess.User, courseID) {
		h.RespondError(w, http.StatusForbidden, "please purchase this course to access the lessons")
		return
	}

	course, ok := h.courses.CourseByID(courseID)
	if !ok {
		h.RespondError(w, http.StatusNotFound, "course not found")
		return
	}

	downlink, haveEstimate := 0.0, false
	if raw := r.URL.Query().Get("downlink"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.RespondError(w, http.StatusBadRequest, "invalid downlink value")
			return
		}
		downlink, haveEstimate = parsed, true
	}

	src, tier, err := h.player.Start(course.Language, lessonID, downlink, haveEstimate)
	if err != nil {
		h.Logger.Error("playback bootstrap failed",
			zap.String("course_id", courseID),
			zap.String("lesson_id", lessonID),
			zap.Error(err),
		)
		h.RespondError(w, http.StatusInternalServerError, "failed to start playback")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{
		"manifest_url": src,
		"tier":         string(tier),
	})
}

// StopPlayback handles POST /playback/stop
func (h *PlaybackHandler) StopPlayback(w http.ResponseWriter, r *http.Request) {
	h.player.Stop()
	h.RespondNotice(w, "Playback stopped")
}

// Directives handles GET /playback/directives. The client runtime
// polls this to receive the player commands queued since its last
// poll.
func (h *PlaybackHandler) Directives(w http.ResponseWriter, r *http.Request) {
	directives := h.relay.Drain()
	if directives == nil {
		directives = []playback.Directive{}
	}
	h.RespondJSON(w, http.StatusOK, map[string]any{"directives": directives})
}

// ReportEvent handles POST /playback/events. The client runtime relays
// the streaming library's error events here so the recovery policy can
// run server-side.
func (h *PlaybackHandler) ReportEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Class   string `json:"class"`
		Fatal   bool   `json:"fatal"`
		Message string `json:"message"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.player.HandleEvent(playback.Event{
		Class: playback.ParseErrorClass(req.Class),
		Fatal: req.Fatal,
		Err:   errors.New(req.Message),
	})

	h.RespondNotice(w, "Event recorded")
}

// entitled reports course ownership: membership in the enrolled subset
// or in the session's purchased list, with identifiers compared in
// canonical form.
func (h *PlaybackHandler) entitled(user *models.User, courseID string) bool {
	if h.courses.IsEnrolled(courseID) {
		return true
	}
	canonical := catalog.CanonicalID(courseID)
	return slices.ContainsFunc(user.PurchasedCourses, func(id string) bool {
		return catalog.CanonicalID(id) == canonical
	})
}
