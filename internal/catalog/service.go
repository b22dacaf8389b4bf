// Package catalog holds the course catalog state: the public course
// list, the session's enrolled subset and the lesson list of the
// course being viewed. Everything is fetched from the remote API on
// demand and cached with overwrite-on-fetch freshness only; when two
// fetches race, the last response to resolve wins.
package catalog

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/wencuts/masterclass/internal/errs"
	"github.com/wencuts/masterclass/internal/models"
	"github.com/wencuts/masterclass/internal/store"
	"go.uber.org/zap"
)

// CourseAPI is the interface that wraps the remote course endpoints
type CourseAPI interface {
	// Method GetAllCourses fetches the full public course list.
	GetAllCourses(ctx context.Context) ([]models.Course, error)
	// Method GetCourseByID fetches a single course.
	GetCourseByID(ctx context.Context, id string) (*models.Course, error)
	// Method GetEnrolledCourses fetches the courses a user is enrolled in.
	GetEnrolledCourses(ctx context.Context, userID string) ([]models.Course, error)
	// Method GetCourseLessons fetches the unordered lesson list for a
	// playlist identifier.
	GetCourseLessons(ctx context.Context, playlistID string) ([]models.Lesson, error)
}

// Persister is the interface that wraps durable catalog persistence
type Persister interface {
	SaveCatalog(st *store.CatalogState) error
	LoadCatalog() (*store.CatalogState, error)
}

// State is a read-only snapshot of the catalog for handlers
type State struct {
	Courses         []models.Course `json:"courses"`
	EnrolledCourses []models.Course `json:"enrolledCourses"`
	CurrentCourse   *models.Course  `json:"currentCourse"`
	CurrentLessons  []models.Lesson `json:"currentLessons"`
	Loading         bool            `json:"loading"`
	Error           string          `json:"error,omitempty"`
}

// Service is the catalog store
type Service struct {
	api       CourseAPI
	persister Persister
	logger    *zap.Logger

	mu              sync.Mutex
	courses         []models.Course
	enrolledCourses []models.Course
	currentCourse   *models.Course
	currentLessons  []models.Lesson
	loading         bool
	errMsg          string
}

// NewService creates the catalog store and restores persisted state
func NewService(api CourseAPI, persister Persister, logger *zap.Logger) *Service {
	s := &Service{
		api:       api,
		persister: persister,
		logger:    logger,
	}

	if persister != nil {
		st, err := persister.LoadCatalog()
		if err != nil {
			logger.Warn("failed to restore catalog state", zap.Error(err))
		} else if st != nil {
			s.courses = st.Courses
			s.enrolledCourses = st.EnrolledCourses
			s.currentCourse = st.CurrentCourse
			s.currentLessons = st.CurrentLessons
		}
	}

	return s
}

// FetchAllCourses refreshes the public course list
func (s *Service) FetchAllCourses(ctx context.Context) error {
	s.begin()

	courses, err := s.api.GetAllCourses(ctx)
	if err != nil {
		return s.fail(err, "Failed to fetch courses")
	}

	s.mu.Lock()
	s.courses = courses
	s.loading = false
	s.mu.Unlock()

	s.persist()
	return nil
}

// FetchCourse refreshes a single course and makes it current
func (s *Service) FetchCourse(ctx context.Context, id string) (*models.Course, error) {
	s.begin()

	course, err := s.api.GetCourseByID(ctx, id)
	if err != nil {
		return nil, s.fail(err, "Failed to fetch course")
	}

	s.mu.Lock()
	s.currentCourse = course
	s.loading = false
	s.mu.Unlock()

	s.persist()
	return course, nil
}

// FetchEnrolledCourses refreshes the enrolled subset for a user
func (s *Service) FetchEnrolledCourses(ctx context.Context, userID string) error {
	s.begin()

	courses, err := s.api.GetEnrolledCourses(ctx, userID)
	if err != nil {
		return s.fail(err, "Failed to fetch enrolled courses")
	}

	s.mu.Lock()
	s.enrolledCourses = courses
	s.loading = false
	s.mu.Unlock()

	s.persist()
	return nil
}

// FetchCourseLessons refreshes the lesson list for a course. The
// remote lesson endpoint is keyed by playlist identifier, so the
// course identifier's leading "course" token is rewritten to
// "playlist" before the call. Lessons are stored sorted ascending by
// their integer position.
func (s *Service) FetchCourseLessons(ctx context.Context, courseID string) error {
	s.begin()

	lessons, err := s.api.GetCourseLessons(ctx, playlistID(courseID))
	if err != nil {
		return s.fail(err, "Failed to fetch course lessons")
	}

	SortLessons(lessons)

	s.mu.Lock()
	s.currentLessons = lessons
	s.loading = false
	s.mu.Unlock()

	s.persist()
	return nil
}

// SetCurrentCourse sets the course being viewed
func (s *Service) SetCurrentCourse(course *models.Course) {
	s.mu.Lock()
	s.currentCourse = course
	s.mu.Unlock()

	s.persist()
}

// SetCurrentCourseByID selects the current course from the cached
// list, clearing it when the identifier is unknown.
func (s *Service) SetCurrentCourseByID(courseID string) {
	s.mu.Lock()
	s.currentCourse = nil
	for i := range s.courses {
		if s.courses[i].ID == courseID {
			c := s.courses[i]
			s.currentCourse = &c
			break
		}
	}
	s.mu.Unlock()

	s.persist()
}

// CourseByID returns a cached course from the public list or the
// enrolled subset.
func (s *Service) CourseByID(courseID string) (*models.Course, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	canonical := CanonicalID(courseID)
	for _, list := range [][]models.Course{s.courses, s.enrolledCourses} {
		for i := range list {
			if CanonicalID(list[i].ID) == canonical {
				c := list[i]
				return &c, true
			}
		}
	}
	return nil, false
}

// IsEnrolled reports whether the course appears in the enrolled
// subset. Identifiers are compared in canonical form.
func (s *Service) IsEnrolled(courseID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	canonical := CanonicalID(courseID)
	return slices.ContainsFunc(s.enrolledCourses, func(c models.Course) bool {
		return CanonicalID(c.ID) == canonical
	})
}

// ClearError discards the current error state
func (s *Service) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = ""
}

// Snapshot returns a copy of the current catalog state
func (s *Service) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current *models.Course
	if s.currentCourse != nil {
		c := *s.currentCourse
		current = &c
	}

	return State{
		Courses:         slices.Clone(s.courses),
		EnrolledCourses: slices.Clone(s.enrolledCourses),
		CurrentCourse:   current,
		CurrentLessons:  slices.Clone(s.currentLessons),
		Loading:         s.loading,
		Error:           s.errMsg,
	}
}

func (s *Service) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = true
	s.errMsg = ""
}

func (s *Service) fail(err error, fallback string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.errMsg = errs.Message(err, fallback)
	return err
}

func (s *Service) persist() {
	if s.persister == nil {
		return
	}

	s.mu.Lock()
	st := &store.CatalogState{
		Courses:         s.courses,
		EnrolledCourses: s.enrolledCourses,
		CurrentCourse:   s.currentCourse,
		CurrentLessons:  s.currentLessons,
	}
	s.mu.Unlock()

	if err := s.persister.SaveCatalog(st); err != nil {
		s.logger.Warn("failed to persist catalog state", zap.Error(err))
	}
}

// SortLessons orders lessons ascending by their integer position.
// Positions are numeric strings, so the comparison is numeric, not
// lexicographic.
func SortLessons(lessons []models.Lesson) {
	slices.SortStableFunc(lessons, func(a, b models.Lesson) int {
		return a.PositionValue() - b.PositionValue()
	})
}

// CanonicalID reduces the two identifier schemes the remote API uses
// (raw ids and "course_<tenant>"/"playlist_<tenant>" composites) to a
// single comparable form: the segment after the last underscore of a
// composite, or the raw id unchanged.
func CanonicalID(courseID string) string {
	if strings.HasPrefix(courseID, "course_") || strings.HasPrefix(courseID, "playlist_") {
		if i := strings.LastIndex(courseID, "_"); i >= 0 {
			return courseID[i+1:]
		}
	}
	return courseID
}

// playlistID rewrites a course identifier's leading "course" token to
// the "playlist" form the lesson endpoint expects.
func playlistID(courseID string) string {
	return strings.Replace(courseID, "course", "playlist", 1)
}
