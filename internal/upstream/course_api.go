package upstream

import (
	"context"

	"github.com/wencuts/masterclass/internal/models"
)

// CourseAPI exposes the course and lesson read endpoints
type CourseAPI struct {
	client *Client
}

// NewCourseAPI creates the course endpoint group
func NewCourseAPI(client *Client) *CourseAPI {
	return &CourseAPI{client: client}
}

// GetAllCourses fetches the full public course list
func (a *CourseAPI) GetAllCourses(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := a.client.get(ctx, "/api/course/all/", &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// GetCourseByID fetches a single course
func (a *CourseAPI) GetCourseByID(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	if err := a.client.get(ctx, "/api/course/"+id+"/", &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// GetEnrolledCourses fetches the courses a user is enrolled in
func (a *CourseAPI) GetEnrolledCourses(ctx context.Context, userID string) ([]models.Course, error) {
	var resp models.EnrolledCoursesResponse
	if err := a.client.get(ctx, "/enrolled_courses/"+userID+"/", &resp); err != nil {
		return nil, err
	}
	return resp.Courses, nil
}

// GetCourseLessons fetches the lesson list for a playlist identifier.
// Callers are responsible for the course-to-playlist identifier
// rewrite; the order of the returned lessons is not guaranteed.
func (a *CourseAPI) GetCourseLessons(ctx context.Context, playlistID string) ([]models.Lesson, error) {
	var resp models.LessonsResponse
	if err := a.client.get(ctx, "/playlist-lesson/"+playlistID+"/", &resp); err != nil {
		return nil, err
	}
	return resp.Lessons, nil
}
