package models

import (
	"fmt"
	"strconv"
)

// Lesson represents a single lesson within a course. Position is an
// integer carried as a string by the remote API and orders lessons
// within their course. PrerequisiteLessonID is advisory only and is
// never enforced as a lock.
type Lesson struct {
	ID                   string  `json:"id"`
	Title                string  `json:"title"`
	Description          string  `json:"description"`
	ContentType          string  `json:"content_type"`
	Duration             string  `json:"duration"`
	Position             string  `json:"position"`
	PrerequisiteLessonID *string `json:"prerequisite_lesson_id"`
	CreatedAt            string  `json:"created_at"`
	CreatedBy            string  `json:"created_by"`
	UpdatedAt            string  `json:"updated_at"`
	UpdatedBy            string  `json:"updated_by"`
}

// PositionValue returns the numeric lesson position. Unparseable
// positions sort first.
func (l *Lesson) PositionValue() int {
	n, err := strconv.Atoi(l.Position)
	if err != nil {
		return 0
	}
	return n
}

// FormattedDuration renders the duration (seconds carried as a string)
// as mm:ss for display.
func (l *Lesson) FormattedDuration() string {
	total, err := strconv.Atoi(l.Duration)
	if err != nil || total < 0 {
		return "0:00"
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// LessonsResponse wraps the playlist-lesson endpoint payload
type LessonsResponse struct {
	Lessons []Lesson `json:"lessons"`
}
