package models

// Course represents a course record. Courses are created and updated
// only by the remote API; this system treats them as read-only cached
// state. Rating and TotalStudents are display-only, not authoritative.
type Course struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	Category          string `json:"category"`
	InstructorID      string `json:"instructor_id"`
	ThumbnailURL      string `json:"thumbnail_url"`
	Price             string `json:"price"`
	Rating            string `json:"rating"`
	TotalStudents     string `json:"total_students"`
	IsPublic          bool   `json:"is_public"`
	Language          string `json:"language"`
	OffersCertificate bool   `json:"offers_certificate"`
	CreatedAt         string `json:"created_at"`
	CreatedBy         string `json:"created_by"`
	UpdatedAt         string `json:"updated_at"`
	UpdatedBy         string `json:"updated_by"`
}

// EnrolledCoursesResponse wraps the enrolled-courses endpoint payload
type EnrolledCoursesResponse struct {
	Courses []Course `json:"courses"`
}
