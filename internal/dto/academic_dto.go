package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/aegis-go-api/internal/models"
)

// CreateCourseRequest creates a course. Admins may bind an instructor by
// email; faculty become the instructor themselves.
type CreateCourseRequest struct {
	Code            string            `json:"code" validate:"required,min=2,max=32"`
	Title           string            `json:"title" validate:"required,min=3,max=255"`
	Description     *string           `json:"description"`
	Credits         int               `json:"credits" validate:"required,min=1,max=12"`
	Department      string            `json:"department" validate:"required"`
	CourseType      models.CourseType `json:"course_type" validate:"required,oneof=core elective major minor"`
	Semester        string            `json:"semester" validate:"required"`
	InstructorEmail *string           `json:"instructor_email" validate:"omitempty,email"`
}

// CourseFilter carries optional course list predicates.
type CourseFilter struct {
	Semester   string
	Department string
	CourseType string
	Search     string
	Page       int
	Limit      int
}

// CourseResponse is a serialized course with its instructor expanded.
type CourseResponse struct {
	ID          uuid.UUID         `json:"id"`
	Code        string            `json:"code"`
	Title       string            `json:"title"`
	Description *string           `json:"description"`
	Credits     int               `json:"credits"`
	Department  string            `json:"department"`
	CourseType  models.CourseType `json:"course_type"`
	Instructor  *UserResponse     `json:"instructor"`
	Semester    string            `json:"semester"`
}

// NewCourseResponse converts a course row plus its optional instructor.
func NewCourseResponse(course models.Course, instructor *models.User) CourseResponse {
	resp := CourseResponse{
		ID:          course.ID,
		Code:        course.Code,
		Title:       course.Title,
		Description: course.Description,
		Credits:     course.Credits,
		Department:  course.Department,
		CourseType:  course.CourseType,
		Semester:    course.Semester,
	}
	if instructor != nil {
		i := NewUserResponse(*instructor)
		resp.Instructor = &i
	}
	return resp
}

// CourseDetailResponse adds aggregate stats for the detail fetch.
type CourseDetailResponse struct {
	Course        CourseResponse `json:"course"`
	EnrolledCount int64          `json:"enrolled_count"`
}

// EnrollRequest enrolls the current student in a course.
type EnrollRequest struct {
	CourseID uuid.UUID `json:"course_id" validate:"required"`
}

// MarkAttendanceRequest upserts the day's log for a student in a course.
type MarkAttendanceRequest struct {
	StudentID uuid.UUID               `json:"student_id" validate:"required"`
	CourseID  uuid.UUID               `json:"course_id" validate:"required"`
	Date      string                  `json:"date" validate:"required,datetime=2006-01-02"`
	Status    models.AttendanceStatus `json:"status" validate:"required,oneof=present absent cancelled"`
	Remarks   *string                 `json:"remarks"`
}

// AttendanceResponse is one day's log.
type AttendanceResponse struct {
	ID      uuid.UUID               `json:"id"`
	Date    string                  `json:"date"`
	Status  models.AttendanceStatus `json:"status"`
	Remarks *string                 `json:"remarks"`
}

// NewAttendanceResponse converts a log row.
func NewAttendanceResponse(log models.AttendanceLog) AttendanceResponse {
	return AttendanceResponse{
		ID:      log.ID,
		Date:    log.Date,
		Status:  log.Status,
		Remarks: log.Remarks,
	}
}

// CreateResourceRequest attaches file metadata to a course. The file
// itself is uploaded first; only the resulting URL is stored here.
type CreateResourceRequest struct {
	Title        string              `json:"title" validate:"required,min=3,max=255"`
	Description  *string             `json:"description"`
	ResourceType models.ResourceType `json:"resource_type" validate:"required,oneof=pyq notes lecture assignment"`
	FileURL      string              `json:"file_url" validate:"required,url"`
	Year         *int                `json:"year"`
	Tags         []string            `json:"tags"`
}

// ResourceResponse is a serialized academic resource.
type ResourceResponse struct {
	ID           uuid.UUID           `json:"id"`
	Title        string              `json:"title"`
	Description  *string             `json:"description"`
	ResourceType models.ResourceType `json:"resource_type"`
	FileURL      string              `json:"file_url"`
	UploadedBy   *UserResponse       `json:"uploaded_by"`
	Year         *int                `json:"year"`
	Tags         []string            `json:"tags"`
	IsVerified   bool                `json:"is_verified"`
	CreatedAt    time.Time           `json:"created_at"`
}

// NewResourceResponse converts a resource row plus its uploader.
func NewResourceResponse(resource models.AcademicResource, uploader *models.User) ResourceResponse {
	tags := []string(resource.Tags)
	if tags == nil {
		tags = []string{}
	}

	resp := ResourceResponse{
		ID:           resource.ID,
		Title:        resource.Title,
		Description:  resource.Description,
		ResourceType: resource.ResourceType,
		FileURL:      resource.FileURL,
		Year:         resource.Year,
		Tags:         tags,
		IsVerified:   resource.IsVerified,
		CreatedAt:    resource.CreatedAt,
	}
	if uploader != nil {
		u := NewUserResponse(*uploader)
		resp.UploadedBy = &u
	}
	return resp
}

// CreateEventRequest adds a calendar entry; a nil course id makes it global.
type CreateEventRequest struct {
	Title       string           `json:"title" validate:"required,min=3,max=255"`
	Description *string          `json:"description"`
	EventType   models.EventType `json:"event_type" validate:"required,oneof=exam deadline holiday class"`
	StartTime   time.Time        `json:"start_time" validate:"required"`
	EndTime     *time.Time       `json:"end_time"`
	CourseID    *uuid.UUID       `json:"course_id"`
}

// EventResponse is a calendar entry with optional course context.
type EventResponse struct {
	ID          uuid.UUID        `json:"id"`
	Title       string           `json:"title"`
	Description *string          `json:"description"`
	EventType   models.EventType `json:"event_type"`
	StartTime   time.Time        `json:"start_time"`
	EndTime     *time.Time       `json:"end_time"`
	CourseCode  *string          `json:"course_code"`
	CourseTitle *string          `json:"course_title"`
}

// NewEventResponse converts an event row plus its optional course.
func NewEventResponse(event models.AcademicEvent, course *models.Course) EventResponse {
	resp := EventResponse{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		EventType:   event.EventType,
		StartTime:   event.StartTime,
		EndTime:     event.EndTime,
	}
	if course != nil {
		resp.CourseCode = &course.Code
		resp.CourseTitle = &course.Title
	}
	return resp
}
