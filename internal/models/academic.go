package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CourseType distinguishes how a course counts toward a program.
type CourseType string

const (
	CourseCore     CourseType = "core"
	CourseElective CourseType = "elective"
	CourseMajor    CourseType = "major"
	CourseMinor    CourseType = "minor"
)

// ResourceType classifies an uploaded academic file.
type ResourceType string

const (
	ResourcePYQ        ResourceType = "pyq"
	ResourceNotes      ResourceType = "notes"
	ResourceLecture    ResourceType = "lecture"
	ResourceAssignment ResourceType = "assignment"
)

// EventType classifies a calendar entry.
type EventType string

const (
	EventExam     EventType = "exam"
	EventDeadline EventType = "deadline"
	EventHoliday  EventType = "holiday"
	EventClass    EventType = "class"
)

// AttendanceStatus is the per-day marking for an enrollment.
type AttendanceStatus string

const (
	AttendancePresent   AttendanceStatus = "present"
	AttendanceAbsent    AttendanceStatus = "absent"
	AttendanceCancelled AttendanceStatus = "cancelled"
)

// Course is an offered class, optionally bound to an instructor.
type Course struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Code         string     `gorm:"size:32;uniqueIndex;not null" json:"code"`
	Title        string     `gorm:"size:255;not null" json:"title"`
	Description  *string    `gorm:"type:text" json:"description"`
	Credits      int        `gorm:"not null" json:"credits"`
	Department   string     `gorm:"size:128;not null;index" json:"department"`
	CourseType   CourseType `gorm:"size:16;not null" json:"course_type"`
	InstructorID *uuid.UUID `gorm:"type:uuid" json:"instructor_id"`
	Semester     string     `gorm:"size:32;not null;index" json:"semester"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (c *Course) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CourseEnrollment joins a student to a course. The unique index is the
// backstop for concurrent duplicate enrollment attempts.
type CourseEnrollment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_student_course" json:"student_id"`
	CourseID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_student_course" json:"course_id"`
	EnrolledAt time.Time `gorm:"autoCreateTime" json:"enrolled_at"`
}

func (e *CourseEnrollment) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// AttendanceLog holds at most one row per enrollment per calendar date.
// Date is stored as YYYY-MM-DD so the uniqueness key is day-granular.
type AttendanceLog struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	EnrollmentID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_enrollment_date" json:"enrollment_id"`
	Date         string           `gorm:"size:10;not null;uniqueIndex:idx_attendance_enrollment_date" json:"date"`
	Status       AttendanceStatus `gorm:"size:16;not null" json:"status"`
	Remarks      *string          `gorm:"size:255" json:"remarks"`
	CreatedAt    time.Time        `json:"created_at"`
}

func (a *AttendanceLog) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AcademicResource is file metadata attached to a course.
type AcademicResource struct {
	ID           uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID     uuid.UUID                   `gorm:"type:uuid;not null;index" json:"course_id"`
	UploadedBy   *uuid.UUID                  `gorm:"type:uuid" json:"uploaded_by"`
	Title        string                      `gorm:"size:255;not null" json:"title"`
	Description  *string                     `gorm:"type:text" json:"description"`
	ResourceType ResourceType                `gorm:"size:16;not null" json:"resource_type"`
	FileURL      string                      `gorm:"size:512;not null" json:"file_url"`
	Year         *int                        `json:"year"`
	Tags         datatypes.JSONSlice[string] `json:"tags"`
	IsVerified   bool                        `gorm:"not null;default:false" json:"is_verified"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

func (r *AcademicResource) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// AcademicEvent is a calendar entry; a nil CourseID means it is global.
type AcademicEvent struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID    *uuid.UUID `gorm:"type:uuid;index" json:"course_id"`
	CreatedBy   *uuid.UUID `gorm:"type:uuid" json:"created_by"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description *string    `gorm:"type:text" json:"description"`
	EventType   EventType  `gorm:"size:16;not null" json:"event_type"`
	StartTime   time.Time  `gorm:"not null" json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (e *AcademicEvent) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
