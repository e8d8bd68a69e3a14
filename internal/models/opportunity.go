package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OpportunityType classifies a faculty posting.
type OpportunityType string

const (
	OpportunityInternship OpportunityType = "internship"
	OpportunityResearch   OpportunityType = "research"
	OpportunityProject    OpportunityType = "project"
	OpportunityTeaching   OpportunityType = "teaching"
)

// ApplicationStatus is mutable only by the posting faculty or an admin.
type ApplicationStatus string

const (
	ApplicationPending     ApplicationStatus = "pending"
	ApplicationShortlisted ApplicationStatus = "shortlisted"
	ApplicationAccepted    ApplicationStatus = "accepted"
	ApplicationRejected    ApplicationStatus = "rejected"
)

// Opportunity is a faculty-authored posting students can apply to.
type Opportunity struct {
	ID                  uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	PostedBy            uuid.UUID                   `gorm:"type:uuid;not null;index" json:"posted_by"`
	Title               string                      `gorm:"size:255;not null" json:"title"`
	Description         string                      `gorm:"type:text;not null" json:"description"`
	OpportunityType     OpportunityType             `gorm:"size:32;not null;index" json:"opportunity_type"`
	Department          string                      `gorm:"size:128;not null;index" json:"department"`
	RequiredSkills      datatypes.JSONSlice[string] `json:"required_skills"`
	Duration            *string                     `gorm:"size:128" json:"duration"`
	Stipend             *string                     `gorm:"size:128" json:"stipend"`
	Location            *string                     `gorm:"size:255" json:"location"`
	ApplicationDeadline *time.Time                  `json:"application_deadline"`
	IsActive            bool                        `gorm:"not null;default:true" json:"is_active"`
	CreatedAt           time.Time                   `json:"created_at"`
	UpdatedAt           time.Time                   `json:"updated_at"`
}

func (o *Opportunity) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// Application is unique per (opportunity, student); the index backstops
// concurrent duplicate submissions.
type Application struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	OpportunityID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_application_opportunity_student" json:"opportunity_id"`
	StudentID     uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_application_opportunity_student" json:"student_id"`
	ResumeURL     *string           `gorm:"size:512" json:"resume_url"`
	CoverLetter   *string           `gorm:"type:text" json:"cover_letter"`
	PortfolioURL  *string           `gorm:"size:512" json:"portfolio_url"`
	Status        ApplicationStatus `gorm:"size:16;not null;default:'pending'" json:"status"`
	FacultyRemarks *string          `gorm:"type:text" json:"faculty_remarks"`
	AppliedAt     time.Time         `gorm:"autoCreateTime" json:"applied_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func (a *Application) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// TaskStatus is the lifecycle of a personal to-do item.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// PersonalTask is a private ledger entry, owned and mutated only by its
// creator.
type PersonalTask struct {
	ID                 uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID                   `gorm:"type:uuid;not null;index" json:"user_id"`
	Title              string                      `gorm:"size:255;not null" json:"title"`
	Description        *string                     `gorm:"type:text" json:"description"`
	Status             TaskStatus                  `gorm:"size:16;not null;default:'pending'" json:"status"`
	Priority           GrievancePriority           `gorm:"size:16;not null;default:'medium'" json:"priority"`
	ProgressPercentage int                         `gorm:"not null;default:0" json:"progress_percentage"`
	DueDate            *time.Time                  `json:"due_date"`
	Tags               datatypes.JSONSlice[string] `json:"tags"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
}

func (t *PersonalTask) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
