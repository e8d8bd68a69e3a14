package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GrievanceCategory classifies the complaint subject.
type GrievanceCategory string

const (
	CategoryInfrastructure GrievanceCategory = "infrastructure"
	CategoryAcademics      GrievanceCategory = "academics"
	CategoryHostel         GrievanceCategory = "hostel"
	CategoryFood           GrievanceCategory = "food"
	CategoryOther          GrievanceCategory = "other"
)

// GrievancePriority is caller-declared urgency.
type GrievancePriority string

const (
	PriorityLow    GrievancePriority = "low"
	PriorityMedium GrievancePriority = "medium"
	PriorityHigh   GrievancePriority = "high"
	PriorityUrgent GrievancePriority = "urgent"
)

// GrievanceStatus is the lifecycle state. Handlers do not enforce a
// transition graph; any authorized actor may set any status.
type GrievanceStatus string

const (
	StatusSubmitted   GrievanceStatus = "submitted"
	StatusUnderReview GrievanceStatus = "under_review"
	StatusInProgress  GrievanceStatus = "in_progress"
	StatusResolved    GrievanceStatus = "resolved"
	StatusClosed      GrievanceStatus = "closed"
)

// Grievance is a tracked complaint. SubmittedBy and IsAnonymous are fixed
// at creation; an anonymous grievance stores a generated identifier in
// place of the submitter.
type Grievance struct {
	ID                  uuid.UUID                    `gorm:"type:uuid;primaryKey" json:"id"`
	SubmittedBy         *uuid.UUID                   `gorm:"type:uuid;index" json:"submitted_by"`
	IsAnonymous         bool                         `gorm:"not null;default:false" json:"is_anonymous"`
	AnonymousIdentifier *string                      `gorm:"size:32" json:"anonymous_identifier"`
	Title               string                       `gorm:"size:255;not null" json:"title"`
	Description         string                       `gorm:"type:text;not null" json:"description"`
	Category            GrievanceCategory            `gorm:"size:32;not null;index" json:"category"`
	Priority            GrievancePriority            `gorm:"size:16;not null;index" json:"priority"`
	Status              GrievanceStatus              `gorm:"size:16;not null;default:'submitted';index" json:"status"`
	LocationType        *string                      `gorm:"size:64" json:"location_type"`
	LocationDetails     *string                      `gorm:"size:255" json:"location_details"`
	PhotoURLs           datatypes.JSONSlice[string]  `json:"photo_urls"`
	AssignedTo          *uuid.UUID                   `gorm:"type:uuid;index" json:"assigned_to"`
	AssignedDepartment  *string                      `gorm:"size:128" json:"assigned_department"`
	ResolutionNotes     *string                      `gorm:"type:text" json:"resolution_notes"`
	ResolvedAt          *time.Time                   `json:"resolved_at"`
	ResolvedBy          *uuid.UUID                   `gorm:"type:uuid" json:"resolved_by"`
	ViewCount           int                          `gorm:"not null;default:0" json:"view_count"`
	UpvoteCount         int                          `gorm:"not null;default:0" json:"upvote_count"`
	CreatedAt           time.Time                    `json:"created_at"`
	UpdatedAt           time.Time                    `json:"updated_at"`
}

func (g *Grievance) BeforeCreate(_ *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// GrievanceStatusHistory is the append-only transition log and the sole
// source of historical truth; the grievance row only holds current status.
type GrievanceStatusHistory struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	GrievanceID   uuid.UUID        `gorm:"type:uuid;not null;index" json:"grievance_id"`
	OldStatus     *GrievanceStatus `gorm:"size:16" json:"old_status"`
	NewStatus     GrievanceStatus  `gorm:"size:16;not null" json:"new_status"`
	Remarks       *string          `gorm:"type:text" json:"remarks"`
	UpdatedBy     *uuid.UUID       `gorm:"type:uuid" json:"updated_by"`
	UpdatedByRole *UserRole        `gorm:"size:16" json:"updated_by_role"`
	CreatedAt     time.Time        `json:"created_at"`
}

func (h *GrievanceStatusHistory) BeforeCreate(_ *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// GrievanceComment is a remark on a grievance. Internal comments are
// visible to authority and admin roles only.
type GrievanceComment struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GrievanceID uuid.UUID `gorm:"type:uuid;not null;index" json:"grievance_id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	Comment     string    `gorm:"type:text;not null" json:"comment"`
	IsInternal  bool      `gorm:"not null;default:false" json:"is_internal"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *GrievanceComment) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// GrievanceUpvote joins users to grievances they upvoted. The unique index
// is the backstop for the idempotent toggle.
type GrievanceUpvote struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GrievanceID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_upvote_grievance_user" json:"grievance_id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_upvote_grievance_user" json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func (u *GrievanceUpvote) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Department is a unit grievances can be routed to.
type Department struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"size:128;uniqueIndex;not null" json:"name"`
	Description *string    `gorm:"type:text" json:"description"`
	HeadUserID  *uuid.UUID `gorm:"type:uuid" json:"head_user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (d *Department) BeforeCreate(_ *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// AuditLog records sensitive actions. Append-only; Metadata is free-form.
type AuditLog struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID        `gorm:"type:uuid;index" json:"user_id"`
	Action     string            `gorm:"size:64;not null;index" json:"action"`
	EntityType string            `gorm:"size:64;not null" json:"entity_type"`
	EntityID   *uuid.UUID        `gorm:"type:uuid" json:"entity_id"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	IPAddress  *string           `gorm:"size:64" json:"ip_address"`
	CreatedAt  time.Time         `json:"created_at"`
}

func (a *AuditLog) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
