package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/aegis-go-api/internal/models"
)

// CreateGrievanceRequest is the submission payload. Photos are attached
// afterwards through the dedicated upload endpoint.
type CreateGrievanceRequest struct {
	Title           string                   `json:"title" validate:"required,min=3,max=255"`
	Description     string                   `json:"description" validate:"required,min=10"`
	Category        models.GrievanceCategory `json:"category" validate:"required,oneof=infrastructure academics hostel food other"`
	Priority        models.GrievancePriority `json:"priority" validate:"required,oneof=low medium high urgent"`
	LocationType    *string                  `json:"location_type"`
	LocationDetails *string                  `json:"location_details"`
	IsAnonymous     bool                     `json:"is_anonymous"`
}

// UpdateGrievanceStatusRequest transitions a grievance.
type UpdateGrievanceStatusRequest struct {
	Status  models.GrievanceStatus `json:"status" validate:"required,oneof=submitted under_review in_progress resolved closed"`
	Remarks *string                `json:"remarks"`
}

// AssignGrievanceRequest routes a grievance to a handler and/or department.
type AssignGrievanceRequest struct {
	AssignedTo         *uuid.UUID `json:"assigned_to"`
	AssignedDepartment *string    `json:"assigned_department"`
}

// ResolveGrievanceRequest closes out a grievance with notes.
type ResolveGrievanceRequest struct {
	ResolutionNotes string `json:"resolution_notes" validate:"required,min=3"`
}

// CreateCommentRequest adds a remark; is_internal is honored only for
// authority and admin actors.
type CreateCommentRequest struct {
	Comment    string `json:"comment" validate:"required,min=1"`
	IsInternal bool   `json:"is_internal"`
}

// GrievanceFilter carries the optional list predicates. Absent fields add
// no clause.
type GrievanceFilter struct {
	Status             *models.GrievanceStatus
	Category           *models.GrievanceCategory
	Priority           *models.GrievancePriority
	AssignedTo         *uuid.UUID
	AssignedDepartment *string
	Search             string
	Page               int
	Limit              int
}

// GrievanceResponse is the serialized grievance. Submitter is omitted for
// anonymous grievances.
type GrievanceResponse struct {
	ID                 uuid.UUID                `json:"id"`
	Submitter          *UserResponse            `json:"submitter"`
	IsAnonymous        bool                     `json:"is_anonymous"`
	AnonymousIdentifier *string                 `json:"anonymous_identifier,omitempty"`
	Title              string                   `json:"title"`
	Description        string                   `json:"description"`
	Category           models.GrievanceCategory `json:"category"`
	Priority           models.GrievancePriority `json:"priority"`
	Status             models.GrievanceStatus   `json:"status"`
	LocationType       *string                  `json:"location_type"`
	LocationDetails    *string                  `json:"location_details"`
	PhotoURLs          []string                 `json:"photo_urls"`
	AssignedTo         *UserResponse            `json:"assigned_to"`
	AssignedDepartment *string                  `json:"assigned_department"`
	ResolutionNotes    *string                  `json:"resolution_notes"`
	ResolvedAt         *time.Time               `json:"resolved_at"`
	ViewCount          int                      `json:"view_count"`
	UpvoteCount        int                      `json:"upvote_count"`
	UserHasUpvoted     bool                     `json:"user_has_upvoted"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
}

// NewGrievanceResponse assembles the response from the grievance row plus
// optionally resolved related users. Identity of anonymous submitters is
// never exposed.
func NewGrievanceResponse(g models.Grievance, submitter, assignee *models.User, hasUpvoted bool) GrievanceResponse {
	resp := GrievanceResponse{
		ID:                 g.ID,
		IsAnonymous:        g.IsAnonymous,
		Title:              g.Title,
		Description:        g.Description,
		Category:           g.Category,
		Priority:           g.Priority,
		Status:             g.Status,
		LocationType:       g.LocationType,
		LocationDetails:    g.LocationDetails,
		PhotoURLs:          photoURLs(g),
		AssignedDepartment: g.AssignedDepartment,
		ResolutionNotes:    g.ResolutionNotes,
		ResolvedAt:         g.ResolvedAt,
		ViewCount:          g.ViewCount,
		UpvoteCount:        g.UpvoteCount,
		UserHasUpvoted:     hasUpvoted,
		CreatedAt:          g.CreatedAt,
		UpdatedAt:          g.UpdatedAt,
	}

	if g.IsAnonymous {
		resp.AnonymousIdentifier = g.AnonymousIdentifier
	} else if submitter != nil {
		s := NewUserResponse(*submitter)
		resp.Submitter = &s
	}

	if assignee != nil {
		a := NewUserResponse(*assignee)
		resp.AssignedTo = &a
	}

	return resp
}

func photoURLs(g models.Grievance) []string {
	if g.PhotoURLs == nil {
		return []string{}
	}
	return g.PhotoURLs
}

// StatusHistoryResponse is one append-only transition record.
type StatusHistoryResponse struct {
	ID        uuid.UUID               `json:"id"`
	OldStatus *models.GrievanceStatus `json:"old_status"`
	NewStatus models.GrievanceStatus  `json:"new_status"`
	Remarks   *string                 `json:"remarks"`
	UpdatedBy *UserResponse           `json:"updated_by"`
	CreatedAt time.Time               `json:"created_at"`
}

// NewStatusHistoryResponse converts a history row plus its actor.
func NewStatusHistoryResponse(h models.GrievanceStatusHistory, actor *models.User) StatusHistoryResponse {
	resp := StatusHistoryResponse{
		ID:        h.ID,
		OldStatus: h.OldStatus,
		NewStatus: h.NewStatus,
		Remarks:   h.Remarks,
		CreatedAt: h.CreatedAt,
	}
	if actor != nil {
		a := NewUserResponse(*actor)
		resp.UpdatedBy = &a
	}
	return resp
}

// CommentResponse is a serialized grievance comment.
type CommentResponse struct {
	ID         uuid.UUID    `json:"id"`
	User       UserResponse `json:"user"`
	Comment    string       `json:"comment"`
	IsInternal bool         `json:"is_internal"`
	CreatedAt  time.Time    `json:"created_at"`
}

// NewCommentResponse converts a comment row plus its author.
func NewCommentResponse(comment models.GrievanceComment, author models.User) CommentResponse {
	return CommentResponse{
		ID:         comment.ID,
		User:       NewUserResponse(author),
		Comment:    comment.Comment,
		IsInternal: comment.IsInternal,
		CreatedAt:  comment.CreatedAt,
	}
}
