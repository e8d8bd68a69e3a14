package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/aegis-go-api/internal/models"
)

// CreateOpportunityRequest posts a new opening.
type CreateOpportunityRequest struct {
	Title               string                 `json:"title" validate:"required,min=3,max=255"`
	Description         string                 `json:"description" validate:"required,min=10"`
	OpportunityType     models.OpportunityType `json:"opportunity_type" validate:"required,oneof=internship research project teaching"`
	Department          string                 `json:"department" validate:"required"`
	RequiredSkills      []string               `json:"required_skills"`
	Duration            *string                `json:"duration"`
	Stipend             *string                `json:"stipend"`
	Location            *string                `json:"location"`
	ApplicationDeadline *time.Time             `json:"application_deadline"`
}

// OpportunityFilter carries optional browse predicates.
type OpportunityFilter struct {
	Department string
	Type       string
}

// OpportunityResponse is a serialized posting. HasApplied personalizes
// the browse feed and is false for unauthenticated callers.
type OpportunityResponse struct {
	ID                  uuid.UUID              `json:"id"`
	PostedBy            UserResponse           `json:"posted_by"`
	Title               string                 `json:"title"`
	Description         string                 `json:"description"`
	OpportunityType     models.OpportunityType `json:"opportunity_type"`
	Department          string                 `json:"department"`
	RequiredSkills      []string               `json:"required_skills"`
	Duration            *string                `json:"duration"`
	Stipend             *string                `json:"stipend"`
	Location            *string                `json:"location"`
	ApplicationDeadline *time.Time             `json:"application_deadline"`
	IsActive            bool                   `json:"is_active"`
	CreatedAt           time.Time              `json:"created_at"`
	HasApplied          bool                   `json:"has_applied"`
}

// NewOpportunityResponse converts a posting plus its poster.
func NewOpportunityResponse(op models.Opportunity, poster models.User, hasApplied bool) OpportunityResponse {
	skills := []string(op.RequiredSkills)
	if skills == nil {
		skills = []string{}
	}

	return OpportunityResponse{
		ID:                  op.ID,
		PostedBy:            NewUserResponse(poster),
		Title:               op.Title,
		Description:         op.Description,
		OpportunityType:     op.OpportunityType,
		Department:          op.Department,
		RequiredSkills:      skills,
		Duration:            op.Duration,
		Stipend:             op.Stipend,
		Location:            op.Location,
		ApplicationDeadline: op.ApplicationDeadline,
		IsActive:            op.IsActive,
		CreatedAt:           op.CreatedAt,
		HasApplied:          hasApplied,
	}
}

// ApplyRequest submits an application to an opportunity.
type ApplyRequest struct {
	ResumeURL    *string `json:"resume_url" validate:"omitempty,url"`
	CoverLetter  *string `json:"cover_letter"`
	PortfolioURL *string `json:"portfolio_url" validate:"omitempty,url"`
}

// UpdateApplicationStatusRequest accepts or rejects an application.
type UpdateApplicationStatusRequest struct {
	Status         models.ApplicationStatus `json:"status" validate:"required,oneof=pending shortlisted accepted rejected"`
	FacultyRemarks *string                  `json:"faculty_remarks"`
}

// ApplicationResponse is a serialized application. Opportunity is filled
// for the student history view; Student for the applicant review view.
type ApplicationResponse struct {
	ID           uuid.UUID                `json:"id"`
	Opportunity  *OpportunityResponse     `json:"opportunity,omitempty"`
	Student      *UserResponse            `json:"student,omitempty"`
	ResumeURL    *string                  `json:"resume_url"`
	CoverLetter  *string                  `json:"cover_letter"`
	PortfolioURL *string                  `json:"portfolio_url"`
	Status       models.ApplicationStatus `json:"status"`
	FacultyRemarks *string                `json:"faculty_remarks"`
	AppliedAt    time.Time                `json:"applied_at"`
}

// NewApplicationResponse converts an application row and its context.
func NewApplicationResponse(app models.Application, opportunity *OpportunityResponse, student *models.User) ApplicationResponse {
	resp := ApplicationResponse{
		ID:           app.ID,
		Opportunity:  opportunity,
		ResumeURL:    app.ResumeURL,
		CoverLetter:  app.CoverLetter,
		PortfolioURL: app.PortfolioURL,
		Status:       app.Status,
		FacultyRemarks: app.FacultyRemarks,
		AppliedAt:    app.AppliedAt,
	}
	if student != nil {
		s := NewUserResponse(*student)
		resp.Student = &s
	}
	return resp
}
