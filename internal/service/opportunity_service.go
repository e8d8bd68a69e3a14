package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/aegis-go-api/internal/auth"
	"github.com/noah-isme/aegis-go-api/internal/dto"
	"github.com/noah-isme/aegis-go-api/internal/models"
	"github.com/noah-isme/aegis-go-api/internal/repository"
)

var (
	// ErrOpportunityNotFound covers missing or deactivated postings.
	ErrOpportunityNotFound = errors.New("opportunity not found")
	// ErrOpportunityForbidden rejects actions the caller's role denies.
	ErrOpportunityForbidden = errors.New("not authorized for this opportunity")
	// ErrAlreadyApplied rejects repeat applications.
	ErrAlreadyApplied = errors.New("already applied to this opportunity")
	// ErrDeadlinePassed rejects applications after the posted deadline.
	ErrDeadlinePassed = errors.New("application deadline has passed")
	// ErrApplicationNotFound covers missing applications.
	ErrApplicationNotFound = errors.New("application not found")
)

// OpportunityService exposes postings and the applications against them.
type OpportunityService interface {
	Create(ctx context.Context, actor models.User, req dto.CreateOpportunityRequest) (*dto.OpportunityResponse, error)
	List(ctx context.Context, viewer *models.User, filter dto.OpportunityFilter) ([]dto.OpportunityResponse, error)
	Get(ctx context.Context, viewer *models.User, id uuid.UUID) (*dto.OpportunityResponse, error)
	Deactivate(ctx context.Context, actor models.User, id uuid.UUID) error

	Apply(ctx context.Context, actor models.User, opportunityID uuid.UUID, req dto.ApplyRequest) (*dto.ApplicationResponse, error)
	MyApplications(ctx context.Context, actor models.User) ([]dto.ApplicationResponse, error)
	ListApplicants(ctx context.Context, actor models.User, opportunityID uuid.UUID) ([]dto.ApplicationResponse, error)
	UpdateApplicationStatus(ctx context.Context, actor models.User, applicationID uuid.UUID, req dto.UpdateApplicationStatusRequest) (*dto.ApplicationResponse, error)
}

type opportunityService struct {
	opportunities repository.OpportunityRepository
	users         repository.UserRepository
	logger        zerolog.Logger
}

// NewOpportunityService constructs the opportunity service.
func NewOpportunityService(
	opportunities repository.OpportunityRepository,
	users repository.UserRepository,
	logger zerolog.Logger,
) OpportunityService {
	return &opportunityService{
		opportunities: opportunities,
		users:         users,
		logger:        logger.With().Str("component", "opportunity_service").Logger(),
	}
}

func (s *opportunityService) Create(ctx context.Context, actor models.User, req dto.CreateOpportunityRequest) (*dto.OpportunityResponse, error) {
	if !auth.IsFacultyOrAdmin(actor) {
		return nil, ErrOpportunityForbidden
	}

	opportunity := models.Opportunity{
		PostedBy:            actor.ID,
		Title:               req.Title,
		Description:         req.Description,
		OpportunityType:     req.OpportunityType,
		Department:          req.Department,
		RequiredSkills:      req.RequiredSkills,
		Duration:            req.Duration,
		Stipend:             req.Stipend,
		Location:            req.Location,
		ApplicationDeadline: req.ApplicationDeadline,
		IsActive:            true,
	}
	if err := s.opportunities.Create(ctx, &opportunity); err != nil {
		return nil, err
	}

	s.logger.Info().Str("opportunity_id", opportunity.ID.String()).Msg("opportunity posted")

	resp := dto.NewOpportunityResponse(opportunity, actor, false)
	return &resp, nil
}

// List returns active postings. For signed-in students each item carries
// whether they already applied; anonymous callers always see false.
func (s *opportunityService) List(ctx context.Context, viewer *models.User, filter dto.OpportunityFilter) ([]dto.OpportunityResponse, error) {
	items, err := s.opportunities.ListActive(ctx, filter)
	if err != nil {
		return nil, err
	}

	applied := map[uuid.UUID]bool{}
	if viewer != nil && auth.IsStudent(*viewer) {
		ids := make([]uuid.UUID, 0, len(items))
		for _, o := range items {
			ids = append(ids, o.ID)
		}
		applied, err = s.opportunities.ListAppliedIDs(ctx, viewer.ID, ids)
		if err != nil {
			return nil, err
		}
	}

	posterIDs := make([]uuid.UUID, 0, len(items))
	for _, o := range items {
		posterIDs = append(posterIDs, o.PostedBy)
	}
	posters, err := s.users.FindByIDs(ctx, posterIDs)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.OpportunityResponse, 0, len(items))
	for _, o := range items {
		responses = append(responses, dto.NewOpportunityResponse(o, posters[o.PostedBy], applied[o.ID]))
	}
	return responses, nil
}

func (s *opportunityService) Get(ctx context.Context, viewer *models.User, id uuid.UUID) (*dto.OpportunityResponse, error) {
	opportunity, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	poster, err := s.users.FindByID(ctx, opportunity.PostedBy)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if poster == nil {
		poster = &models.User{}
	}

	hasApplied := false
	if viewer != nil && auth.IsStudent(*viewer) {
		applied, err := s.opportunities.ListAppliedIDs(ctx, viewer.ID, []uuid.UUID{id})
		if err != nil {
			return nil, err
		}
		hasApplied = applied[id]
	}

	resp := dto.NewOpportunityResponse(*opportunity, *poster, hasApplied)
	return &resp, nil
}

func (s *opportunityService) Deactivate(ctx context.Context, actor models.User, id uuid.UUID) error {
	opportunity, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CanManageOpportunity(actor, *opportunity) {
		return ErrOpportunityForbidden
	}
	return s.opportunities.Deactivate(ctx, id)
}

func (s *opportunityService) Apply(ctx context.Context, actor models.User, opportunityID uuid.UUID, req dto.ApplyRequest) (*dto.ApplicationResponse, error) {
	if !auth.IsStudent(actor) {
		return nil, ErrOpportunityForbidden
	}

	opportunity, err := s.find(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if !opportunity.IsActive {
		return nil, ErrOpportunityNotFound
	}
	if opportunity.ApplicationDeadline != nil && time.Now().After(*opportunity.ApplicationDeadline) {
		return nil, ErrDeadlinePassed
	}

	application := models.Application{
		OpportunityID: opportunityID,
		StudentID:     actor.ID,
		ResumeURL:     req.ResumeURL,
		CoverLetter:   req.CoverLetter,
		PortfolioURL:  req.PortfolioURL,
		Status:        models.ApplicationPending,
	}
	created, err := s.opportunities.CreateApplication(ctx, &application)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, ErrAlreadyApplied
	}

	resp := dto.NewApplicationResponse(application, nil, &actor)
	return &resp, nil
}

func (s *opportunityService) MyApplications(ctx context.Context, actor models.User) ([]dto.ApplicationResponse, error) {
	applications, err := s.opportunities.ListApplicationsByStudent(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ApplicationResponse, 0, len(applications))
	for _, app := range applications {
		var oppResp *dto.OpportunityResponse
		opportunity, err := s.opportunities.FindByID(ctx, app.OpportunityID)
		if err == nil {
			poster, perr := s.users.FindByID(ctx, opportunity.PostedBy)
			if perr != nil && !errors.Is(perr, gorm.ErrRecordNotFound) {
				return nil, perr
			}
			if poster == nil {
				poster = &models.User{}
			}
			converted := dto.NewOpportunityResponse(*opportunity, *poster, true)
			oppResp = &converted
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		responses = append(responses, dto.NewApplicationResponse(app, oppResp, nil))
	}
	return responses, nil
}

func (s *opportunityService) ListApplicants(ctx context.Context, actor models.User, opportunityID uuid.UUID) ([]dto.ApplicationResponse, error) {
	opportunity, err := s.find(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if !auth.CanManageOpportunity(actor, *opportunity) {
		return nil, ErrOpportunityForbidden
	}

	applications, err := s.opportunities.ListApplicationsByOpportunity(ctx, opportunityID)
	if err != nil {
		return nil, err
	}

	studentIDs := make([]uuid.UUID, 0, len(applications))
	for _, app := range applications {
		studentIDs = append(studentIDs, app.StudentID)
	}
	students, err := s.users.FindByIDs(ctx, studentIDs)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ApplicationResponse, 0, len(applications))
	for _, app := range applications {
		var student *models.User
		if found, ok := students[app.StudentID]; ok {
			student = &found
		}
		responses = append(responses, dto.NewApplicationResponse(app, nil, student))
	}
	return responses, nil
}

func (s *opportunityService) UpdateApplicationStatus(ctx context.Context, actor models.User, applicationID uuid.UUID, req dto.UpdateApplicationStatusRequest) (*dto.ApplicationResponse, error) {
	application, err := s.opportunities.FindApplication(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}

	opportunity, err := s.find(ctx, application.OpportunityID)
	if err != nil {
		return nil, err
	}
	if !auth.CanManageOpportunity(actor, *opportunity) {
		return nil, ErrOpportunityForbidden
	}

	application.Status = req.Status
	if req.FacultyRemarks != nil {
		application.FacultyRemarks = req.FacultyRemarks
	}
	if err := s.opportunities.UpdateApplication(ctx, application); err != nil {
		return nil, err
	}

	var student *models.User
	if found, err := s.users.FindByID(ctx, application.StudentID); err == nil {
		student = found
	}

	resp := dto.NewApplicationResponse(*application, nil, student)
	return &resp, nil
}

func (s *opportunityService) find(ctx context.Context, id uuid.UUID) (*models.Opportunity, error) {
	opportunity, err := s.opportunities.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOpportunityNotFound
	}
	if err != nil {
		return nil, err
	}
	return opportunity, nil
}
