package handler_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/aegis-go-api/internal/dto"
	"github.com/noah-isme/aegis-go-api/internal/handler"
	"github.com/noah-isme/aegis-go-api/internal/models"
	"github.com/noah-isme/aegis-go-api/internal/service"
)

type mockOpportunityService struct {
	createFn func(ctx context.Context, actor models.User, req dto.CreateOpportunityRequest) (*dto.OpportunityResponse, error)
	listFn   func(ctx context.Context, viewer *models.User, filter dto.OpportunityFilter) ([]dto.OpportunityResponse, error)
	applyFn  func(ctx context.Context, actor models.User, opportunityID uuid.UUID, req dto.ApplyRequest) (*dto.ApplicationResponse, error)
}

func (m *mockOpportunityService) Create(ctx context.Context, actor models.User, req dto.CreateOpportunityRequest) (*dto.OpportunityResponse, error) {
	return m.createFn(ctx, actor, req)
}

func (m *mockOpportunityService) List(ctx context.Context, viewer *models.User, filter dto.OpportunityFilter) ([]dto.OpportunityResponse, error) {
	return m.listFn(ctx, viewer, filter)
}

func (m *mockOpportunityService) Get(context.Context, *models.User, uuid.UUID) (*dto.OpportunityResponse, error) {
	return nil, service.ErrOpportunityNotFound
}

func (m *mockOpportunityService) Deactivate(context.Context, models.User, uuid.UUID) error {
	return nil
}

func (m *mockOpportunityService) Apply(ctx context.Context, actor models.User, opportunityID uuid.UUID, req dto.ApplyRequest) (*dto.ApplicationResponse, error) {
	return m.applyFn(ctx, actor, opportunityID, req)
}

func (m *mockOpportunityService) MyApplications(context.Context, models.User) ([]dto.ApplicationResponse, error) {
	return []dto.ApplicationResponse{}, nil
}

func (m *mockOpportunityService) ListApplicants(context.Context, models.User, uuid.UUID) ([]dto.ApplicationResponse, error) {
	return []dto.ApplicationResponse{}, nil
}

func (m *mockOpportunityService) UpdateApplicationStatus(context.Context, models.User, uuid.UUID, dto.UpdateApplicationStatusRequest) (*dto.ApplicationResponse, error) {
	return nil, nil
}

func newOpportunityApp(svc service.OpportunityService, user *models.User) *fiber.App {
	app := fiber.New()
	h := handler.NewOpportunityHandler(svc, newValidator(), testLogger())

	public := app.Group("/opportunities")
	if user != nil {
		public.Use(sessionAs(*user))
	}
	h.RegisterPublic(public)

	private := app.Group("/opportunities")
	if user != nil {
		private.Use(sessionAs(*user))
	}
	h.Register(private)
	return app
}

func TestBrowseOpportunitiesAnonymously(t *testing.T) {
	faculty := models.User{ID: uuid.New(), Role: models.RoleFaculty}
	posting := dto.NewOpportunityResponse(models.Opportunity{
		ID:       uuid.New(),
		PostedBy: faculty.ID,
		Title:    "Lab assistant",
	}, faculty, false)

	var sawViewer *models.User
	svc := &mockOpportunityService{
		listFn: func(_ context.Context, viewer *models.User, _ dto.OpportunityFilter) ([]dto.OpportunityResponse, error) {
			sawViewer = viewer
			return []dto.OpportunityResponse{posting}, nil
		},
	}
	app := newOpportunityApp(svc, nil)

	resp, err := app.Test(jsonRequest(t, fiber.MethodGet, "/opportunities", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Nil(t, sawViewer)

	env := decodeResponse(t, resp)
	var items []dto.OpportunityResponse
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	require.False(t, items[0].HasApplied)
}

func TestApplyDuplicateIsBadRequest(t *testing.T) {
	student := models.User{ID: uuid.New(), Role: models.RoleStudent}
	svc := &mockOpportunityService{
		applyFn: func(context.Context, models.User, uuid.UUID, dto.ApplyRequest) (*dto.ApplicationResponse, error) {
			return nil, service.ErrAlreadyApplied
		},
	}
	app := newOpportunityApp(svc, &student)

	resp, err := app.Test(jsonRequest(t, fiber.MethodPost, "/opportunities/"+uuid.NewString()+"/apply", fiber.Map{}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	env := decodeResponse(t, resp)
	require.False(t, env.Success)
	require.Contains(t, env.Message, "already applied")
}

func TestPostOpportunityRequiresSession(t *testing.T) {
	app := newOpportunityApp(&mockOpportunityService{}, nil)

	resp, err := app.Test(jsonRequest(t, fiber.MethodPost, "/opportunities", fiber.Map{
		"title":            "Research intern",
		"description":      "work on the lab's measurement pipeline",
		"opportunity_type": "research",
		"department":       "CSE",
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestGetOpportunityMapsNotFound(t *testing.T) {
	app := newOpportunityApp(&mockOpportunityService{}, nil)

	resp, err := app.Test(jsonRequest(t, fiber.MethodGet, "/opportunities/"+uuid.NewString(), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
