package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/aegis-go-api/internal/dto"
	"github.com/noah-isme/aegis-go-api/internal/handler"
	"github.com/noah-isme/aegis-go-api/internal/models"
	"github.com/noah-isme/aegis-go-api/internal/service"
)

type mockGrievanceService struct {
	createFn       func(ctx context.Context, actor models.User, req dto.CreateGrievanceRequest) (*dto.GrievanceResponse, error)
	listFn         func(ctx context.Context, viewer *models.User, filter dto.GrievanceFilter) (dto.PaginatedResponse[dto.GrievanceResponse], error)
	getFn          func(ctx context.Context, viewer *models.User, id uuid.UUID) (*dto.GrievanceResponse, error)
	deleteFn       func(ctx context.Context, actor models.User, id uuid.UUID) error
	toggleUpvoteFn func(ctx context.Context, actor models.User, id uuid.UUID) (bool, int, error)
}

func (m *mockGrievanceService) Create(ctx context.Context, actor models.User, req dto.CreateGrievanceRequest) (*dto.GrievanceResponse, error) {
	return m.createFn(ctx, actor, req)
}

func (m *mockGrievanceService) List(ctx context.Context, viewer *models.User, filter dto.GrievanceFilter) (dto.PaginatedResponse[dto.GrievanceResponse], error) {
	return m.listFn(ctx, viewer, filter)
}

func (m *mockGrievanceService) Get(ctx context.Context, viewer *models.User, id uuid.UUID) (*dto.GrievanceResponse, error) {
	return m.getFn(ctx, viewer, id)
}

func (m *mockGrievanceService) Delete(ctx context.Context, actor models.User, id uuid.UUID) error {
	return m.deleteFn(ctx, actor, id)
}

func (m *mockGrievanceService) UpdateStatus(context.Context, models.User, uuid.UUID, dto.UpdateGrievanceStatusRequest) (*dto.GrievanceResponse, error) {
	return nil, nil
}

func (m *mockGrievanceService) Assign(context.Context, models.User, uuid.UUID, dto.AssignGrievanceRequest) (*dto.GrievanceResponse, error) {
	return nil, nil
}

func (m *mockGrievanceService) Resolve(context.Context, models.User, uuid.UUID, dto.ResolveGrievanceRequest) (*dto.GrievanceResponse, error) {
	return nil, nil
}

func (m *mockGrievanceService) History(context.Context, models.User, uuid.UUID) ([]dto.StatusHistoryResponse, error) {
	return nil, nil
}

func (m *mockGrievanceService) AddComment(context.Context, models.User, uuid.UUID, dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	return nil, nil
}

func (m *mockGrievanceService) ListComments(context.Context, models.User, uuid.UUID) ([]dto.CommentResponse, error) {
	return nil, nil
}

func (m *mockGrievanceService) ToggleUpvote(ctx context.Context, actor models.User, id uuid.UUID) (bool, int, error) {
	return m.toggleUpvoteFn(ctx, actor, id)
}

func (m *mockGrievanceService) UploadPhotos(context.Context, models.User, uuid.UUID, []io.Reader) (*dto.GrievanceResponse, error) {
	return nil, nil
}

func newGrievanceApp(svc service.GrievanceService, user *models.User) *fiber.App {
	app := fiber.New()
	h := handler.NewGrievanceHandler(svc, newValidator(), testLogger())

	public := app.Group("/grievances")
	if user != nil {
		public.Use(sessionAs(*user))
	}
	h.RegisterPublic(public)

	private := app.Group("/grievances")
	if user == nil {
		// Without a session the gated routes reject with 401 in the
		// handlers themselves.
		h.Register(private)
		return app
	}
	private.Use(sessionAs(*user))
	h.Register(private)
	return app
}

func TestListGrievancesForwardsViewer(t *testing.T) {
	student := models.User{ID: uuid.New(), Role: models.RoleStudent}

	var sawViewer *models.User
	svc := &mockGrievanceService{
		listFn: func(_ context.Context, viewer *models.User, filter dto.GrievanceFilter) (dto.PaginatedResponse[dto.GrievanceResponse], error) {
			sawViewer = viewer
			return dto.NewPaginatedResponse([]dto.GrievanceResponse{}, 0, 1, 20), nil
		},
	}
	app := newGrievanceApp(svc, &student)

	resp, err := app.Test(jsonRequest(t, fiber.MethodGet, "/grievances?status=submitted", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotNil(t, sawViewer)
	require.Equal(t, student.ID, sawViewer.ID)
}

func TestListGrievancesPassesFilter(t *testing.T) {
	student := models.User{ID: uuid.New(), Role: models.RoleStudent}

	var gotFilter dto.GrievanceFilter
	svc := &mockGrievanceService{
		listFn: func(_ context.Context, viewer *models.User, filter dto.GrievanceFilter) (dto.PaginatedResponse[dto.GrievanceResponse], error) {
			gotFilter = filter
			return dto.NewPaginatedResponse([]dto.GrievanceResponse{}, 0, 2, 10), nil
		},
	}
	app := newGrievanceApp(svc, &student)

	resp, err := app.Test(jsonRequest(t, fiber.MethodGet, "/grievances?status=resolved&category=hostel&page=2&limit=10&search=wifi", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NotNil(t, gotFilter.Status)
	require.Equal(t, models.StatusResolved, *gotFilter.Status)
	require.NotNil(t, gotFilter.Category)
	require.Equal(t, models.CategoryHostel, *gotFilter.Category)
	require.Equal(t, "wifi", gotFilter.Search)
	require.Equal(t, 2, gotFilter.Page)
	require.Equal(t, 10, gotFilter.Limit)
}

func TestCreateGrievanceValidatesCategory(t *testing.T) {
	student := models.User{ID: uuid.New(), Role: models.RoleStudent}
	app := newGrievanceApp(&mockGrievanceService{}, &student)

	resp, err := app.Test(jsonRequest(t, fiber.MethodPost, "/grievances", fiber.Map{
		"title":       "Broken cooler",
		"description": "the water cooler has been leaking for days",
		"category":    "nonsense",
		"priority":    "high",
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDeleteGrievanceMapsForbidden(t *testing.T) {
	student := models.User{ID: uuid.New(), Role: models.RoleStudent}
	svc := &mockGrievanceService{
		deleteFn: func(context.Context, models.User, uuid.UUID) error {
			return service.ErrGrievanceForbidden
		},
	}
	app := newGrievanceApp(svc, &student)

	resp, err := app.Test(jsonRequest(t, fiber.MethodDelete, "/grievances/"+uuid.NewString(), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestToggleUpvoteReturnsCount(t *testing.T) {
	student := models.User{ID: uuid.New(), Role: models.RoleStudent}
	svc := &mockGrievanceService{
		toggleUpvoteFn: func(context.Context, models.User, uuid.UUID) (bool, int, error) {
			return true, 7, nil
		},
	}
	app := newGrievanceApp(svc, &student)

	resp, err := app.Test(jsonRequest(t, fiber.MethodPost, "/grievances/"+uuid.NewString()+"/upvote", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	env := decodeResponse(t, resp)
	var data struct {
		Upvoted     bool `json:"upvoted"`
		UpvoteCount int  `json:"upvote_count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.True(t, data.Upvoted)
	require.Equal(t, 7, data.UpvoteCount)
}

func TestGetGrievanceMapsNotFound(t *testing.T) {
	svc := &mockGrievanceService{
		getFn: func(context.Context, *models.User, uuid.UUID) (*dto.GrievanceResponse, error) {
			return nil, service.ErrGrievanceNotFound
		},
	}
	app := newGrievanceApp(svc, nil)

	resp, err := app.Test(jsonRequest(t, fiber.MethodGet, "/grievances/"+uuid.NewString(), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
