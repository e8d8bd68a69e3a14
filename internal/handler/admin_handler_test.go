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
	"github.com/noah-isme/aegis-go-api/internal/middleware"
	"github.com/noah-isme/aegis-go-api/internal/models"
	"github.com/noah-isme/aegis-go-api/internal/service"
)

type mockAdminService struct {
	updateRoleFn func(ctx context.Context, actor models.User, userID uuid.UUID, role models.UserRole, clientIP string) (*dto.UserListResponse, error)
	statsFn      func(ctx context.Context) (*dto.SystemStats, error)
}

func (m *mockAdminService) ListUsers(context.Context, dto.UserFilter) (dto.PaginatedResponse[dto.UserListResponse], error) {
	return dto.NewPaginatedResponse([]dto.UserListResponse{}, 0, 1, 20), nil
}

func (m *mockAdminService) GetUser(context.Context, uuid.UUID) (*dto.UserListResponse, error) {
	return nil, service.ErrUserNotFound
}

func (m *mockAdminService) UpdateUserRole(ctx context.Context, actor models.User, userID uuid.UUID, role models.UserRole, clientIP string) (*dto.UserListResponse, error) {
	return m.updateRoleFn(ctx, actor, userID, role, clientIP)
}

func (m *mockAdminService) UpdateUserStatus(context.Context, models.User, uuid.UUID, models.UserStatus, string) (*dto.UserListResponse, error) {
	return nil, nil
}

func (m *mockAdminService) ListAuditLogs(context.Context, dto.AuditLogFilter) (dto.PaginatedResponse[dto.AuditLogResponse], error) {
	return dto.NewPaginatedResponse([]dto.AuditLogResponse{}, 0, 1, 20), nil
}

func (m *mockAdminService) Stats(ctx context.Context) (*dto.SystemStats, error) {
	return m.statsFn(ctx)
}

func (m *mockAdminService) ListDepartments(context.Context) ([]models.Department, error) {
	return []models.Department{}, nil
}

func (m *mockAdminService) CreateDepartment(context.Context, models.User, string, *string) (*models.Department, error) {
	return nil, service.ErrDepartmentExists
}

func (m *mockAdminService) SeedSampleData(context.Context) error {
	return nil
}

func newAdminApp(svc service.AdminService, user *models.User) *fiber.App {
	app := fiber.New()
	group := app.Group("/admin")
	if user != nil {
		group.Use(sessionAs(*user))
	}
	group.Use(middleware.RequireRoles(models.RoleAdmin))
	handler.NewAdminHandler(svc, newValidator(), testLogger()).Register(group)
	return app
}

func TestAdminRoutesRejectAnonymous(t *testing.T) {
	app := newAdminApp(&mockAdminService{}, nil)

	resp, err := app.Test(jsonRequest(t, fiber.MethodGet, "/admin/stats", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAdminRoutesRejectNonAdmins(t *testing.T) {
	student := models.User{ID: uuid.New(), Role: models.RoleStudent}
	app := newAdminApp(&mockAdminService{}, &student)

	resp, err := app.Test(jsonRequest(t, fiber.MethodGet, "/admin/stats", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAdminStats(t *testing.T) {
	admin := models.User{ID: uuid.New(), Role: models.RoleAdmin}
	svc := &mockAdminService{
		statsFn: func(context.Context) (*dto.SystemStats, error) {
			return &dto.SystemStats{TotalUsers: 42}, nil
		},
	}
	app := newAdminApp(svc, &admin)

	resp, err := app.Test(jsonRequest(t, fiber.MethodGet, "/admin/stats", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	env := decodeResponse(t, resp)
	var stats dto.SystemStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	require.EqualValues(t, 42, stats.TotalUsers)
}

func TestUpdateRoleMapsSelfChange(t *testing.T) {
	admin := models.User{ID: uuid.New(), Role: models.RoleAdmin}
	svc := &mockAdminService{
		updateRoleFn: func(context.Context, models.User, uuid.UUID, models.UserRole, string) (*dto.UserListResponse, error) {
			return nil, service.ErrSelfChange
		},
	}
	app := newAdminApp(svc, &admin)

	resp, err := app.Test(jsonRequest(t, fiber.MethodPatch, "/admin/users/"+admin.ID.String()+"/role", fiber.Map{"role": "student"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetUserMapsNotFound(t *testing.T) {
	admin := models.User{ID: uuid.New(), Role: models.RoleAdmin}
	app := newAdminApp(&mockAdminService{}, &admin)

	resp, err := app.Test(jsonRequest(t, fiber.MethodGet, "/admin/users/"+uuid.NewString(), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCreateDepartmentConflict(t *testing.T) {
	admin := models.User{ID: uuid.New(), Role: models.RoleAdmin}
	app := newAdminApp(&mockAdminService{}, &admin)

	resp, err := app.Test(jsonRequest(t, fiber.MethodPost, "/admin/departments", fiber.Map{"name": "Estate Office"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}
