package handler_test

import (
	"context"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/aegis-go-api/internal/dto"
	"github.com/noah-isme/aegis-go-api/internal/handler"
	"github.com/noah-isme/aegis-go-api/internal/models"
	"github.com/noah-isme/aegis-go-api/internal/service"
)

type mockTaskService struct {
	createFn func(ctx context.Context, actor models.User, req dto.CreateTaskRequest) (*dto.TaskResponse, error)
	listFn   func(ctx context.Context, actor models.User, status string) ([]dto.TaskResponse, error)
	updateFn func(ctx context.Context, actor models.User, id uuid.UUID, req dto.UpdateTaskRequest) (*dto.TaskResponse, error)
	deleteFn func(ctx context.Context, actor models.User, id uuid.UUID) error
}

func (m *mockTaskService) Create(ctx context.Context, actor models.User, req dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	return m.createFn(ctx, actor, req)
}

func (m *mockTaskService) List(ctx context.Context, actor models.User, status string) ([]dto.TaskResponse, error) {
	return m.listFn(ctx, actor, status)
}

func (m *mockTaskService) Update(ctx context.Context, actor models.User, id uuid.UUID, req dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	return m.updateFn(ctx, actor, id, req)
}

func (m *mockTaskService) Delete(ctx context.Context, actor models.User, id uuid.UUID) error {
	return m.deleteFn(ctx, actor, id)
}

func newTaskApp(svc service.TaskService, user *models.User) *fiber.App {
	app := fiber.New()
	group := app.Group("/tasks")
	if user != nil {
		group.Use(sessionAs(*user))
	}
	handler.NewTaskHandler(svc, newValidator(), testLogger()).Register(group)
	return app
}

func TestCreateTaskReturnsCreated(t *testing.T) {
	student := models.User{ID: uuid.New(), Role: models.RoleStudent}

	var gotActor models.User
	svc := &mockTaskService{
		createFn: func(_ context.Context, actor models.User, req dto.CreateTaskRequest) (*dto.TaskResponse, error) {
			gotActor = actor
			return &dto.TaskResponse{ID: uuid.New(), Title: req.Title, Status: models.TaskPending}, nil
		},
	}
	app := newTaskApp(svc, &student)

	resp, err := app.Test(jsonRequest(t, fiber.MethodPost, "/tasks", fiber.Map{"title": "Revise notes"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	env := decodeResponse(t, resp)
	require.True(t, env.Success)
	require.Equal(t, student.ID, gotActor.ID)
}

func TestCreateTaskValidatesPayload(t *testing.T) {
	student := models.User{ID: uuid.New(), Role: models.RoleStudent}
	app := newTaskApp(&mockTaskService{}, &student)

	resp, err := app.Test(jsonRequest(t, fiber.MethodPost, "/tasks", fiber.Map{"description": "no title"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	env := decodeResponse(t, resp)
	require.False(t, env.Success)
	require.Contains(t, env.Message, "title")
}

func TestTasksRequireSession(t *testing.T) {
	app := newTaskApp(&mockTaskService{}, nil)

	resp, err := app.Test(jsonRequest(t, fiber.MethodGet, "/tasks", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestUpdateMissingTaskIsNotFound(t *testing.T) {
	student := models.User{ID: uuid.New(), Role: models.RoleStudent}
	svc := &mockTaskService{
		updateFn: func(_ context.Context, _ models.User, _ uuid.UUID, _ dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
			return nil, service.ErrTaskNotFound
		},
	}
	app := newTaskApp(svc, &student)

	resp, err := app.Test(jsonRequest(t, fiber.MethodPatch, "/tasks/"+uuid.NewString(), fiber.Map{"title": "x"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeleteTaskRejectsBadID(t *testing.T) {
	student := models.User{ID: uuid.New(), Role: models.RoleStudent}
	app := newTaskApp(&mockTaskService{}, &student)

	resp, err := app.Test(jsonRequest(t, fiber.MethodDelete, "/tasks/not-a-uuid", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
