package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/aegis-go-api/internal/dto"
	"github.com/noah-isme/aegis-go-api/internal/models"
	"github.com/noah-isme/aegis-go-api/internal/repository"
)

// ErrTaskNotFound covers missing tasks and tasks owned by someone else;
// the two cases are indistinguishable to the caller.
var ErrTaskNotFound = errors.New("task not found")

// TaskService exposes the caller's private task ledger.
type TaskService interface {
	Create(ctx context.Context, actor models.User, req dto.CreateTaskRequest) (*dto.TaskResponse, error)
	List(ctx context.Context, actor models.User, status string) ([]dto.TaskResponse, error)
	Update(ctx context.Context, actor models.User, id uuid.UUID, req dto.UpdateTaskRequest) (*dto.TaskResponse, error)
	Delete(ctx context.Context, actor models.User, id uuid.UUID) error
}

type taskService struct {
	tasks  repository.TaskRepository
	logger zerolog.Logger
}

// NewTaskService constructs the task service.
func NewTaskService(tasks repository.TaskRepository, logger zerolog.Logger) TaskService {
	return &taskService{
		tasks:  tasks,
		logger: logger.With().Str("component", "task_service").Logger(),
	}
}

func (s *taskService) Create(ctx context.Context, actor models.User, req dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	task := models.PersonalTask{
		UserID:      actor.ID,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskPending,
		Priority:    models.PriorityMedium,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}

	if err := s.tasks.Create(ctx, &task); err != nil {
		return nil, err
	}

	resp := dto.NewTaskResponse(task)
	return &resp, nil
}

func (s *taskService) List(ctx context.Context, actor models.User, status string) ([]dto.TaskResponse, error) {
	tasks, err := s.tasks.ListByUser(ctx, actor.ID, status)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, dto.NewTaskResponse(task))
	}
	return responses, nil
}

// Update patches only the fields present in the request. Marking a task
// completed forces progress to 100.
func (s *taskService) Update(ctx context.Context, actor models.User, id uuid.UUID, req dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	task, err := s.tasks.FindByIDForUser(ctx, id, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = req.Description
	}
	if req.Status != nil {
		task.Status = *req.Status
		if task.Status == models.TaskCompleted {
			task.ProgressPercentage = 100
		}
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.ProgressPercentage != nil {
		task.ProgressPercentage = *req.ProgressPercentage
		if task.ProgressPercentage >= 100 {
			task.Status = models.TaskCompleted
		}
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.Tags != nil {
		task.Tags = req.Tags
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	resp := dto.NewTaskResponse(*task)
	return &resp, nil
}

func (s *taskService) Delete(ctx context.Context, actor models.User, id uuid.UUID) error {
	removed, err := s.tasks.DeleteForUser(ctx, id, actor.ID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrTaskNotFound
	}
	return nil
}
