package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/aegis-go-api/internal/models"
)

// CreateTaskRequest adds an item to the caller's personal ledger.
type CreateTaskRequest struct {
	Title       string                    `json:"title" validate:"required,min=1,max=255"`
	Description *string                   `json:"description"`
	Priority    *models.GrievancePriority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	DueDate     *time.Time                `json:"due_date"`
	Tags        []string                  `json:"tags"`
}

// UpdateTaskRequest patches a task; only present fields change.
type UpdateTaskRequest struct {
	Title              *string                   `json:"title" validate:"omitempty,min=1,max=255"`
	Description        *string                   `json:"description"`
	Status             *models.TaskStatus        `json:"status" validate:"omitempty,oneof=pending in_progress completed"`
	Priority           *models.GrievancePriority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	ProgressPercentage *int                      `json:"progress_percentage" validate:"omitempty,min=0,max=100"`
	DueDate            *time.Time                `json:"due_date"`
	Tags               []string                  `json:"tags"`
}

// TaskResponse is a serialized personal task.
type TaskResponse struct {
	ID                 uuid.UUID                `json:"id"`
	Title              string                   `json:"title"`
	Description        *string                  `json:"description"`
	Status             models.TaskStatus        `json:"status"`
	Priority           models.GrievancePriority `json:"priority"`
	ProgressPercentage int                      `json:"progress_percentage"`
	DueDate            *time.Time               `json:"due_date"`
	Tags               []string                 `json:"tags"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
}

// NewTaskResponse converts a task row.
func NewTaskResponse(t models.PersonalTask) TaskResponse {
	tags := []string(t.Tags)
	if tags == nil {
		tags = []string{}
	}

	return TaskResponse{
		ID:                 t.ID,
		Title:              t.Title,
		Description:        t.Description,
		Status:             t.Status,
		Priority:           t.Priority,
		ProgressPercentage: t.ProgressPercentage,
		DueDate:            t.DueDate,
		Tags:               tags,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}
