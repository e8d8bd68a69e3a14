package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noah-isme/aegis-go-api/internal/models"
)

// TaskRepository exposes persistence helpers for personal tasks. Every
// query is scoped by owner so one user can never touch another's rows.
type TaskRepository interface {
	Create(ctx context.Context, task *models.PersonalTask) error
	Update(ctx context.Context, task *models.PersonalTask) error
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.PersonalTask, error)
	ListByUser(ctx context.Context, userID uuid.UUID, status string) ([]models.PersonalTask, error)
	DeleteForUser(ctx context.Context, id, userID uuid.UUID) (bool, error)
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository constructs the repository implementation.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *models.PersonalTask) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) Update(ctx context.Context, task *models.PersonalTask) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *taskRepository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.PersonalTask, error) {
	var task models.PersonalTask
	err := r.db.WithContext(ctx).
		First(&task, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) ListByUser(ctx context.Context, userID uuid.UUID, status string) ([]models.PersonalTask, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	// Soonest deadline first; undated tasks trail the list.
	var tasks []models.PersonalTask
	err := query.Order("due_date ASC NULLS LAST, created_at DESC").Find(&tasks).Error
	return tasks, err
}

func (r *taskRepository) DeleteForUser(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.PersonalTask{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
