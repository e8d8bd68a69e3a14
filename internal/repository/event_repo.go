package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noah-isme/aegis-go-api/internal/models"
)

// EventFilter narrows the calendar listing. A nil CourseID keeps global
// and course-bound entries together.
type EventFilter struct {
	CourseID  *uuid.UUID
	EventType string
	From      *time.Time
	To        *time.Time

	// RestrictToCourses limits the listing to global events plus the
	// listed courses, which is how the personal calendar is scoped.
	RestrictToCourses bool
	CourseIDs         []uuid.UUID
}

// EventRepository exposes persistence helpers for calendar events.
type EventRepository interface {
	Create(ctx context.Context, event *models.AcademicEvent) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.AcademicEvent, error)
	List(ctx context.Context, filter EventFilter) ([]models.AcademicEvent, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository constructs the repository implementation.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *models.AcademicEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.AcademicEvent, error) {
	var event models.AcademicEvent
	if err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) List(ctx context.Context, filter EventFilter) ([]models.AcademicEvent, error) {
	query := r.db.WithContext(ctx).Model(&models.AcademicEvent{})

	if filter.RestrictToCourses {
		if len(filter.CourseIDs) > 0 {
			query = query.Where("course_id IS NULL OR course_id IN ?", filter.CourseIDs)
		} else {
			query = query.Where("course_id IS NULL")
		}
	}
	if filter.CourseID != nil {
		query = query.Where("course_id = ? OR course_id IS NULL", *filter.CourseID)
	}
	if filter.EventType != "" {
		query = query.Where("event_type = ?", filter.EventType)
	}
	if filter.From != nil {
		query = query.Where("start_time >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("start_time <= ?", *filter.To)
	}

	var events []models.AcademicEvent
	err := query.Order("start_time ASC").Find(&events).Error
	return events, err
}

func (r *eventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.AcademicEvent{}, "id = ?", id).Error
}
