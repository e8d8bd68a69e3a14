package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/aegis-go-api/internal/dto"
	"github.com/noah-isme/aegis-go-api/internal/models"
)

// OpportunityRepository exposes persistence helpers for postings and
// the applications against them.
type OpportunityRepository interface {
	Create(ctx context.Context, opportunity *models.Opportunity) error
	Update(ctx context.Context, opportunity *models.Opportunity) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Opportunity, error)
	ListActive(ctx context.Context, filter dto.OpportunityFilter) ([]models.Opportunity, error)
	Deactivate(ctx context.Context, id uuid.UUID) error

	CreateApplication(ctx context.Context, application *models.Application) (bool, error)
	FindApplication(ctx context.Context, id uuid.UUID) (*models.Application, error)
	ListApplicationsByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Application, error)
	ListApplicationsByOpportunity(ctx context.Context, opportunityID uuid.UUID) ([]models.Application, error)
	UpdateApplication(ctx context.Context, application *models.Application) error
	ListAppliedIDs(ctx context.Context, studentID uuid.UUID, opportunityIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

type opportunityRepository struct {
	db *gorm.DB
}

// NewOpportunityRepository constructs the repository implementation.
func NewOpportunityRepository(db *gorm.DB) OpportunityRepository {
	return &opportunityRepository{db: db}
}

func (r *opportunityRepository) Create(ctx context.Context, opportunity *models.Opportunity) error {
	return r.db.WithContext(ctx).Create(opportunity).Error
}

func (r *opportunityRepository) Update(ctx context.Context, opportunity *models.Opportunity) error {
	return r.db.WithContext(ctx).Save(opportunity).Error
}

func (r *opportunityRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Opportunity, error) {
	var opportunity models.Opportunity
	if err := r.db.WithContext(ctx).First(&opportunity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &opportunity, nil
}

func (r *opportunityRepository) ListActive(ctx context.Context, filter dto.OpportunityFilter) ([]models.Opportunity, error) {
	query := r.db.WithContext(ctx).Where("is_active = ?", true)

	if filter.Department != "" {
		query = query.Where("department = ?", filter.Department)
	}
	if filter.Type != "" {
		query = query.Where("opportunity_type = ?", filter.Type)
	}

	var opportunities []models.Opportunity
	err := query.Order("created_at DESC").Find(&opportunities).Error
	return opportunities, err
}

func (r *opportunityRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Opportunity{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

// CreateApplication inserts the application, reporting false when this
// student already applied. The unique index absorbs concurrent
// duplicates.
func (r *opportunityRepository) CreateApplication(ctx context.Context, application *models.Application) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(application)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *opportunityRepository) FindApplication(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var application models.Application
	if err := r.db.WithContext(ctx).First(&application, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &application, nil
}

func (r *opportunityRepository) ListApplicationsByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Application, error) {
	var applications []models.Application
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("applied_at DESC").
		Find(&applications).Error
	return applications, err
}

func (r *opportunityRepository) ListApplicationsByOpportunity(ctx context.Context, opportunityID uuid.UUID) ([]models.Application, error) {
	var applications []models.Application
	err := r.db.WithContext(ctx).
		Where("opportunity_id = ?", opportunityID).
		Order("applied_at ASC").
		Find(&applications).Error
	return applications, err
}

func (r *opportunityRepository) UpdateApplication(ctx context.Context, application *models.Application) error {
	return r.db.WithContext(ctx).Save(application).Error
}

func (r *opportunityRepository) ListAppliedIDs(ctx context.Context, studentID uuid.UUID, opportunityIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(opportunityIDs))
	if len(opportunityIDs) == 0 {
		return out, nil
	}

	var applications []models.Application
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND opportunity_id IN ?", studentID, opportunityIDs).
		Find(&applications).Error
	if err != nil {
		return nil, err
	}
	for _, a := range applications {
		out[a.OpportunityID] = true
	}
	return out, nil
}
