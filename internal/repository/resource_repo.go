package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noah-isme/aegis-go-api/internal/models"
)

// ResourceRepository exposes persistence helpers for course resources.
type ResourceRepository interface {
	Create(ctx context.Context, resource *models.AcademicResource) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.AcademicResource, error)
	ListByCourse(ctx context.Context, courseID uuid.UUID, resourceType string) ([]models.AcademicResource, error)
	SetVerified(ctx context.Context, id uuid.UUID, verified bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type resourceRepository struct {
	db *gorm.DB
}

// NewResourceRepository constructs the repository implementation.
func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &resourceRepository{db: db}
}

func (r *resourceRepository) Create(ctx context.Context, resource *models.AcademicResource) error {
	return r.db.WithContext(ctx).Create(resource).Error
}

func (r *resourceRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.AcademicResource, error) {
	var resource models.AcademicResource
	if err := r.db.WithContext(ctx).First(&resource, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &resource, nil
}

func (r *resourceRepository) ListByCourse(ctx context.Context, courseID uuid.UUID, resourceType string) ([]models.AcademicResource, error) {
	query := r.db.WithContext(ctx).Where("course_id = ?", courseID)
	if resourceType != "" {
		query = query.Where("resource_type = ?", resourceType)
	}

	var resources []models.AcademicResource
	err := query.Order("created_at DESC").Find(&resources).Error
	return resources, err
}

func (r *resourceRepository) SetVerified(ctx context.Context, id uuid.UUID, verified bool) error {
	return r.db.WithContext(ctx).
		Model(&models.AcademicResource{}).
		Where("id = ?", id).
		Update("is_verified", verified).Error
}

func (r *resourceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.AcademicResource{}, "id = ?", id).Error
}
