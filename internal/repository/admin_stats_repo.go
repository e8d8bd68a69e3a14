package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/aegis-go-api/internal/dto"
	"github.com/noah-isme/aegis-go-api/internal/models"
)

// AdminStatsRepository supplies aggregate counts for the admin
// dashboard.
type AdminStatsRepository interface {
	Collect(ctx context.Context) (*dto.SystemStats, error)
}

type adminStatsRepository struct {
	db *gorm.DB
}

// NewAdminStatsRepository constructs the stats repository.
func NewAdminStatsRepository(db *gorm.DB) AdminStatsRepository {
	return &adminStatsRepository{db: db}
}

func (r *adminStatsRepository) Collect(ctx context.Context) (*dto.SystemStats, error) {
	stats := &dto.SystemStats{
		UsersByRole:        map[string]int64{},
		GrievancesByStatus: map[string]int64{},
	}

	db := r.db.WithContext(ctx)

	if err := db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).
		Where("status = ?", models.StatusActive).
		Count(&stats.ActiveUsers).Error; err != nil {
		return nil, err
	}

	type bucket struct {
		Key   string
		Count int64
	}

	var roleBuckets []bucket
	if err := db.Model(&models.User{}).
		Select("role AS key, COUNT(*) AS count").
		Group("role").
		Scan(&roleBuckets).Error; err != nil {
		return nil, err
	}
	for _, b := range roleBuckets {
		stats.UsersByRole[b.Key] = b.Count
	}

	if err := db.Model(&models.Grievance{}).Count(&stats.TotalGrievances).Error; err != nil {
		return nil, err
	}

	var statusBuckets []bucket
	if err := db.Model(&models.Grievance{}).
		Select("status AS key, COUNT(*) AS count").
		Group("status").
		Scan(&statusBuckets).Error; err != nil {
		return nil, err
	}
	for _, b := range statusBuckets {
		stats.GrievancesByStatus[b.Key] = b.Count
	}

	if err := db.Model(&models.Course{}).Count(&stats.TotalCourses).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Opportunity{}).Count(&stats.TotalOpportunities).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Application{}).Count(&stats.TotalApplications).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
