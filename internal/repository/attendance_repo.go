package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/aegis-go-api/internal/models"
)

// AttendanceSummary aggregates one enrollment's marks.
type AttendanceSummary struct {
	Total     int64 `json:"total"`
	Present   int64 `json:"present"`
	Absent    int64 `json:"absent"`
	Cancelled int64 `json:"cancelled"`
}

// AttendanceRepository exposes persistence helpers for attendance logs.
type AttendanceRepository interface {
	Upsert(ctx context.Context, log *models.AttendanceLog) error
	ListByEnrollment(ctx context.Context, enrollmentID uuid.UUID) ([]models.AttendanceLog, error)
	Summarize(ctx context.Context, enrollmentID uuid.UUID) (*AttendanceSummary, error)
}

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository constructs the repository implementation.
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

// Upsert writes the mark for (enrollment, date), overwriting any earlier
// mark for the same day.
func (r *attendanceRepository) Upsert(ctx context.Context, log *models.AttendanceLog) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "enrollment_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "remarks"}),
		}).
		Create(log).Error
}

func (r *attendanceRepository) ListByEnrollment(ctx context.Context, enrollmentID uuid.UUID) ([]models.AttendanceLog, error) {
	var logs []models.AttendanceLog
	err := r.db.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		Order("date DESC").
		Find(&logs).Error
	return logs, err
}

func (r *attendanceRepository) Summarize(ctx context.Context, enrollmentID uuid.UUID) (*AttendanceSummary, error) {
	type row struct {
		Status models.AttendanceStatus
		Count  int64
	}

	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.AttendanceLog{}).
		Select("status, COUNT(*) AS count").
		Where("enrollment_id = ?", enrollmentID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summary := &AttendanceSummary{}
	for _, rw := range rows {
		summary.Total += rw.Count
		switch rw.Status {
		case models.AttendancePresent:
			summary.Present = rw.Count
		case models.AttendanceAbsent:
			summary.Absent = rw.Count
		case models.AttendanceCancelled:
			summary.Cancelled = rw.Count
		}
	}
	return summary, nil
}
