package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/aegis-go-api/internal/dto"
	"github.com/noah-isme/aegis-go-api/internal/models"
)

// GrievanceRepository exposes persistence helpers for grievances and
// their satellite rows (history, comments, upvotes).
type GrievanceRepository interface {
	Create(ctx context.Context, grievance *models.Grievance) error
	Update(ctx context.Context, grievance *models.Grievance) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Grievance, error)
	List(ctx context.Context, filter dto.GrievanceFilter) ([]models.Grievance, int64, error)
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
	AppendPhotoURLs(ctx context.Context, id uuid.UUID, urls []string) (*models.Grievance, error)

	CreateStatusHistory(ctx context.Context, entry *models.GrievanceStatusHistory) error
	ListStatusHistory(ctx context.Context, grievanceID uuid.UUID) ([]models.GrievanceStatusHistory, error)

	CreateComment(ctx context.Context, comment *models.GrievanceComment) error
	ListComments(ctx context.Context, grievanceID uuid.UUID, includeInternal bool) ([]models.GrievanceComment, error)

	ToggleUpvote(ctx context.Context, grievanceID, userID uuid.UUID) (bool, error)
	HasUpvoted(ctx context.Context, grievanceID, userID uuid.UUID) (bool, error)
	ListUpvotedIDs(ctx context.Context, userID uuid.UUID, grievanceIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

type grievanceRepository struct {
	db *gorm.DB
}

// NewGrievanceRepository constructs the repository implementation.
func NewGrievanceRepository(db *gorm.DB) GrievanceRepository {
	return &grievanceRepository{db: db}
}

func (r *grievanceRepository) Create(ctx context.Context, grievance *models.Grievance) error {
	return r.db.WithContext(ctx).Create(grievance).Error
}

func (r *grievanceRepository) Update(ctx context.Context, grievance *models.Grievance) error {
	return r.db.WithContext(ctx).Save(grievance).Error
}

func (r *grievanceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("grievance_id = ?", id).Delete(&models.GrievanceUpvote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("grievance_id = ?", id).Delete(&models.GrievanceComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("grievance_id = ?", id).Delete(&models.GrievanceStatusHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Grievance{}, "id = ?", id).Error
	})
}

func (r *grievanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Grievance, error) {
	var grievance models.Grievance
	if err := r.db.WithContext(ctx).First(&grievance, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &grievance, nil
}

func (r *grievanceRepository) List(ctx context.Context, filter dto.GrievanceFilter) ([]models.Grievance, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Grievance{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}
	if filter.AssignedTo != nil {
		query = query.Where("assigned_to = ?", *filter.AssignedTo)
	}
	if filter.AssignedDepartment != nil {
		query = query.Where("assigned_department = ?", *filter.AssignedDepartment)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = paginate(query, filter.Page, filter.Limit)

	var items []models.Grievance
	if err := query.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *grievanceRepository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Grievance{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *grievanceRepository) AppendPhotoURLs(ctx context.Context, id uuid.UUID, urls []string) (*models.Grievance, error) {
	var grievance models.Grievance
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&grievance, "id = ?", id).Error; err != nil {
			return err
		}
		grievance.PhotoURLs = append(grievance.PhotoURLs, urls...)
		return tx.Model(&grievance).Update("photo_urls", grievance.PhotoURLs).Error
	})
	if err != nil {
		return nil, err
	}
	return &grievance, nil
}

func (r *grievanceRepository) CreateStatusHistory(ctx context.Context, entry *models.GrievanceStatusHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *grievanceRepository) ListStatusHistory(ctx context.Context, grievanceID uuid.UUID) ([]models.GrievanceStatusHistory, error) {
	var entries []models.GrievanceStatusHistory
	err := r.db.WithContext(ctx).
		Where("grievance_id = ?", grievanceID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

func (r *grievanceRepository) CreateComment(ctx context.Context, comment *models.GrievanceComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *grievanceRepository) ListComments(ctx context.Context, grievanceID uuid.UUID, includeInternal bool) ([]models.GrievanceComment, error) {
	query := r.db.WithContext(ctx).Where("grievance_id = ?", grievanceID)
	if !includeInternal {
		query = query.Where("is_internal = ?", false)
	}

	var comments []models.GrievanceComment
	err := query.Order("created_at ASC").Find(&comments).Error
	return comments, err
}

// ToggleUpvote flips the caller's upvote inside one transaction so the
// counter on the grievance row stays in step with the upvote rows.
func (r *grievanceRepository) ToggleUpvote(ctx context.Context, grievanceID, userID uuid.UUID) (bool, error) {
	var upvoted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("grievance_id = ? AND user_id = ?", grievanceID, userID).
			Delete(&models.GrievanceUpvote{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			upvoted = false
			return tx.Model(&models.Grievance{}).
				Where("id = ? AND upvote_count > 0", grievanceID).
				UpdateColumn("upvote_count", gorm.Expr("upvote_count - 1")).Error
		}

		upvote := models.GrievanceUpvote{GrievanceID: grievanceID, UserID: userID}
		created := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&upvote)
		if created.Error != nil {
			return created.Error
		}
		if created.RowsAffected == 0 {
			// Lost a race with a concurrent toggle; the other writer
			// already accounted for the counter.
			upvoted = true
			return nil
		}
		upvoted = true
		return tx.Model(&models.Grievance{}).
			Where("id = ?", grievanceID).
			UpdateColumn("upvote_count", gorm.Expr("upvote_count + 1")).Error
	})
	return upvoted, err
}

func (r *grievanceRepository) HasUpvoted(ctx context.Context, grievanceID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GrievanceUpvote{}).
		Where("grievance_id = ? AND user_id = ?", grievanceID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *grievanceRepository) ListUpvotedIDs(ctx context.Context, userID uuid.UUID, grievanceIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(grievanceIDs))
	if len(grievanceIDs) == 0 {
		return out, nil
	}

	var upvotes []models.GrievanceUpvote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND grievance_id IN ?", userID, grievanceIDs).
		Find(&upvotes).Error
	if err != nil {
		return nil, err
	}
	for _, u := range upvotes {
		out[u.GrievanceID] = true
	}
	return out, nil
}
