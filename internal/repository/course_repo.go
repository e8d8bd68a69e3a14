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

// CourseRepository exposes persistence helpers for courses and their
// enrollments.
type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	FindByCode(ctx context.Context, code string) (*models.Course, error)
	List(ctx context.Context, filter dto.CourseFilter) ([]models.Course, int64, error)

	Enroll(ctx context.Context, enrollment *models.CourseEnrollment) (bool, error)
	Unenroll(ctx context.Context, studentID, courseID uuid.UUID) (bool, error)
	FindEnrollment(ctx context.Context, studentID, courseID uuid.UUID) (*models.CourseEnrollment, error)
	ListEnrollmentsByStudent(ctx context.Context, studentID uuid.UUID) ([]models.CourseEnrollment, error)
	ListEnrollmentsByCourse(ctx context.Context, courseID uuid.UUID) ([]models.CourseEnrollment, error)
	CountEnrollments(ctx context.Context, courseID uuid.UUID) (int64, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository constructs the repository implementation.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepository) Update(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Save(course).Error
}

func (r *courseRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) List(ctx context.Context, filter dto.CourseFilter) ([]models.Course, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Course{})

	if filter.Department != "" {
		query = query.Where("department = ?", filter.Department)
	}
	if filter.Semester != "" {
		query = query.Where("semester = ?", filter.Semester)
	}
	if filter.CourseType != "" {
		query = query.Where("course_type = ?", filter.CourseType)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(code) LIKE ? OR LOWER(title) LIKE ?", like, like)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = paginate(query, filter.Page, filter.Limit)

	var courses []models.Course
	if err := query.Order("code ASC").Find(&courses).Error; err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

// Enroll inserts the enrollment, reporting false when the student was
// already enrolled. The unique index absorbs concurrent duplicates.
func (r *courseRepository) Enroll(ctx context.Context, enrollment *models.CourseEnrollment) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(enrollment)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *courseRepository) Unenroll(ctx context.Context, studentID, courseID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Delete(&models.CourseEnrollment{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *courseRepository) FindEnrollment(ctx context.Context, studentID, courseID uuid.UUID) (*models.CourseEnrollment, error) {
	var enrollment models.CourseEnrollment
	err := r.db.WithContext(ctx).
		First(&enrollment, "student_id = ? AND course_id = ?", studentID, courseID).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *courseRepository) ListEnrollmentsByStudent(ctx context.Context, studentID uuid.UUID) ([]models.CourseEnrollment, error) {
	var enrollments []models.CourseEnrollment
	err := r.db.WithContext(ctx).
		Joins("JOIN courses ON courses.id = course_enrollments.course_id").
		Where("course_enrollments.student_id = ?", studentID).
		Order("courses.semester DESC, courses.code ASC").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *courseRepository) ListEnrollmentsByCourse(ctx context.Context, courseID uuid.UUID) ([]models.CourseEnrollment, error) {
	var enrollments []models.CourseEnrollment
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("enrolled_at ASC").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *courseRepository) CountEnrollments(ctx context.Context, courseID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CourseEnrollment{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	return count, err
}
