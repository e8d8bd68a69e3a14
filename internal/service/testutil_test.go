package service

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/aegis-go-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Department{},
		&models.Grievance{},
		&models.GrievanceStatusHistory{},
		&models.GrievanceComment{},
		&models.GrievanceUpvote{},
		&models.AuditLog{},
		&models.Course{},
		&models.CourseEnrollment{},
		&models.AttendanceLog{},
		&models.AcademicResource{},
		&models.AcademicEvent{},
		&models.Opportunity{},
		&models.Application{},
		&models.PersonalTask{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string, role models.UserRole) models.User {
	t.Helper()

	user := models.User{
		Email:     email,
		GoogleID:  "google:" + email,
		Role:      role,
		Status:    models.StatusActive,
		FirstName: "Test",
		LastName:  "User",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}
