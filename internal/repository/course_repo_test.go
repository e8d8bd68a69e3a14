package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/aegis-go-api/internal/dto"
	"github.com/noah-isme/aegis-go-api/internal/models"
)

func seedCourse(t *testing.T, repo CourseRepository, code string, instructor *models.User) *models.Course {
	t.Helper()

	course := &models.Course{
		Code:       code,
		Title:      "Data Structures",
		Credits:    4,
		Department: "CSE",
		CourseType: models.CourseCore,
		Semester:   "2026-monsoon",
	}
	if instructor != nil {
		course.InstructorID = &instructor.ID
	}
	require.NoError(t, repo.Create(context.Background(), course))
	return course
}

func TestEnrollRejectsDuplicates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCourseRepository(db)
	ctx := context.Background()

	student := seedUser(t, db, "student@students.iitmandi.ac.in", models.RoleStudent)
	course := seedCourse(t, repo, "CS201", nil)

	created, err := repo.Enroll(ctx, &models.CourseEnrollment{
		StudentID: student.ID,
		CourseID:  course.ID,
	})
	require.NoError(t, err)
	require.True(t, created)

	created, err = repo.Enroll(ctx, &models.CourseEnrollment{
		StudentID: student.ID,
		CourseID:  course.ID,
	})
	require.NoError(t, err)
	require.False(t, created)

	count, err := repo.CountEnrollments(ctx, course.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestUnenrollReportsMissingEnrollment(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCourseRepository(db)
	ctx := context.Background()

	student := seedUser(t, db, "student@students.iitmandi.ac.in", models.RoleStudent)
	course := seedCourse(t, repo, "CS201", nil)

	removed, err := repo.Unenroll(ctx, student.ID, course.ID)
	require.NoError(t, err)
	require.False(t, removed)

	_, err = repo.Enroll(ctx, &models.CourseEnrollment{StudentID: student.ID, CourseID: course.ID})
	require.NoError(t, err)

	removed, err = repo.Unenroll(ctx, student.ID, course.ID)
	require.NoError(t, err)
	require.True(t, removed)

	_, err = repo.FindEnrollment(ctx, student.ID, course.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListCoursesFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCourseRepository(db)
	ctx := context.Background()

	cse := seedCourse(t, repo, "CS201", nil)
	mech := &models.Course{
		Code:       "ME101",
		Title:      "Engineering Mechanics",
		Credits:    3,
		Department: "ME",
		CourseType: models.CourseElective,
		Semester:   "2026-monsoon",
	}
	require.NoError(t, repo.Create(ctx, mech))

	courses, total, err := repo.List(ctx, dto.CourseFilter{Department: "CSE"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, cse.ID, courses[0].ID)

	courses, total, err = repo.List(ctx, dto.CourseFilter{Search: "mechanics"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, mech.ID, courses[0].ID)

	courses, _, err = repo.List(ctx, dto.CourseFilter{})
	require.NoError(t, err)
	require.Len(t, courses, 2)
	require.Equal(t, "CS201", courses[0].Code)
}

func TestListEnrollmentsByStudentOrdersByCourse(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCourseRepository(db)
	ctx := context.Background()

	student := seedUser(t, db, "student@students.iitmandi.ac.in", models.RoleStudent)

	older := &models.Course{
		Code:       "CS201",
		Title:      "Data Structures",
		Credits:    4,
		Department: "CSE",
		CourseType: models.CourseCore,
		Semester:   "2025-monsoon",
	}
	require.NoError(t, repo.Create(ctx, older))
	second := seedCourse(t, repo, "CS330", nil)
	first := seedCourse(t, repo, "CS101", nil)

	for _, course := range []*models.Course{older, second, first} {
		_, err := repo.Enroll(ctx, &models.CourseEnrollment{StudentID: student.ID, CourseID: course.ID})
		require.NoError(t, err)
	}

	enrollments, err := repo.ListEnrollmentsByStudent(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, enrollments, 3)

	// Newest semester first, then alphabetical by course code.
	require.Equal(t, first.ID, enrollments[0].CourseID)
	require.Equal(t, second.ID, enrollments[1].CourseID)
	require.Equal(t, older.ID, enrollments[2].CourseID)
}

func TestAttendanceUpsertOverwritesSameDay(t *testing.T) {
	db := setupTestDB(t)
	courses := NewCourseRepository(db)
	attendance := NewAttendanceRepository(db)
	ctx := context.Background()

	student := seedUser(t, db, "student@students.iitmandi.ac.in", models.RoleStudent)
	course := seedCourse(t, courses, "CS201", nil)

	enrollment := &models.CourseEnrollment{StudentID: student.ID, CourseID: course.ID}
	_, err := courses.Enroll(ctx, enrollment)
	require.NoError(t, err)

	require.NoError(t, attendance.Upsert(ctx, &models.AttendanceLog{
		EnrollmentID: enrollment.ID,
		Date:         "2026-09-01",
		Status:       models.AttendanceAbsent,
	}))
	require.NoError(t, attendance.Upsert(ctx, &models.AttendanceLog{
		EnrollmentID: enrollment.ID,
		Date:         "2026-09-01",
		Status:       models.AttendancePresent,
	}))
	require.NoError(t, attendance.Upsert(ctx, &models.AttendanceLog{
		EnrollmentID: enrollment.ID,
		Date:         "2026-09-02",
		Status:       models.AttendanceAbsent,
	}))

	logs, err := attendance.ListByEnrollment(ctx, enrollment.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	require.Equal(t, "2026-09-02", logs[0].Date)

	summary, err := attendance.Summarize(ctx, enrollment.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, summary.Total)
	require.EqualValues(t, 1, summary.Present)
	require.EqualValues(t, 1, summary.Absent)
	require.Zero(t, summary.Cancelled)
}
