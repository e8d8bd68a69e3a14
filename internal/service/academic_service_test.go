package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/aegis-go-api/internal/dto"
	"github.com/noah-isme/aegis-go-api/internal/models"
	"github.com/noah-isme/aegis-go-api/internal/repository"
)

func newAcademicService(t *testing.T, db *gorm.DB) AcademicService {
	t.Helper()
	return NewAcademicService(
		repository.NewCourseRepository(db),
		repository.NewAttendanceRepository(db),
		repository.NewResourceRepository(db),
		repository.NewEventRepository(db),
		repository.NewUserRepository(db),
		testLogger(),
	)
}

func createCourse(t *testing.T, svc AcademicService, actor models.User, code string) *dto.CourseResponse {
	t.Helper()
	course, err := svc.CreateCourse(context.Background(), actor, dto.CreateCourseRequest{
		Code:       code,
		Title:      "Operating Systems",
		Credits:    4,
		Department: "CSE",
		CourseType: models.CourseCore,
		Semester:   "2026-monsoon",
	})
	require.NoError(t, err)
	return course
}

func TestCreateCourseBindsFacultyAsInstructor(t *testing.T) {
	db := setupTestDB(t)
	svc := newAcademicService(t, db)

	faculty := seedUser(t, db, "prof@iitmandi.ac.in", models.RoleFaculty)
	course := createCourse(t, svc, faculty, "CS330")

	require.NotNil(t, course.Instructor)
	require.Equal(t, faculty.ID, course.Instructor.ID)

	_, err := svc.CreateCourse(context.Background(), faculty, dto.CreateCourseRequest{
		Code:       "CS330",
		Title:      "Duplicate code",
		Credits:    3,
		Department: "CSE",
		CourseType: models.CourseCore,
		Semester:   "2026-monsoon",
	})
	require.ErrorIs(t, err, ErrCourseCodeTaken)
}

func TestCreateCourseRejectsStudents(t *testing.T) {
	db := setupTestDB(t)
	svc := newAcademicService(t, db)

	student := seedUser(t, db, "student@students.iitmandi.ac.in", models.RoleStudent)
	_, err := svc.CreateCourse(context.Background(), student, dto.CreateCourseRequest{
		Code:       "CS101",
		Title:      "Intro",
		Credits:    3,
		Department: "CSE",
		CourseType: models.CourseCore,
		Semester:   "2026-monsoon",
	})
	require.ErrorIs(t, err, ErrAcademicForbidden)
}

func TestEnrollTwiceFails(t *testing.T) {
	db := setupTestDB(t)
	svc := newAcademicService(t, db)
	ctx := context.Background()

	faculty := seedUser(t, db, "prof@iitmandi.ac.in", models.RoleFaculty)
	student := seedUser(t, db, "student@students.iitmandi.ac.in", models.RoleStudent)
	course := createCourse(t, svc, faculty, "CS330")

	require.NoError(t, svc.Enroll(ctx, student, course.ID))
	require.ErrorIs(t, svc.Enroll(ctx, student, course.ID), ErrAlreadyEnrolled)
	require.ErrorIs(t, svc.Enroll(ctx, faculty, course.ID), ErrAcademicForbidden)

	mine, err := svc.MyCourses(ctx, student)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, course.ID, mine[0].ID)

	require.NoError(t, svc.Unenroll(ctx, student, course.ID))
	require.ErrorIs(t, svc.Unenroll(ctx, student, course.ID), ErrNotEnrolled)
}

func TestMarkAttendanceRequiresInstructor(t *testing.T) {
	db := setupTestDB(t)
	svc := newAcademicService(t, db)
	ctx := context.Background()

	instructor := seedUser(t, db, "prof@iitmandi.ac.in", models.RoleFaculty)
	outsider := seedUser(t, db, "other.prof@iitmandi.ac.in", models.RoleFaculty)
	student := seedUser(t, db, "student@students.iitmandi.ac.in", models.RoleStudent)
	course := createCourse(t, svc, instructor, "CS330")

	require.NoError(t, svc.Enroll(ctx, student, course.ID))

	req := dto.MarkAttendanceRequest{
		StudentID: student.ID,
		CourseID:  course.ID,
		Date:      "2026-09-01",
		Status:    models.AttendancePresent,
	}

	_, err := svc.MarkAttendance(ctx, outsider, req)
	require.ErrorIs(t, err, ErrNotCourseInstructor)

	marked, err := svc.MarkAttendance(ctx, instructor, req)
	require.NoError(t, err)
	require.Equal(t, models.AttendancePresent, marked.Status)

	// Re-marking the same date overwrites instead of duplicating.
	req.Status = models.AttendanceAbsent
	_, err = svc.MarkAttendance(ctx, instructor, req)
	require.NoError(t, err)

	logs, summary, err := svc.MyAttendance(ctx, student, course.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.EqualValues(t, 1, summary.Absent)
	require.Zero(t, summary.Present)
}

func TestMarkAttendanceRequiresEnrollment(t *testing.T) {
	db := setupTestDB(t)
	svc := newAcademicService(t, db)
	ctx := context.Background()

	instructor := seedUser(t, db, "prof@iitmandi.ac.in", models.RoleFaculty)
	student := seedUser(t, db, "student@students.iitmandi.ac.in", models.RoleStudent)
	course := createCourse(t, svc, instructor, "CS330")

	_, err := svc.MarkAttendance(ctx, instructor, dto.MarkAttendanceRequest{
		StudentID: student.ID,
		CourseID:  course.ID,
		Date:      "2026-09-01",
		Status:    models.AttendancePresent,
	})
	require.ErrorIs(t, err, ErrNotEnrolled)

	_, _, err = svc.MyAttendance(ctx, student, course.ID)
	require.ErrorIs(t, err, ErrNotEnrolled)
}

func TestStudentResourcesStartUnverified(t *testing.T) {
	db := setupTestDB(t)
	svc := newAcademicService(t, db)
	ctx := context.Background()

	instructor := seedUser(t, db, "prof@iitmandi.ac.in", models.RoleFaculty)
	student := seedUser(t, db, "student@students.iitmandi.ac.in", models.RoleStudent)
	course := createCourse(t, svc, instructor, "CS330")

	fromStudent, err := svc.AddResource(ctx, student, course.ID, dto.CreateResourceRequest{
		Title:        "Midsem 2025 paper",
		ResourceType: models.ResourcePYQ,
		FileURL:      "https://files.example.com/midsem-2025.pdf",
	})
	require.NoError(t, err)
	require.False(t, fromStudent.IsVerified)

	fromFaculty, err := svc.AddResource(ctx, instructor, course.ID, dto.CreateResourceRequest{
		Title:        "Lecture 12 slides",
		ResourceType: models.ResourceLecture,
		FileURL:      "https://files.example.com/lec12.pdf",
	})
	require.NoError(t, err)
	require.True(t, fromFaculty.IsVerified)

	require.ErrorIs(t, svc.VerifyResource(ctx, student, fromStudent.ID), ErrAcademicForbidden)
	require.NoError(t, svc.VerifyResource(ctx, instructor, fromStudent.ID))

	resources, err := svc.ListResources(ctx, course.ID, "")
	require.NoError(t, err)
	require.Len(t, resources, 2)
	for _, r := range resources {
		require.True(t, r.IsVerified)
	}
}

func TestListEventsDefaultsToUpcoming(t *testing.T) {
	db := setupTestDB(t)
	svc := newAcademicService(t, db)
	ctx := context.Background()

	instructor := seedUser(t, db, "prof@iitmandi.ac.in", models.RoleFaculty)
	course := createCourse(t, svc, instructor, "CS330")

	past, err := svc.CreateEvent(ctx, instructor, dto.CreateEventRequest{
		Title:     "Last year's exam",
		EventType: models.EventExam,
		StartTime: time.Now().AddDate(-1, 0, 0),
	})
	require.NoError(t, err)

	courseID := course.ID
	upcoming, err := svc.CreateEvent(ctx, instructor, dto.CreateEventRequest{
		Title:     "Endsem exam",
		EventType: models.EventExam,
		StartTime: time.Now().AddDate(0, 1, 0),
		CourseID:  &courseID,
	})
	require.NoError(t, err)
	require.NotNil(t, upcoming.CourseCode)
	require.Equal(t, "CS330", *upcoming.CourseCode)

	events, err := svc.ListEvents(ctx, instructor, repository.EventFilter{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, upcoming.ID, events[0].ID)

	from := time.Now().AddDate(-2, 0, 0)
	events, err = svc.ListEvents(ctx, instructor, repository.EventFilter{From: &from})
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, past.ID, events[0].ID)
}

func TestListEventsScopesStudentsToEnrolledCourses(t *testing.T) {
	db := setupTestDB(t)
	svc := newAcademicService(t, db)
	ctx := context.Background()

	instructor := seedUser(t, db, "prof@iitmandi.ac.in", models.RoleFaculty)
	student := seedUser(t, db, "student@students.iitmandi.ac.in", models.RoleStudent)
	mine := createCourse(t, svc, instructor, "CS330")
	other := createCourse(t, svc, instructor, "CS550")

	require.NoError(t, svc.Enroll(ctx, student, mine.ID))

	start := time.Now().AddDate(0, 1, 0)
	mineID := mine.ID
	otherID := other.ID

	global, err := svc.CreateEvent(ctx, instructor, dto.CreateEventRequest{
		Title:     "Convocation",
		EventType: models.EventHoliday,
		StartTime: start,
	})
	require.NoError(t, err)

	enrolled, err := svc.CreateEvent(ctx, instructor, dto.CreateEventRequest{
		Title:     "CS330 endsem",
		EventType: models.EventExam,
		StartTime: start,
		CourseID:  &mineID,
	})
	require.NoError(t, err)

	_, err = svc.CreateEvent(ctx, instructor, dto.CreateEventRequest{
		Title:     "CS550 endsem",
		EventType: models.EventExam,
		StartTime: start,
		CourseID:  &otherID,
	})
	require.NoError(t, err)

	events, err := svc.ListEvents(ctx, student, repository.EventFilter{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	seen := map[string]bool{}
	for _, e := range events {
		seen[e.Title] = true
	}
	require.True(t, seen[global.Title])
	require.True(t, seen[enrolled.Title])

	// Faculty keep the full calendar they maintain.
	all, err := svc.ListEvents(ctx, instructor, repository.EventFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
}
