package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/aegis-go-api/internal/auth"
	"github.com/noah-isme/aegis-go-api/internal/dto"
	"github.com/noah-isme/aegis-go-api/internal/models"
	"github.com/noah-isme/aegis-go-api/internal/repository"
)

var (
	// ErrCourseNotFound covers missing courses.
	ErrCourseNotFound = errors.New("course not found")
	// ErrCourseCodeTaken rejects duplicate course codes.
	ErrCourseCodeTaken = errors.New("course code already exists")
	// ErrNotEnrolled rejects attendance and summary reads for students
	// outside the course.
	ErrNotEnrolled = errors.New("student is not enrolled in this course")
	// ErrAlreadyEnrolled rejects repeat enrollment attempts.
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
	// ErrNotCourseInstructor limits attendance marking to the course's
	// instructor or an admin.
	ErrNotCourseInstructor = errors.New("only the course instructor may do this")
	// ErrAcademicForbidden rejects actions the caller's role denies.
	ErrAcademicForbidden = errors.New("not authorized for this action")
	// ErrResourceNotFound covers missing academic resources.
	ErrResourceNotFound = errors.New("resource not found")
	// ErrInstructorNotFound rejects course creation against an unknown
	// instructor email.
	ErrInstructorNotFound = errors.New("instructor email does not match any account")
)

// AcademicService exposes courses, enrollment, attendance, resources and
// the academic calendar.
type AcademicService interface {
	CreateCourse(ctx context.Context, actor models.User, req dto.CreateCourseRequest) (*dto.CourseResponse, error)
	ListCourses(ctx context.Context, filter dto.CourseFilter) (dto.PaginatedResponse[dto.CourseResponse], error)
	GetCourse(ctx context.Context, id uuid.UUID) (*dto.CourseDetailResponse, error)

	Enroll(ctx context.Context, actor models.User, courseID uuid.UUID) error
	Unenroll(ctx context.Context, actor models.User, courseID uuid.UUID) error
	MyCourses(ctx context.Context, actor models.User) ([]dto.CourseResponse, error)

	MarkAttendance(ctx context.Context, actor models.User, req dto.MarkAttendanceRequest) (*dto.AttendanceResponse, error)
	MyAttendance(ctx context.Context, actor models.User, courseID uuid.UUID) ([]dto.AttendanceResponse, *repository.AttendanceSummary, error)

	AddResource(ctx context.Context, actor models.User, courseID uuid.UUID, req dto.CreateResourceRequest) (*dto.ResourceResponse, error)
	ListResources(ctx context.Context, courseID uuid.UUID, resourceType string) ([]dto.ResourceResponse, error)
	VerifyResource(ctx context.Context, actor models.User, resourceID uuid.UUID) error

	CreateEvent(ctx context.Context, actor models.User, req dto.CreateEventRequest) (*dto.EventResponse, error)
	ListEvents(ctx context.Context, actor models.User, filter repository.EventFilter) ([]dto.EventResponse, error)
}

type academicService struct {
	courses    repository.CourseRepository
	attendance repository.AttendanceRepository
	resources  repository.ResourceRepository
	events     repository.EventRepository
	users      repository.UserRepository
	logger     zerolog.Logger
}

// NewAcademicService constructs the academic service.
func NewAcademicService(
	courses repository.CourseRepository,
	attendance repository.AttendanceRepository,
	resources repository.ResourceRepository,
	events repository.EventRepository,
	users repository.UserRepository,
	logger zerolog.Logger,
) AcademicService {
	return &academicService{
		courses:    courses,
		attendance: attendance,
		resources:  resources,
		events:     events,
		users:      users,
		logger:     logger.With().Str("component", "academic_service").Logger(),
	}
}

func (s *academicService) CreateCourse(ctx context.Context, actor models.User, req dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	if !auth.IsFacultyOrAdmin(actor) {
		return nil, ErrAcademicForbidden
	}

	if _, err := s.courses.FindByCode(ctx, req.Code); err == nil {
		return nil, ErrCourseCodeTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	course := models.Course{
		Code:        req.Code,
		Title:       req.Title,
		Description: req.Description,
		Credits:     req.Credits,
		Department:  req.Department,
		CourseType:  req.CourseType,
		Semester:    req.Semester,
	}

	var instructor *models.User
	switch {
	case auth.IsAdmin(actor) && req.InstructorEmail != nil:
		found, err := s.users.FindByEmail(ctx, *req.InstructorEmail)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInstructorNotFound
			}
			return nil, err
		}
		instructor = found
		course.InstructorID = &found.ID
	case actor.Role == models.RoleFaculty:
		instructor = &actor
		course.InstructorID = &actor.ID
	}

	if err := s.courses.Create(ctx, &course); err != nil {
		return nil, err
	}

	s.logger.Info().Str("course_code", course.Code).Msg("course created")

	resp := dto.NewCourseResponse(course, instructor)
	return &resp, nil
}

func (s *academicService) ListCourses(ctx context.Context, filter dto.CourseFilter) (dto.PaginatedResponse[dto.CourseResponse], error) {
	courses, total, err := s.courses.List(ctx, filter)
	if err != nil {
		return dto.PaginatedResponse[dto.CourseResponse]{}, err
	}

	responses, err := s.toCourseResponses(ctx, courses)
	if err != nil {
		return dto.PaginatedResponse[dto.CourseResponse]{}, err
	}

	page, limit := repository.NormalizePage(filter.Page, filter.Limit)
	return dto.NewPaginatedResponse(responses, total, page, limit), nil
}

func (s *academicService) GetCourse(ctx context.Context, id uuid.UUID) (*dto.CourseDetailResponse, error) {
	course, err := s.findCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.courses.CountEnrollments(ctx, id)
	if err != nil {
		return nil, err
	}

	responses, err := s.toCourseResponses(ctx, []models.Course{*course})
	if err != nil {
		return nil, err
	}

	return &dto.CourseDetailResponse{
		Course:        responses[0],
		EnrolledCount: enrolled,
	}, nil
}

func (s *academicService) Enroll(ctx context.Context, actor models.User, courseID uuid.UUID) error {
	if !auth.IsStudent(actor) {
		return ErrAcademicForbidden
	}
	if _, err := s.findCourse(ctx, courseID); err != nil {
		return err
	}

	enrollment := models.CourseEnrollment{StudentID: actor.ID, CourseID: courseID}
	created, err := s.courses.Enroll(ctx, &enrollment)
	if err != nil {
		return err
	}
	if !created {
		return ErrAlreadyEnrolled
	}
	return nil
}

func (s *academicService) Unenroll(ctx context.Context, actor models.User, courseID uuid.UUID) error {
	removed, err := s.courses.Unenroll(ctx, actor.ID, courseID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotEnrolled
	}
	return nil
}

func (s *academicService) MyCourses(ctx context.Context, actor models.User) ([]dto.CourseResponse, error) {
	enrollments, err := s.courses.ListEnrollmentsByStudent(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	courses := make([]models.Course, 0, len(enrollments))
	for _, e := range enrollments {
		course, err := s.courses.FindByID(ctx, e.CourseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		courses = append(courses, *course)
	}

	return s.toCourseResponses(ctx, courses)
}

// MarkAttendance upserts the day's log so re-marking a date overwrites
// the earlier status instead of failing.
func (s *academicService) MarkAttendance(ctx context.Context, actor models.User, req dto.MarkAttendanceRequest) (*dto.AttendanceResponse, error) {
	course, err := s.findCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	if !s.canMarkAttendance(actor, *course) {
		return nil, ErrNotCourseInstructor
	}

	enrollment, err := s.courses.FindEnrollment(ctx, req.StudentID, req.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, err
	}

	log := models.AttendanceLog{
		EnrollmentID: enrollment.ID,
		Date:         req.Date,
		Status:       req.Status,
		Remarks:      req.Remarks,
	}
	if err := s.attendance.Upsert(ctx, &log); err != nil {
		return nil, err
	}

	resp := dto.NewAttendanceResponse(log)
	return &resp, nil
}

func (s *academicService) MyAttendance(ctx context.Context, actor models.User, courseID uuid.UUID) ([]dto.AttendanceResponse, *repository.AttendanceSummary, error) {
	enrollment, err := s.courses.FindEnrollment(ctx, actor.ID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotEnrolled
		}
		return nil, nil, err
	}

	logs, err := s.attendance.ListByEnrollment(ctx, enrollment.ID)
	if err != nil {
		return nil, nil, err
	}

	summary, err := s.attendance.Summarize(ctx, enrollment.ID)
	if err != nil {
		return nil, nil, err
	}

	responses := make([]dto.AttendanceResponse, 0, len(logs))
	for _, log := range logs {
		responses = append(responses, dto.NewAttendanceResponse(log))
	}
	return responses, summary, nil
}

func (s *academicService) AddResource(ctx context.Context, actor models.User, courseID uuid.UUID, req dto.CreateResourceRequest) (*dto.ResourceResponse, error) {
	course, err := s.findCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	resource := models.AcademicResource{
		CourseID:     course.ID,
		UploadedBy:   &actor.ID,
		Title:        req.Title,
		Description:  req.Description,
		ResourceType: req.ResourceType,
		FileURL:      req.FileURL,
		Year:         req.Year,
		Tags:         req.Tags,
		IsVerified:   auth.IsFacultyOrAdmin(actor),
	}
	if err := s.resources.Create(ctx, &resource); err != nil {
		return nil, err
	}

	resp := dto.NewResourceResponse(resource, &actor)
	return &resp, nil
}

func (s *academicService) ListResources(ctx context.Context, courseID uuid.UUID, resourceType string) ([]dto.ResourceResponse, error) {
	if _, err := s.findCourse(ctx, courseID); err != nil {
		return nil, err
	}

	resources, err := s.resources.ListByCourse(ctx, courseID, resourceType)
	if err != nil {
		return nil, err
	}

	uploaderIDs := make([]uuid.UUID, 0, len(resources))
	for _, r := range resources {
		if r.UploadedBy != nil {
			uploaderIDs = append(uploaderIDs, *r.UploadedBy)
		}
	}
	uploaders, err := s.users.FindByIDs(ctx, uploaderIDs)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ResourceResponse, 0, len(resources))
	for _, r := range resources {
		responses = append(responses, dto.NewResourceResponse(r, lookupUser(uploaders, r.UploadedBy)))
	}
	return responses, nil
}

func (s *academicService) VerifyResource(ctx context.Context, actor models.User, resourceID uuid.UUID) error {
	if !auth.IsFacultyOrAdmin(actor) {
		return ErrAcademicForbidden
	}

	if _, err := s.resources.FindByID(ctx, resourceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResourceNotFound
		}
		return err
	}
	return s.resources.SetVerified(ctx, resourceID, true)
}

func (s *academicService) CreateEvent(ctx context.Context, actor models.User, req dto.CreateEventRequest) (*dto.EventResponse, error) {
	if !auth.IsFacultyOrAdmin(actor) {
		return nil, ErrAcademicForbidden
	}

	var course *models.Course
	if req.CourseID != nil {
		found, err := s.findCourse(ctx, *req.CourseID)
		if err != nil {
			return nil, err
		}
		course = found
	}

	event := models.AcademicEvent{
		CourseID:    req.CourseID,
		CreatedBy:   &actor.ID,
		Title:       req.Title,
		Description: req.Description,
		EventType:   req.EventType,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	}
	if err := s.events.Create(ctx, &event); err != nil {
		return nil, err
	}

	resp := dto.NewEventResponse(event, course)
	return &resp, nil
}

// ListEvents assembles the personal calendar. Students see global
// events plus events of their enrolled courses; faculty and admins see
// the full calendar they maintain.
func (s *academicService) ListEvents(ctx context.Context, actor models.User, filter repository.EventFilter) ([]dto.EventResponse, error) {
	if filter.From == nil {
		startOfDay := time.Now().Truncate(24 * time.Hour)
		filter.From = &startOfDay
	}

	if actor.Role == models.RoleStudent {
		enrollments, err := s.courses.ListEnrollmentsByStudent(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		filter.RestrictToCourses = true
		filter.CourseIDs = make([]uuid.UUID, 0, len(enrollments))
		for _, enrollment := range enrollments {
			filter.CourseIDs = append(filter.CourseIDs, enrollment.CourseID)
		}
	}

	events, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	courseCache := map[uuid.UUID]*models.Course{}
	responses := make([]dto.EventResponse, 0, len(events))
	for _, event := range events {
		var course *models.Course
		if event.CourseID != nil {
			cached, ok := courseCache[*event.CourseID]
			if !ok {
				cached, err = s.courses.FindByID(ctx, *event.CourseID)
				if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, err
				}
				courseCache[*event.CourseID] = cached
			}
			course = cached
		}
		responses = append(responses, dto.NewEventResponse(event, course))
	}
	return responses, nil
}

func (s *academicService) canMarkAttendance(actor models.User, course models.Course) bool {
	if auth.IsAdmin(actor) {
		return true
	}
	return actor.Role == models.RoleFaculty &&
		course.InstructorID != nil && *course.InstructorID == actor.ID
}

func (s *academicService) findCourse(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	return course, nil
}

func (s *academicService) toCourseResponses(ctx context.Context, courses []models.Course) ([]dto.CourseResponse, error) {
	instructorIDs := make([]uuid.UUID, 0, len(courses))
	for _, c := range courses {
		if c.InstructorID != nil {
			instructorIDs = append(instructorIDs, *c.InstructorID)
		}
	}
	instructors, err := s.users.FindByIDs(ctx, instructorIDs)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CourseResponse, 0, len(courses))
	for _, c := range courses {
		responses = append(responses, dto.NewCourseResponse(c, lookupUser(instructors, c.InstructorID)))
	}
	return responses, nil
}
