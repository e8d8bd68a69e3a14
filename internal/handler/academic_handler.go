package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/aegis-go-api/internal/dto"
	"github.com/noah-isme/aegis-go-api/internal/middleware"
	"github.com/noah-isme/aegis-go-api/internal/models"
	"github.com/noah-isme/aegis-go-api/internal/repository"
	"github.com/noah-isme/aegis-go-api/internal/service"
	"github.com/noah-isme/aegis-go-api/internal/utils"
)

// AcademicHandler exposes courses, attendance, resources and the
// academic calendar.
type AcademicHandler struct {
	service  service.AcademicService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewAcademicHandler constructs the academic handler.
func NewAcademicHandler(service service.AcademicService, validate *validator.Validate, logger zerolog.Logger) *AcademicHandler {
	return &AcademicHandler{
		service:  service,
		validate: validate,
		logger:   logger.With().Str("component", "academic_handler").Logger(),
	}
}

// Register wires the session-gated academic routes.
func (h *AcademicHandler) Register(router fiber.Router) {
	router.Post("/courses", h.createCourse)
	router.Get("/courses", h.listCourses)
	router.Get("/courses/my", h.myCourses)
	router.Get("/courses/:id", h.getCourse)
	router.Post("/courses/:id/enroll", h.enroll)
	router.Delete("/courses/:id/enroll", h.unenroll)

	router.Post("/attendance", h.markAttendance)
	router.Get("/courses/:id/attendance/my", h.myAttendance)

	router.Post("/courses/:id/resources", h.addResource)
	router.Get("/courses/:id/resources", h.listResources)
	router.Post("/resources/:id/verify", h.verifyResource)

	router.Post("/events", h.createEvent)
	router.Get("/events", h.listEvents)
}

func (h *AcademicHandler) createCourse(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.CreateCourseRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validate.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
	}

	response, err := h.service.CreateCourse(c.UserContext(), user, payload)
	if err != nil {
		return h.mapError(c, err, "failed to create course")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "course created", response)
}

func (h *AcademicHandler) listCourses(c *fiber.Ctx) error {
	filter := dto.CourseFilter{
		Semester:   strings.TrimSpace(c.Query("semester")),
		Department: strings.TrimSpace(c.Query("department")),
		CourseType: strings.TrimSpace(c.Query("course_type")),
		Search:     strings.TrimSpace(c.Query("search")),
		Page:       parseQueryInt(c, "page"),
		Limit:      parseQueryInt(c, "limit"),
	}

	response, err := h.service.ListCourses(c.UserContext(), filter)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list courses")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list courses")
	}
	return utils.SendSuccess(c, "", response)
}

func (h *AcademicHandler) myCourses(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	response, err := h.service.MyCourses(c.UserContext(), user)
	if err != nil {
		return h.mapError(c, err, "failed to list enrolled courses")
	}
	return utils.SendSuccess(c, "", response)
}

func (h *AcademicHandler) getCourse(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	response, err := h.service.GetCourse(c.UserContext(), id)
	if err != nil {
		return h.mapError(c, err, "failed to load course")
	}
	return utils.SendSuccess(c, "", response)
}

func (h *AcademicHandler) enroll(c *fiber.Ctx) error {
	user, id, err := h.actorAndID(c)
	if err != nil {
		return err
	}

	if err := h.service.Enroll(c.UserContext(), user, id); err != nil {
		return h.mapError(c, err, "failed to enroll")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "enrolled", nil)
}

func (h *AcademicHandler) unenroll(c *fiber.Ctx) error {
	user, id, err := h.actorAndID(c)
	if err != nil {
		return err
	}

	if err := h.service.Unenroll(c.UserContext(), user, id); err != nil {
		return h.mapError(c, err, "failed to unenroll")
	}
	return utils.SendSuccess(c, "unenrolled", nil)
}

func (h *AcademicHandler) markAttendance(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.MarkAttendanceRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validate.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
	}

	response, err := h.service.MarkAttendance(c.UserContext(), user, payload)
	if err != nil {
		return h.mapError(c, err, "failed to mark attendance")
	}
	return utils.SendSuccess(c, "attendance marked", response)
}

func (h *AcademicHandler) myAttendance(c *fiber.Ctx) error {
	user, id, err := h.actorAndID(c)
	if err != nil {
		return err
	}

	logs, summary, err := h.service.MyAttendance(c.UserContext(), user, id)
	if err != nil {
		return h.mapError(c, err, "failed to load attendance")
	}
	return utils.SendSuccess(c, "", fiber.Map{
		"logs":    logs,
		"summary": summary,
	})
}

func (h *AcademicHandler) addResource(c *fiber.Ctx) error {
	user, id, err := h.actorAndID(c)
	if err != nil {
		return err
	}

	var payload dto.CreateResourceRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validate.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
	}

	response, err := h.service.AddResource(c.UserContext(), user, id, payload)
	if err != nil {
		return h.mapError(c, err, "failed to add resource")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "resource added", response)
}

func (h *AcademicHandler) listResources(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	response, err := h.service.ListResources(c.UserContext(), id, strings.TrimSpace(c.Query("resource_type")))
	if err != nil {
		return h.mapError(c, err, "failed to list resources")
	}
	return utils.SendSuccess(c, "", response)
}

func (h *AcademicHandler) verifyResource(c *fiber.Ctx) error {
	user, id, err := h.actorAndID(c)
	if err != nil {
		return err
	}

	if err := h.service.VerifyResource(c.UserContext(), user, id); err != nil {
		return h.mapError(c, err, "failed to verify resource")
	}
	return utils.SendSuccess(c, "resource verified", nil)
}

func (h *AcademicHandler) createEvent(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.CreateEventRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validate.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
	}

	response, err := h.service.CreateEvent(c.UserContext(), user, payload)
	if err != nil {
		return h.mapError(c, err, "failed to create event")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "event created", response)
}

func (h *AcademicHandler) listEvents(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	filter := repository.EventFilter{
		EventType: strings.TrimSpace(c.Query("event_type")),
	}

	if v := c.Query("course_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filter.CourseID = &id
		}
	}
	if v := c.Query("from"); v != "" {
		if from, err := time.Parse(time.RFC3339, v); err == nil {
			filter.From = &from
		}
	}
	if v := c.Query("to"); v != "" {
		if to, err := time.Parse(time.RFC3339, v); err == nil {
			filter.To = &to
		}
	}

	response, err := h.service.ListEvents(c.UserContext(), user, filter)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list events")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list events")
	}
	return utils.SendSuccess(c, "", response)
}

func (h *AcademicHandler) actorAndID(c *fiber.Ctx) (models.User, uuid.UUID, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return models.User{}, uuid.Nil, utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return models.User{}, uuid.Nil, utils.SendError(c, fiber.StatusBadRequest, "invalid id")
	}
	return user, id, nil
}

func (h *AcademicHandler) mapError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrResourceNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "resource not found")
	case errors.Is(err, service.ErrCourseCodeTaken):
		return utils.SendError(c, fiber.StatusConflict, "course code already exists")
	case errors.Is(err, service.ErrInstructorNotFound):
		return utils.SendError(c, fiber.StatusBadRequest, "instructor email does not match any account")
	case errors.Is(err, service.ErrAlreadyEnrolled):
		return utils.SendError(c, fiber.StatusBadRequest, "already enrolled")
	case errors.Is(err, service.ErrNotEnrolled):
		return utils.SendError(c, fiber.StatusBadRequest, "not enrolled in this course")
	case errors.Is(err, service.ErrNotCourseInstructor):
		return utils.SendError(c, fiber.StatusForbidden, "only the course instructor may do this")
	case errors.Is(err, service.ErrAcademicForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
