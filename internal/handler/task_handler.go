package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/aegis-go-api/internal/dto"
	"github.com/noah-isme/aegis-go-api/internal/middleware"
	"github.com/noah-isme/aegis-go-api/internal/service"
	"github.com/noah-isme/aegis-go-api/internal/utils"
)

// TaskHandler exposes the caller's personal task ledger.
type TaskHandler struct {
	service  service.TaskService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewTaskHandler constructs the task handler.
func NewTaskHandler(service service.TaskService, validate *validator.Validate, logger zerolog.Logger) *TaskHandler {
	return &TaskHandler{
		service:  service,
		validate: validate,
		logger:   logger.With().Str("component", "task_handler").Logger(),
	}
}

// Register wires the session-gated task routes.
func (h *TaskHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *TaskHandler) create(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.CreateTaskRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validate.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
	}

	response, err := h.service.Create(c.UserContext(), user, payload)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create task")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create task")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "task created", response)
}

func (h *TaskHandler) list(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	response, err := h.service.List(c.UserContext(), user, strings.TrimSpace(c.Query("status")))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list tasks")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list tasks")
	}
	return utils.SendSuccess(c, "", response)
}

func (h *TaskHandler) update(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid task id")
	}

	var payload dto.UpdateTaskRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validate.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
	}

	response, err := h.service.Update(c.UserContext(), user, id, payload)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "task not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to update task")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update task")
	}
	return utils.SendSuccess(c, "task updated", response)
}

func (h *TaskHandler) delete(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid task id")
	}

	if err := h.service.Delete(c.UserContext(), user, id); err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "task not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete task")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete task")
	}
	return utils.SendSuccess(c, "task deleted", nil)
}
