package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/aegis-go-api/internal/dto"
	"github.com/noah-isme/aegis-go-api/internal/middleware"
	"github.com/noah-isme/aegis-go-api/internal/models"
	"github.com/noah-isme/aegis-go-api/internal/service"
	"github.com/noah-isme/aegis-go-api/internal/utils"
)

// OpportunityHandler exposes postings and applications.
type OpportunityHandler struct {
	service  service.OpportunityService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewOpportunityHandler constructs the opportunity handler.
func NewOpportunityHandler(service service.OpportunityService, validate *validator.Validate, logger zerolog.Logger) *OpportunityHandler {
	return &OpportunityHandler{
		service:  service,
		validate: validate,
		logger:   logger.With().Str("component", "opportunity_handler").Logger(),
	}
}

// RegisterPublic wires the browse routes; anonymous callers see the feed
// with has_applied always false.
func (h *OpportunityHandler) RegisterPublic(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
}

// Register wires the session-gated opportunity routes.
func (h *OpportunityHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Delete("/:id", h.deactivate)
	router.Post("/:id/apply", h.apply)
	router.Get("/applications/my", h.myApplications)
	router.Get("/:id/applications", h.listApplicants)
	router.Patch("/applications/:id", h.updateApplicationStatus)
}

func (h *OpportunityHandler) create(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.CreateOpportunityRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validate.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
	}

	response, err := h.service.Create(c.UserContext(), user, payload)
	if err != nil {
		return h.mapError(c, err, "failed to post opportunity")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "opportunity posted", response)
}

func (h *OpportunityHandler) list(c *fiber.Ctx) error {
	filter := dto.OpportunityFilter{
		Department: strings.TrimSpace(c.Query("department")),
		Type:       strings.TrimSpace(c.Query("opportunity_type")),
	}

	var viewer *models.User
	if user, ok := middleware.CurrentUser(c); ok {
		viewer = &user
	}

	response, err := h.service.List(c.UserContext(), viewer, filter)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list opportunities")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list opportunities")
	}
	return utils.SendSuccess(c, "", response)
}

func (h *OpportunityHandler) get(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid opportunity id")
	}

	var viewer *models.User
	if user, ok := middleware.CurrentUser(c); ok {
		viewer = &user
	}

	response, err := h.service.Get(c.UserContext(), viewer, id)
	if err != nil {
		return h.mapError(c, err, "failed to load opportunity")
	}
	return utils.SendSuccess(c, "", response)
}

func (h *OpportunityHandler) deactivate(c *fiber.Ctx) error {
	user, id, err := h.actorAndID(c)
	if err != nil {
		return err
	}

	if err := h.service.Deactivate(c.UserContext(), user, id); err != nil {
		return h.mapError(c, err, "failed to deactivate opportunity")
	}
	return utils.SendSuccess(c, "opportunity deactivated", nil)
}

func (h *OpportunityHandler) apply(c *fiber.Ctx) error {
	user, id, err := h.actorAndID(c)
	if err != nil {
		return err
	}

	var payload dto.ApplyRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validate.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
	}

	response, err := h.service.Apply(c.UserContext(), user, id, payload)
	if err != nil {
		return h.mapError(c, err, "failed to apply")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "application submitted", response)
}

func (h *OpportunityHandler) myApplications(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	response, err := h.service.MyApplications(c.UserContext(), user)
	if err != nil {
		return h.mapError(c, err, "failed to list applications")
	}
	return utils.SendSuccess(c, "", response)
}

func (h *OpportunityHandler) listApplicants(c *fiber.Ctx) error {
	user, id, err := h.actorAndID(c)
	if err != nil {
		return err
	}

	response, err := h.service.ListApplicants(c.UserContext(), user, id)
	if err != nil {
		return h.mapError(c, err, "failed to list applicants")
	}
	return utils.SendSuccess(c, "", response)
}

func (h *OpportunityHandler) updateApplicationStatus(c *fiber.Ctx) error {
	user, id, err := h.actorAndID(c)
	if err != nil {
		return err
	}

	var payload dto.UpdateApplicationStatusRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validate.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
	}

	response, err := h.service.UpdateApplicationStatus(c.UserContext(), user, id, payload)
	if err != nil {
		return h.mapError(c, err, "failed to update application")
	}
	return utils.SendSuccess(c, "application updated", response)
}

func (h *OpportunityHandler) actorAndID(c *fiber.Ctx) (models.User, uuid.UUID, error) {
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

func (h *OpportunityHandler) mapError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrOpportunityNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "opportunity not found")
	case errors.Is(err, service.ErrApplicationNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "application not found")
	case errors.Is(err, service.ErrOpportunityForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	case errors.Is(err, service.ErrAlreadyApplied):
		return utils.SendError(c, fiber.StatusBadRequest, "already applied")
	case errors.Is(err, service.ErrDeadlinePassed):
		return utils.SendError(c, fiber.StatusBadRequest, "application deadline has passed")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
