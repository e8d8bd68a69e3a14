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
	"github.com/noah-isme/aegis-go-api/internal/service"
	"github.com/noah-isme/aegis-go-api/internal/utils"
)

// AdminHandler exposes account administration, departments, the audit
// trail and dashboard stats. The router gates every route behind the
// admin role.
type AdminHandler struct {
	service  service.AdminService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewAdminHandler constructs the admin handler.
func NewAdminHandler(service service.AdminService, validate *validator.Validate, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		service:  service,
		validate: validate,
		logger:   logger.With().Str("component", "admin_handler").Logger(),
	}
}

// Register wires the admin routes.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Get("/users", h.listUsers)
	router.Get("/users/:id", h.getUser)
	router.Patch("/users/:id/role", h.updateRole)
	router.Patch("/users/:id/status", h.updateStatus)
	router.Get("/audit-logs", h.listAuditLogs)
	router.Get("/stats", h.stats)
	router.Get("/departments", h.listDepartments)
	router.Post("/departments", h.createDepartment)
}

// RegisterShared wires the routes every signed-in user may call. The
// grievance and profile forms need the department list without the
// admin role.
func (h *AdminHandler) RegisterShared(router fiber.Router) {
	router.Get("/departments", h.listDepartments)
}

// RegisterDev wires the development-only routes.
func (h *AdminHandler) RegisterDev(router fiber.Router) {
	router.Post("/seed", h.seed)
}

func (h *AdminHandler) listUsers(c *fiber.Ctx) error {
	filter := dto.UserFilter{
		Role:       strings.TrimSpace(c.Query("role")),
		Status:     strings.TrimSpace(c.Query("status")),
		Department: strings.TrimSpace(c.Query("department")),
		Search:     strings.TrimSpace(c.Query("search")),
		Page:       parseQueryInt(c, "page"),
		Limit:      parseQueryInt(c, "limit"),
	}

	response, err := h.service.ListUsers(c.UserContext(), filter)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list users")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list users")
	}
	return utils.SendSuccess(c, "", response)
}

func (h *AdminHandler) getUser(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	response, err := h.service.GetUser(c.UserContext(), id)
	if err != nil {
		return h.mapError(c, err, "failed to load user")
	}
	return utils.SendSuccess(c, "", response)
}

func (h *AdminHandler) updateRole(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	var payload dto.UpdateRoleRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validate.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
	}

	response, err := h.service.UpdateUserRole(c.UserContext(), actor, id, payload.Role, c.IP())
	if err != nil {
		return h.mapError(c, err, "failed to update role")
	}
	return utils.SendSuccess(c, "role updated", response)
}

func (h *AdminHandler) updateStatus(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	var payload dto.UpdateStatusRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validate.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
	}

	response, err := h.service.UpdateUserStatus(c.UserContext(), actor, id, payload.Status, c.IP())
	if err != nil {
		return h.mapError(c, err, "failed to update status")
	}
	return utils.SendSuccess(c, "status updated", response)
}

func (h *AdminHandler) listAuditLogs(c *fiber.Ctx) error {
	filter := dto.AuditLogFilter{
		Action:     strings.TrimSpace(c.Query("action")),
		EntityType: strings.TrimSpace(c.Query("entity_type")),
		Page:       parseQueryInt(c, "page"),
		Limit:      parseQueryInt(c, "limit"),
	}
	if v := c.Query("user_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filter.UserID = &id
		}
	}

	response, err := h.service.ListAuditLogs(c.UserContext(), filter)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list audit logs")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list audit logs")
	}
	return utils.SendSuccess(c, "", response)
}

func (h *AdminHandler) stats(c *fiber.Ctx) error {
	response, err := h.service.Stats(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to collect stats")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to collect stats")
	}
	return utils.SendSuccess(c, "", response)
}

func (h *AdminHandler) listDepartments(c *fiber.Ctx) error {
	departments, err := h.service.ListDepartments(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list departments")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list departments")
	}
	return utils.SendSuccess(c, "", departments)
}

func (h *AdminHandler) createDepartment(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload struct {
		Name        string  `json:"name" validate:"required,min=2,max=128"`
		Description *string `json:"description"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validate.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
	}

	department, err := h.service.CreateDepartment(c.UserContext(), actor, payload.Name, payload.Description)
	if err != nil {
		return h.mapError(c, err, "failed to create department")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "department created", department)
}

func (h *AdminHandler) seed(c *fiber.Ctx) error {
	if err := h.service.SeedSampleData(c.UserContext()); err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to seed sample data")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to seed sample data")
	}
	return utils.SendSuccess(c, "sample data seeded", nil)
}

func (h *AdminHandler) mapError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrSelfChange):
		return utils.SendError(c, fiber.StatusBadRequest, "cannot change your own role or status")
	case errors.Is(err, service.ErrDepartmentExists):
		return utils.SendError(c, fiber.StatusConflict, "department already exists")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
