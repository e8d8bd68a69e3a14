package handler

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
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

const maxPhotoSize = 5 << 20

// GrievanceHandler exposes the grievance tracking endpoints.
type GrievanceHandler struct {
	service  service.GrievanceService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewGrievanceHandler constructs the grievance handler.
func NewGrievanceHandler(service service.GrievanceService, validate *validator.Validate, logger zerolog.Logger) *GrievanceHandler {
	return &GrievanceHandler{
		service:  service,
		validate: validate,
		logger:   logger.With().Str("component", "grievance_handler").Logger(),
	}
}

// RegisterPublic wires the feed routes; sessions are optional here so
// signed-in viewers get personalized upvote state.
func (h *GrievanceHandler) RegisterPublic(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
}

// Register wires the session-gated grievance routes.
func (h *GrievanceHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Delete("/:id", h.delete)
	router.Patch("/:id/status", h.updateStatus)
	router.Patch("/:id/assign", h.assign)
	router.Post("/:id/resolve", h.resolve)
	router.Get("/:id/history", h.history)
	router.Post("/:id/comments", h.addComment)
	router.Get("/:id/comments", h.listComments)
	router.Post("/:id/upvote", h.toggleUpvote)
	router.Post("/:id/photos", h.uploadPhotos)
}

func (h *GrievanceHandler) create(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.CreateGrievanceRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validate.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
	}

	response, err := h.service.Create(c.UserContext(), user, payload)
	if err != nil {
		return h.mapError(c, err, "failed to submit grievance")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "grievance submitted", response)
}

func (h *GrievanceHandler) list(c *fiber.Ctx) error {
	filter := h.parseFilter(c)

	var viewer *models.User
	if user, ok := middleware.CurrentUser(c); ok {
		viewer = &user
	}

	response, err := h.service.List(c.UserContext(), viewer, filter)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list grievances")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list grievances")
	}
	return utils.SendSuccess(c, "", response)
}

func (h *GrievanceHandler) get(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid grievance id")
	}

	var viewer *models.User
	if user, ok := middleware.CurrentUser(c); ok {
		viewer = &user
	}

	response, err := h.service.Get(c.UserContext(), viewer, id)
	if err != nil {
		return h.mapError(c, err, "failed to load grievance")
	}
	return utils.SendSuccess(c, "", response)
}

func (h *GrievanceHandler) delete(c *fiber.Ctx) error {
	user, id, err := h.actorAndID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.UserContext(), user, id); err != nil {
		return h.mapError(c, err, "failed to delete grievance")
	}
	return utils.SendSuccess(c, "grievance deleted", nil)
}

func (h *GrievanceHandler) updateStatus(c *fiber.Ctx) error {
	user, id, err := h.actorAndID(c)
	if err != nil {
		return err
	}

	var payload dto.UpdateGrievanceStatusRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validate.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
	}

	response, err := h.service.UpdateStatus(c.UserContext(), user, id, payload)
	if err != nil {
		return h.mapError(c, err, "failed to update status")
	}
	return utils.SendSuccess(c, "status updated", response)
}

func (h *GrievanceHandler) assign(c *fiber.Ctx) error {
	user, id, err := h.actorAndID(c)
	if err != nil {
		return err
	}

	var payload dto.AssignGrievanceRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if payload.AssignedTo == nil && payload.AssignedDepartment == nil {
		return utils.SendError(c, fiber.StatusBadRequest, "nothing to assign")
	}

	response, err := h.service.Assign(c.UserContext(), user, id, payload)
	if err != nil {
		return h.mapError(c, err, "failed to assign grievance")
	}
	return utils.SendSuccess(c, "grievance assigned", response)
}

func (h *GrievanceHandler) resolve(c *fiber.Ctx) error {
	user, id, err := h.actorAndID(c)
	if err != nil {
		return err
	}

	var payload dto.ResolveGrievanceRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validate.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
	}

	response, err := h.service.Resolve(c.UserContext(), user, id, payload)
	if err != nil {
		return h.mapError(c, err, "failed to resolve grievance")
	}
	return utils.SendSuccess(c, "grievance resolved", response)
}

func (h *GrievanceHandler) history(c *fiber.Ctx) error {
	user, id, err := h.actorAndID(c)
	if err != nil {
		return err
	}

	response, err := h.service.History(c.UserContext(), user, id)
	if err != nil {
		return h.mapError(c, err, "failed to load history")
	}
	return utils.SendSuccess(c, "", response)
}

func (h *GrievanceHandler) addComment(c *fiber.Ctx) error {
	user, id, err := h.actorAndID(c)
	if err != nil {
		return err
	}

	var payload dto.CreateCommentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validate.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
	}

	response, err := h.service.AddComment(c.UserContext(), user, id, payload)
	if err != nil {
		return h.mapError(c, err, "failed to add comment")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "comment added", response)
}

func (h *GrievanceHandler) listComments(c *fiber.Ctx) error {
	user, id, err := h.actorAndID(c)
	if err != nil {
		return err
	}

	response, err := h.service.ListComments(c.UserContext(), user, id)
	if err != nil {
		return h.mapError(c, err, "failed to list comments")
	}
	return utils.SendSuccess(c, "", response)
}

func (h *GrievanceHandler) toggleUpvote(c *fiber.Ctx) error {
	user, id, err := h.actorAndID(c)
	if err != nil {
		return err
	}

	upvoted, count, err := h.service.ToggleUpvote(c.UserContext(), user, id)
	if err != nil {
		return h.mapError(c, err, "failed to toggle upvote")
	}
	return utils.SendSuccess(c, "", fiber.Map{
		"upvoted":      upvoted,
		"upvote_count": count,
	})
}

func (h *GrievanceHandler) uploadPhotos(c *fiber.Ctx) error {
	user, id, err := h.actorAndID(c)
	if err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "multipart form required")
	}

	files := form.File["photos"]
	if len(files) == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "no photos attached")
	}

	readers := make([]io.Reader, 0, len(files))
	for _, file := range files {
		if file.Size > maxPhotoSize {
			return utils.SendError(c, fiber.StatusBadRequest, "photo exceeds the 5 MB limit")
		}

		opened, err := file.Open()
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "unreadable photo")
		}
		content, err := io.ReadAll(opened)
		opened.Close()
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "unreadable photo")
		}

		detected := mimetype.Detect(content)
		if !strings.HasPrefix(detected.String(), "image/") {
			return utils.SendError(c, fiber.StatusBadRequest, "only image uploads are accepted")
		}

		readers = append(readers, bytes.NewReader(content))
	}

	response, err := h.service.UploadPhotos(c.UserContext(), user, id, readers)
	if err != nil {
		return h.mapError(c, err, "failed to upload photos")
	}
	return utils.SendSuccess(c, "photos uploaded", response)
}

func (h *GrievanceHandler) actorAndID(c *fiber.Ctx) (models.User, uuid.UUID, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return models.User{}, uuid.Nil, utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return models.User{}, uuid.Nil, utils.SendError(c, fiber.StatusBadRequest, "invalid grievance id")
	}
	return user, id, nil
}

func (h *GrievanceHandler) parseFilter(c *fiber.Ctx) dto.GrievanceFilter {
	filter := dto.GrievanceFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Page:   parseQueryInt(c, "page"),
		Limit:  parseQueryInt(c, "limit"),
	}

	if v := c.Query("status"); v != "" {
		status := models.GrievanceStatus(v)
		filter.Status = &status
	}
	if v := c.Query("category"); v != "" {
		category := models.GrievanceCategory(v)
		filter.Category = &category
	}
	if v := c.Query("priority"); v != "" {
		priority := models.GrievancePriority(v)
		filter.Priority = &priority
	}
	if v := c.Query("assigned_to"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filter.AssignedTo = &id
		}
	}
	if v := strings.TrimSpace(c.Query("assigned_department")); v != "" {
		filter.AssignedDepartment = &v
	}

	return filter
}

func (h *GrievanceHandler) mapError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrGrievanceNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "grievance not found")
	case errors.Is(err, service.ErrGrievanceForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	case errors.Is(err, service.ErrPhotoLimitReached):
		return utils.SendError(c, fiber.StatusBadRequest, "photo limit reached")
	case errors.Is(err, service.ErrAssigneeInvalid):
		return utils.SendError(c, fiber.StatusBadRequest, "user cannot be assigned grievances")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
