package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/aegis-go-api/internal/config"
	"github.com/noah-isme/aegis-go-api/internal/dto"
	"github.com/noah-isme/aegis-go-api/internal/middleware"
	"github.com/noah-isme/aegis-go-api/internal/models"
	"github.com/noah-isme/aegis-go-api/internal/service"
	"github.com/noah-isme/aegis-go-api/internal/utils"
)

const stateCookieName = "aegis_oauth_state"

// AuthHandler drives the sign-in flow and session endpoints.
type AuthHandler struct {
	service service.AuthService
	cfg     config.Config
	logger  zerolog.Logger
}

// NewAuthHandler constructs the auth handler.
func NewAuthHandler(service service.AuthService, cfg config.Config, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		cfg:     cfg,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register wires the public auth routes.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Get("/google/login", h.login)
	router.Get("/google/callback", h.callback)
	router.Post("/logout", h.logout)

	if h.cfg.DevRoutesEnabled {
		router.Post("/dev/login", h.devLogin)
	}
}

// RegisterProtected wires the routes that need a resolved session.
func (h *AuthHandler) RegisterProtected(router fiber.Router) {
	router.Get("/me", h.me)

	if h.cfg.DevRoutesEnabled {
		router.Put("/dev/role", h.updateOwnRole)
	}
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	state := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.Redirect(h.service.LoginURL(state), fiber.StatusTemporaryRedirect)
}

func (h *AuthHandler) callback(c *fiber.Ctx) error {
	state := c.Query("state")
	if state == "" || state != c.Cookies(stateCookieName) {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid oauth state")
	}
	h.clearCookie(c, stateCookieName)

	code := c.Query("code")
	if code == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "missing authorization code")
	}

	user, token, err := h.service.HandleCallback(c.UserContext(), code, c.IP())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailDomainNotAllowed):
			return c.Redirect(h.cfg.FrontendURL+"/login?error=domain_not_allowed", fiber.StatusTemporaryRedirect)
		case errors.Is(err, service.ErrAccountNotActive):
			return c.Redirect(h.cfg.FrontendURL+"/login?error=account_disabled", fiber.StatusTemporaryRedirect)
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("google callback failed")
			return c.Redirect(h.cfg.FrontendURL+"/login?error=auth_failed", fiber.StatusTemporaryRedirect)
		}
	}

	h.setSessionCookie(c, token)
	requestLogger(h.logger, c).Info().Str("user_id", user.ID.String()).Msg("user signed in")

	return c.Redirect(h.cfg.FrontendURL+"/dashboard", fiber.StatusTemporaryRedirect)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	if token := c.Cookies(h.cfg.SessionCookieName); token != "" {
		if err := h.service.Logout(c.UserContext(), token); err != nil {
			requestLogger(h.logger, c).Warn().Err(err).Msg("failed to delete session")
		}
	}
	h.clearCookie(c, h.cfg.SessionCookieName)

	return utils.SendSuccess(c, "signed out", nil)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}
	return utils.SendSuccess(c, "", dto.NewUserResponse(user))
}

func (h *AuthHandler) devLogin(c *fiber.Ctx) error {
	var payload struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&payload); err != nil || payload.Email == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	user, token, err := h.service.DevLogin(c.UserContext(), payload.Email)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotActive) {
			return utils.SendError(c, fiber.StatusForbidden, "account disabled")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("dev login failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to sign in")
	}

	h.setSessionCookie(c, token)
	return utils.SendSuccess(c, "signed in", dto.NewUserResponse(*user))
}

func (h *AuthHandler) updateOwnRole(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.UpdateRoleRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if payload.Role != models.RoleStudent && payload.Role != models.RoleFaculty &&
		payload.Role != models.RoleAuthority && payload.Role != models.RoleAdmin {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid role")
	}

	updated, err := h.service.UpdateOwnRole(c.UserContext(), user, payload.Role, c.IP())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to update role")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update role")
	}
	return utils.SendSuccess(c, "role updated", dto.NewUserResponse(*updated))
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.SessionCookieName,
		Value:    token,
		Expires:  time.Now().Add(h.cfg.SessionTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

func (h *AuthHandler) clearCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}
