package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/noah-isme/aegis-go-api/internal/models"
	"github.com/noah-isme/aegis-go-api/internal/repository"
	"github.com/noah-isme/aegis-go-api/internal/session"
	"github.com/noah-isme/aegis-go-api/internal/utils"
)

const currentUserKey = "current_user"

// SessionConfig wires the session resolver middleware.
type SessionConfig struct {
	CookieName string
	Sessions   session.Store
	Users      repository.UserRepository
}

// RequireSession resolves the session cookie to an active user and aborts
// with 401 when it cannot. Suspended and deactivated accounts are treated
// as signed out.
func RequireSession(cfg SessionConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := resolveUser(c, cfg)
		if err != nil {
			return err
		}
		if user == nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		c.Locals(currentUserKey, *user)
		return c.Next()
	}
}

// OptionalSession resolves the session cookie when present but lets
// anonymous requests through.
func OptionalSession(cfg SessionConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := resolveUser(c, cfg)
		if err != nil {
			return err
		}
		if user != nil {
			c.Locals(currentUserKey, *user)
		}
		return c.Next()
	}
}

// RequireRoles aborts with 403 unless the resolved user holds one of the
// given roles. It must run after RequireSession.
func RequireRoles(roles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}
		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	}
}

// CurrentUser returns the user resolved by the session middleware.
func CurrentUser(c *fiber.Ctx) (models.User, bool) {
	user, ok := c.Locals(currentUserKey).(models.User)
	return user, ok
}

// resolveUser maps the cookie to a user. A nil user with a nil error
// means the request is anonymous; handler-level policy decides whether
// that is acceptable.
func resolveUser(c *fiber.Ctx, cfg SessionConfig) (*models.User, error) {
	token := c.Cookies(cfg.CookieName)
	if token == "" {
		return nil, nil
	}

	userID, err := cfg.Sessions.Get(c.UserContext(), token)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, nil
		}
		return nil, utils.SendError(c, fiber.StatusInternalServerError, "failed to resolve session")
	}

	user, err := cfg.Users.FindByID(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, utils.SendError(c, fiber.StatusInternalServerError, "failed to resolve session")
	}

	if !user.IsActive() {
		return nil, nil
	}
	return user, nil
}
