package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/aegis-go-api/internal/config"
	"github.com/noah-isme/aegis-go-api/internal/handler"
	"github.com/noah-isme/aegis-go-api/internal/middleware"
	"github.com/noah-isme/aegis-go-api/internal/models"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	Session            middleware.SessionConfig
	AuthHandler        *handler.AuthHandler
	GrievanceHandler   *handler.GrievanceHandler
	AcademicHandler    *handler.AcademicHandler
	OpportunityHandler *handler.OpportunityHandler
	TaskHandler        *handler.TaskHandler
	AdminHandler       *handler.AdminHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	required := middleware.RequireSession(deps.Session)
	optional := middleware.OptionalSession(deps.Session)

	if deps.AuthHandler != nil {
		authGroup := api.Group("/auth")
		deps.AuthHandler.Register(authGroup)
		deps.AuthHandler.RegisterProtected(authGroup.Group("", required))
	}

	if deps.GrievanceHandler != nil {
		// The whole grievance surface needs a session; anonymity
		// protects submitters from readers, not readers from signing in.
		deps.GrievanceHandler.RegisterPublic(api.Group("/grievances", required))
		deps.GrievanceHandler.Register(api.Group("/grievances", required))
	}

	if deps.AcademicHandler != nil {
		deps.AcademicHandler.Register(api.Group("/academic", required))
	}

	if deps.OpportunityHandler != nil {
		deps.OpportunityHandler.RegisterPublic(api.Group("/opportunities", optional))
		deps.OpportunityHandler.Register(api.Group("/opportunities", required))
	}

	if deps.TaskHandler != nil {
		deps.TaskHandler.Register(api.Group("/tasks", required))
	}

	if deps.AdminHandler != nil {
		deps.AdminHandler.RegisterShared(api.Group("", required))

		admin := api.Group("/admin", required, middleware.RequireRoles(models.RoleAdmin))
		deps.AdminHandler.Register(admin)

		if cfg.DevRoutesEnabled {
			deps.AdminHandler.RegisterDev(api.Group("/dev"))
		}
	}
}
