package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/aegis-go-api/internal/config"
	"github.com/noah-isme/aegis-go-api/internal/utils"
)

var startedAt = time.Now()

// HealthResponse is the payload behind the health endpoint. It names
// the session backend so a misconfigured instance (memory sessions in
// a multi-instance deployment) is visible from the outside.
type HealthResponse struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	Service        string    `json:"service"`
	Environment    string    `json:"environment"`
	SessionBackend string    `json:"session_backend"`
	UptimeSeconds  int64     `json:"uptime_seconds"`
}

// HealthCheck reports liveness and basic deployment facts.
func HealthCheck(cfg config.Config) fiber.Handler {
	backend := "memory"
	if cfg.RedisURL != "" {
		backend = "redis"
	}

	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:         "ok",
			Timestamp:      time.Now().UTC(),
			Service:        cfg.AppName,
			Environment:    cfg.AppEnv,
			SessionBackend: backend,
			UptimeSeconds:  int64(time.Since(startedAt).Seconds()),
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
