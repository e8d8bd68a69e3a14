package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/aegis-go-api/internal/config"
	"github.com/noah-isme/aegis-go-api/internal/handler"
)

func TestHealthReportsSessionBackend(t *testing.T) {
	cfg := config.Config{AppName: "aegis-api", AppEnv: "test"}

	app := fiber.New()
	app.Get("/health", handler.HealthCheck(cfg))

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/health", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	env := decodeResponse(t, resp)
	require.True(t, env.Success)

	var payload handler.HealthResponse
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	require.Equal(t, "ok", payload.Status)
	require.Equal(t, "aegis-api", payload.Service)
	require.Equal(t, "memory", payload.SessionBackend)

	cfg.RedisURL = "redis://localhost:6379"
	app = fiber.New()
	app.Get("/health", handler.HealthCheck(cfg))

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/health", nil))
	require.NoError(t, err)

	env = decodeResponse(t, resp)
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	require.Equal(t, "redis", payload.SessionBackend)
}
