package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type correlationCtxKey struct{}

const correlationLocal = "correlation_id"

// CorrelationID tags every request with an identifier so log lines from
// one request can be stitched together. An inbound X-Correlation-ID or
// X-Request-ID header wins; otherwise a fresh uuid is minted. The id is
// echoed back so the frontend can report it alongside bug reports.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := firstNonEmpty(c.Get("X-Correlation-ID"), c.Get("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(correlationLocal, id)
		c.Set("X-Correlation-ID", id)
		c.SetUserContext(context.WithValue(c.Context(), correlationCtxKey{}, id))

		return c.Next()
	}
}

// RequestLogger emits one structured line per completed request.
func RequestLogger(logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		logger.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str(correlationLocal, GetCorrelationID(c)).
			Msg("request completed")

		return err
	}
}

// GetCorrelationID returns the identifier bound to the active request,
// falling back to the request context for code running off the fiber
// handler path.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals(correlationLocal).(string); ok && id != "" {
		return id
	}
	if id, ok := c.UserContext().Value(correlationCtxKey{}).(string); ok {
		return id
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
