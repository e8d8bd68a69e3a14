package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// PartitionedCookies rewrites outgoing session cookies so cross-site
// embeds keep working under third-party cookie partitioning. Requests
// arriving from localhost keep Lax cookies for plain-HTTP development.
func PartitionedCookies(cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if isLocalRequest(c) {
			return err
		}

		c.Response().Header.VisitAllCookie(func(key, _ []byte) {
			if string(key) != cookieName {
				return
			}

			cookie := c.Response().Header.PeekCookie(cookieName)
			if cookie == nil {
				return
			}

			rewritten := rewriteCookie(string(cookie))
			c.Response().Header.DelCookie(cookieName)
			c.Response().Header.Add(fiber.HeaderSetCookie, rewritten)
		})

		return err
	}
}

func isLocalRequest(c *fiber.Ctx) bool {
	origin := c.Get(fiber.HeaderOrigin)
	if origin == "" {
		origin = c.Get(fiber.HeaderReferer)
	}
	return strings.Contains(origin, "://localhost") || strings.Contains(origin, "://127.0.0.1")
}

func rewriteCookie(cookie string) string {
	parts := strings.Split(cookie, ";")
	out := make([]string, 0, len(parts)+3)
	for _, part := range parts {
		attr := strings.ToLower(strings.TrimSpace(part))
		if strings.HasPrefix(attr, "samesite") || attr == "secure" || attr == "partitioned" {
			continue
		}
		out = append(out, strings.TrimSpace(part))
	}
	out = append(out, "SameSite=None", "Secure", "Partitioned")
	return strings.Join(out, "; ")
}
