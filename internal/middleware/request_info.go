package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/guudweb/judicial-backend/internal/domain"
	"github.com/guudweb/judicial-backend/internal/service/audit"
)

// RequestInfo stores the client address and user agent on the request
// context so audit entries and sessions can record them.
func RequestInfo() fiber.Handler {
	return func(c *fiber.Ctx) error {
		meta := domain.RequestMeta{
			IPAddress: ClientIP(c),
			UserAgent: c.Get(fiber.HeaderUserAgent),
		}
		c.SetUserContext(audit.WithRequestMeta(c.UserContext(), meta))
		return c.Next()
	}
}

// ClientIP prefers the Cloudflare header, then the first X-Forwarded-For hop.
func ClientIP(c *fiber.Ctx) string {
	if ip := strings.TrimSpace(c.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if fwd := c.Get(fiber.HeaderXForwardedFor); fwd != "" {
		if ip := strings.TrimSpace(strings.Split(fwd, ",")[0]); ip != "" {
			return ip
		}
	}
	return c.IP()
}
