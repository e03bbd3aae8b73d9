package middleware

import (
	"strings"

	"ecocommute-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CORSConfig holds CORS configuration (suffix + dev password).
type CORSConfig struct {
	AllowedSuffix  string
	DevPassword    string
	AllowLocalhost bool
}

// CORS allows origins ending with AllowedSuffix, requests carrying the dev-password
// header, and localhost origins when AllowLocalhost is set. Credentials allowed.
// Preflights from allowed origins are answered directly with 204.
func CORS(cfg CORSConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin := c.Get("Origin")
		// No origin (e.g. same-origin or tools): allow
		if origin == "" {
			return c.Next()
		}
		if !cfg.allows(c, origin) {
			return response.Forbidden(c, "Not allowed by CORS")
		}
		setCORSHeaders(c, origin)
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}

func (cfg CORSConfig) allows(c *fiber.Ctx, origin string) bool {
	if cfg.AllowLocalhost && (strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:")) {
		return true
	}
	if cfg.AllowedSuffix != "" && strings.HasSuffix(strings.ToLower(origin), strings.ToLower(cfg.AllowedSuffix)) {
		return true
	}
	return cfg.DevPassword != "" && c.Get("dev-password") == cfg.DevPassword
}

func setCORSHeaders(c *fiber.Ctx, origin string) {
	c.Set("Access-Control-Allow-Origin", origin)
	c.Set("Access-Control-Allow-Credentials", "true")
	c.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Trace-Id, dev-password")
	c.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
	c.Set("Access-Control-Expose-Headers", "X-Trace-Id")
}
