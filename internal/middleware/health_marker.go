package middleware

import (
	"strings"
	"time"

	healthsvc "ecocommute-backend/internal/application/health"

	"github.com/gofiber/fiber/v2"
)

// HealthMarker records request stats in Redis (skips /, /health*, /metrics, favicon).
func HealthMarker(health *healthsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if path == "/" || strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/metrics") || strings.HasPrefix(path, "/favicon") {
			return c.Next()
		}

		start := time.Now()
		ctx := c.UserContext()
		health.MarkRequest(ctx, healthsvc.LastRequest{
			Time:   start.UTC(),
			IP:     c.IP(),
			Path:   c.OriginalURL(),
			Method: c.Method(),
		})

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = errorStatus(err)
		}
		health.MarkResponse(ctx, time.Since(start), status)
		return err
	}
}
