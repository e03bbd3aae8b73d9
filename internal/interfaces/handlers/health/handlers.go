package health

import (
	"crypto/subtle"

	healthsvc "ecocommute-backend/internal/application/health"
	"ecocommute-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const recentErrors = 50

// Handlers holds dependencies for health endpoints.
type Handlers struct {
	Service        *healthsvc.Service
	HealthAdminKey string
}

// JSON GET /health/json
func (h *Handlers) JSON(c *fiber.Ctx) error {
	r := h.Service.Collect(c.UserContext())
	return c.JSON(fiber.Map{
		"service":      "ecocommute-api",
		"status":       r.Status,
		"runtime":      r.Runtime,
		"traffic":      r.Traffic,
		"dependencies": r.Dependencies,
	})
}

// Errors GET /health/errors returns the newest error log entries.
func (h *Handlers) Errors(c *fiber.Ctx) error {
	entries, err := h.Service.RecentErrors(c.UserContext(), recentErrors)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON([]interface{}{})
	}
	return c.JSON(entries)
}

// Reset GET /health/reset?key=HEALTH_ADMIN_KEY
func (h *Handlers) Reset(c *fiber.Ctx) error {
	key := c.Query("key")
	if h.HealthAdminKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(h.HealthAdminKey)) != 1 {
		return response.Error(c, "Unauthorized", fiber.StatusForbidden, nil)
	}
	if err := h.Service.Reset(c.UserContext()); err != nil {
		return err
	}
	return response.Success(c, "Stats reset successfully", fiber.Map{"success": true}, nil)
}
