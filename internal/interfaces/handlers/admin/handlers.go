package admin

import (
	companysvc "ecocommute-backend/internal/application/companies"
	"ecocommute-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Companies *companysvc.Service
}

// Stats GET /api/admin/stats
func (h *Handlers) Stats(c *fiber.Ctx) error {
	st, err := h.Companies.SystemStats(c.UserContext())
	if err != nil {
		return err
	}
	return response.Success(c, "System stats", st, nil)
}
