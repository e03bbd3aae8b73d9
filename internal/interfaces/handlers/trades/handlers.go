package trades

import (
	tradesvc "ecocommute-backend/internal/application/trades"
	"ecocommute-backend/internal/middleware"
	"ecocommute-backend/internal/pkg/response"
	"ecocommute-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *tradesvc.Service
}

// CreateRequest is the body of POST /api/trades/create.
type CreateRequest struct {
	Type   string `json:"type" validate:"required,tradetype"`
	Amount int64  `json:"amount" validate:"gt=0"`
}

// Create POST /api/trades/create
func (h *Handlers) Create(c *fiber.Ctx) error {
	companyID, err := middleware.GetUser(c).Company()
	if err != nil {
		return response.FromError(c, err)
	}
	var body CreateRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid trade type or amount", fiber.StatusBadRequest, nil)
	}
	if err := validation.Struct(body); err != nil {
		return response.FromError(c, err)
	}
	trade, err := h.Service.CreateAdvertisement(c.UserContext(), companyID, body.Type, body.Amount)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Trade advertised", fiber.Map{"trade": trade}, nil)
}

// OtherAds GET /api/trades/ads/other
func (h *Handlers) OtherAds(c *fiber.Ctx) error {
	companyID, err := middleware.GetUser(c).Company()
	if err != nil {
		return response.FromError(c, err)
	}
	ads, err := h.Service.ListOtherAds(c.UserContext(), companyID)
	if err != nil {
		return err
	}
	return response.Success(c, "Open advertisements", ads, fiber.Map{"count": len(ads)})
}

// Audit GET /api/trades (admin)
func (h *Handlers) Audit(c *fiber.Ctx) error {
	entries, err := h.Service.AuditLog(c.UserContext())
	if err != nil {
		return err
	}
	return response.Success(c, "Trade audit log", entries, fiber.Map{"count": len(entries)})
}

// Events GET /api/trades/:tradeId/events
func (h *Handlers) Events(c *fiber.Ctx) error {
	companyID, err := middleware.GetUser(c).Company()
	if err != nil {
		return response.FromError(c, err)
	}
	tradeID, err := uuid.Parse(c.Params("tradeId"))
	if err != nil {
		return response.Error(c, "Invalid tradeId", fiber.StatusBadRequest, nil)
	}
	events, err := h.Service.ListEvents(c.UserContext(), tradeID, companyID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Trade events", events, nil)
}

// History GET /api/employer/trades/history
func (h *Handlers) History(c *fiber.Ctx) error {
	companyID, err := middleware.GetUser(c).Company()
	if err != nil {
		return response.FromError(c, err)
	}
	hist, err := h.Service.History(c.UserContext(), companyID)
	if err != nil {
		return err
	}
	return response.Success(c, "Trade history", hist, fiber.Map{"count": len(hist)})
}
