package travel

import (
	travelsvc "ecocommute-backend/internal/application/travel"
	"ecocommute-backend/internal/middleware"
	"ecocommute-backend/internal/pkg/response"
	"ecocommute-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *travelsvc.Service
}

// CalculateRequest is the body of POST /api/travel/calculate.
type CalculateRequest struct {
	From        string `json:"from" validate:"required"`
	TravelStyle string `json:"travelStyle" validate:"required,travelstyle"`
}

// Calculate POST /api/travel/calculate
func (h *Handlers) Calculate(c *fiber.Ctx) error {
	var body CalculateRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required travel data", fiber.StatusBadRequest, nil)
	}
	if err := validation.Struct(body); err != nil {
		return response.FromError(c, err)
	}
	est, err := h.Service.Calculate(c.UserContext(), body.From, body.TravelStyle)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Distance calculated", est, nil)
}

// Log POST /api/travel/log
func (h *Handlers) Log(c *fiber.Ctx) error {
	p := middleware.GetUser(c)
	if p == nil {
		return response.Unauthorized(c, "Not authenticated")
	}
	var body travelsvc.LogInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required travel data", fiber.StatusBadRequest, nil)
	}
	if err := validation.Struct(body); err != nil {
		return response.FromError(c, err)
	}
	entry, err := h.Service.Log(c.UserContext(), p.UserID, body)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Travel log saved", fiber.Map{"log": entry}, nil)
}

// UserLogs GET /api/travel/user/:id
func (h *Handlers) UserLogs(c *fiber.Ctx) error {
	p := middleware.GetUser(c)
	if p == nil {
		return response.Unauthorized(c, "Not authenticated")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid user id", fiber.StatusBadRequest, nil)
	}
	logs, err := h.Service.ListUserLogs(c.UserContext(), travelsvc.Viewer{UserID: p.UserID, Role: p.Role, CompanyID: p.CompanyID}, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Travel logs", logs, fiber.Map{"count": len(logs)})
}
