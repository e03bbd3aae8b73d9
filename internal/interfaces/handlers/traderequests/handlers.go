package traderequests

import (
	"ecocommute-backend/internal/application/settlement"
	reqsvc "ecocommute-backend/internal/application/traderequests"
	"ecocommute-backend/internal/middleware"
	"ecocommute-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service    *reqsvc.Service
	Settlement *settlement.Service
}

// Submit POST /api/trade-requests/:tradeId/request
func (h *Handlers) Submit(c *fiber.Ctx) error {
	companyID, err := middleware.GetUser(c).Company()
	if err != nil {
		return response.FromError(c, err)
	}
	tradeID, err := uuid.Parse(c.Params("tradeId"))
	if err != nil {
		return response.Error(c, "Invalid tradeId", fiber.StatusBadRequest, nil)
	}
	req, err := h.Service.SubmitRequest(c.UserContext(), tradeID, companyID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Request submitted", fiber.Map{"request": req}, nil)
}

// ForTrade GET /api/trade-requests/:tradeId/requests
func (h *Handlers) ForTrade(c *fiber.Ctx) error {
	companyID, err := middleware.GetUser(c).Company()
	if err != nil {
		return response.FromError(c, err)
	}
	tradeID, err := uuid.Parse(c.Params("tradeId"))
	if err != nil {
		return response.Error(c, "Invalid tradeId", fiber.StatusBadRequest, nil)
	}
	views, err := h.Service.ListRequestsForTrade(c.UserContext(), tradeID, companyID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Trade requests", views, fiber.Map{"count": len(views)})
}

// Mine GET /api/trade-requests/mine
func (h *Handlers) Mine(c *fiber.Ctx) error {
	companyID, err := middleware.GetUser(c).Company()
	if err != nil {
		return response.FromError(c, err)
	}
	mine, err := h.Service.ListMyRequests(c.UserContext(), companyID)
	if err != nil {
		return err
	}
	return response.Success(c, "Your trade requests", mine, fiber.Map{"count": len(mine)})
}

// Accept PATCH /api/trade-requests/:tradeId/requests/:requestId/accept, also mounted at
// /api/trades/:tradeId/requests/:requestId/accept.
func (h *Handlers) Accept(c *fiber.Ctx) error {
	companyID, err := middleware.GetUser(c).Company()
	if err != nil {
		return response.FromError(c, err)
	}
	tradeID, err := uuid.Parse(c.Params("tradeId"))
	if err != nil {
		return response.Error(c, "Invalid tradeId", fiber.StatusBadRequest, nil)
	}
	requestID, err := uuid.Parse(c.Params("requestId"))
	if err != nil {
		return response.Error(c, "Invalid requestId", fiber.StatusBadRequest, nil)
	}
	res, err := h.Settlement.AcceptRequest(c.UserContext(), tradeID, requestID, companyID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Trade request accepted and credits transferred", res, nil)
}
