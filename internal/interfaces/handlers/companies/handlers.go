package companies

import (
	"strconv"

	companysvc "ecocommute-backend/internal/application/companies"
	"ecocommute-backend/internal/middleware"
	"ecocommute-backend/internal/pkg/response"
	"ecocommute-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers serves company onboarding, approval and leaderboard endpoints.
type Handlers struct {
	Service *companysvc.Service
}

// CreateRequest is the body of POST /api/approve/company.
type CreateRequest struct {
	Name     string `json:"name" validate:"required"`
	Approved bool   `json:"approved"`
	Credits  int64  `json:"credits" validate:"gte=0"`
}

// BulkRequest is the body of POST /api/approve/companies.
type BulkRequest struct {
	Companies []companysvc.BulkEntry `json:"companies"`
}

// Create POST /api/approve/company
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body CreateRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if err := validation.Struct(body); err != nil {
		return response.FromError(c, err)
	}
	company, err := h.Service.Create(c.UserContext(), body.Name, body.Approved, body.Credits)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Company created", fiber.Map{"company": company}, nil)
}

// BulkCreate POST /api/approve/companies
func (h *Handlers) BulkCreate(c *fiber.Ctx) error {
	var body BulkRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Companies list is empty or invalid", fiber.StatusBadRequest, nil)
	}
	results, err := h.Service.BulkCreate(c.UserContext(), body.Companies)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Companies processed", fiber.Map{"results": results}, nil)
}

// Approve PATCH /api/approve/company/:id
func (h *Handlers) Approve(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid company id", fiber.StatusBadRequest, nil)
	}
	company, employers, err := h.Service.Approve(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Company approved", fiber.Map{"company": company}, fiber.Map{"employers_approved": employers})
}

// ListByApproval GET /api/approve?approved=true|false
func (h *Handlers) ListByApproval(c *fiber.Ctx) error {
	approved, _ := strconv.ParseBool(c.Query("approved"))
	rows, err := h.Service.ListByApproval(c.UserContext(), approved)
	if err != nil {
		return err
	}
	return response.Success(c, "Companies retrieved", rows, fiber.Map{"count": len(rows)})
}

// All GET /api/company/all
func (h *Handlers) All(c *fiber.Ctx) error {
	g, err := h.Service.ListGrouped(c.UserContext())
	if err != nil {
		return err
	}
	return response.Success(c, "Companies retrieved", g, nil)
}

// Mine GET /api/company/me
func (h *Handlers) Mine(c *fiber.Ctx) error {
	companyID, err := middleware.GetUser(c).Company()
	if err != nil {
		return response.FromError(c, err)
	}
	company, err := h.Service.Get(c.UserContext(), companyID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Company retrieved", company, nil)
}

// Contributions GET /api/company/contributions and GET /api/company/my/leaderboard
func (h *Handlers) Contributions(c *fiber.Ctx) error {
	companyID, err := middleware.GetUser(c).Company()
	if err != nil {
		return response.FromError(c, err)
	}
	rows, err := h.Service.Contributions(c.UserContext(), &companyID)
	if err != nil {
		return err
	}
	return response.Success(c, "Employee contributions", rows, nil)
}

// TopEmployees GET /api/company/leaderboard/top
func (h *Handlers) TopEmployees(c *fiber.Ctx) error {
	rows, err := h.Service.Contributions(c.UserContext(), nil)
	if err != nil {
		return err
	}
	return response.Success(c, "Top employees", rows, nil)
}

// Logs GET /api/company/logs
func (h *Handlers) Logs(c *fiber.Ctx) error {
	companyID, err := middleware.GetUser(c).Company()
	if err != nil {
		return response.FromError(c, err)
	}
	rows, err := h.Service.DetailedLogs(c.UserContext(), companyID)
	if err != nil {
		return err
	}
	return response.Success(c, "Travel logs", rows, fiber.Map{"count": len(rows)})
}

// ApproveEmployer PATCH /api/approve/user/:id/approve (admin)
func (h *Handlers) ApproveEmployer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid user id", fiber.StatusBadRequest, nil)
	}
	u, err := h.Service.ApproveEmployer(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Employer approved", fiber.Map{"user": u}, nil)
}
