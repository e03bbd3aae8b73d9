package employer

import (
	companysvc "ecocommute-backend/internal/application/companies"
	"ecocommute-backend/internal/domain"
	"ecocommute-backend/internal/middleware"
	"ecocommute-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers serves the employer console.
type Handlers struct {
	Companies *companysvc.Service
}

// PendingEmployees GET /api/employer/employees/pending
func (h *Handlers) PendingEmployees(c *fiber.Ctx) error {
	return h.employees(c, domain.UserStatusPending)
}

// AllEmployees GET /api/approve/employees/my-company
func (h *Handlers) AllEmployees(c *fiber.Ctx) error {
	return h.employees(c, "")
}

func (h *Handlers) employees(c *fiber.Ctx, status string) error {
	companyID, err := middleware.GetUser(c).Company()
	if err != nil {
		return response.FromError(c, err)
	}
	rows, err := h.Companies.Employees(c.UserContext(), companyID, status)
	if err != nil {
		return err
	}
	return response.Success(c, "Employees retrieved", rows, fiber.Map{"count": len(rows)})
}

// ApproveEmployee PATCH /api/employer/employees/:id/approve
func (h *Handlers) ApproveEmployee(c *fiber.Ctx) error {
	companyID, err := middleware.GetUser(c).Company()
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid employee id", fiber.StatusBadRequest, nil)
	}
	u, err := h.Companies.ApproveEmployee(c.UserContext(), companyID, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Employee approved", fiber.Map{"user": u}, nil)
}

// Status GET /api/employer/status
func (h *Handlers) Status(c *fiber.Ctx) error {
	p := middleware.GetUser(c)
	if p == nil {
		return response.Unauthorized(c, "Not authenticated")
	}
	st, err := h.Companies.EmployerStatusFor(c.UserContext(), p.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Employer status", st, nil)
}

// Dashboard GET /api/employer/dashboard
func (h *Handlers) Dashboard(c *fiber.Ctx) error {
	companyID, err := middleware.GetUser(c).Company()
	if err != nil {
		return response.FromError(c, err)
	}
	d, err := h.Companies.EmployerDashboard(c.UserContext(), companyID)
	if err != nil {
		return err
	}
	return response.Success(c, "Employer dashboard", d, nil)
}
