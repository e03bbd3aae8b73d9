package middleware

import (
	"context"

	"ecocommute-backend/internal/domain"
	"ecocommute-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequireRole lets the request through only for the listed roles.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := GetUser(c)
		if p == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		for _, r := range roles {
			if p.Role == r {
				return c.Next()
			}
		}
		return response.Forbidden(c, "Access denied: insufficient role")
	}
}

// ApprovalChecker reports whether a company has been approved.
type ApprovalChecker interface {
	IsApproved(ctx context.Context, companyID uuid.UUID) (bool, error)
}

// RequireApprovedCompany rejects callers whose company is missing or unapproved.
func RequireApprovedCompany(companies ApprovalChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := GetUser(c)
		if p == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		if p.CompanyID == nil {
			return response.Forbidden(c, domain.ErrCompanyNotApproved.Message)
		}
		ok, err := companies.IsApproved(c.UserContext(), *p.CompanyID)
		if err != nil {
			return err
		}
		if !ok {
			return response.Forbidden(c, domain.ErrCompanyNotApproved.Message)
		}
		return c.Next()
	}
}
