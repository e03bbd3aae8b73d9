package auth

import (
	authsvc "ecocommute-backend/internal/application/auth"
	"ecocommute-backend/internal/middleware"
	"ecocommute-backend/internal/pkg/response"
	"ecocommute-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	Service *authsvc.Service
}

// Register POST /api/auth/register
func (h *Handlers) Register(c *fiber.Ctx) error {
	var in authsvc.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if err := validation.Struct(in); err != nil {
		return response.FromError(c, err)
	}
	user, err := h.Service.Register(c.UserContext(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "User registered. Awaiting approval.", fiber.Map{"user": user}, nil)
}

// Login POST /api/auth/login
func (h *Handlers) Login(c *fiber.Ctx) error {
	var in authsvc.LoginInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Username, password, and role required", fiber.StatusBadRequest, nil)
	}
	res, err := h.Service.Login(c.UserContext(), in)
	if err != nil {
		log.Info().Str("path", c.Path()).Str("username", in.Username).Err(err).Msg("login rejected")
		return response.FromError(c, err)
	}
	return response.Success(c, "Login successful", res, nil)
}

// Logout POST /api/auth/logout
func (h *Handlers) Logout(c *fiber.Ctx) error {
	p := middleware.GetUser(c)
	if p == nil {
		return response.Unauthorized(c, "Not authenticated")
	}
	if err := h.Service.Logout(c.UserContext(), p.Claims); err != nil {
		return err
	}
	return response.Success(c, "Logged out successfully", nil, nil)
}

// Me GET /api/auth/me
func (h *Handlers) Me(c *fiber.Ctx) error {
	p := middleware.GetUser(c)
	if p == nil {
		return response.Unauthorized(c, "Not authenticated")
	}
	user, err := h.Service.Me(c.UserContext(), p.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Authenticated", fiber.Map{"user": user}, nil)
}

// Status GET /api/auth/employee/status
func (h *Handlers) Status(c *fiber.Ctx) error {
	p := middleware.GetUser(c)
	if p == nil {
		return response.Unauthorized(c, "Not authenticated")
	}
	st, err := h.Service.Status(c.UserContext(), p.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Account status", st, nil)
}

// Users GET /api/auth/users
func (h *Handlers) Users(c *fiber.Ctx) error {
	p := middleware.GetUser(c)
	if p == nil {
		return response.Unauthorized(c, "Not authenticated")
	}
	users, err := h.Service.ListUsers(c.UserContext(), p.Role, p.CompanyID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Users retrieved", users, nil)
}
