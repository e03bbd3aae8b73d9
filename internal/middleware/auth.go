package middleware

import (
	"context"
	"strings"

	"ecocommute-backend/internal/application/auth"
	"ecocommute-backend/internal/domain"
	"ecocommute-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const userLocal = "user"

// TokenVerifier validates bearer tokens. *auth.Tokens implements it.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*auth.Claims, error)
}

// Principal is the authenticated caller attached to the request.
type Principal struct {
	UserID    uuid.UUID
	Role      string
	CompanyID *uuid.UUID
	Claims    *auth.Claims
}

// RequireAuth verifies the Bearer token and stores the caller in Locals.
// Missing, malformed, expired or revoked tokens get 401.
func RequireAuth(tokens TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return response.Unauthorized(c, "No token provided or malformed header")
		}
		claims, err := tokens.Verify(c.UserContext(), strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
		if err != nil {
			if code, ok := response.StatusFor(err); ok && code == fiber.StatusUnauthorized {
				return response.Unauthorized(c, domain.ErrInvalidToken.Message)
			}
			log.Error().Err(err).Str("trace_id", GetTraceID(c)).Msg("token verification failed")
			return err
		}
		c.Locals(userLocal, &Principal{
			UserID:    claims.UserID(),
			Role:      claims.Role,
			CompanyID: claims.Company(),
			Claims:    claims,
		})
		return c.Next()
	}
}

// GetUser returns the authenticated caller (nil if the route is public).
func GetUser(c *fiber.Ctx) *Principal {
	p, _ := c.Locals(userLocal).(*Principal)
	return p
}

// SetUser attaches p to the request. Used by tests and by RequireAuth.
func SetUser(c *fiber.Ctx, p *Principal) {
	c.Locals(userLocal, p)
}

// Company returns the caller's company id. Admins have none.
func (p *Principal) Company() (uuid.UUID, error) {
	if p == nil || p.CompanyID == nil {
		return uuid.Nil, domain.ErrNoCompany
	}
	return *p.CompanyID, nil
}
