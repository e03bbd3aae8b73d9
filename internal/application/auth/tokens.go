package auth

import (
	"context"
	"errors"
	"time"

	"ecocommute-backend/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the JWT claims issued at login. Subject is the user id.
type Claims struct {
	Role      string `json:"role"`
	CompanyID string `json:"company_id,omitempty"`
	jwt.RegisteredClaims
}

// Revoker stores revoked token ids. cache.TokenDenylist implements it.
type Revoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Tokens issues and verifies HS256 access tokens.
type Tokens struct {
	Secret  []byte
	TTL     time.Duration
	Revoked Revoker
	now     func() time.Time
}

func NewTokens(secret string, ttl time.Duration, revoked Revoker) *Tokens {
	return &Tokens{Secret: []byte(secret), TTL: ttl, Revoked: revoked, now: time.Now}
}

func (t *Tokens) clock() time.Time {
	if t.now == nil {
		return time.Now()
	}
	return t.now()
}

// Issue signs a token for u and returns it with its expiry.
func (t *Tokens) Issue(u *domain.User) (string, time.Time, error) {
	if len(t.Secret) == 0 {
		return "", time.Time{}, errNoSecret
	}
	now := t.clock()
	exp := now.Add(t.TTL)
	claims := Claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.UserID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	if u.CompanyID != nil {
		claims.CompanyID = u.CompanyID.String()
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify parses and validates raw, rejecting revoked tokens.
func (t *Tokens) Verify(ctx context.Context, raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (interface{}, error) {
		return t.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.clock),
	)
	if err != nil || !tok.Valid {
		return nil, domain.ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, domain.ErrInvalidToken
	}
	if t.Revoked != nil {
		revoked, err := t.Revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, domain.ErrInvalidToken
		}
	}
	return claims, nil
}

// Revoke denylists the token until it would have expired anyway.
func (t *Tokens) Revoke(ctx context.Context, claims *Claims) error {
	if t.Revoked == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	return t.Revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Sub(t.clock()))
}

// UserID returns the subject as a uuid.
func (c *Claims) UserID() uuid.UUID {
	id, _ := uuid.Parse(c.Subject)
	return id
}

// Company returns the company claim, or nil for admins.
func (c *Claims) Company() *uuid.UUID {
	if c.CompanyID == "" {
		return nil
	}
	id, err := uuid.Parse(c.CompanyID)
	if err != nil {
		return nil
	}
	return &id
}

var errNoSecret = errors.New("JWT secret is not configured")
