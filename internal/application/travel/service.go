package travel

import (
	"context"
	"errors"

	"ecocommute-backend/internal/domain"
	"ecocommute-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Distancer resolves the commute distance between two places.
type Distancer interface {
	DistanceKm(ctx context.Context, from, to string) (decimal.Decimal, error)
}

type Service struct {
	DB          *gorm.DB
	Distancer   Distancer // nil disables Calculate
	Destination string
}

// Estimate is the outcome of a distance calculation.
type Estimate struct {
	DistanceKm          decimal.Decimal `json:"distanceKm"`
	CarbonCreditsEarned int64           `json:"carbonCreditsEarned"`
}

// LogInput is a commute the employee wants recorded. Credits, when given, must
// agree with the distance and style.
type LogInput struct {
	DistanceKm          decimal.Decimal `json:"distanceKm"`
	CarbonCreditsEarned *int64          `json:"carbonCreditsEarned"`
	TravelStyle         string          `json:"travelStyle" validate:"required,travelstyle"`
	From                string          `json:"from" validate:"required"`
}

// Viewer identifies who is asking for travel logs.
type Viewer struct {
	UserID    uuid.UUID
	Role      string
	CompanyID *uuid.UUID
}

// Credits converts a distance into whole credits for style, rounding half away from zero.
func Credits(distanceKm decimal.Decimal, style string) (int64, error) {
	m, ok := domain.TravelMultiplier(style)
	if !ok {
		return 0, domain.ErrInvalidStyle
	}
	return distanceKm.Mul(m).Round(0).IntPart(), nil
}

// Calculate looks up the distance from `from` to the fixed destination and prices it.
func (s *Service) Calculate(ctx context.Context, from, style string) (*Estimate, error) {
	if !domain.IsValidTravelStyle(style) {
		return nil, domain.ErrInvalidStyle
	}
	if s.Distancer == nil {
		return nil, domain.ErrDistanceUnavailable
	}
	km, err := s.Distancer.DistanceKm(ctx, from, s.Destination)
	if err != nil {
		return nil, err
	}
	credits, err := Credits(km, style)
	if err != nil {
		return nil, err
	}
	return &Estimate{DistanceKm: km.Round(2), CarbonCreditsEarned: credits}, nil
}

// Log records a commute for employeeID against their company.
func (s *Service) Log(ctx context.Context, employeeID uuid.UUID, in LogInput) (*domain.TravelLog, error) {
	if !in.DistanceKm.IsPositive() || in.From == "" {
		return nil, domain.ErrInvalidDistance
	}
	credits, err := Credits(in.DistanceKm, in.TravelStyle)
	if err != nil {
		return nil, err
	}
	if in.CarbonCreditsEarned != nil && *in.CarbonCreditsEarned != credits {
		return nil, domain.ErrCreditsMismatch
	}

	var u domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", employeeID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if u.CompanyID == nil {
		return nil, domain.ErrCompanyNotFound
	}

	entry := &domain.TravelLog{
		EmployeeID:          u.UserID,
		CompanyID:           *u.CompanyID,
		DistanceKm:          in.DistanceKm.Round(2),
		CarbonCreditsEarned: credits,
		TravelStyle:         in.TravelStyle,
		From:                in.From,
		To:                  s.Destination,
	}
	if err := s.DB.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	log.Info().
		Str("employee_id", u.UserID.String()).
		Str("company_id", u.CompanyID.String()).
		Int64("credits", credits).
		Msg("travel logged")
	return entry, nil
}

// ListUserLogs returns userID's commutes, newest first. Users see their own logs,
// employers see their company's, admins see everyone's.
func (s *Service) ListUserLogs(ctx context.Context, viewer Viewer, userID uuid.UUID) ([]domain.TravelLog, error) {
	db := s.DB.WithContext(ctx)
	if viewer.UserID != userID && viewer.Role != constants.Admin {
		if viewer.Role != constants.Employer || viewer.CompanyID == nil {
			return nil, domain.ErrLogsForbidden
		}
		var n int64
		if err := db.Model(&domain.User{}).Where("user_id = ? AND company_id = ?", userID, *viewer.CompanyID).Count(&n).Error; err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, domain.ErrLogsForbidden
		}
	}
	logs := []domain.TravelLog{}
	if err := db.Where("employee_id = ?", userID).Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
