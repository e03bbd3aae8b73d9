package companies

import (
	"context"
	"time"

	"ecocommute-backend/internal/domain"
	"ecocommute-backend/internal/pkg/constants"

	"github.com/google/uuid"
)

// Contribution is an employee's lifetime earned credits.
type Contribution struct {
	EmployeeID   uuid.UUID `json:"employee_id"`
	Name         string    `json:"name"`
	TotalCredits int64     `json:"total_credits"`
}

// LogLine is one commute in the employer's log view.
type LogLine struct {
	Date        time.Time `json:"date"`
	Name        string    `json:"name"`
	TravelStyle string    `json:"travel_style"`
	Credits     int64     `json:"credits"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	TotalCompanies    int64 `json:"total_companies"`
	ApprovedCompanies int64 `json:"approved_companies"`
	PendingCompanies  int64 `json:"pending_companies"`
	TotalTrades       int64 `json:"total_trades"`
	TotalCredits      int64 `json:"total_credits"`
	PendingEmployers  int64 `json:"pending_employers"`
}

const topEmployeesLimit = 10

// Contributions ranks the company's employees by earned credits, highest first.
// A nil companyID ranks employees across all companies, capped at ten.
func (s *Service) Contributions(ctx context.Context, companyID *uuid.UUID) ([]Contribution, error) {
	q := s.DB.WithContext(ctx).
		Table(`"TravelLogs" AS l`).
		Select("l.employee_id AS employee_id, u.username AS name, SUM(l.carbon_credits_earned) AS total_credits").
		Joins(`JOIN "Users" AS u ON u.user_id = l.employee_id`).
		Group("l.employee_id, u.username").
		Order("total_credits DESC, u.username ASC")
	if companyID != nil {
		q = q.Where("l.company_id = ?", *companyID)
	} else {
		q = q.Limit(topEmployeesLimit)
	}
	out := []Contribution{}
	if err := q.Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// DetailedLogs lists the company's commutes, newest first, with employee names.
func (s *Service) DetailedLogs(ctx context.Context, companyID uuid.UUID) ([]LogLine, error) {
	out := []LogLine{}
	err := s.DB.WithContext(ctx).
		Table(`"TravelLogs" AS l`).
		Select("l.created_at AS date, u.username AS name, l.travel_style AS travel_style, l.carbon_credits_earned AS credits").
		Joins(`JOIN "Users" AS u ON u.user_id = l.employee_id`).
		Where("l.company_id = ?", companyID).
		Order("l.created_at DESC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SystemStats summarises companies, trades and pending employer sign-ups.
func (s *Service) SystemStats(ctx context.Context) (*Stats, error) {
	db := s.DB.WithContext(ctx)
	st := &Stats{}
	if err := db.Model(&domain.Company{}).Count(&st.TotalCompanies).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Company{}).Where("approved = ?", true).Count(&st.ApprovedCompanies).Error; err != nil {
		return nil, err
	}
	st.PendingCompanies = st.TotalCompanies - st.ApprovedCompanies
	if err := db.Model(&domain.Trade{}).Count(&st.TotalTrades).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Trade{}).
		Where("status = ?", domain.TradeStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&st.TotalCredits).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.User{}).
		Where("role = ? AND status = ?", constants.Employer, domain.UserStatusPending).
		Count(&st.PendingEmployers).Error; err != nil {
		return nil, err
	}
	return st, nil
}
