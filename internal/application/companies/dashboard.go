package companies

import (
	"context"
	"sort"

	"ecocommute-backend/internal/domain"
	"ecocommute-backend/internal/pkg/constants"

	"github.com/google/uuid"
)

// DashboardEntry is one approved employee on the employer dashboard.
type DashboardEntry struct {
	EmployeeID    uuid.UUID `json:"employee_id"`
	Username      string    `json:"username"`
	CarbonCredits int64     `json:"carbon_credits"`
}

// Dashboard is the employer's view of its workforce and net credit position.
type Dashboard struct {
	Leaderboard    []DashboardEntry                 `json:"leaderboard"`
	TotalCredits   int64                            `json:"total_credits"`
	LogsByEmployee map[uuid.UUID][]domain.TravelLog `json:"logs_by_employee"`
}

// EmployerDashboard ranks the company's approved employees by earned credits and reports the
// company total adjusted by completed trades: sales subtract, purchases add.
func (s *Service) EmployerDashboard(ctx context.Context, companyID uuid.UUID) (*Dashboard, error) {
	db := s.DB.WithContext(ctx)

	var employees []domain.User
	if err := db.Where("company_id = ? AND role = ? AND status = ?", companyID, constants.Employee, domain.UserStatusApproved).
		Find(&employees).Error; err != nil {
		return nil, err
	}
	var logs []domain.TravelLog
	if err := db.Where("company_id = ?", companyID).Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, err
	}

	earned := make(map[uuid.UUID]int64, len(employees))
	byEmployee := make(map[uuid.UUID][]domain.TravelLog)
	for _, l := range logs {
		earned[l.EmployeeID] += l.CarbonCreditsEarned
		byEmployee[l.EmployeeID] = append(byEmployee[l.EmployeeID], l)
	}

	d := &Dashboard{
		Leaderboard:    make([]DashboardEntry, 0, len(employees)),
		LogsByEmployee: byEmployee,
	}
	for _, e := range employees {
		d.Leaderboard = append(d.Leaderboard, DashboardEntry{
			EmployeeID:    e.UserID,
			Username:      e.Username,
			CarbonCredits: earned[e.UserID],
		})
		d.TotalCredits += earned[e.UserID]
	}
	sort.SliceStable(d.Leaderboard, func(i, j int) bool {
		if d.Leaderboard[i].CarbonCredits != d.Leaderboard[j].CarbonCredits {
			return d.Leaderboard[i].CarbonCredits > d.Leaderboard[j].CarbonCredits
		}
		return d.Leaderboard[i].Username < d.Leaderboard[j].Username
	})

	var trades []domain.Trade
	if err := db.Where("status = ? AND (from_company = ? OR to_company = ?)", domain.TradeStatusCompleted, companyID, companyID).
		Find(&trades).Error; err != nil {
		return nil, err
	}
	for _, t := range trades {
		switch {
		case t.FromCompany != nil && *t.FromCompany == companyID:
			d.TotalCredits -= t.Amount
		case t.ToCompany != nil && *t.ToCompany == companyID:
			d.TotalCredits += t.Amount
		}
	}
	return d, nil
}
