package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	TravelStyleWorkFromHome    = "Work From Home"
	TravelStylePublicTransport = "Public Transport"
	TravelStyleBicycle         = "Bicycle"
)

// travelMultipliers are credits earned per kilometre for each commute style.
var travelMultipliers = map[string]decimal.Decimal{
	TravelStyleWorkFromHome:    decimal.NewFromFloat(1.5),
	TravelStylePublicTransport: decimal.NewFromInt(2),
	TravelStyleBicycle:         decimal.NewFromInt(3),
}

func IsValidTravelStyle(s string) bool {
	_, ok := travelMultipliers[s]
	return ok
}

// TravelMultiplier returns the credits-per-km factor for style.
func TravelMultiplier(style string) (decimal.Decimal, bool) {
	m, ok := travelMultipliers[style]
	return m, ok
}

// TravelLog records one commute and the credits it earned for the employee's company.
type TravelLog struct {
	LogID               uuid.UUID       `gorm:"column:log_id;type:uuid;primaryKey" json:"log_id"`
	EmployeeID          uuid.UUID       `gorm:"column:employee_id;type:uuid;not null;index:idx_travel_logs_company_employee" json:"employee_id"`
	CompanyID           uuid.UUID       `gorm:"column:company_id;type:uuid;not null;index:idx_travel_logs_company_employee" json:"company_id"`
	DistanceKm          decimal.Decimal `gorm:"column:distance_km;type:decimal(10,2);not null" json:"distance_km"`
	CarbonCreditsEarned int64           `gorm:"column:carbon_credits_earned;not null" json:"carbon_credits_earned"`
	TravelStyle         string          `gorm:"column:travel_style;type:varchar(30);not null" json:"travel_style"`
	From                string          `gorm:"column:from_location" json:"from"`
	To                  string          `gorm:"column:to_location" json:"to"`
	CreatedAt           time.Time       `gorm:"column:created_at" json:"created_at"`
}

func (TravelLog) TableName() string {
	return "TravelLogs"
}

func (l *TravelLog) BeforeCreate(tx *gorm.DB) error {
	if l.LogID == uuid.Nil {
		l.LogID = uuid.New()
	}
	return nil
}
