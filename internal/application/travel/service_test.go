package travel

import (
	"context"
	"errors"
	"testing"
	"time"

	"ecocommute-backend/internal/domain"
	"ecocommute-backend/internal/pkg/constants"
	"ecocommute-backend/internal/pkg/testdb"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixedDistance struct {
	km  decimal.Decimal
	err error
	to  string
}

func (f *fixedDistance) DistanceKm(ctx context.Context, from, to string) (decimal.Decimal, error) {
	f.to = to
	return f.km, f.err
}

func seedEmployee(t *testing.T, db *gorm.DB, username string, company *uuid.UUID, role string) *domain.User {
	t.Helper()
	u := &domain.User{Username: username, PasswordHash: "x", Role: role, CompanyID: company, Status: domain.UserStatusApproved}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestCredits(t *testing.T) {
	cases := []struct {
		km    string
		style string
		want  int64
	}{
		{"10", domain.TravelStyleWorkFromHome, 15},
		{"10", domain.TravelStylePublicTransport, 20},
		{"10", domain.TravelStyleBicycle, 30},
		{"1.5", domain.TravelStyleBicycle, 5},
		{"0.3", domain.TravelStyleWorkFromHome, 0},
		{"12.345", domain.TravelStylePublicTransport, 25},
	}
	for _, tc := range cases {
		got, err := Credits(decimal.RequireFromString(tc.km), tc.style)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s km by %s", tc.km, tc.style)
	}
	_, err := Credits(decimal.NewFromInt(1), "Car")
	assert.ErrorIs(t, err, domain.ErrInvalidStyle)
}

func TestCalculate(t *testing.T) {
	dist := &fixedDistance{km: decimal.RequireFromString("12.3456")}
	svc := &Service{Distancer: dist, Destination: "Florida Atlantic University"}

	est, err := svc.Calculate(context.Background(), "Boca Raton", domain.TravelStyleBicycle)
	require.NoError(t, err)
	assert.Equal(t, "12.35", est.DistanceKm.StringFixed(2))
	assert.Equal(t, int64(37), est.CarbonCreditsEarned)
	assert.Equal(t, "Florida Atlantic University", dist.to)

	_, err = svc.Calculate(context.Background(), "Boca Raton", "Car")
	assert.ErrorIs(t, err, domain.ErrInvalidStyle)

	dist.err = errors.New("upstream down")
	_, err = svc.Calculate(context.Background(), "Boca Raton", domain.TravelStyleBicycle)
	assert.EqualError(t, err, "upstream down")
}

func TestCalculate_NotConfigured(t *testing.T) {
	svc := &Service{}
	_, err := svc.Calculate(context.Background(), "Boca Raton", domain.TravelStyleBicycle)
	assert.ErrorIs(t, err, domain.ErrDistanceUnavailable)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestLog(t *testing.T) {
	db := testdb.Open(t)
	svc := &Service{DB: db, Destination: "FAU"}
	company := &domain.Company{Name: "Acme", Approved: true}
	require.NoError(t, db.Create(company).Error)
	emp := seedEmployee(t, db, "emp", &company.CompanyID, constants.Employee)
	ctx := context.Background()

	entry, err := svc.Log(ctx, emp.UserID, LogInput{DistanceKm: decimal.NewFromInt(10), TravelStyle: domain.TravelStyleBicycle, From: "Home"})
	require.NoError(t, err)
	assert.Equal(t, int64(30), entry.CarbonCreditsEarned)
	assert.Equal(t, company.CompanyID, entry.CompanyID)
	assert.Equal(t, "FAU", entry.To)

	wrong := int64(999)
	_, err = svc.Log(ctx, emp.UserID, LogInput{DistanceKm: decimal.NewFromInt(10), CarbonCreditsEarned: &wrong, TravelStyle: domain.TravelStyleBicycle, From: "Home"})
	assert.ErrorIs(t, err, domain.ErrCreditsMismatch)

	_, err = svc.Log(ctx, emp.UserID, LogInput{DistanceKm: decimal.Zero, TravelStyle: domain.TravelStyleBicycle, From: "Home"})
	assert.ErrorIs(t, err, domain.ErrInvalidDistance)

	_, err = svc.Log(ctx, uuid.New(), LogInput{DistanceKm: decimal.NewFromInt(1), TravelStyle: domain.TravelStyleBicycle, From: "Home"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestListUserLogs_Visibility(t *testing.T) {
	db := testdb.Open(t)
	svc := &Service{DB: db, Destination: "FAU"}
	acme := &domain.Company{Name: "Acme", Approved: true}
	beta := &domain.Company{Name: "Beta", Approved: true}
	require.NoError(t, db.Create(acme).Error)
	require.NoError(t, db.Create(beta).Error)
	emp := seedEmployee(t, db, "emp", &acme.CompanyID, constants.Employee)
	boss := seedEmployee(t, db, "boss", &acme.CompanyID, constants.Employer)
	rival := seedEmployee(t, db, "rival", &beta.CompanyID, constants.Employer)
	ctx := context.Background()

	now := time.Now()
	for i, km := range []int64{3, 7} {
		require.NoError(t, db.Create(&domain.TravelLog{
			EmployeeID: emp.UserID, CompanyID: acme.CompanyID, DistanceKm: decimal.NewFromInt(km),
			CarbonCreditsEarned: km * 3, TravelStyle: domain.TravelStyleBicycle, CreatedAt: now.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	logs, err := svc.ListUserLogs(ctx, Viewer{UserID: emp.UserID, Role: constants.Employee, CompanyID: &acme.CompanyID}, emp.UserID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, int64(21), logs[0].CarbonCreditsEarned)

	_, err = svc.ListUserLogs(ctx, Viewer{UserID: boss.UserID, Role: constants.Employer, CompanyID: &acme.CompanyID}, emp.UserID)
	assert.NoError(t, err)

	_, err = svc.ListUserLogs(ctx, Viewer{UserID: rival.UserID, Role: constants.Employer, CompanyID: &beta.CompanyID}, emp.UserID)
	assert.ErrorIs(t, err, domain.ErrLogsForbidden)

	_, err = svc.ListUserLogs(ctx, Viewer{UserID: uuid.New(), Role: constants.Admin}, emp.UserID)
	assert.NoError(t, err)
}
