package traderequests

import (
	"context"
	"testing"
	"time"

	"ecocommute-backend/internal/application/settlement"
	"ecocommute-backend/internal/domain"
	"ecocommute-backend/internal/pkg/testdb"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func seedCompany(t *testing.T, db *gorm.DB, name string) *domain.Company {
	t.Helper()
	c := &domain.Company{Name: name, Approved: true}
	require.NoError(t, db.Create(c).Error)
	return c
}

func seedOpenTrade(t *testing.T, db *gorm.DB, owner uuid.UUID) *domain.Trade {
	t.Helper()
	tr := &domain.Trade{CompanyID: owner, Type: domain.TradeTypeSell, Amount: 10, IsAdvertised: true, Status: domain.TradeStatusPending}
	require.NoError(t, db.Create(tr).Error)
	return tr
}

func TestSubmitRequest_CreatesPendingRequest(t *testing.T) {
	db := testdb.Open(t)
	svc := &Service{DB: db}
	a := seedCompany(t, db, "Acme")
	b := seedCompany(t, db, "Beta")
	tr := seedOpenTrade(t, db, a.CompanyID)

	req, err := svc.SubmitRequest(context.Background(), tr.TradeID, b.CompanyID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusPending, req.Status)
	assert.Equal(t, b.CompanyID, req.RequestedBy)
	assert.NotEqual(t, uuid.Nil, req.RequestID)

	var events int64
	require.NoError(t, db.Model(&domain.TradeEvent{}).Where("trade_id = ? AND event_type = ?", tr.TradeID, domain.TradeEventRequested).Count(&events).Error)
	assert.Equal(t, int64(1), events)
}

func TestSubmitRequest_Rejections(t *testing.T) {
	db := testdb.Open(t)
	svc := &Service{DB: db}
	a := seedCompany(t, db, "Acme")
	b := seedCompany(t, db, "Beta")
	tr := seedOpenTrade(t, db, a.CompanyID)
	ctx := context.Background()

	_, err := svc.SubmitRequest(ctx, uuid.New(), b.CompanyID)
	assert.ErrorIs(t, err, domain.ErrTradeNotFound)

	_, err = svc.SubmitRequest(ctx, tr.TradeID, a.CompanyID)
	assert.ErrorIs(t, err, domain.ErrSelfFulfillment)
	assert.Equal(t, "You cannot fulfill your own trade", err.Error())

	_, err = svc.SubmitRequest(ctx, tr.TradeID, b.CompanyID)
	require.NoError(t, err)
	_, err = svc.SubmitRequest(ctx, tr.TradeID, b.CompanyID)
	assert.ErrorIs(t, err, domain.ErrDuplicateRequest)
	assert.Equal(t, "You have already requested to fulfill this trade", err.Error())

	var n int64
	require.NoError(t, db.Model(&domain.TradeRequest{}).Where("trade_id = ?", tr.TradeID).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestSubmitRequest_DuplicateEvenAfterDecline(t *testing.T) {
	db := testdb.Open(t)
	svc := &Service{DB: db}
	a := seedCompany(t, db, "Acme")
	b := seedCompany(t, db, "Beta")
	tr := seedOpenTrade(t, db, a.CompanyID)
	require.NoError(t, db.Create(&domain.TradeRequest{TradeID: tr.TradeID, RequestedBy: b.CompanyID, Status: domain.RequestStatusDeclined}).Error)

	_, err := svc.SubmitRequest(context.Background(), tr.TradeID, b.CompanyID)
	assert.ErrorIs(t, err, domain.ErrDuplicateRequest)
}

func TestSubmitRequest_ClosedTrade(t *testing.T) {
	db := testdb.Open(t)
	svc := &Service{DB: db}
	a := seedCompany(t, db, "Acme")
	b := seedCompany(t, db, "Beta")
	tr := &domain.Trade{CompanyID: a.CompanyID, Type: domain.TradeTypeBuy, Amount: 10, Status: domain.TradeStatusCompleted}
	require.NoError(t, db.Create(tr).Error)

	_, err := svc.SubmitRequest(context.Background(), tr.TradeID, b.CompanyID)
	assert.ErrorIs(t, err, domain.ErrTradeNotOpen)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestSubmitRequest_SharesTradeLock(t *testing.T) {
	db := testdb.Open(t)
	svc := &Service{DB: db}
	a := seedCompany(t, db, "Acme")
	b := seedCompany(t, db, "Beta")
	tr := seedOpenTrade(t, db, a.CompanyID)

	var locked []string
	require.NoError(t, db.Callback().Query().Before("gorm:query").Register("test:record_locks", func(tx *gorm.DB) {
		if c, ok := tx.Statement.Clauses["FOR"]; ok {
			if l, ok := c.Expression.(clause.Locking); ok {
				locked = append(locked, tx.Statement.Table+" "+l.Strength)
			}
		}
	}))

	_, err := svc.SubmitRequest(context.Background(), tr.TradeID, b.CompanyID)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.Trade{}.TableName() + " SHARE"}, locked)
}

func TestSubmitRequest_AfterSettlementLeavesNoPendingRequest(t *testing.T) {
	db := testdb.Open(t)
	svc := &Service{DB: db}
	engine := &settlement.Service{DB: db}
	a := seedCompany(t, db, "Acme")
	require.NoError(t, db.Model(a).Update("credits", 50).Error)
	b := seedCompany(t, db, "Beta")
	c := seedCompany(t, db, "Gamma")
	tr := seedOpenTrade(t, db, a.CompanyID)
	ctx := context.Background()

	rb, err := svc.SubmitRequest(ctx, tr.TradeID, b.CompanyID)
	require.NoError(t, err)
	_, err = engine.AcceptRequest(ctx, tr.TradeID, rb.RequestID, a.CompanyID)
	require.NoError(t, err)

	_, err = svc.SubmitRequest(ctx, tr.TradeID, c.CompanyID)
	assert.ErrorIs(t, err, domain.ErrTradeNotOpen)

	var pending int64
	require.NoError(t, db.Model(&domain.TradeRequest{}).
		Where("trade_id = ? AND status = ?", tr.TradeID, domain.RequestStatusPending).
		Count(&pending).Error)
	assert.Zero(t, pending)
}

func TestListRequestsForTrade(t *testing.T) {
	db := testdb.Open(t)
	svc := &Service{DB: db}
	a := seedCompany(t, db, "Acme")
	b := seedCompany(t, db, "Beta")
	c := seedCompany(t, db, "Gamma")
	tr := seedOpenTrade(t, db, a.CompanyID)
	now := time.Now()
	require.NoError(t, db.Create(&domain.TradeRequest{TradeID: tr.TradeID, RequestedBy: b.CompanyID, Status: domain.RequestStatusPending, CreatedAt: now.Add(-time.Minute)}).Error)
	require.NoError(t, db.Create(&domain.TradeRequest{TradeID: tr.TradeID, RequestedBy: c.CompanyID, Status: domain.RequestStatusPending, CreatedAt: now}).Error)
	ctx := context.Background()

	views, err := svc.ListRequestsForTrade(ctx, tr.TradeID, a.CompanyID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Gamma", views[0].RequestedByName)
	assert.Equal(t, "Beta", views[1].RequestedByName)

	_, err = svc.ListRequestsForTrade(ctx, tr.TradeID, b.CompanyID)
	assert.ErrorIs(t, err, domain.ErrNotTradeOwner)
}

func TestListMyRequests(t *testing.T) {
	db := testdb.Open(t)
	svc := &Service{DB: db}
	a := seedCompany(t, db, "Acme")
	b := seedCompany(t, db, "Beta")
	ctx := context.Background()

	mine, err := svc.ListMyRequests(ctx, b.CompanyID)
	require.NoError(t, err)
	assert.NotNil(t, mine)
	assert.Empty(t, mine)

	tr := seedOpenTrade(t, db, a.CompanyID)
	_, err = svc.SubmitRequest(ctx, tr.TradeID, b.CompanyID)
	require.NoError(t, err)

	mine, err = svc.ListMyRequests(ctx, b.CompanyID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Trade)
	assert.Equal(t, tr.TradeID, mine[0].Trade.TradeID)
	assert.Equal(t, "Acme", mine[0].TradeCompanyName)
}
