package traderequests

import (
	"context"
	"errors"

	"ecocommute-backend/internal/application/companies"
	"ecocommute-backend/internal/domain"
	"ecocommute-backend/internal/infrastructure/metrics"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	DB      *gorm.DB
	Metrics *metrics.Metrics
}

// RequestView is a request on one of the caller's trades with the requester's name.
type RequestView struct {
	domain.TradeRequest
	RequestedByName string `json:"requested_by_name"`
}

// MyRequest is an outgoing request with its parent trade and the trade owner's name.
type MyRequest struct {
	domain.TradeRequest
	Trade            *domain.Trade `json:"trade"`
	TradeCompanyName string        `json:"trade_company_name"`
}

// SubmitRequest records requesterID's offer to fulfil tradeID.
func (s *Service) SubmitRequest(ctx context.Context, tradeID, requesterID uuid.UUID) (*domain.TradeRequest, error) {
	req := &domain.TradeRequest{
		TradeID:     tradeID,
		RequestedBy: requesterID,
		Status:      domain.RequestStatusPending,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A share lock waits out an in-flight settlement, so a trade it completes is seen as
		// closed here, and a settlement started after this read declines the new request.
		var trade domain.Trade
		if err := tx.Clauses(clause.Locking{Strength: "SHARE"}).Where("trade_id = ?", tradeID).First(&trade).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrTradeNotFound
			}
			return err
		}
		if trade.CompanyID == requesterID {
			return domain.ErrSelfFulfillment
		}
		var existing int64
		if err := tx.Model(&domain.TradeRequest{}).
			Where("trade_id = ? AND requested_by = ?", tradeID, requesterID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return domain.ErrDuplicateRequest
		}
		if !trade.IsOpen() {
			return domain.ErrTradeNotOpen
		}

		if err := tx.Create(req).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrDuplicateRequest
			}
			return err
		}
		return tx.Create(domain.NewTradeEvent(tradeID, domain.TradeEventRequested, &requesterID, map[string]interface{}{
			"request_id": req.RequestID,
		})).Error
	})
	if err != nil {
		return nil, err
	}
	s.Metrics.RequestSubmitted()
	return req, nil
}

// ListRequestsForTrade returns the requests on tradeID, newest first. Only the owner may list them.
func (s *Service) ListRequestsForTrade(ctx context.Context, tradeID, callerCompanyID uuid.UUID) ([]RequestView, error) {
	db := s.DB.WithContext(ctx)
	var trade domain.Trade
	if err := db.Where("trade_id = ?", tradeID).First(&trade).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTradeNotFound
		}
		return nil, err
	}
	if trade.CompanyID != callerCompanyID {
		return nil, domain.ErrNotTradeOwner
	}

	var rows []domain.TradeRequest
	if err := db.Where("trade_id = ?", tradeID).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	ids := make([]*uuid.UUID, 0, len(rows))
	for i := range rows {
		ids = append(ids, &rows[i].RequestedBy)
	}
	names, err := companies.Names(ctx, s.DB, ids...)
	if err != nil {
		return nil, err
	}
	out := make([]RequestView, 0, len(rows))
	for i := range rows {
		out = append(out, RequestView{
			TradeRequest:    rows[i],
			RequestedByName: companies.NameOr(names, &rows[i].RequestedBy, "Unknown"),
		})
	}
	return out, nil
}

// ListMyRequests returns requesterID's outgoing requests, newest first.
func (s *Service) ListMyRequests(ctx context.Context, requesterID uuid.UUID) ([]MyRequest, error) {
	db := s.DB.WithContext(ctx)
	var rows []domain.TradeRequest
	if err := db.Where("requested_by = ?", requesterID).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []MyRequest{}, nil
	}

	tradeIDs := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		tradeIDs = append(tradeIDs, r.TradeID)
	}
	var tradeRows []domain.Trade
	if err := db.Where("trade_id IN ?", tradeIDs).Find(&tradeRows).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*domain.Trade, len(tradeRows))
	owners := make([]*uuid.UUID, 0, len(tradeRows))
	for i := range tradeRows {
		byID[tradeRows[i].TradeID] = &tradeRows[i]
		owners = append(owners, &tradeRows[i].CompanyID)
	}
	names, err := companies.Names(ctx, s.DB, owners...)
	if err != nil {
		return nil, err
	}

	out := make([]MyRequest, 0, len(rows))
	for _, r := range rows {
		m := MyRequest{TradeRequest: r, TradeCompanyName: "Unknown"}
		if t, ok := byID[r.TradeID]; ok {
			m.Trade = t
			m.TradeCompanyName = companies.NameOr(names, &t.CompanyID, "Unknown")
		}
		out = append(out, m)
	}
	return out, nil
}
