package settlement

import (
	"context"
	"errors"
	"sort"

	"ecocommute-backend/internal/domain"
	"ecocommute-backend/internal/infrastructure/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service accepts one fulfilment request per trade and moves credits between the two companies.
type Service struct {
	DB      *gorm.DB
	Metrics *metrics.Metrics
}

// Result describes a completed settlement.
type Result struct {
	Trade    *domain.Trade        `json:"trade"`
	Request  *domain.TradeRequest `json:"request"`
	SellerID uuid.UUID            `json:"seller_id"`
	BuyerID  uuid.UUID            `json:"buyer_id"`
	Declined int64                `json:"declined"`
}

// AcceptRequest settles tradeID in favour of requestID. Everything happens in one transaction:
// the trade row is locked against new requests and other settlements, the seller's balance is
// checked under row locks before any state changes, the trade moves pending -> completed by
// compare-and-set, siblings are declined, and credits are transferred with atomic increments.
// Any failure leaves the trade, its requests and both ledgers untouched.
func (s *Service) AcceptRequest(ctx context.Context, tradeID, requestID, callerCompanyID uuid.UUID) (*Result, error) {
	var res *Result
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req domain.TradeRequest
		if err := tx.Where("request_id = ? AND trade_id = ?", requestID, tradeID).First(&req).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrRequestNotFound
			}
			return err
		}
		var trade domain.Trade
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("trade_id = ?", tradeID).First(&trade).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrTradeNotFound
			}
			return err
		}
		if trade.CompanyID != callerCompanyID {
			return domain.ErrNotTradeOwner
		}
		if trade.Status != domain.TradeStatusPending || req.Status != domain.RequestStatusPending {
			return domain.ErrTradeAlreadySettled
		}

		sellerID, buyerID := trade.Counterparties(req.RequestedBy)
		parties, err := lockCompanies(tx, sellerID, buyerID)
		if err != nil {
			return err
		}
		if parties[sellerID].Credits < trade.Amount {
			return domain.ErrInsufficientSellerCredits
		}

		// Only one transaction can move the trade out of pending.
		upd := tx.Model(&domain.Trade{}).
			Where("trade_id = ? AND status = ?", tradeID, domain.TradeStatusPending).
			Updates(map[string]interface{}{
				"status":        domain.TradeStatusCompleted,
				"is_advertised": false,
				"from_company":  sellerID,
				"to_company":    buyerID,
			})
		if upd.Error != nil {
			return upd.Error
		}
		if upd.RowsAffected == 0 {
			return domain.ErrTradeAlreadySettled
		}

		upd = tx.Model(&domain.TradeRequest{}).
			Where("request_id = ? AND status = ?", requestID, domain.RequestStatusPending).
			Update("status", domain.RequestStatusAccepted)
		if upd.Error != nil {
			return upd.Error
		}
		if upd.RowsAffected == 0 {
			return domain.ErrTradeAlreadySettled
		}

		declined := tx.Model(&domain.TradeRequest{}).
			Where("trade_id = ? AND request_id <> ? AND status = ?", tradeID, requestID, domain.RequestStatusPending).
			Update("status", domain.RequestStatusDeclined)
		if declined.Error != nil {
			return declined.Error
		}

		if err := transfer(tx, sellerID, buyerID, trade.Amount); err != nil {
			return err
		}

		if err := tx.Create(domain.NewTradeEvent(tradeID, domain.TradeEventSettled, &callerCompanyID, map[string]interface{}{
			"request_id": requestID,
			"from":       sellerID,
			"to":         buyerID,
			"amount":     trade.Amount,
			"declined":   declined.RowsAffected,
		})).Error; err != nil {
			return err
		}

		if err := tx.Where("trade_id = ?", tradeID).First(&trade).Error; err != nil {
			return err
		}
		req.Status = domain.RequestStatusAccepted
		res = &Result{
			Trade:    &trade,
			Request:  &req,
			SellerID: sellerID,
			BuyerID:  buyerID,
			Declined: declined.RowsAffected,
		}
		return nil
	})
	if err != nil {
		s.Metrics.SettlementOutcome(outcome(err), 0)
		log.Info().Str("trade_id", tradeID.String()).Str("request_id", requestID.String()).Err(err).Msg("settlement rejected")
		return nil, err
	}
	s.Metrics.SettlementOutcome("settled", res.Trade.Amount)
	log.Info().
		Str("trade_id", tradeID.String()).
		Str("request_id", requestID.String()).
		Str("seller_id", res.SellerID.String()).
		Str("buyer_id", res.BuyerID.String()).
		Int64("amount", res.Trade.Amount).
		Int64("declined", res.Declined).
		Msg("trade settled")
	return res, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrTradeAlreadySettled):
		return "already_settled"
	case errors.Is(err, domain.ErrInsufficientCredits):
		return "insufficient_credits"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// lockCompanies row-locks the given companies in ascending id order so concurrent settlements
// touching the same pair in opposite directions cannot deadlock. The trade lock is always taken first.
func lockCompanies(tx *gorm.DB, ids ...uuid.UUID) (map[uuid.UUID]*domain.Company, error) {
	sorted := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		sorted = append(sorted, id)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })

	out := make(map[uuid.UUID]*domain.Company, len(sorted))
	for _, id := range sorted {
		var c domain.Company
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("company_id = ?", id).First(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrCompanyNotFound
			}
			return nil, err
		}
		out[id] = &c
	}
	return out, nil
}

// transfer debits seller and credits buyer with in-database arithmetic. The guarded debit
// refuses to take a balance below zero.
func transfer(tx *gorm.DB, sellerID, buyerID uuid.UUID, amount int64) error {
	debit := tx.Model(&domain.Company{}).
		Where("company_id = ? AND credits >= ?", sellerID, amount).
		Update("credits", gorm.Expr("credits - ?", amount))
	if debit.Error != nil {
		return debit.Error
	}
	if debit.RowsAffected == 0 {
		return domain.ErrInsufficientSellerCredits
	}
	credit := tx.Model(&domain.Company{}).
		Where("company_id = ?", buyerID).
		Update("credits", gorm.Expr("credits + ?", amount))
	if credit.Error != nil {
		return credit.Error
	}
	if credit.RowsAffected == 0 {
		return domain.ErrCompanyNotFound
	}
	return nil
}
