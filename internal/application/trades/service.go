package trades

import (
	"context"
	"errors"
	"time"

	"ecocommute-backend/internal/application/companies"
	"ecocommute-backend/internal/domain"
	"ecocommute-backend/internal/infrastructure/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type Service struct {
	DB      *gorm.DB
	Metrics *metrics.Metrics
}

// Ad is an open advertisement with the owner's name resolved.
type Ad struct {
	domain.Trade
	CompanyName string `json:"company_name"`
}

// AuditEntry is one row of the admin trade audit log.
type AuditEntry struct {
	TradeID     uuid.UUID `json:"trade_id"`
	Type        string    `json:"type"`
	Amount      int64     `json:"amount"`
	Status      string    `json:"status"`
	FromCompany string    `json:"from_company"`
	ToCompany   string    `json:"to_company"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HistoryEntry is a trade the company posted or took part in.
type HistoryEntry struct {
	domain.Trade
	CompanyName     string `json:"company_name"`
	FromCompanyName string `json:"from_company_name"`
	ToCompanyName   string `json:"to_company_name"`
}

// CreateAdvertisement posts a buy or sell ad for companyID. Sell ads require enough
// unsold earned credits; the check and the insert share one transaction.
func (s *Service) CreateAdvertisement(ctx context.Context, companyID uuid.UUID, tradeType string, amount int64) (*domain.Trade, error) {
	if !domain.IsValidTradeType(tradeType) {
		return nil, domain.ErrInvalidTradeType
	}
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	trade := &domain.Trade{
		CompanyID:    companyID,
		Type:         tradeType,
		Amount:       amount,
		IsAdvertised: true,
		Status:       domain.TradeStatusPending,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureCompany(tx, companyID); err != nil {
			return err
		}
		if tradeType == domain.TradeTypeSell {
			available, err := availableCredits(tx, companyID)
			if err != nil {
				return err
			}
			if amount > available {
				return domain.InsufficientCreditsToSell(available)
			}
		}
		if err := tx.Create(trade).Error; err != nil {
			return err
		}
		return tx.Create(domain.NewTradeEvent(trade.TradeID, domain.TradeEventCreated, &companyID, map[string]interface{}{
			"type":   trade.Type,
			"amount": trade.Amount,
		})).Error
	})
	if err != nil {
		return nil, err
	}
	s.Metrics.AdCreated(trade.Type)
	log.Info().Str("trade_id", trade.TradeID.String()).Str("company_id", companyID.String()).Str("type", trade.Type).Int64("amount", amount).Msg("trade advertised")
	return trade, nil
}

// AvailableCredits is the company's earned travel credits minus credits it already sold.
func (s *Service) AvailableCredits(ctx context.Context, companyID uuid.UUID) (int64, error) {
	return availableCredits(s.DB.WithContext(ctx), companyID)
}

func availableCredits(db *gorm.DB, companyID uuid.UUID) (int64, error) {
	var earned int64
	if err := db.Model(&domain.TravelLog{}).
		Where("company_id = ?", companyID).
		Select("COALESCE(SUM(carbon_credits_earned), 0)").
		Scan(&earned).Error; err != nil {
		return 0, err
	}
	var sold int64
	if err := db.Model(&domain.Trade{}).
		Where("from_company = ? AND status = ?", companyID, domain.TradeStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sold).Error; err != nil {
		return 0, err
	}
	return earned - sold, nil
}

func ensureCompany(db *gorm.DB, companyID uuid.UUID) error {
	var n int64
	if err := db.Model(&domain.Company{}).Where("company_id = ?", companyID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrCompanyNotFound
	}
	return nil
}

// ListOtherAds returns open ads posted by companies other than companyID, newest first.
func (s *Service) ListOtherAds(ctx context.Context, companyID uuid.UUID) ([]Ad, error) {
	var rows []domain.Trade
	if err := s.DB.WithContext(ctx).
		Where("is_advertised = ? AND status = ? AND company_id <> ?", true, domain.TradeStatusPending, companyID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	ids := make([]*uuid.UUID, 0, len(rows))
	for i := range rows {
		ids = append(ids, &rows[i].CompanyID)
	}
	names, err := companies.Names(ctx, s.DB, ids...)
	if err != nil {
		return nil, err
	}
	ads := make([]Ad, 0, len(rows))
	for i := range rows {
		ads = append(ads, Ad{Trade: rows[i], CompanyName: companies.NameOr(names, &rows[i].CompanyID, "Unknown")})
	}
	return ads, nil
}

// GetTrade loads a trade by id.
func (s *Service) GetTrade(ctx context.Context, tradeID uuid.UUID) (*domain.Trade, error) {
	var t domain.Trade
	if err := s.DB.WithContext(ctx).Where("trade_id = ?", tradeID).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTradeNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListEvents returns the audit events of a trade, oldest first. Only the owner may read them.
func (s *Service) ListEvents(ctx context.Context, tradeID, callerCompanyID uuid.UUID) ([]domain.TradeEvent, error) {
	trade, err := s.GetTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if trade.CompanyID != callerCompanyID {
		return nil, domain.ErrNotTradeOwner
	}
	var events []domain.TradeEvent
	if err := s.DB.WithContext(ctx).Where("trade_id = ?", tradeID).Order("created_at ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// AuditLog returns every trade, most recently updated first, with party names ("-" when unset).
func (s *Service) AuditLog(ctx context.Context) ([]AuditEntry, error) {
	var rows []domain.Trade
	if err := s.DB.WithContext(ctx).Order("updated_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	ids := make([]*uuid.UUID, 0, 2*len(rows))
	for i := range rows {
		ids = append(ids, rows[i].FromCompany, rows[i].ToCompany)
	}
	names, err := companies.Names(ctx, s.DB, ids...)
	if err != nil {
		return nil, err
	}
	out := make([]AuditEntry, 0, len(rows))
	for _, t := range rows {
		out = append(out, AuditEntry{
			TradeID:     t.TradeID,
			Type:        t.Type,
			Amount:      t.Amount,
			Status:      t.Status,
			FromCompany: companies.NameOr(names, t.FromCompany, "-"),
			ToCompany:   companies.NameOr(names, t.ToCompany, "-"),
			UpdatedAt:   t.UpdatedAt,
		})
	}
	return out, nil
}

// History returns trades companyID posted or settled as a party, most recently updated first.
func (s *Service) History(ctx context.Context, companyID uuid.UUID) ([]HistoryEntry, error) {
	var rows []domain.Trade
	if err := s.DB.WithContext(ctx).
		Where("company_id = ? OR from_company = ? OR to_company = ?", companyID, companyID, companyID).
		Order("updated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	ids := make([]*uuid.UUID, 0, 3*len(rows))
	for i := range rows {
		ids = append(ids, &rows[i].CompanyID, rows[i].FromCompany, rows[i].ToCompany)
	}
	names, err := companies.Names(ctx, s.DB, ids...)
	if err != nil {
		return nil, err
	}
	out := make([]HistoryEntry, 0, len(rows))
	for i := range rows {
		t := rows[i]
		out = append(out, HistoryEntry{
			Trade:           t,
			CompanyName:     companies.NameOr(names, &t.CompanyID, "Unknown"),
			FromCompanyName: companies.NameOr(names, t.FromCompany, "-"),
			ToCompanyName:   companies.NameOr(names, t.ToCompany, "-"),
		})
	}
	return out, nil
}
