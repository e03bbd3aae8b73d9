package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TradeTypeBuy  = "buy"
	TradeTypeSell = "sell"

	TradeStatusPending   = "pending"
	TradeStatusCompleted = "completed"
)

// Trade is a buy/sell advertisement and, once settled, the record of the transfer.
// FromCompany/ToCompany stay nil until the trade completes.
type Trade struct {
	TradeID      uuid.UUID  `gorm:"column:trade_id;type:uuid;primaryKey" json:"trade_id"`
	CompanyID    uuid.UUID  `gorm:"column:company_id;type:uuid;not null;index" json:"company_id"`
	Type         string     `gorm:"column:type;type:varchar(10);not null" json:"type"`
	Amount       int64      `gorm:"column:amount;not null" json:"amount"`
	IsAdvertised bool       `gorm:"column:is_advertised;not null;default:false" json:"is_advertised"`
	Status       string     `gorm:"column:status;type:varchar(20);not null;default:'pending'" json:"status"`
	FromCompany  *uuid.UUID `gorm:"column:from_company;type:uuid" json:"from_company"`
	ToCompany    *uuid.UUID `gorm:"column:to_company;type:uuid" json:"to_company"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Trade) TableName() string {
	return "Trades"
}

func (t *Trade) BeforeCreate(tx *gorm.DB) error {
	if t.TradeID == uuid.Nil {
		t.TradeID = uuid.New()
	}
	return nil
}

// IsValidTradeType reports whether s is "buy" or "sell".
func IsValidTradeType(s string) bool {
	return s == TradeTypeBuy || s == TradeTypeSell
}

// Counterparties returns the seller and buyer when requester fulfils the trade.
// On a sell ad the owner gives credits; on a buy ad the owner receives them.
func (t *Trade) Counterparties(requester uuid.UUID) (seller, buyer uuid.UUID) {
	if t.Type == TradeTypeSell {
		return t.CompanyID, requester
	}
	return requester, t.CompanyID
}

// IsOpen reports whether the trade still accepts fulfilment requests.
func (t *Trade) IsOpen() bool {
	return t.Status == TradeStatusPending && t.IsAdvertised
}
