package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusDeclined = "declined"
)

// TradeRequest is one company's offer to fulfil another company's trade.
// (trade_id, requested_by) is unique.
type TradeRequest struct {
	RequestID   uuid.UUID `gorm:"column:request_id;type:uuid;primaryKey" json:"request_id"`
	TradeID     uuid.UUID `gorm:"column:trade_id;type:uuid;not null;uniqueIndex:idx_trade_requests_trade_requester" json:"trade_id"`
	RequestedBy uuid.UUID `gorm:"column:requested_by;type:uuid;not null;uniqueIndex:idx_trade_requests_trade_requester" json:"requested_by"`
	Status      string    `gorm:"column:status;type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (TradeRequest) TableName() string {
	return "TradeRequests"
}

func (r *TradeRequest) BeforeCreate(tx *gorm.DB) error {
	if r.RequestID == uuid.Nil {
		r.RequestID = uuid.New()
	}
	return nil
}
