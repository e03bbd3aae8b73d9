package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TradeEventCreated   = "CREATED"
	TradeEventRequested = "REQUESTED"
	TradeEventSettled   = "SETTLED"
)

// TradeEvent is an append-only audit record written in the same transaction as the change it describes.
type TradeEvent struct {
	EventID        uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	TradeID        uuid.UUID      `gorm:"column:trade_id;type:uuid;not null;index" json:"trade_id"`
	EventType      string         `gorm:"column:event_type;type:varchar(30);not null" json:"event_type"`
	ActorCompanyID *uuid.UUID     `gorm:"column:actor_company_id;type:uuid" json:"actor_company_id"`
	EventData      datatypes.JSON `gorm:"column:event_data;not null" json:"event_data"`
	CreatedAt      time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (TradeEvent) TableName() string {
	return "TradeEvents"
}

func (e *TradeEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}

// NewTradeEvent builds an event with data marshalled to JSON.
func NewTradeEvent(tradeID uuid.UUID, eventType string, actor *uuid.UUID, data map[string]interface{}) *TradeEvent {
	b, err := json.Marshal(data)
	if err != nil || data == nil {
		b = []byte("{}")
	}
	return &TradeEvent{
		TradeID:        tradeID,
		EventType:      eventType,
		ActorCompanyID: actor,
		EventData:      datatypes.JSON(b),
	}
}
