package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company is a participating organisation. Credits is the ledger balance moved by settlements.
type Company struct {
	CompanyID uuid.UUID `gorm:"column:company_id;type:uuid;primaryKey" json:"company_id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Approved  bool      `gorm:"column:approved;not null;default:false" json:"approved"`
	Credits   int64     `gorm:"column:credits;not null;default:0" json:"credits"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Company) TableName() string {
	return "Companies"
}

// BeforeCreate ensures company_id is set for DBs without default uuid.
func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.CompanyID == uuid.Nil {
		c.CompanyID = uuid.New()
	}
	return nil
}
