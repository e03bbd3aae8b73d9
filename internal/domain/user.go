package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	UserStatusPending  = "pending"
	UserStatusApproved = "approved"
	UserStatusRejected = "rejected"
)

// User is an admin, employer or employee account. CompanyID is nil only for admins.
type User struct {
	UserID       uuid.UUID  `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	Username     string     `gorm:"column:username;not null;uniqueIndex" json:"username"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	Role         string     `gorm:"column:role;type:varchar(20);not null" json:"role"`
	CompanyID    *uuid.UUID `gorm:"column:company_id;type:uuid;index" json:"company_id"`
	Status       string     `gorm:"column:status;type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string {
	return "Users"
}

// BeforeCreate sets UUID if not set (for DBs without gen_random_uuid).
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	return nil
}
