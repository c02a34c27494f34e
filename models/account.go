package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Account is the durable per-user record. Balance, LifetimeEarned and
// Withdrawn are materialized projections of the ledger, updated in the same
// transaction as every entry append; the ledger stays the source of truth.
type Account struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID int64  `gorm:"uniqueIndex;not null" json:"user_id"` // external chat identity

	Balance        decimal.Decimal `gorm:"type:numeric;not null" json:"balance"`
	LifetimeEarned decimal.Decimal `gorm:"type:numeric;not null" json:"lifetime_earned"`
	Withdrawn      decimal.Decimal `gorm:"type:numeric;not null" json:"withdrawn"`
	Level          string          `gorm:"not null" json:"level"`

	// ReferredBy is set at most once, during attribution, and never changed.
	ReferredBy *int64 `gorm:"index" json:"referred_by,omitempty"`

	Subscribed  bool       `gorm:"default:false" json:"subscribed"`
	Blocked     bool       `gorm:"default:false" json:"blocked"`
	LastBonusAt *time.Time `json:"last_bonus_at,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
