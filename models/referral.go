package models

import "github.com/shopspring/decimal"

// Referral records a one-time attribution of a new account to its inviter.
// ReferredID is unique: an account is attributed at most once in its lifetime.
type Referral struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	ReferrerID int64  `gorm:"index;not null" json:"referrer_id"`
	ReferredID int64  `gorm:"uniqueIndex;not null" json:"referred_id"`

	CodeUsed  string          `gorm:"not null" json:"code_used"`
	BonusPaid decimal.Decimal `gorm:"type:numeric;not null" json:"bonus_paid"`

	Timestamps
}
