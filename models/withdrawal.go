package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayoutMethod is the external channel the user wants funds sent through
type PayoutMethod string

const (
	PayoutCard   PayoutMethod = "card"
	PayoutQiwi   PayoutMethod = "qiwi"
	PayoutYMoney PayoutMethod = "ymoney"
)

// WithdrawalStatus lifecycle: pending → approved | rejected (terminal)
type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalApproved WithdrawalStatus = "approved"
	WithdrawalRejected WithdrawalStatus = "rejected"
)

// WithdrawalRequest reserves funds at creation time: the amount is debited
// from the balance immediately so concurrent requests cannot overdraw.
type WithdrawalRequest struct {
	ID      string          `gorm:"primaryKey;type:uuid" json:"id"`
	UserID  int64           `gorm:"index;not null" json:"user_id"`
	Amount  decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	Method  PayoutMethod    `gorm:"not null" json:"method"`
	Details string          `gorm:"not null" json:"details"` // card/wallet number

	Status     WithdrawalStatus `gorm:"not null;index;default:'pending'" json:"status"`
	ResolvedBy *int64           `json:"resolved_by,omitempty"` // operator id
	ResolvedAt *time.Time       `json:"resolved_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
