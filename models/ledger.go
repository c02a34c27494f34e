package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind classifies a balance-affecting event
type EntryKind string

const (
	EntryReferralBonus      EntryKind = "referral_bonus"
	EntryDailyBonus         EntryKind = "daily_bonus"
	EntryWithdrawalReserve  EntryKind = "withdrawal_reserve"
	EntryWithdrawalCommit   EntryKind = "withdrawal_commit"
	EntryWithdrawalRollback EntryKind = "withdrawal_rollback"
	EntryAdminAdjustment    EntryKind = "admin_adjustment"
	EntryInvestmentDeposit  EntryKind = "investment_deposit"
	EntryProfitAccrual      EntryKind = "profit_accrual"
)

// Earning reports whether entries of this kind count toward lifetime earnings.
// Withdrawal movements shuffle already-earned money and never do.
func (k EntryKind) Earning() bool {
	switch k {
	case EntryReferralBonus, EntryDailyBonus, EntryProfitAccrual, EntryAdminAdjustment:
		return true
	}
	return false
}

// LedgerEntry is one immutable balance-affecting record. Rows are append-only;
// the only way to alter a balance is to append another entry.
type LedgerEntry struct {
	ID     string          `gorm:"primaryKey;type:uuid" json:"id"`
	UserID int64           `gorm:"index;not null" json:"user_id"`
	Kind   EntryKind       `gorm:"not null;index" json:"kind"`
	Amount decimal.Decimal `gorm:"type:numeric;not null" json:"amount"` // signed

	// Reference links a withdrawal_reserve to its terminal commit/rollback,
	// and profit_accrual entries to their investment.
	Reference *string `gorm:"index" json:"reference,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
