package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Investment is a fixed-term deposit earning a daily percentage. The deposit
// is debited through the ledger; profit is credited back by the accrual job
// as profit_accrual entries.
type Investment struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID int64  `gorm:"index;not null" json:"user_id"`
	PlanID string `gorm:"not null" json:"plan_id"`

	Amount      decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	DailyProfit decimal.Decimal `gorm:"type:numeric;not null" json:"daily_profit"` // fraction per day
	TotalProfit decimal.Decimal `gorm:"type:numeric;not null" json:"total_profit"`

	StartDate    time.Time `gorm:"not null" json:"start_date"`
	EndDate      time.Time `gorm:"not null" json:"end_date"`
	LastProfitAt time.Time `gorm:"not null" json:"last_profit_at"`
	Finished     bool      `gorm:"default:false;index" json:"finished"`

	Timestamps
}
