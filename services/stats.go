package services

import (
	"earn-bot-system/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StatsService is the read-only reporting surface. It consumes the account
// store and ledger projections and never writes.
type StatsService struct {
	DB *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{DB: db}
}

type GlobalStats struct {
	TotalUsers       int64           `json:"total_users"`
	ActiveUsers      int64           `json:"active_users"` // subscribed to the channel
	TotalBalance     decimal.Decimal `json:"total_balance"`
	TotalEarned      decimal.Decimal `json:"total_earned"`
	TotalWithdrawn   decimal.Decimal `json:"total_withdrawn"`
	TotalInvested    decimal.Decimal `json:"total_invested"`
	TotalProfit      decimal.Decimal `json:"total_profit"`
	PendingWithdraws int64           `json:"pending_withdrawals"`
}

type UserStats struct {
	Account     *models.Account `json:"account"`
	Referrals   int64           `json:"referrals"`
	Investments int64           `json:"investments"`
	Withdrawals int64           `json:"withdrawals"`
}

func (s *StatsService) Global() (*GlobalStats, error) {
	var stats GlobalStats

	if err := s.DB.Model(&models.Account{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, storageErr(err)
	}
	if err := s.DB.Model(&models.Account{}).Where("subscribed = ?", true).Count(&stats.ActiveUsers).Error; err != nil {
		return nil, storageErr(err)
	}
	if err := s.DB.Model(&models.WithdrawalRequest{}).
		Where("status = ?", models.WithdrawalPending).
		Count(&stats.PendingWithdraws).Error; err != nil {
		return nil, storageErr(err)
	}

	sums := []struct {
		model interface{}
		expr  string
		dst   *decimal.Decimal
	}{
		{&models.Account{}, "COALESCE(SUM(balance), 0)", &stats.TotalBalance},
		{&models.Account{}, "COALESCE(SUM(lifetime_earned), 0)", &stats.TotalEarned},
		{&models.Account{}, "COALESCE(SUM(withdrawn), 0)", &stats.TotalWithdrawn},
		{&models.Investment{}, "COALESCE(SUM(amount), 0)", &stats.TotalInvested},
		{&models.Investment{}, "COALESCE(SUM(total_profit), 0)", &stats.TotalProfit},
	}
	for _, q := range sums {
		row := s.DB.Model(q.model).Select(q.expr).Row()
		var sum decimal.NullDecimal
		if err := row.Scan(&sum); err != nil {
			return nil, storageErr(err)
		}
		*q.dst = sum.Decimal
	}

	return &stats, nil
}

func (s *StatsService) ForUser(account *models.Account) (*UserStats, error) {
	stats := &UserStats{Account: account}

	counts := []struct {
		model interface{}
		where string
		dst   *int64
	}{
		{&models.Referral{}, "referrer_id = ?", &stats.Referrals},
		{&models.Investment{}, "user_id = ?", &stats.Investments},
		{&models.WithdrawalRequest{}, "user_id = ?", &stats.Withdrawals},
	}
	for _, q := range counts {
		if err := s.DB.Model(q.model).Where(q.where, account.UserID).Count(q.dst).Error; err != nil {
			return nil, storageErr(err)
		}
	}
	return stats, nil
}
