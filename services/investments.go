package services

import (
	"log"
	"time"

	"earn-bot-system/config"
	"earn-bot-system/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvestmentService struct {
	DB       *gorm.DB
	Ledger   *LedgerService
	Accounts *AccountService
	Plans    map[string]config.InvestmentPlan
}

func NewInvestmentService(db *gorm.DB, ledger *LedgerService, accounts *AccountService, plans map[string]config.InvestmentPlan) *InvestmentService {
	return &InvestmentService{DB: db, Ledger: ledger, Accounts: accounts, Plans: plans}
}

// InvestmentStats is what the bot renders on the investments screen
type InvestmentStats struct {
	Active        int64           `json:"active"`
	TotalInvested decimal.Decimal `json:"total_invested"`
	TotalProfit   decimal.Decimal `json:"total_profit"`
}

// Invest opens a fixed-term deposit on one of the configured plans. The
// deposit debit goes through the ledger in the same transaction as the
// investment row.
func (s *InvestmentService) Invest(userID int64, planID string, amount decimal.Decimal, subscribed bool) (*models.Investment, error) {
	plan, ok := s.Plans[planID]
	if !ok {
		return nil, ErrUnknownPlan
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if amount.Cmp(plan.MinAmount) < 0 {
		return nil, ErrBelowMinimum
	}

	var investment *models.Investment
	err := s.Ledger.WithAccounts([]int64{userID}, func(tx *gorm.DB) error {
		account, err := lockAccount(tx, userID)
		if err != nil {
			return err
		}
		if err := gate(account, subscribed); err != nil {
			return err
		}

		now := time.Now()
		investment = &models.Investment{
			ID:           uuid.NewString(),
			UserID:       userID,
			PlanID:       planID,
			Amount:       amount,
			DailyProfit:  plan.DailyProfit,
			TotalProfit:  decimal.Zero,
			StartDate:    now,
			EndDate:      now.AddDate(0, 0, plan.TermDays),
			LastProfitAt: now,
		}
		if err := tx.Create(investment).Error; err != nil {
			return storageErr(err)
		}

		_, err = s.Ledger.AppendTx(tx, userID, models.EntryInvestmentDeposit, amount.Neg(), &investment.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return investment, nil
}

// AccrueProfits credits daily profit for every whole elapsed day on each
// active investment and finishes those past their term. Called by the
// scheduler; returns how many investments were credited.
func (s *InvestmentService) AccrueProfits(now time.Time) (int, error) {
	var active []models.Investment
	if err := s.DB.Where("finished = ?", false).Find(&active).Error; err != nil {
		return 0, storageErr(err)
	}

	credited := 0
	for _, inv := range active {
		accrualEnd := now
		if accrualEnd.After(inv.EndDate) {
			accrualEnd = inv.EndDate
		}
		days := int(accrualEnd.Sub(inv.LastProfitAt).Hours() / 24)

		if days > 0 {
			profit := inv.Amount.Mul(inv.DailyProfit).Mul(decimal.NewFromInt(int64(days)))
			inv := inv
			err := s.Ledger.WithAccounts([]int64{inv.UserID}, func(tx *gorm.DB) error {
				if _, err := s.Ledger.AppendTx(tx, inv.UserID, models.EntryProfitAccrual, profit, &inv.ID); err != nil {
					return err
				}
				return tx.Model(&models.Investment{}).Where("id = ?", inv.ID).Updates(map[string]interface{}{
					"total_profit":   inv.TotalProfit.Add(profit),
					"last_profit_at": inv.LastProfitAt.Add(time.Duration(days) * 24 * time.Hour),
				}).Error
			})
			if err != nil {
				log.Printf("[Accrual] failed for investment %s: %v", inv.ID, err)
				continue
			}
			credited++
		}

		if !now.Before(inv.EndDate) {
			if err := s.DB.Model(&models.Investment{}).Where("id = ?", inv.ID).Update("finished", true).Error; err != nil {
				log.Printf("[Accrual] failed to finish investment %s: %v", inv.ID, err)
			}
		}
	}
	return credited, nil
}

// For lists a user's investments, newest first.
func (s *InvestmentService) For(userID int64) ([]models.Investment, error) {
	var investments []models.Investment
	err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&investments).Error
	if err != nil {
		return nil, storageErr(err)
	}
	return investments, nil
}

// StatsFor aggregates a user's investment totals.
func (s *InvestmentService) StatsFor(userID int64) (*InvestmentStats, error) {
	var stats InvestmentStats
	if err := s.DB.Model(&models.Investment{}).
		Where("user_id = ? AND finished = ?", userID, false).
		Count(&stats.Active).Error; err != nil {
		return nil, storageErr(err)
	}

	for col, dst := range map[string]*decimal.Decimal{
		"COALESCE(SUM(amount), 0)":       &stats.TotalInvested,
		"COALESCE(SUM(total_profit), 0)": &stats.TotalProfit,
	} {
		row := s.DB.Model(&models.Investment{}).Where("user_id = ?", userID).Select(col).Row()
		var sum decimal.NullDecimal
		if err := row.Scan(&sum); err != nil {
			return nil, storageErr(err)
		}
		*dst = sum.Decimal
	}
	return &stats, nil
}
