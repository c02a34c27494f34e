package services

import (
	"time"

	"earn-bot-system/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BonusWindow is a rolling window measured from the previous claim, not a
// calendar-day reset, so claiming at 23:50 does not unlock again at midnight.
const BonusWindow = 24 * time.Hour

type BonusService struct {
	Ledger   *LedgerService
	Accounts *AccountService
	Amount   decimal.Decimal
}

func NewBonusService(ledger *LedgerService, accounts *AccountService, amount decimal.Decimal) *BonusService {
	return &BonusService{Ledger: ledger, Accounts: accounts, Amount: amount}
}

// ClaimDailyBonus credits the daily bonus at most once per rolling 24h window.
// The ledger entry and last_bonus_at update commit together.
func (s *BonusService) ClaimDailyBonus(userID int64, subscribed bool) (*models.LedgerEntry, error) {
	var entry *models.LedgerEntry
	err := s.Ledger.WithAccounts([]int64{userID}, func(tx *gorm.DB) error {
		account, err := lockAccount(tx, userID)
		if err != nil {
			return err
		}
		if err := gate(account, subscribed); err != nil {
			return err
		}

		now := time.Now()
		if account.LastBonusAt != nil && now.Sub(*account.LastBonusAt) < BonusWindow {
			return ErrBonusAlreadyClaimed
		}

		entry, err = s.Ledger.AppendTx(tx, userID, models.EntryDailyBonus, s.Amount, nil)
		if err != nil {
			return err
		}

		if err := tx.Model(&models.Account{}).
			Where("user_id = ?", userID).
			Update("last_bonus_at", now).Error; err != nil {
			return storageErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// NextClaimIn reports how long until the bonus can be claimed again; zero
// means it is claimable now.
func (s *BonusService) NextClaimIn(userID int64) (time.Duration, error) {
	account, err := s.Accounts.Get(userID)
	if err != nil {
		return 0, err
	}
	if account.LastBonusAt == nil {
		return 0, nil
	}
	remaining := BonusWindow - time.Since(*account.LastBonusAt)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
