package services

import (
	"errors"
	"strconv"

	"earn-bot-system/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReferralService struct {
	DB       *gorm.DB
	Ledger   *LedgerService
	Accounts *AccountService
	Bonus    decimal.Decimal
}

func NewReferralService(db *gorm.DB, ledger *LedgerService, accounts *AccountService, bonus decimal.Decimal) *ReferralService {
	return &ReferralService{DB: db, Ledger: ledger, Accounts: accounts, Bonus: bonus}
}

// ReferralStats is what the bot renders on the referral screen
type ReferralStats struct {
	Count  int64           `json:"count"`
	Earned decimal.Decimal `json:"earned"`
}

// Attribute assigns a new account to its inviter exactly once and credits the
// inviter the referral bonus. The referred_by assignment, the referral row and
// the bonus entry commit as a unit or not at all. subscribed is the
// channel-membership precondition supplied by the dispatcher.
func (s *ReferralService) Attribute(newUserID int64, inviterCode string, subscribed bool) (*models.Referral, error) {
	inviterID, err := strconv.ParseInt(inviterCode, 10, 64)
	if err != nil {
		return nil, ErrUnknownInviter
	}
	if inviterID == newUserID {
		return nil, ErrSelfReferral
	}

	var referral *models.Referral
	err = s.Ledger.WithAccounts([]int64{newUserID, inviterID}, func(tx *gorm.DB) error {
		invitee, err := lockAccount(tx, newUserID)
		if err != nil {
			return err
		}
		if err := gate(invitee, subscribed); err != nil {
			return err
		}
		if invitee.ReferredBy != nil {
			return ErrAlreadyReferred
		}

		// An account can only be attributed before it starts inviting
		// others; this keeps the referral lineage acyclic without any
		// traversal-time cycle check.
		var issued int64
		if err := tx.Model(&models.Referral{}).Where("referrer_id = ?", newUserID).Count(&issued).Error; err != nil {
			return storageErr(err)
		}
		if issued > 0 {
			return ErrAlreadyReferred
		}

		if _, err := lockAccount(tx, inviterID); err != nil {
			if errors.Is(err, ErrUnknownAccount) {
				return ErrUnknownInviter
			}
			return err
		}

		invitee.ReferredBy = &inviterID
		if err := tx.Save(invitee).Error; err != nil {
			return storageErr(err)
		}

		referral = &models.Referral{
			ID:         uuid.NewString(),
			ReferrerID: inviterID,
			ReferredID: newUserID,
			CodeUsed:   inviterCode,
			BonusPaid:  s.Bonus,
		}
		if err := tx.Create(referral).Error; err != nil {
			return storageErr(err)
		}

		_, err = s.Ledger.AppendTx(tx, inviterID, models.EntryReferralBonus, s.Bonus, &referral.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return referral, nil
}

// StatsFor returns how many accounts a user invited and what that paid out.
func (s *ReferralService) StatsFor(userID int64) (*ReferralStats, error) {
	var stats ReferralStats
	if err := s.DB.Model(&models.Referral{}).Where("referrer_id = ?", userID).Count(&stats.Count).Error; err != nil {
		return nil, storageErr(err)
	}
	row := s.DB.Model(&models.Referral{}).
		Where("referrer_id = ?", userID).
		Select("COALESCE(SUM(bonus_paid), 0)").
		Row()
	var earned decimal.NullDecimal
	if err := row.Scan(&earned); err != nil {
		return nil, storageErr(err)
	}
	stats.Earned = earned.Decimal
	return &stats, nil
}
