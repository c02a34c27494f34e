package services

import (
	"errors"

	"earn-bot-system/config"
	"earn-bot-system/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AccountService struct {
	DB     *gorm.DB
	Levels []config.LevelThreshold
}

func NewAccountService(db *gorm.DB, levels []config.LevelThreshold) *AccountService {
	return &AccountService{DB: db, Levels: levels}
}

// GetOrCreate returns the account for an external user id, creating it on
// first contact (idempotent).
func (s *AccountService) GetOrCreate(userID int64) (*models.Account, error) {
	var account models.Account
	err := s.DB.Where("user_id = ?", userID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		account = models.Account{
			ID:             uuid.NewString(),
			UserID:         userID,
			Balance:        decimal.Zero,
			LifetimeEarned: decimal.Zero,
			Withdrawn:      decimal.Zero,
			Level:          LevelOf(s.Levels, decimal.Zero),
		}
		if err := s.DB.Create(&account).Error; err != nil {
			return nil, storageErr(err)
		}
		return &account, nil
	}
	if err != nil {
		return nil, storageErr(err)
	}
	return &account, nil
}

// Get returns an existing account or ErrUnknownAccount.
func (s *AccountService) Get(userID int64) (*models.Account, error) {
	var account models.Account
	if err := s.DB.Where("user_id = ?", userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownAccount
		}
		return nil, storageErr(err)
	}
	return &account, nil
}

// SetSubscribed caches the channel-subscription state reported by the
// dispatcher. The core never contacts the channel API itself.
func (s *AccountService) SetSubscribed(userID int64, subscribed bool) error {
	return s.setFlag(userID, "subscribed", subscribed)
}

// SetBlocked blocks or unblocks an account (operator action).
func (s *AccountService) SetBlocked(userID int64, blocked bool) error {
	return s.setFlag(userID, "blocked", blocked)
}

// UserIDs lists every registered external user id, for broadcasts.
func (s *AccountService) UserIDs() ([]int64, error) {
	var ids []int64
	if err := s.DB.Model(&models.Account{}).Order("user_id").Pluck("user_id", &ids).Error; err != nil {
		return nil, storageErr(err)
	}
	return ids, nil
}

func (s *AccountService) setFlag(userID int64, column string, value bool) error {
	res := s.DB.Model(&models.Account{}).Where("user_id = ?", userID).Update(column, value)
	if res.Error != nil {
		return storageErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUnknownAccount
	}
	return nil
}

// gate enforces the preconditions shared by every earning/spending operation:
// the caller-supplied subscription check and the blocked flag.
func gate(account *models.Account, subscribed bool) error {
	if account.Blocked {
		return ErrAccountBlocked
	}
	if !subscribed {
		return ErrUnauthorized
	}
	return nil
}
