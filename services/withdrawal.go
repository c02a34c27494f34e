package services

import (
	"errors"
	"time"

	"earn-bot-system/models"
	"earn-bot-system/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type WithdrawalService struct {
	DB       *gorm.DB
	Ledger   *LedgerService
	Accounts *AccountService
	Minimum  decimal.Decimal
}

func NewWithdrawalService(db *gorm.DB, ledger *LedgerService, accounts *AccountService, minimum decimal.Decimal) *WithdrawalService {
	return &WithdrawalService{DB: db, Ledger: ledger, Accounts: accounts, Minimum: minimum}
}

// Request creates a pending withdrawal and reserves the funds: the amount is
// debited immediately so two concurrent requests cannot jointly overdraw.
func (s *WithdrawalService) Request(userID int64, amount decimal.Decimal, method models.PayoutMethod, details string, subscribed bool) (*models.WithdrawalRequest, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if amount.Cmp(s.Minimum) < 0 {
		return nil, ErrBelowMinimum
	}
	if err := utils.ValidatePayoutDetails(string(method), details); err != nil {
		return nil, ErrInvalidDetails
	}

	var request *models.WithdrawalRequest
	err := s.Ledger.WithAccounts([]int64{userID}, func(tx *gorm.DB) error {
		account, err := lockAccount(tx, userID)
		if err != nil {
			return err
		}
		if err := gate(account, subscribed); err != nil {
			return err
		}

		request = &models.WithdrawalRequest{
			ID:      uuid.NewString(),
			UserID:  userID,
			Amount:  amount,
			Method:  method,
			Details: details,
			Status:  models.WithdrawalPending,
		}
		if err := tx.Create(request).Error; err != nil {
			return storageErr(err)
		}

		// The reserve debit fails with ErrInsufficientFunds when the amount
		// exceeds the projected balance, rolling back the request row too.
		_, err = s.Ledger.AppendTx(tx, userID, models.EntryWithdrawalReserve, amount.Neg(), &request.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// Resolve finishes a pending request. approved appends a zero-amount
// withdrawal_commit (the reserve already moved the funds); rejected appends a
// withdrawal_rollback crediting the amount back. Resolution is not
// re-entrant: anything but pending fails with ErrNotPending. Operator
// authorization is the edge's job (admin guard / admin-id check).
func (s *WithdrawalService) Resolve(requestID string, operatorID int64, approve bool) (*models.WithdrawalRequest, error) {
	var head models.WithdrawalRequest
	if err := s.DB.First(&head, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotPending
		}
		return nil, storageErr(err)
	}

	var request models.WithdrawalRequest
	err := s.Ledger.WithAccounts([]int64{head.UserID}, func(tx *gorm.DB) error {
		// Re-read under the account lock: a concurrent resolve may have won.
		if err := tx.First(&request, "id = ?", requestID).Error; err != nil {
			return storageErr(err)
		}
		if request.Status != models.WithdrawalPending {
			return ErrNotPending
		}

		now := time.Now()
		request.ResolvedBy = &operatorID
		request.ResolvedAt = &now

		if approve {
			if _, err := s.Ledger.AppendTx(tx, request.UserID, models.EntryWithdrawalCommit, decimal.Zero, &request.ID); err != nil {
				return err
			}
			request.Status = models.WithdrawalApproved
			if err := tx.Model(&models.Account{}).
				Where("user_id = ?", request.UserID).
				Update("withdrawn", gorm.Expr("withdrawn + ?", request.Amount)).Error; err != nil {
				return storageErr(err)
			}
		} else {
			if _, err := s.Ledger.AppendTx(tx, request.UserID, models.EntryWithdrawalRollback, request.Amount, &request.ID); err != nil {
				return err
			}
			request.Status = models.WithdrawalRejected
		}

		if err := tx.Save(&request).Error; err != nil {
			return storageErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// HistoryFor lists a user's withdrawal requests, newest first.
func (s *WithdrawalService) HistoryFor(userID int64) ([]models.WithdrawalRequest, error) {
	var requests []models.WithdrawalRequest
	err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, storageErr(err)
	}
	return requests, nil
}

// Pending lists all requests awaiting operator action, oldest first.
func (s *WithdrawalService) Pending() ([]models.WithdrawalRequest, error) {
	var requests []models.WithdrawalRequest
	err := s.DB.Where("status = ?", models.WithdrawalPending).
		Order("created_at ASC").
		Find(&requests).Error
	if err != nil {
		return nil, storageErr(err)
	}
	return requests, nil
}

// Get returns one request by id; gorm.ErrRecordNotFound when it never existed.
func (s *WithdrawalService) Get(requestID string) (*models.WithdrawalRequest, error) {
	var request models.WithdrawalRequest
	if err := s.DB.First(&request, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, storageErr(err)
	}
	return &request, nil
}
