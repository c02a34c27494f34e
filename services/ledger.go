package services

import (
	"errors"
	"sort"
	"sync"
	"time"

	"earn-bot-system/config"
	"earn-bot-system/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerService is the single serialization point for balance mutation.
// Every other service changes balances only through Append/AppendTx; nothing
// writes Account.Balance directly.
type LedgerService struct {
	DB     *gorm.DB
	Levels []config.LevelThreshold

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewLedgerService(db *gorm.DB, levels []config.LevelThreshold) *LedgerService {
	return &LedgerService{
		DB:     db,
		Levels: levels,
		locks:  make(map[int64]*sync.Mutex),
	}
}

func (s *LedgerService) accountLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// WithAccounts runs fn inside one database transaction while holding the
// in-process lock of every listed account. Locks are taken in ascending
// user-id order so overlapping multi-account operations cannot deadlock.
// Cross-account writes (e.g. crediting an inviter while attributing the
// invitee) go through here so they apply as a unit or not at all.
func (s *LedgerService) WithAccounts(userIDs []int64, fn func(tx *gorm.DB) error) error {
	ids := append([]int64(nil), userIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var locked []*sync.Mutex
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		l := s.accountLock(id)
		l.Lock()
		locked = append(locked, l)
	}
	defer func() {
		for i := len(locked) - 1; i >= 0; i-- {
			locked[i].Unlock()
		}
	}()

	return s.DB.Transaction(fn)
}

// Append records a single entry for one account in its own transaction.
func (s *LedgerService) Append(userID int64, kind models.EntryKind, amount decimal.Decimal, reference *string) (*models.LedgerEntry, error) {
	var entry *models.LedgerEntry
	err := s.WithAccounts([]int64{userID}, func(tx *gorm.DB) error {
		var err error
		entry, err = s.AppendTx(tx, userID, kind, amount, reference)
		return err
	})
	return entry, err
}

// AppendTx appends an entry inside an already-open transaction. The caller
// must hold the account lock (via WithAccounts). The projected balance on the
// account row is read under row lock and updated together with the insert, so
// a crash between the two can never be observed.
func (s *LedgerService) AppendTx(tx *gorm.DB, userID int64, kind models.EntryKind, amount decimal.Decimal, reference *string) (*models.LedgerEntry, error) {
	// withdrawal_commit is a zero-amount terminal marker: the funds were
	// already debited by the matching reserve entry.
	if amount.IsZero() && kind != models.EntryWithdrawalCommit {
		return nil, ErrInvalidAmount
	}

	account, err := lockAccount(tx, userID)
	if err != nil {
		return nil, err
	}

	newBalance := account.Balance.Add(amount)
	if newBalance.IsNegative() {
		return nil, ErrInsufficientFunds
	}

	entry := &models.LedgerEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      kind,
		Amount:    amount,
		Reference: reference,
		CreatedAt: time.Now(),
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, storageErr(err)
	}

	account.Balance = newBalance
	if amount.IsPositive() && kind.Earning() {
		account.LifetimeEarned = account.LifetimeEarned.Add(amount)
		account.Level = LevelOf(s.Levels, account.LifetimeEarned)
	}
	if err := tx.Save(account).Error; err != nil {
		return nil, storageErr(err)
	}

	return entry, nil
}

// BalanceOf recomputes the balance from the ledger itself.
func (s *LedgerService) BalanceOf(userID int64) (decimal.Decimal, error) {
	row := s.DB.Model(&models.LedgerEntry{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Row()
	var sum decimal.NullDecimal
	if err := row.Scan(&sum); err != nil {
		return decimal.Zero, storageErr(err)
	}
	return sum.Decimal, nil
}

// EntriesFor returns the most recent entries for an account.
func (s *LedgerService) EntriesFor(userID int64, limit int) ([]models.LedgerEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var entries []models.LedgerEntry
	err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, storageErr(err)
	}
	return entries, nil
}

// lockAccount loads the account row for update. SQLite serializes writers on
// its own and rejects FOR UPDATE, so the clause is applied on postgres only.
func lockAccount(tx *gorm.DB, userID int64) (*models.Account, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var account models.Account
	if err := q.Where("user_id = ?", userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownAccount
		}
		return nil, storageErr(err)
	}
	return &account, nil
}
