package services

import (
	"fmt"
	"strings"
	"testing"

	"earn-bot-system/config"
	"earn-bot-system/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a per-test in-memory database. cache=shared keeps every
// pooled connection on the same database; a single open connection keeps
// sqlite from returning busy errors under concurrent tests.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Account{},
		&models.LedgerEntry{},
		&models.Referral{},
		&models.WithdrawalRequest{},
		&models.Investment{},
	))
	return db
}

func testLevels() []config.LevelThreshold {
	return []config.LevelThreshold{
		{Name: "bronze", Min: decimal.Zero},
		{Name: "silver", Min: decimal.NewFromInt(100)},
		{Name: "gold", Min: decimal.NewFromInt(500)},
	}
}

type testEnv struct {
	db          *gorm.DB
	accounts    *AccountService
	ledger      *LedgerService
	referrals   *ReferralService
	bonus       *BonusService
	withdrawals *WithdrawalService
	investments *InvestmentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	levels := testLevels()
	ledger := NewLedgerService(db, levels)
	accounts := NewAccountService(db, levels)

	plans := map[string]config.InvestmentPlan{
		"basic": {
			Name:        "Basic",
			MinAmount:   decimal.NewFromInt(100),
			DailyProfit: decimal.RequireFromString("0.01"),
			TermDays:    30,
		},
	}

	return &testEnv{
		db:          db,
		accounts:    accounts,
		ledger:      ledger,
		referrals:   NewReferralService(db, ledger, accounts, decimal.NewFromInt(5)),
		bonus:       NewBonusService(ledger, accounts, decimal.NewFromInt(2)),
		withdrawals: NewWithdrawalService(db, ledger, accounts, decimal.NewFromInt(50)),
		investments: NewInvestmentService(db, ledger, accounts, plans),
	}
}

// newSubscribedAccount registers an account and marks it subscribed.
func (e *testEnv) newSubscribedAccount(t *testing.T, userID int64) *models.Account {
	t.Helper()
	account, err := e.accounts.GetOrCreate(userID)
	require.NoError(t, err)
	require.NoError(t, e.accounts.SetSubscribed(userID, true))
	return account
}

// fund credits an account through the ledger so balance always equals the
// entry sum.
func (e *testEnv) fund(t *testing.T, userID int64, amount int64) {
	t.Helper()
	_, err := e.ledger.Append(userID, models.EntryAdminAdjustment, decimal.NewFromInt(amount), nil)
	require.NoError(t, err)
}

func (e *testEnv) balance(t *testing.T, userID int64) decimal.Decimal {
	t.Helper()
	balance, err := e.ledger.BalanceOf(userID)
	require.NoError(t, err)
	return balance
}
