package services

import (
	"sync"
	"testing"

	"earn-bot-system/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendRejectsZeroAmount(t *testing.T) {
	env := newTestEnv(t)
	env.newSubscribedAccount(t, 100)

	_, err := env.ledger.Append(100, models.EntryDailyBonus, decimal.Zero, nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestAppendUnknownAccount(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.ledger.Append(999, models.EntryDailyBonus, decimal.NewFromInt(2), nil)
	assert.ErrorIs(t, err, ErrUnknownAccount)
}

func TestAppendRejectsOverdraw(t *testing.T) {
	env := newTestEnv(t)
	env.newSubscribedAccount(t, 100)
	env.fund(t, 100, 30)

	_, err := env.ledger.Append(100, models.EntryWithdrawalReserve, decimal.NewFromInt(-50), nil)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// The failed append leaves no trace.
	assert.True(t, env.balance(t, 100).Equal(decimal.NewFromInt(30)))
	entries, err := env.ledger.EntriesFor(100, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestBalanceMatchesEntrySum(t *testing.T) {
	env := newTestEnv(t)
	env.newSubscribedAccount(t, 100)

	env.fund(t, 100, 70)
	_, err := env.ledger.Append(100, models.EntryReferralBonus, decimal.NewFromInt(5), nil)
	require.NoError(t, err)
	_, err = env.ledger.Append(100, models.EntryWithdrawalReserve, decimal.NewFromInt(-50), nil)
	require.NoError(t, err)

	account, err := env.accounts.Get(100)
	require.NoError(t, err)

	// The projected balance on the account row matches the sum of entries.
	assert.True(t, env.balance(t, 100).Equal(decimal.NewFromInt(25)))
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(25)))
}

func TestLifetimeEarnedCountsOnlyEarnings(t *testing.T) {
	env := newTestEnv(t)
	env.newSubscribedAccount(t, 100)

	env.fund(t, 100, 120)
	_, err := env.ledger.Append(100, models.EntryWithdrawalReserve, decimal.NewFromInt(-50), nil)
	require.NoError(t, err)
	_, err = env.ledger.Append(100, models.EntryWithdrawalRollback, decimal.NewFromInt(50), nil)
	require.NoError(t, err)

	account, err := env.accounts.Get(100)
	require.NoError(t, err)

	// The rollback restores balance but is not an earning; lifetime earnings
	// only grew by the initial credit, which also crossed the silver mark.
	assert.True(t, account.LifetimeEarned.Equal(decimal.NewFromInt(120)))
	assert.Equal(t, "silver", account.Level)
}

func TestConcurrentAppendsSameAccount(t *testing.T) {
	env := newTestEnv(t)
	env.newSubscribedAccount(t, 100)

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.ledger.Append(100, models.EntryReferralBonus, decimal.NewFromInt(5), nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.True(t, env.balance(t, 100).Equal(decimal.NewFromInt(writers*5)))
	entries, err := env.ledger.EntriesFor(100, 100)
	require.NoError(t, err)
	assert.Len(t, entries, writers)
}

func TestEntriesForLimit(t *testing.T) {
	env := newTestEnv(t)
	env.newSubscribedAccount(t, 100)
	for i := 0; i < 5; i++ {
		env.fund(t, 100, 1)
	}

	entries, err := env.ledger.EntriesFor(100, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
