package services

import (
	"fmt"
	"sync"
	"testing"

	"earn-bot-system/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCard = "4276123456789012"

func TestRequestBelowMinimum(t *testing.T) {
	env := newTestEnv(t)
	env.newSubscribedAccount(t, 100)
	env.fund(t, 100, 200)

	_, err := env.withdrawals.Request(100, decimal.NewFromInt(49), models.PayoutCard, testCard, true)
	assert.ErrorIs(t, err, ErrBelowMinimum)

	_, err = env.withdrawals.Request(100, decimal.NewFromInt(-50), models.PayoutCard, testCard, true)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestRequestInsufficientFunds(t *testing.T) {
	env := newTestEnv(t)
	env.newSubscribedAccount(t, 100)
	env.fund(t, 100, 60)

	_, err := env.withdrawals.Request(100, decimal.NewFromInt(100), models.PayoutCard, testCard, true)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// The failed reserve rolled back the request row too.
	pending, err := env.withdrawals.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.True(t, env.balance(t, 100).Equal(decimal.NewFromInt(60)))
}

func TestRequestInvalidDetails(t *testing.T) {
	env := newTestEnv(t)
	env.newSubscribedAccount(t, 100)
	env.fund(t, 100, 200)

	_, err := env.withdrawals.Request(100, decimal.NewFromInt(50), models.PayoutCard, "12345", true)
	assert.ErrorIs(t, err, ErrInvalidDetails)
}

func TestRequestReservesFunds(t *testing.T) {
	env := newTestEnv(t)
	env.newSubscribedAccount(t, 100)
	env.fund(t, 100, 200)

	request, err := env.withdrawals.Request(100, decimal.NewFromInt(150), models.PayoutCard, testCard, true)
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalPending, request.Status)

	// The reserve debits immediately, so a second request cannot overdraw.
	assert.True(t, env.balance(t, 100).Equal(decimal.NewFromInt(50)))
	_, err = env.withdrawals.Request(100, decimal.NewFromInt(100), models.PayoutCard, testCard, true)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestResolveApprove(t *testing.T) {
	env := newTestEnv(t)
	env.newSubscribedAccount(t, 100)
	env.fund(t, 100, 200)

	request, err := env.withdrawals.Request(100, decimal.NewFromInt(150), models.PayoutCard, testCard, true)
	require.NoError(t, err)
	balanceBefore := env.balance(t, 100)

	resolved, err := env.withdrawals.Resolve(request.ID, 42, true)
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalApproved, resolved.Status)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, int64(42), *resolved.ResolvedBy)
	assert.NotNil(t, resolved.ResolvedAt)

	// Approval moves nothing: the reserve already debited the funds.
	assert.True(t, env.balance(t, 100).Equal(balanceBefore))

	account, err := env.accounts.Get(100)
	require.NoError(t, err)
	assert.True(t, account.Withdrawn.Equal(decimal.NewFromInt(150)))

	// Resolution is terminal.
	_, err = env.withdrawals.Resolve(request.ID, 42, false)
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestResolveReject(t *testing.T) {
	env := newTestEnv(t)
	env.newSubscribedAccount(t, 100)
	env.fund(t, 100, 200)

	request, err := env.withdrawals.Request(100, decimal.NewFromInt(150), models.PayoutCard, testCard, true)
	require.NoError(t, err)

	resolved, err := env.withdrawals.Resolve(request.ID, 42, false)
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalRejected, resolved.Status)

	// The rollback restores the exact reserved amount.
	assert.True(t, env.balance(t, 100).Equal(decimal.NewFromInt(200)))

	account, err := env.accounts.Get(100)
	require.NoError(t, err)
	assert.True(t, account.Withdrawn.IsZero())
}

func TestResolveUnknownRequest(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.withdrawals.Resolve("missing", 42, true)
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestResolveStorageUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env.newSubscribedAccount(t, 100)
	env.fund(t, 100, 200)

	request, err := env.withdrawals.Request(100, decimal.NewFromInt(150), models.PayoutCard, testCard, true)
	require.NoError(t, err)

	// Driver failures surface as the storage-unavailable kind, never raw.
	sqlDB, err := env.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = env.withdrawals.Resolve(request.ID, 42, true)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestConcurrentRequestsNeverOverdraw(t *testing.T) {
	env := newTestEnv(t)
	env.newSubscribedAccount(t, 100)
	env.fund(t, 100, 100)

	// Three concurrent 50s against a balance of 100: exactly two can win.
	var wg sync.WaitGroup
	results := make(chan error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.withdrawals.Request(100, decimal.NewFromInt(50), models.PayoutCard, testCard, true)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrInsufficientFunds)
		}
	}
	assert.Equal(t, 2, succeeded)
	assert.True(t, env.balance(t, 100).IsZero())
}

func TestReferralEarningsToPayout(t *testing.T) {
	env := newTestEnv(t)
	env.newSubscribedAccount(t, 1)

	// Twenty referrals at 5 each.
	for i := int64(2); i <= 21; i++ {
		env.newSubscribedAccount(t, i)
		_, err := env.referrals.Attribute(i, "1", true)
		require.NoError(t, err)
	}
	require.True(t, env.balance(t, 1).Equal(decimal.NewFromInt(100)))

	request, err := env.withdrawals.Request(1, decimal.NewFromInt(100), models.PayoutQiwi, "79001234567", true)
	require.NoError(t, err)
	assert.True(t, env.balance(t, 1).IsZero())

	_, err = env.withdrawals.Resolve(request.ID, 42, true)
	require.NoError(t, err)

	account, err := env.accounts.Get(1)
	require.NoError(t, err)
	assert.True(t, account.Withdrawn.Equal(decimal.NewFromInt(100)))
	assert.True(t, account.LifetimeEarned.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "silver", account.Level)
	assert.True(t, env.balance(t, 1).IsZero())
}

func TestHistoryFor(t *testing.T) {
	env := newTestEnv(t)
	env.newSubscribedAccount(t, 100)
	env.fund(t, 100, 500)

	for i := 0; i < 3; i++ {
		_, err := env.withdrawals.Request(100, decimal.NewFromInt(50), models.PayoutCard, testCard, true)
		require.NoError(t, err, fmt.Sprintf("request %d", i))
	}

	history, err := env.withdrawals.HistoryFor(100)
	require.NoError(t, err)
	assert.Len(t, history, 3)

	pending, err := env.withdrawals.Pending()
	require.NoError(t, err)
	assert.Len(t, pending, 3)
}
