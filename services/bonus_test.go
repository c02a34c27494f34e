package services

import (
	"testing"
	"time"

	"earn-bot-system/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimDailyBonus(t *testing.T) {
	env := newTestEnv(t)
	env.newSubscribedAccount(t, 100)

	entry, err := env.bonus.ClaimDailyBonus(100, true)
	require.NoError(t, err)
	assert.Equal(t, models.EntryDailyBonus, entry.Kind)
	assert.True(t, entry.Amount.Equal(decimal.NewFromInt(2)))
	assert.True(t, env.balance(t, 100).Equal(decimal.NewFromInt(2)))

	account, err := env.accounts.Get(100)
	require.NoError(t, err)
	require.NotNil(t, account.LastBonusAt)
}

func TestClaimDailyBonusTwiceInWindow(t *testing.T) {
	env := newTestEnv(t)
	env.newSubscribedAccount(t, 100)

	_, err := env.bonus.ClaimDailyBonus(100, true)
	require.NoError(t, err)

	_, err = env.bonus.ClaimDailyBonus(100, true)
	assert.ErrorIs(t, err, ErrBonusAlreadyClaimed)
	assert.True(t, env.balance(t, 100).Equal(decimal.NewFromInt(2)))

	wait, err := env.bonus.NextClaimIn(100)
	require.NoError(t, err)
	assert.Greater(t, wait, 23*time.Hour)
}

func TestClaimDailyBonusAfterWindow(t *testing.T) {
	env := newTestEnv(t)
	env.newSubscribedAccount(t, 100)

	_, err := env.bonus.ClaimDailyBonus(100, true)
	require.NoError(t, err)

	// The window rolls from the previous claim; push it 25h into the past.
	backdated := time.Now().Add(-25 * time.Hour)
	require.NoError(t, env.db.Model(&models.Account{}).
		Where("user_id = ?", 100).
		Update("last_bonus_at", backdated).Error)

	_, err = env.bonus.ClaimDailyBonus(100, true)
	require.NoError(t, err)
	assert.True(t, env.balance(t, 100).Equal(decimal.NewFromInt(4)))
}

func TestClaimDailyBonusRequiresSubscription(t *testing.T) {
	env := newTestEnv(t)
	env.newSubscribedAccount(t, 100)

	_, err := env.bonus.ClaimDailyBonus(100, false)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClaimDailyBonusBlockedAccount(t *testing.T) {
	env := newTestEnv(t)
	env.newSubscribedAccount(t, 100)
	require.NoError(t, env.accounts.SetBlocked(100, true))

	_, err := env.bonus.ClaimDailyBonus(100, true)
	assert.ErrorIs(t, err, ErrAccountBlocked)
}

func TestNextClaimInNeverClaimed(t *testing.T) {
	env := newTestEnv(t)
	env.newSubscribedAccount(t, 100)

	wait, err := env.bonus.NextClaimIn(100)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), wait)
}
