package services

import (
	"testing"
	"time"

	"earn-bot-system/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvest(t *testing.T) {
	env := newTestEnv(t)
	env.newSubscribedAccount(t, 100)
	env.fund(t, 100, 300)

	investment, err := env.investments.Invest(100, "basic", decimal.NewFromInt(200), true)
	require.NoError(t, err)
	assert.Equal(t, "basic", investment.PlanID)
	assert.False(t, investment.Finished)
	assert.Equal(t, 30, int(investment.EndDate.Sub(investment.StartDate).Hours()/24))

	// The deposit went through the ledger.
	assert.True(t, env.balance(t, 100).Equal(decimal.NewFromInt(100)))
}

func TestInvestValidation(t *testing.T) {
	env := newTestEnv(t)
	env.newSubscribedAccount(t, 100)
	env.fund(t, 100, 300)

	_, err := env.investments.Invest(100, "missing", decimal.NewFromInt(200), true)
	assert.ErrorIs(t, err, ErrUnknownPlan)

	_, err = env.investments.Invest(100, "basic", decimal.NewFromInt(50), true)
	assert.ErrorIs(t, err, ErrBelowMinimum)

	_, err = env.investments.Invest(100, "basic", decimal.NewFromInt(500), true)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	_, err = env.investments.Invest(100, "basic", decimal.NewFromInt(100), false)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAccrueProfits(t *testing.T) {
	env := newTestEnv(t)
	env.newSubscribedAccount(t, 100)
	env.fund(t, 100, 200)

	investment, err := env.investments.Invest(100, "basic", decimal.NewFromInt(200), true)
	require.NoError(t, err)
	require.True(t, env.balance(t, 100).IsZero())

	// Two whole days elapsed at 1% per day on 200.
	credited, err := env.investments.AccrueProfits(time.Now().Add(49 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, credited)
	assert.True(t, env.balance(t, 100).Equal(decimal.NewFromInt(4)))

	var stored models.Investment
	require.NoError(t, env.db.First(&stored, "id = ?", investment.ID).Error)
	assert.True(t, stored.TotalProfit.Equal(decimal.NewFromInt(4)))
	assert.False(t, stored.Finished)

	// Re-running at the same instant credits nothing more.
	credited, err = env.investments.AccrueProfits(time.Now().Add(49 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, credited)
}

func TestAccrueProfitsCapsAtTerm(t *testing.T) {
	env := newTestEnv(t)
	env.newSubscribedAccount(t, 100)
	env.fund(t, 100, 100)

	investment, err := env.investments.Invest(100, "basic", decimal.NewFromInt(100), true)
	require.NoError(t, err)

	// Far past the 30-day term: accrual stops at the end date.
	credited, err := env.investments.AccrueProfits(time.Now().AddDate(0, 0, 45))
	require.NoError(t, err)
	assert.Equal(t, 1, credited)

	var stored models.Investment
	require.NoError(t, env.db.First(&stored, "id = ?", investment.ID).Error)
	assert.True(t, stored.Finished)
	assert.True(t, stored.TotalProfit.Equal(decimal.NewFromInt(30)))
	assert.True(t, env.balance(t, 100).Equal(decimal.NewFromInt(30)))
}

func TestInvestmentStats(t *testing.T) {
	env := newTestEnv(t)
	env.newSubscribedAccount(t, 100)
	env.fund(t, 100, 500)

	_, err := env.investments.Invest(100, "basic", decimal.NewFromInt(100), true)
	require.NoError(t, err)
	_, err = env.investments.Invest(100, "basic", decimal.NewFromInt(150), true)
	require.NoError(t, err)

	stats, err := env.investments.StatsFor(100)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Active)
	assert.True(t, stats.TotalInvested.Equal(decimal.NewFromInt(250)))
	assert.True(t, stats.TotalProfit.IsZero())
}
