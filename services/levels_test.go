package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLevelOf(t *testing.T) {
	levels := testLevels()

	cases := []struct {
		earned int64
		want   string
	}{
		{0, "bronze"},
		{99, "bronze"},
		{100, "silver"},
		{499, "silver"},
		{500, "gold"},
		{10000, "gold"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, LevelOf(levels, decimal.NewFromInt(tc.earned)),
			"earned=%d", tc.earned)
	}
}

func TestLevelOfEmptyTable(t *testing.T) {
	assert.Equal(t, "", LevelOf(nil, decimal.NewFromInt(100)))
}

func TestNextLevel(t *testing.T) {
	levels := testLevels()

	name, missing, ok := NextLevel(levels, decimal.NewFromInt(40))
	assert.True(t, ok)
	assert.Equal(t, "silver", name)
	assert.True(t, missing.Equal(decimal.NewFromInt(60)))

	name, missing, ok = NextLevel(levels, decimal.NewFromInt(100))
	assert.True(t, ok)
	assert.Equal(t, "gold", name)
	assert.True(t, missing.Equal(decimal.NewFromInt(400)))

	_, _, ok = NextLevel(levels, decimal.NewFromInt(500))
	assert.False(t, ok)
}

func TestLevelNeverDowngrades(t *testing.T) {
	env := newTestEnv(t)
	env.newSubscribedAccount(t, 100)
	env.fund(t, 100, 100)

	account, err := env.accounts.Get(100)
	assert.NoError(t, err)
	assert.Equal(t, "silver", account.Level)

	// Spending does not touch lifetime earnings, so the tier stays.
	_, err = env.withdrawals.Request(100, decimal.NewFromInt(100), "card", testCard, true)
	assert.NoError(t, err)

	account, err = env.accounts.Get(100)
	assert.NoError(t, err)
	assert.Equal(t, "silver", account.Level)
	assert.True(t, account.LifetimeEarned.Equal(decimal.NewFromInt(100)))
}
