package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateIdempotent(t *testing.T) {
	env := newTestEnv(t)

	first, err := env.accounts.GetOrCreate(100)
	require.NoError(t, err)
	assert.Equal(t, "bronze", first.Level)

	second, err := env.accounts.GetOrCreate(100)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestSetFlagsUnknownAccount(t *testing.T) {
	env := newTestEnv(t)

	assert.ErrorIs(t, env.accounts.SetBlocked(999, true), ErrUnknownAccount)
	assert.ErrorIs(t, env.accounts.SetSubscribed(999, true), ErrUnknownAccount)
}

func TestUserIDs(t *testing.T) {
	env := newTestEnv(t)

	ids, err := env.accounts.UserIDs()
	require.NoError(t, err)
	assert.Empty(t, ids)

	for _, id := range []int64{30, 10, 20} {
		_, err := env.accounts.GetOrCreate(id)
		require.NoError(t, err)
	}

	ids, err = env.accounts.UserIDs()
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20, 30}, ids)
}
