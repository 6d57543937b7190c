package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountCharge(t *testing.T) {
	a := NewAmount("user-1", 0)

	require.NoError(t, a.Charge(50000))
	assert.Equal(t, int64(50000), a.Balance)

	assert.ErrorIs(t, a.Charge(0), ErrInvalidAmount)
	assert.ErrorIs(t, a.Charge(-100), ErrInvalidAmount)
	assert.ErrorIs(t, a.Charge(MaxChargeAmount+1), ErrInvalidAmount)
	assert.Equal(t, int64(50000), a.Balance)
}

func TestAmountChargeBalanceLimit(t *testing.T) {
	a := NewAmount("user-1", MaxBalance-1000)

	err := a.Charge(2000)
	assert.ErrorIs(t, err, ErrBalanceLimit)
	assert.Equal(t, MaxBalance-1000, a.Balance)

	require.NoError(t, a.Charge(1000))
	assert.Equal(t, MaxBalance, a.Balance)
}

func TestAmountUse(t *testing.T) {
	a := NewAmount("user-1", 100000)

	require.NoError(t, a.Use(30000))
	assert.Equal(t, int64(70000), a.Balance)

	assert.ErrorIs(t, a.Use(0), ErrInvalidAmount)
	assert.ErrorIs(t, a.Use(70001), ErrInsufficientBalance)
	assert.Equal(t, int64(70000), a.Balance)

	assert.True(t, a.HasEnough(70000))
	assert.False(t, a.HasEnough(70001))
}
