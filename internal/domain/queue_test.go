package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueTokenActivate(t *testing.T) {
	now := time.Now()

	tok := NewQueueToken("tok-1", "user-1", now)
	require.Equal(t, TokenWaiting, tok.Status)

	err := tok.Activate(now)
	require.NoError(t, err)
	assert.Equal(t, TokenActive, tok.Status)
	assert.Equal(t, 0, tok.Position)
	require.NotNil(t, tok.ActivatedAt)
	assert.Equal(t, now, *tok.ActivatedAt)

	err = tok.Activate(now)
	assert.ErrorIs(t, err, ErrTokenAlreadyActive)

	require.NoError(t, tok.Expire(now))
	err = tok.Activate(now)
	assert.ErrorIs(t, err, ErrTokenAlreadyExpired)
}

func TestQueueTokenExpire(t *testing.T) {
	now := time.Now()

	tok := NewQueueToken("tok-1", "user-1", now)
	err := tok.Expire(now)
	assert.ErrorIs(t, err, ErrTokenStillWaiting)

	require.NoError(t, tok.Activate(now))
	require.NoError(t, tok.Expire(now))
	assert.Equal(t, TokenExpired, tok.Status)
	require.NotNil(t, tok.ExpiredAt)

	err = tok.Expire(now)
	assert.ErrorIs(t, err, ErrTokenAlreadyExpired)
}

func TestQueueTokenRemainingActiveTime(t *testing.T) {
	now := time.Now()

	tok := NewQueueToken("tok-1", "user-1", now)
	assert.Equal(t, time.Duration(0), tok.RemainingActiveTime(now))

	require.NoError(t, tok.Activate(now))
	assert.Equal(t, TokenActiveDuration, tok.RemainingActiveTime(now))
	assert.Equal(t, 2*time.Minute, tok.RemainingActiveTime(now.Add(3*time.Minute)))
	assert.Equal(t, time.Duration(0), tok.RemainingActiveTime(now.Add(10*time.Minute)))
}

func TestQueueTokenShouldAutoExpire(t *testing.T) {
	now := time.Now()

	tok := NewQueueToken("tok-1", "user-1", now)
	assert.False(t, tok.ShouldAutoExpire(now))

	require.NoError(t, tok.Activate(now))
	assert.False(t, tok.ShouldAutoExpire(now.Add(TokenActiveDuration-time.Second)))
	assert.True(t, tok.ShouldAutoExpire(now.Add(TokenActiveDuration+time.Second)))

	require.NoError(t, tok.Expire(now))
	assert.False(t, tok.ShouldAutoExpire(now.Add(time.Hour)))
}
