package queue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/showgate/internal/domain"
	"github.com/kirinyoku/showgate/internal/repository/memory"
)

func newTestService(cfg Config) (*Service, *fakeClock) {
	clk := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := New(memory.NewStore(), cfg)
	svc.now = clk.Now
	return svc, clk
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestIssueTokenIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(Config{})

	first, err := svc.IssueToken(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TokenWaiting, first.Status)
	assert.Equal(t, 1, first.Position)

	again, err := svc.IssueToken(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, first.Token, again.Token)
}

func TestIssueTokenPositionOrdering(t *testing.T) {
	ctx := context.Background()
	svc, clk := newTestService(Config{})

	for i := 1; i <= 5; i++ {
		info, err := svc.IssueToken(ctx, fmt.Sprintf("user-%d", i))
		require.NoError(t, err)
		assert.Equal(t, i, info.Position)
		assert.Equal(t, time.Duration(i)*30*time.Second, info.EstimatedWait)
		clk.Advance(time.Second)
	}
}

func TestIssueTokenReplacesStaleActive(t *testing.T) {
	ctx := context.Background()
	svc, clk := newTestService(Config{})

	first, err := svc.IssueToken(ctx, "user-1")
	require.NoError(t, err)

	_, activated, err := svc.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, activated)

	clk.Advance(domain.TokenActiveDuration + time.Second)

	fresh, err := svc.IssueToken(ctx, "user-1")
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, fresh.Token)
	assert.Equal(t, domain.TokenWaiting, fresh.Status)

	_, err = svc.Status(ctx, first.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestSweepActivatesInBatches(t *testing.T) {
	ctx := context.Background()
	svc, clk := newTestService(Config{MaxActive: 100, ActivationBatch: 10})

	for i := 0; i < 25; i++ {
		_, err := svc.IssueToken(ctx, fmt.Sprintf("user-%d", i))
		require.NoError(t, err)
		clk.Advance(time.Millisecond)
	}

	expired, activated, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, expired)
	assert.Equal(t, 10, activated)

	// The oldest waiting tokens go first.
	info, err := svc.IssueToken(ctx, "user-0")
	require.NoError(t, err)
	assert.Equal(t, domain.TokenActive, info.Status)

	info, err = svc.IssueToken(ctx, "user-10")
	require.NoError(t, err)
	assert.Equal(t, domain.TokenWaiting, info.Status)
	assert.Equal(t, 1, info.Position)
}

func TestSweepRespectsMaxActive(t *testing.T) {
	ctx := context.Background()
	svc, clk := newTestService(Config{MaxActive: 5, ActivationBatch: 10})

	for i := 0; i < 8; i++ {
		_, err := svc.IssueToken(ctx, fmt.Sprintf("user-%d", i))
		require.NoError(t, err)
		clk.Advance(time.Millisecond)
	}

	_, activated, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, activated)

	// No free slots left, so another sweep promotes nobody.
	_, activated, err = svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, activated)
}

func TestSweepExpiresOverdueAndBackfills(t *testing.T) {
	ctx := context.Background()
	svc, clk := newTestService(Config{MaxActive: 2, ActivationBatch: 10})

	for i := 0; i < 4; i++ {
		_, err := svc.IssueToken(ctx, fmt.Sprintf("user-%d", i))
		require.NoError(t, err)
		clk.Advance(time.Millisecond)
	}

	_, activated, err := svc.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, activated)

	clk.Advance(domain.TokenActiveDuration + time.Second)

	expired, activated, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, expired)
	assert.Equal(t, 2, activated)
}

func TestValidateActive(t *testing.T) {
	ctx := context.Background()
	svc, clk := newTestService(Config{})

	info, err := svc.IssueToken(ctx, "user-1")
	require.NoError(t, err)

	_, err = svc.ValidateActive(ctx, info.Token)
	assert.ErrorIs(t, err, ErrTokenNotActive)

	_, _, err = svc.Sweep(ctx)
	require.NoError(t, err)

	userID, err := svc.ValidateActive(ctx, info.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	// The active window lapses and validation expires the token in place.
	clk.Advance(domain.TokenActiveDuration + time.Second)
	_, err = svc.ValidateActive(ctx, info.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = svc.ValidateActive(ctx, "no-such-token")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestStatusExpiredToken(t *testing.T) {
	ctx := context.Background()
	svc, clk := newTestService(Config{})

	info, err := svc.IssueToken(ctx, "user-1")
	require.NoError(t, err)

	_, _, err = svc.Sweep(ctx)
	require.NoError(t, err)

	clk.Advance(domain.TokenActiveDuration + time.Second)

	_, err = svc.Status(ctx, info.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	// The lazy expiry was committed, so the next read fails the same way.
	_, err = svc.Status(ctx, info.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestExpireToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(Config{})

	info, err := svc.IssueToken(ctx, "user-1")
	require.NoError(t, err)

	_, _, err = svc.Sweep(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.ExpireToken(ctx, info.Token))

	// A second retirement finds the token already expired.
	assert.ErrorIs(t, svc.ExpireToken(ctx, info.Token), domain.ErrTokenAlreadyExpired)

	assert.ErrorIs(t, svc.ExpireToken(ctx, "no-such-token"), ErrTokenNotFound)
}
