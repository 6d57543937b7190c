package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/showgate/internal/domain"
	"github.com/kirinyoku/showgate/internal/repository"
)

func TestRunTxCommit(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	err := s.RunTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := tx.Concerts().Create(ctx, &domain.Concert{Title: "Aurora"}); err != nil {
			return err
		}
		return tx.Wallets().Create(ctx, domain.NewAmount("user-1", 1000))
	})
	require.NoError(t, err)

	c, err := s.Concerts().FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Aurora", c.Title)

	a, err := s.Wallets().FindByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), a.Balance)
}

func TestRunTxRollback(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	boom := errors.New("boom")
	err := s.RunTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := tx.Concerts().Create(ctx, &domain.Concert{Title: "Aurora"}); err != nil {
			return err
		}
		if err := tx.Wallets().Create(ctx, domain.NewAmount("user-1", 1000)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Nothing inside the failed unit survives.
	_, err = s.Concerts().FindByID(ctx, 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = s.Wallets().FindByUser(ctx, "user-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestWalletVersionConflict(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.Wallets().Create(ctx, domain.NewAmount("user-1", 1000)))

	first, err := s.Wallets().FindByUser(ctx, "user-1")
	require.NoError(t, err)
	second, err := s.Wallets().FindByUser(ctx, "user-1")
	require.NoError(t, err)

	first.Balance = 2000
	require.NoError(t, s.Wallets().Update(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	second.Balance = 9999
	err = s.Wallets().Update(ctx, second)
	assert.ErrorIs(t, err, repository.ErrVersionConflict)

	cur, err := s.Wallets().FindByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), cur.Balance)
}

func TestRepositoriesCopyOnRead(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.Schedules().Create(ctx, &domain.Schedule{
		ConcertID:       1,
		PerformanceTime: time.Now().Add(time.Hour),
		TotalSeats:      50,
		AvailableSeats:  50,
	}))

	got, err := s.Schedules().FindByID(ctx, 1)
	require.NoError(t, err)

	// Mutating the returned struct must not leak into the store.
	got.AvailableSeats = 0

	again, err := s.Schedules().FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 50, again.AvailableSeats)
}

func TestSeatLookupByScheduleAndNumber(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.Seats().CreateBatch(ctx, domain.NewSeatGrid(1)))

	seat, err := s.Seats().FindByScheduleAndNumberForUpdate(ctx, 1, 17)
	require.NoError(t, err)
	assert.Equal(t, 17, seat.SeatNumber)
	assert.Equal(t, "R", seat.Grade)

	_, err = s.Seats().FindByScheduleAndNumberForUpdate(ctx, 1, 51)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	available, err := s.Seats().ListBySchedule(ctx, 1, true)
	require.NoError(t, err)
	assert.Len(t, available, domain.MaxSeatNumber)
}
