package admin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/showgate/internal/domain"
	"github.com/kirinyoku/showgate/internal/repository/memory"
)

func TestCreateConcert(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := New(store, nil, nil)

	id, err := svc.CreateConcert(ctx, "Aurora", "Arena", "winter tour")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	c, err := store.Concerts().FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Aurora", c.Title)
	assert.Equal(t, "Arena", c.Venue)
}

func TestCreateSchedule(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := New(store, nil, nil)

	clk := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clk }

	id, err := svc.CreateConcert(ctx, "Aurora", "Arena", "")
	require.NoError(t, err)

	perf := clk.Add(72 * time.Hour)
	sc, err := svc.CreateSchedule(ctx, id, perf)
	require.NoError(t, err)
	assert.Equal(t, perf, sc.PerformanceTime)
	assert.Equal(t, domain.MaxSeatNumber, sc.TotalSeats)
	assert.Equal(t, domain.MaxSeatNumber, sc.AvailableSeats)

	// The full seat grid is laid out with the schedule.
	seats, err := store.Seats().ListBySchedule(ctx, sc.ID, false)
	require.NoError(t, err)
	assert.Len(t, seats, domain.MaxSeatNumber)
}

func TestCreateScheduleValidation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := New(store, nil, nil)

	clk := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clk }

	_, err := svc.CreateSchedule(ctx, 1, clk.Add(-time.Hour))
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	_, err = svc.CreateSchedule(ctx, 99, clk.Add(time.Hour))
	assert.ErrorIs(t, err, ErrConcertNotFound)
}
