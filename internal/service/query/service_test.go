package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/showgate/internal/domain"
	"github.com/kirinyoku/showgate/internal/repository/memory"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func seed(t *testing.T) (*Service, *memory.Store, *fakeClock) {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	clk := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	require.NoError(t, store.Concerts().Create(ctx, &domain.Concert{Title: "Aurora", Venue: "Arena"}))
	require.NoError(t, store.Concerts().Create(ctx, &domain.Concert{Title: "Borealis", Venue: "Hall"}))

	day := func(offset int) time.Time { return clk.t.Add(time.Duration(offset) * 24 * time.Hour) }

	// Concert 1: one past schedule, two upcoming on the same date, one
	// upcoming but sold out.
	schedules := []*domain.Schedule{
		{ConcertID: 1, PerformanceDate: day(-1).Truncate(24 * time.Hour), PerformanceTime: day(-1), TotalSeats: 50, AvailableSeats: 50},
		{ConcertID: 1, PerformanceDate: day(1).Truncate(24 * time.Hour), PerformanceTime: day(1), TotalSeats: 50, AvailableSeats: 50},
		{ConcertID: 1, PerformanceDate: day(1).Truncate(24 * time.Hour), PerformanceTime: day(1).Add(4 * time.Hour), TotalSeats: 50, AvailableSeats: 50},
		{ConcertID: 1, PerformanceDate: day(2).Truncate(24 * time.Hour), PerformanceTime: day(2), TotalSeats: 50, AvailableSeats: 0},
	}
	for _, sc := range schedules {
		require.NoError(t, store.Schedules().Create(ctx, sc))
	}
	require.NoError(t, store.Seats().CreateBatch(ctx, domain.NewSeatGrid(2)))

	svc := New(store, nil, Config{})
	svc.now = clk.Now

	return svc, store, clk
}

func TestListConcerts(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := seed(t)

	concerts, err := svc.ListConcerts(ctx)
	require.NoError(t, err)
	require.Len(t, concerts, 2)
	assert.Equal(t, "Aurora", concerts[0].Title)
	assert.Equal(t, "Borealis", concerts[1].Title)
}

func TestGetConcert(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := seed(t)

	c, err := svc.GetConcert(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Aurora", c.Title)

	_, err = svc.GetConcert(ctx, 99)
	assert.ErrorIs(t, err, ErrConcertNotFound)
}

func TestListAvailableSchedules(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := seed(t)

	// The past schedule and the sold-out one are filtered.
	schedules, err := svc.ListAvailableSchedules(ctx, 1)
	require.NoError(t, err)
	require.Len(t, schedules, 2)
	for _, sc := range schedules {
		assert.False(t, sc.IsSoldOut())
		assert.False(t, sc.IsPast(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))
	}

	schedules, err = svc.ListAvailableSchedules(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, schedules)

	_, err = svc.ListAvailableSchedules(ctx, 99)
	assert.ErrorIs(t, err, ErrConcertNotFound)
}

func TestListAvailableDates(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := seed(t)

	// Two open schedules share one date, so a single date comes back.
	dates, err := svc.ListAvailableDates(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, dates, 1)
}

func TestListSeats(t *testing.T) {
	ctx := context.Background()
	svc, store, clk := seed(t)

	all, err := svc.ListSeats(ctx, 2, false)
	require.NoError(t, err)
	assert.Len(t, all, domain.MaxSeatNumber)

	// Hold one seat and ask for the available view.
	seat, err := store.Seats().FindByScheduleAndNumberForUpdate(ctx, 2, 7)
	require.NoError(t, err)
	require.NoError(t, seat.TemporaryReserve("user-1", clk.t))
	require.NoError(t, store.Seats().Update(ctx, seat))

	available, err := svc.ListSeats(ctx, 2, true)
	require.NoError(t, err)
	assert.Len(t, available, domain.MaxSeatNumber-1)

	_, err = svc.ListSeats(ctx, 99, false)
	assert.ErrorIs(t, err, ErrScheduleNotFound)
}
