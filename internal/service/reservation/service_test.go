package reservation

import (
	"context"
	"errors"
	"sync"
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

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func seedSchedule(t *testing.T, store *memory.Store, performanceTime time.Time) int64 {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.Concerts().Create(ctx, &domain.Concert{Title: "Aurora", Venue: "Arena"}))

	sc := &domain.Schedule{
		ConcertID:       1,
		PerformanceDate: performanceTime.Truncate(24 * time.Hour),
		PerformanceTime: performanceTime,
		TotalSeats:      domain.MaxSeatNumber,
		AvailableSeats:  domain.MaxSeatNumber,
	}
	require.NoError(t, store.Schedules().Create(ctx, sc))
	require.NoError(t, store.Seats().CreateBatch(ctx, domain.NewSeatGrid(sc.ID)))

	return sc.ID
}

func newTestService(t *testing.T) (*Service, *memory.Store, *fakeClock, int64) {
	t.Helper()

	store := memory.NewStore()
	clk := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	scheduleID := seedSchedule(t, store, clk.t.Add(48*time.Hour))

	svc := New(store, nil, nil, nil)
	svc.now = clk.Now

	return svc, store, clk, scheduleID
}

func TestReserveSeat(t *testing.T) {
	ctx := context.Background()
	svc, store, clk, scheduleID := newTestService(t)

	r, err := svc.ReserveSeat(ctx, "user-1", scheduleID, 7, "")
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationTemporary, r.Status)
	assert.Equal(t, clk.t.Add(domain.HoldTTL), r.ExpiresAt())

	seat, err := store.Seats().FindByID(ctx, r.SeatID)
	require.NoError(t, err)
	assert.Equal(t, domain.SeatTemporaryReserved, seat.Status)
	assert.True(t, seat.IsHeldBy("user-1"))

	sc, err := store.Schedules().FindByID(ctx, scheduleID)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxSeatNumber-1, sc.AvailableSeats)
}

func TestReserveSeatValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _, scheduleID := newTestService(t)

	_, err := svc.ReserveSeat(ctx, "user-1", scheduleID, 0, "")
	var snErr domain.SeatNumberError
	assert.ErrorAs(t, err, &snErr)

	_, err = svc.ReserveSeat(ctx, "user-1", scheduleID, domain.MaxSeatNumber+1, "")
	assert.ErrorAs(t, err, &snErr)

	_, err = svc.ReserveSeat(ctx, "user-1", 9999, 7, "")
	assert.ErrorIs(t, err, ErrScheduleNotFound)
}

func TestReserveSeatTaken(t *testing.T) {
	ctx := context.Background()
	svc, _, _, scheduleID := newTestService(t)

	_, err := svc.ReserveSeat(ctx, "user-1", scheduleID, 7, "")
	require.NoError(t, err)

	_, err = svc.ReserveSeat(ctx, "user-2", scheduleID, 7, "")
	assert.ErrorIs(t, err, ErrSeatNotAvailable)
}

func TestReserveSeatOnePerUserPerSchedule(t *testing.T) {
	ctx := context.Background()
	svc, _, _, scheduleID := newTestService(t)

	_, err := svc.ReserveSeat(ctx, "user-1", scheduleID, 7, "")
	require.NoError(t, err)

	_, err = svc.ReserveSeat(ctx, "user-1", scheduleID, 8, "")
	assert.ErrorIs(t, err, ErrAlreadyReserved)
}

func TestReserveSeatPastSchedule(t *testing.T) {
	ctx := context.Background()

	store := memory.NewStore()
	clk := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	scheduleID := seedSchedule(t, store, clk.t.Add(-time.Hour))

	svc := New(store, nil, nil, nil)
	svc.now = clk.Now

	_, err := svc.ReserveSeat(ctx, "user-1", scheduleID, 7, "")
	assert.ErrorIs(t, err, ErrScheduleClosed)
}

func TestReserveSeatSoldOut(t *testing.T) {
	ctx := context.Background()
	svc, store, _, scheduleID := newTestService(t)

	sc, err := store.Schedules().FindByID(ctx, scheduleID)
	require.NoError(t, err)
	sc.AvailableSeats = 0
	require.NoError(t, store.Schedules().Update(ctx, sc))

	// The schedule counter alone decides, before any seat is inspected.
	_, err = svc.ReserveSeat(ctx, "user-1", scheduleID, 7, "")
	assert.ErrorIs(t, err, domain.ErrSoldOut)
}

func TestReserveSeatRateLimited(t *testing.T) {
	ctx := context.Background()

	store := memory.NewStore()
	clk := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	scheduleID := seedSchedule(t, store, clk.t.Add(48*time.Hour))

	svc := New(store, nil, nil, denyLimiter{})
	svc.now = clk.Now

	_, err := svc.ReserveSeat(ctx, "user-1", scheduleID, 7, "ip:10.0.0.1")
	assert.ErrorIs(t, err, ErrRateLimited)

	// An empty limiter key bypasses the limiter.
	_, err = svc.ReserveSeat(ctx, "user-1", scheduleID, 7, "")
	require.NoError(t, err)
}

func TestConcurrentReserveSameSeat(t *testing.T) {
	ctx := context.Background()
	svc, store, _, scheduleID := newTestService(t)

	const workers = 20

	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			userID := string(rune('a'+i)) + "-user"
			_, errs[i] = svc.ReserveSeat(ctx, userID, scheduleID, 7, "")
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		require.True(t, errors.Is(err, ErrSeatNotAvailable), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, wins)

	sc, err := store.Schedules().FindByID(ctx, scheduleID)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxSeatNumber-1, sc.AvailableSeats)
}

func TestGetOwnership(t *testing.T) {
	ctx := context.Background()
	svc, _, _, scheduleID := newTestService(t)

	r, err := svc.ReserveSeat(ctx, "user-1", scheduleID, 7, "")
	require.NoError(t, err)

	got, err := svc.Get(ctx, "user-1", r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)

	_, err = svc.Get(ctx, "user-2", r.ID)
	assert.ErrorIs(t, err, ErrReservationNotFound)

	_, err = svc.Get(ctx, "user-1", 9999)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestReleaseExpired(t *testing.T) {
	ctx := context.Background()
	svc, store, clk, scheduleID := newTestService(t)

	r, err := svc.ReserveSeat(ctx, "user-1", scheduleID, 7, "")
	require.NoError(t, err)

	// Before the TTL lapses nothing is reaped.
	released, err := svc.ReleaseExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, released)

	clk.Advance(domain.HoldTTL + time.Second)

	released, err = svc.ReleaseExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, released)

	got, err := store.Reservations().FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationExpired, got.Status)

	seat, err := store.Seats().FindByID(ctx, r.SeatID)
	require.NoError(t, err)
	assert.True(t, seat.IsAvailable())

	sc, err := store.Schedules().FindByID(ctx, scheduleID)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxSeatNumber, sc.AvailableSeats)

	// Reaping again finds nothing.
	released, err = svc.ReleaseExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, released)
}

func TestReleaseSkipsConfirmedHold(t *testing.T) {
	ctx := context.Background()
	svc, store, clk, scheduleID := newTestService(t)

	r, err := svc.ReserveSeat(ctx, "user-1", scheduleID, 7, "")
	require.NoError(t, err)

	// The hold is paid for between candidate collection and release.
	got, err := store.Reservations().FindByID(ctx, r.ID)
	require.NoError(t, err)
	require.NoError(t, got.Confirm(1, clk.t))
	require.NoError(t, store.Reservations().Update(ctx, got))

	seat, err := store.Seats().FindByID(ctx, r.SeatID)
	require.NoError(t, err)
	require.NoError(t, seat.ConfirmReservation())
	require.NoError(t, store.Seats().Update(ctx, seat))

	clk.Advance(domain.HoldTTL + time.Second)

	ok, err := svc.releaseOne(ctx, r.ID, clk.t)
	require.NoError(t, err)
	assert.False(t, ok)

	seat, err = store.Seats().FindByID(ctx, r.SeatID)
	require.NoError(t, err)
	assert.Equal(t, domain.SeatReserved, seat.Status)
}

// denyLimiter rejects every attempt.
type denyLimiter struct{}

func (denyLimiter) Allow(ctx context.Context, suffix string) (bool, int64, time.Duration, error) {
	return false, 11, time.Minute, nil
}
