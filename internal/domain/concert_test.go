package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleTakeAndReturnSeat(t *testing.T) {
	s := &Schedule{TotalSeats: 2, AvailableSeats: 2}

	require.NoError(t, s.TakeSeat())
	require.NoError(t, s.TakeSeat())
	assert.True(t, s.IsSoldOut())

	err := s.TakeSeat()
	assert.ErrorIs(t, err, ErrSoldOut)

	require.NoError(t, s.ReturnSeat())
	require.NoError(t, s.ReturnSeat())
	assert.Equal(t, 2, s.AvailableSeats)

	err = s.ReturnSeat()
	assert.ErrorIs(t, err, ErrAllSeatsReleased)
}

func TestScheduleIsOpenForReservation(t *testing.T) {
	now := time.Now()

	s := &Schedule{
		PerformanceTime: now.Add(24 * time.Hour),
		TotalSeats:      50,
		AvailableSeats:  50,
	}
	assert.True(t, s.IsOpenForReservation(now))

	s.AvailableSeats = 0
	assert.False(t, s.IsOpenForReservation(now))

	s.AvailableSeats = 50
	s.PerformanceTime = now.Add(-time.Hour)
	assert.True(t, s.IsPast(now))
	assert.False(t, s.IsOpenForReservation(now))
}

func TestValidateSeatNumber(t *testing.T) {
	assert.NoError(t, ValidateSeatNumber(MinSeatNumber))
	assert.NoError(t, ValidateSeatNumber(MaxSeatNumber))

	err := ValidateSeatNumber(0)
	require.Error(t, err)
	var snErr SeatNumberError
	require.ErrorAs(t, err, &snErr)
	assert.Equal(t, 0, snErr.SeatNumber)

	assert.Error(t, ValidateSeatNumber(MaxSeatNumber+1))
}

func TestSeatTemporaryReserve(t *testing.T) {
	now := time.Now()

	seat := &Seat{Status: SeatAvailable}
	require.NoError(t, seat.TemporaryReserve("user-1", now))
	assert.Equal(t, SeatTemporaryReserved, seat.Status)
	assert.True(t, seat.IsHeldBy("user-1"))
	assert.False(t, seat.IsHeldBy("user-2"))

	err := seat.TemporaryReserve("user-2", now)
	assert.ErrorIs(t, err, ErrSeatNotAvailable)
	assert.True(t, seat.IsHeldBy("user-1"))
}

func TestSeatConfirmReservation(t *testing.T) {
	now := time.Now()

	seat := &Seat{Status: SeatAvailable}
	err := seat.ConfirmReservation()
	assert.ErrorIs(t, err, ErrSeatNotHeld)

	require.NoError(t, seat.TemporaryReserve("user-1", now))
	require.NoError(t, seat.ConfirmReservation())
	assert.Equal(t, SeatReserved, seat.Status)

	err = seat.ConfirmReservation()
	assert.ErrorIs(t, err, ErrSeatNotHeld)
}

func TestSeatRelease(t *testing.T) {
	now := time.Now()

	seat := &Seat{Status: SeatAvailable}
	require.NoError(t, seat.TemporaryReserve("user-1", now))

	seat.Release()
	assert.True(t, seat.IsAvailable())
	assert.Empty(t, seat.ReservedBy)
	assert.Nil(t, seat.ReservedAt)
}

func TestSeatHoldExpired(t *testing.T) {
	now := time.Now()

	seat := &Seat{Status: SeatAvailable}
	assert.False(t, seat.HoldExpired(now))

	require.NoError(t, seat.TemporaryReserve("user-1", now))
	assert.False(t, seat.HoldExpired(now.Add(HoldTTL-time.Second)))
	assert.True(t, seat.HoldExpired(now.Add(HoldTTL+time.Second)))

	require.NoError(t, seat.ConfirmReservation())
	assert.False(t, seat.HoldExpired(now.Add(time.Hour)))
}

func TestNewSeatGrid(t *testing.T) {
	seats := NewSeatGrid(42)
	require.Len(t, seats, MaxSeatNumber)

	for i, seat := range seats {
		assert.Equal(t, int64(42), seat.ScheduleID)
		assert.Equal(t, i+1, seat.SeatNumber)
		assert.Equal(t, SeatAvailable, seat.Status)
	}

	assert.Equal(t, "VIP", seats[0].Grade)
	assert.Equal(t, int64(150000), seats[0].Price)
	assert.Equal(t, "VIP", seats[9].Grade)
	assert.Equal(t, "R", seats[10].Grade)
	assert.Equal(t, int64(120000), seats[10].Price)
	assert.Equal(t, "R", seats[29].Grade)
	assert.Equal(t, "S", seats[30].Grade)
	assert.Equal(t, int64(80000), seats[30].Price)
	assert.Equal(t, "S", seats[49].Grade)
}
