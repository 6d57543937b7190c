package domain

import (
	"errors"
	"fmt"
	"time"
)

type Concert struct {
	ID          int64
	Title       string
	Venue       string
	Description string
}

var (
	ErrSoldOut          = errors.New("no seats left for this schedule")
	ErrAllSeatsReleased = errors.New("available seats cannot exceed total seats")
)

// Schedule is one performance of a concert. AvailableSeats is a
// denormalized counter that must be mutated in the same critical
// section as the seat it reflects.
type Schedule struct {
	ID              int64
	ConcertID       int64
	PerformanceDate time.Time
	PerformanceTime time.Time
	TotalSeats      int
	AvailableSeats  int
}

// TakeSeat decrements the availability counter for a new hold.
func (s *Schedule) TakeSeat() error {
	if s.AvailableSeats <= 0 {
		return ErrSoldOut
	}
	s.AvailableSeats--
	return nil
}

// ReturnSeat gives a seat back after a hold is released or expires.
func (s *Schedule) ReturnSeat() error {
	if s.AvailableSeats >= s.TotalSeats {
		return ErrAllSeatsReleased
	}
	s.AvailableSeats++
	return nil
}

func (s *Schedule) IsSoldOut() bool { return s.AvailableSeats == 0 }

func (s *Schedule) IsPast(now time.Time) bool {
	return s.PerformanceTime.Before(now)
}

func (s *Schedule) IsOpenForReservation(now time.Time) bool {
	return !s.IsPast(now) && !s.IsSoldOut()
}

type SeatStatus string

const (
	SeatAvailable         SeatStatus = "AVAILABLE"
	SeatTemporaryReserved SeatStatus = "TEMPORARY_RESERVED"
	SeatReserved          SeatStatus = "RESERVED"
)

const (
	MinSeatNumber = 1
	MaxSeatNumber = 50

	// HoldTTL is how long a temporary seat hold survives before the
	// reaper releases it.
	HoldTTL = 5 * time.Minute
)

var (
	ErrSeatNotAvailable = errors.New("seat is not available")
	ErrSeatNotHeld      = errors.New("seat is not temporarily reserved")
)

type SeatNumberError struct {
	SeatNumber int
}

func (e SeatNumberError) Error() string {
	return fmt.Sprintf("seat number %d out of range [%d,%d]", e.SeatNumber, MinSeatNumber, MaxSeatNumber)
}

func ValidateSeatNumber(n int) error {
	if n < MinSeatNumber || n > MaxSeatNumber {
		return SeatNumberError{SeatNumber: n}
	}
	return nil
}

// Seat is a physical seat of one schedule. (ScheduleID, SeatNumber)
// is unique; Status must change together with the schedule's
// availability counter.
type Seat struct {
	ID         int64
	ScheduleID int64
	SeatNumber int
	Grade      string
	Price      int64
	Status     SeatStatus
	ReservedBy string
	ReservedAt *time.Time
}

// TemporaryReserve places a hold on an available seat.
func (s *Seat) TemporaryReserve(userID string, now time.Time) error {
	if s.Status != SeatAvailable {
		return ErrSeatNotAvailable
	}

	s.Status = SeatTemporaryReserved
	s.ReservedBy = userID
	at := now
	s.ReservedAt = &at

	return nil
}

// ConfirmReservation finalizes a held seat after payment.
func (s *Seat) ConfirmReservation() error {
	if s.Status != SeatTemporaryReserved {
		return ErrSeatNotHeld
	}
	s.Status = SeatReserved
	return nil
}

// Release puts the seat back on sale and clears the hold metadata.
func (s *Seat) Release() {
	s.Status = SeatAvailable
	s.ReservedBy = ""
	s.ReservedAt = nil
}

// HoldExpired reports whether a temporary hold has outlived HoldTTL.
func (s *Seat) HoldExpired(now time.Time) bool {
	if s.Status != SeatTemporaryReserved || s.ReservedAt == nil {
		return false
	}
	return now.After(s.ReservedAt.Add(HoldTTL))
}

func (s *Seat) IsAvailable() bool { return s.Status == SeatAvailable }

func (s *Seat) IsHeldBy(userID string) bool {
	return userID != "" && s.ReservedBy == userID
}

// NewSeatGrid builds the 50-seat layout for a schedule: 1-10 VIP,
// 11-30 R, 31-50 S.
func NewSeatGrid(scheduleID int64) []*Seat {
	seats := make([]*Seat, 0, MaxSeatNumber)

	for n := MinSeatNumber; n <= MaxSeatNumber; n++ {
		grade, price := seatGrade(n)
		seats = append(seats, &Seat{
			ScheduleID: scheduleID,
			SeatNumber: n,
			Grade:      grade,
			Price:      price,
			Status:     SeatAvailable,
		})
	}

	return seats
}

func seatGrade(n int) (string, int64) {
	switch {
	case n <= 10:
		return "VIP", 150000
	case n <= 30:
		return "R", 120000
	default:
		return "S", 80000
	}
}
