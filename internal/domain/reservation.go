package domain

import (
	"errors"
	"time"
)

type ReservationStatus string

const (
	ReservationTemporary ReservationStatus = "TEMPORARY_RESERVED"
	ReservationConfirmed ReservationStatus = "CONFIRMED"
	ReservationExpired   ReservationStatus = "EXPIRED"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

var (
	ErrReservationNotTemporary     = errors.New("only a temporary reservation can transition")
	ErrReservationAlreadyCancelled = errors.New("reservation is already cancelled")
)

// Reservation tracks one user's claim on one seat. TEMPORARY_RESERVED
// is transient with a HoldTTL window; CONFIRMED, EXPIRED and CANCELLED
// are terminal.
type Reservation struct {
	ID          int64
	UserID      string
	ScheduleID  int64
	SeatID      int64
	Status      ReservationStatus
	ReservedAt  time.Time
	ConfirmedAt *time.Time
	ExpiredAt   *time.Time
	CancelledAt *time.Time
	PaymentID   *int64
}

func NewReservation(userID string, scheduleID, seatID int64, now time.Time) *Reservation {
	return &Reservation{
		UserID:     userID,
		ScheduleID: scheduleID,
		SeatID:     seatID,
		Status:     ReservationTemporary,
		ReservedAt: now,
	}
}

// Confirm finalizes the hold after a completed payment.
func (r *Reservation) Confirm(paymentID int64, now time.Time) error {
	if r.Status != ReservationTemporary {
		return ErrReservationNotTemporary
	}

	r.Status = ReservationConfirmed
	at := now
	r.ConfirmedAt = &at
	r.PaymentID = &paymentID

	return nil
}

func (r *Reservation) Cancel(now time.Time) error {
	if r.Status == ReservationCancelled {
		return ErrReservationAlreadyCancelled
	}

	r.Status = ReservationCancelled
	at := now
	r.CancelledAt = &at

	return nil
}

// Expire reaps a temporary hold whose TTL has elapsed.
func (r *Reservation) Expire(now time.Time) error {
	if r.Status != ReservationTemporary {
		return ErrReservationNotTemporary
	}

	r.Status = ReservationExpired
	at := now
	r.ExpiredAt = &at

	return nil
}

// IsExpired reports whether a still-temporary hold has outlived its TTL.
func (r *Reservation) IsExpired(now time.Time) bool {
	if r.Status != ReservationTemporary {
		return false
	}
	return now.After(r.ExpiresAt())
}

// ExpiresAt is the moment the temporary hold lapses.
func (r *Reservation) ExpiresAt() time.Time {
	return r.ReservedAt.Add(HoldTTL)
}

// IsActive reports whether the reservation still claims its seat.
func (r *Reservation) IsActive() bool {
	return r.Status == ReservationTemporary || r.Status == ReservationConfirmed
}
