package reservation

import "errors"

var (
	ErrScheduleNotFound    = errors.New("schedule not found")
	ErrSeatNotFound        = errors.New("seat not found")
	ErrSeatNotAvailable    = errors.New("seat is not available")
	ErrAlreadyReserved     = errors.New("user already holds a reservation for this schedule")
	ErrScheduleClosed      = errors.New("schedule is not open for reservation")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrRateLimited         = errors.New("too many reservation attempts")
)
