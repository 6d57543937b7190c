package payment

import "errors"

var (
	ErrPaymentNotFound       = errors.New("payment not found")
	ErrReservationNotFound   = errors.New("reservation not found")
	ErrReservationNotPayable = errors.New("reservation cannot be paid for")
	ErrHoldExpired           = errors.New("seat hold has expired")
	ErrDuplicatePayment      = errors.New("an active payment already exists for this reservation")
	ErrNotRefundable         = errors.New("payment is outside the refund window")
)
