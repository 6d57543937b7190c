package domain

import (
	"errors"
	"time"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentCancelled PaymentStatus = "CANCELLED"
)

// RefundWindow is how long after payment a cancellation is still
// eligible for a refund.
const RefundWindow = 7 * 24 * time.Hour

var (
	ErrPaymentAlreadyCompleted = errors.New("payment is already completed")
	ErrPaymentNotPending       = errors.New("only a pending payment can fail")
	ErrPaymentNotCompleted     = errors.New("only a completed payment can be cancelled")
	ErrNonPositiveAmount       = errors.New("payment amount must be positive")
)

// Payment records one attempt to pay for a reservation. At most one
// payment per reservation may be active (PENDING or COMPLETED).
type Payment struct {
	ID            int64
	UserID        string
	ReservationID int64
	Amount        int64
	Status        PaymentStatus
	CreatedAt     time.Time
	PaidAt        *time.Time
	FailedAt      *time.Time
	CancelledAt   *time.Time
	FailureReason string
	CancelReason  string
}

func NewPayment(userID string, reservationID, amount int64, now time.Time) (*Payment, error) {
	if amount <= 0 {
		return nil, ErrNonPositiveAmount
	}

	return &Payment{
		UserID:        userID,
		ReservationID: reservationID,
		Amount:        amount,
		Status:        PaymentPending,
		CreatedAt:     now,
	}, nil
}

func (p *Payment) Complete(now time.Time) error {
	if p.Status == PaymentCompleted {
		return ErrPaymentAlreadyCompleted
	}

	p.Status = PaymentCompleted
	at := now
	p.PaidAt = &at

	return nil
}

// Fail marks the compensation outcome. It only applies to a payment
// that is still pending; a completed payment must never be failed.
func (p *Payment) Fail(reason string, now time.Time) error {
	if p.Status != PaymentPending {
		return ErrPaymentNotPending
	}

	p.Status = PaymentFailed
	p.FailureReason = reason
	at := now
	p.FailedAt = &at

	return nil
}

func (p *Payment) Cancel(reason string, now time.Time) error {
	if p.Status != PaymentCompleted {
		return ErrPaymentNotCompleted
	}

	p.Status = PaymentCancelled
	p.CancelReason = reason
	at := now
	p.CancelledAt = &at

	return nil
}

func (p *Payment) IsCompleted() bool { return p.Status == PaymentCompleted }

// IsActive reports whether this payment blocks another attempt for the
// same reservation.
func (p *Payment) IsActive() bool {
	return p.Status == PaymentPending || p.Status == PaymentCompleted
}

// IsRefundable reports whether a completed payment is still inside the
// refund window.
func (p *Payment) IsRefundable(now time.Time) bool {
	if p.Status != PaymentCompleted || p.PaidAt == nil {
		return false
	}
	return now.Sub(*p.PaidAt) <= RefundWindow
}
