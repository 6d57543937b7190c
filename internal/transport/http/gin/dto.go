package httpgin

import "time"

type IssueTokenRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

type TokenResponse struct {
	Token            string `json:"token"`
	Status           string `json:"status"`
	Position         int    `json:"position,omitempty"`
	EstimatedWaitSec int64  `json:"estimated_wait_sec,omitempty"`
	RemainingSec     int64  `json:"remaining_sec,omitempty"`
}

type ReserveSeatRequest struct {
	SeatNumber int `json:"seat_number" binding:"required,gt=0"`
}

type ReservationResponse struct {
	ReservationID int64     `json:"reservation_id"`
	ScheduleID    int64     `json:"schedule_id"`
	SeatID        int64     `json:"seat_id"`
	Status        string    `json:"status"`
	ExpiresAt     time.Time `json:"expires_at,omitempty"`
}

type ProcessPaymentRequest struct {
	ReservationID int64 `json:"reservation_id" binding:"required"`
}

// PaymentResponse carries the purchase display data on the payment
// route itself; the lookup routes leave those fields empty.
type PaymentResponse struct {
	PaymentID     int64      `json:"payment_id"`
	ReservationID int64      `json:"reservation_id"`
	Amount        int64      `json:"amount"`
	Status        string     `json:"status"`
	Refundable    bool       `json:"refundable,omitempty"`
	ConcertTitle  string     `json:"concert_title,omitempty"`
	Performance   *time.Time `json:"performance_time,omitempty"`
	SeatNumber    int        `json:"seat_number,omitempty"`
	SeatGrade     string     `json:"seat_grade,omitempty"`
}

type ReceiptResponse struct {
	PaymentID    int64     `json:"payment_id"`
	Amount       int64     `json:"amount"`
	Status       string    `json:"status"`
	ConcertTitle string    `json:"concert_title"`
	Performance  time.Time `json:"performance_time"`
	SeatNumber   int       `json:"seat_number"`
	SeatGrade    string    `json:"seat_grade"`
	PaidAt       time.Time `json:"paid_at"`
}

type ChargeRequest struct {
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Description string `json:"description"`
}

type BalanceResponse struct {
	UserID       string     `json:"user_id"`
	Balance      int64      `json:"balance"`
	LastChargeAt *time.Time `json:"last_charge_at,omitempty"`
	LastCharge   int64      `json:"last_charge,omitempty"`
}

type CreateConcertRequest struct {
	Title       string `json:"title" binding:"required"`
	Venue       string `json:"venue" binding:"required"`
	Description string `json:"description"`
}

type CreateConcertResponse struct {
	ConcertID int64 `json:"concert_id"`
}

type CreateScheduleRequest struct {
	PerformanceTime string `json:"performance_time" binding:"required"`
}

type CreateScheduleResponse struct {
	ScheduleID     int64 `json:"schedule_id"`
	TotalSeats     int   `json:"total_seats"`
	AvailableSeats int   `json:"available_seats"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func parseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
