package domain

import (
	"errors"
	"time"
)

const (
	// MaxBalance caps a wallet; a charge that would exceed it fails.
	MaxBalance int64 = 100_000_000
	// MaxChargeAmount caps a single top-up.
	MaxChargeAmount int64 = 10_000_000
)

var (
	ErrInvalidAmount       = errors.New("amount must be positive and within the charge limit")
	ErrBalanceLimit        = errors.New("balance would exceed the maximum")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// Amount is a user's wallet row. Version backs optimistic concurrency
// control on balance writes.
type Amount struct {
	ID      int64
	UserID  string
	Balance int64
	Version int64
}

func NewAmount(userID string, balance int64) *Amount {
	return &Amount{UserID: userID, Balance: balance}
}

func (a *Amount) Charge(v int64) error {
	if v <= 0 || v > MaxChargeAmount {
		return ErrInvalidAmount
	}
	if a.Balance+v > MaxBalance {
		return ErrBalanceLimit
	}
	a.Balance += v
	return nil
}

func (a *Amount) Use(v int64) error {
	if v <= 0 {
		return ErrInvalidAmount
	}
	if a.Balance < v {
		return ErrInsufficientBalance
	}
	a.Balance -= v
	return nil
}

func (a *Amount) HasEnough(v int64) bool { return a.Balance >= v }

type HistoryType string

const (
	HistoryCharge HistoryType = "CHARGE"
	HistoryUse    HistoryType = "USE"
	HistoryRefund HistoryType = "REFUND"
)

// AmountHistory is an immutable ledger entry, appended in the same unit
// of work as the balance mutation it records.
type AmountHistory struct {
	ID           int64
	UserID       string
	Amount       int64
	Type         HistoryType
	BalanceAfter int64
	CreatedAt    time.Time
	Description  string
}
