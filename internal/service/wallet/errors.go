package wallet

import "errors"

var (
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrContention is returned when optimistic retries are exhausted.
	ErrContention = errors.New("wallet is under contention, try again")
)
