package queue

import "errors"

var (
	ErrTokenNotFound  = errors.New("queue token not found")
	ErrTokenNotActive = errors.New("queue token is not active yet")
	ErrTokenExpired   = errors.New("queue token is expired")
)
