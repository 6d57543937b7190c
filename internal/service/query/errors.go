package query

import "errors"

var (
	ErrConcertNotFound  = errors.New("concert not found")
	ErrScheduleNotFound = errors.New("schedule not found")
)
