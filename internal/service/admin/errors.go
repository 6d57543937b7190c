package admin

import "errors"

var (
	ErrConcertNotFound = errors.New("concert not found")
	ErrScheduleExists  = errors.New("schedule already exists")
	ErrInvalidSchedule = errors.New("invalid schedule")
)
