package redisx

import "fmt"

const ns = "showgate:v1"

func KeyConcertList() string {
	return ns + ":concerts"
}

func KeyConcertSchedules(concertID int64) string {
	return fmt.Sprintf("%s:concert:%d:schedules", ns, concertID)
}

func KeyScheduleSeats(scheduleID int64) string {
	return fmt.Sprintf("%s:schedule:%d:seats", ns, scheduleID)
}

// RateLimitPrefix is the key prefix for one rate-limit scope; the
// limiter appends the per-caller suffix.
func RateLimitPrefix(scope string) string {
	return fmt.Sprintf("%s:rl:%s", ns, scope)
}

func ChannelSchedulesChanged() string {
	return ns + ":schedules:changed"
}
