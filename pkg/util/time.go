package util

import (
	"time"
)

const DateFormat = "2006-01-02"

// DateOnly drops the clock part of t keeping its calendar date in UTC
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateFormat, value)
}

// DaysBetween is the whole number of calendar days from `from` to `to`,
// negative when `to` is earlier.
func DaysBetween(from time.Time, to time.Time) int {
	return int(DateOnly(to).Sub(DateOnly(from)).Hours() / 24)
}
