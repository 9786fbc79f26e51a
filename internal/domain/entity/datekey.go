package entity

import (
	"errors"
	"time"
)

// Date keys scope all per-day counters. The format deliberately discards
// time-of-day and timezone: two bookings at 23:59 and 00:01 UTC land on
// different keys, and that is the product behavior.
const dateKeyLayout = "2006-01-02"

var ErrInvalidDateKey = errors.New("invalid date, use YYYY-MM-DD")

// DateKey normalizes a timestamp to its calendar-day key in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format(dateKeyLayout)
}

// NormalizeDateKey parses a client-supplied date, accepting either a bare
// date key or an RFC3339 timestamp, and returns the calendar-day key.
func NormalizeDateKey(raw string) (string, error) {
	if t, err := time.Parse(dateKeyLayout, raw); err == nil {
		return DateKey(t), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return DateKey(t), nil
	}
	return "", ErrInvalidDateKey
}
