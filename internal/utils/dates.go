package utils

import (
	"time"
)

// DateLayout is the wire format for calendar dates (ISO 8601 date only)
const DateLayout = "2006-01-02"

// ParseDate parses an ISO 8601 date, accepting either YYYY-MM-DD or RFC3339
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// FormatDate formats a time as an ISO 8601 date
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatTimestamp formats a time as RFC3339
func FormatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}
