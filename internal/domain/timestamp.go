package domain

import "time"

// TimestampLayout is the fixed YYYY-MM-DD HH:MM:SS format used for stored
// records and API responses.
const TimestampLayout = "2006-01-02 15:04:05"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
