package util

import (
	"fmt"
	"time"
)

const ISO8601 = "2006-01-02T15:04:05.000Z"

const ISO8601_milli = "2006-01-02T15:04:05.000000Z"

const ISO8601_numtz = "2006-01-02T15:04:05.000-07:00"

const ISO8601_numtz_milli = "2006-01-02T15:04:05.000000-07:00"

const ISO8601_sec = "2006-01-02T15:04:05Z"

const ISO8601_numtz_sec = "2006-01-02T15:04:05-07:00"

var timestampFormats = []string{
	time.RFC3339,
	ISO8601,
	ISO8601_milli,
	ISO8601_numtz,
	ISO8601_numtz_milli,
	ISO8601_sec,
	ISO8601_numtz_sec,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the ISO-8601 variants seen across the source
// datasets. Callers with messier inputs should fall back to a lenient
// parser after this fails.
func ParseTimestamp(s string) (time.Time, error) {
	for _, f := range timestampFormats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse %q as timestamp", s)
}
