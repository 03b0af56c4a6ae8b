package util

import (
	"strconv"
	"time"
)

// DisplayLayout is the layout emitted by datetime-local inputs.
const DisplayLayout = "2006-01-02T15:04"

// WireLayout is the canonical UTC layout used in URLs and backend queries.
const WireLayout = "2006-01-02T15:04:05.000Z07:00"

// ParseTime tries RFC3339, RFC3339Nano, the datetime-local display layout (read as UTC),
// and unix seconds. Returns (t, true) if any worked; t is always in UTC.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.ParseInLocation(DisplayLayout, s, time.UTC); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0).UTC(), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// FormatTime renders t in WireLayout (UTC, millisecond precision).
func FormatTime(t time.Time) string {
	return t.UTC().Format(WireLayout)
}

// TruncateToInterval rounds t down to the bucket boundary of a kline interval.
// Unknown intervals truncate to the minute.
func TruncateToInterval(t time.Time, interval string) time.Time {
	d, ok := IntervalDuration(interval)
	if !ok {
		d = time.Minute
	}
	return t.UTC().Truncate(d)
}

var intervalDurations = map[string]time.Duration{
	"1m":  time.Minute,
	"3m":  3 * time.Minute,
	"5m":  5 * time.Minute,
	"15m": 15 * time.Minute,
	"30m": 30 * time.Minute,
	"1h":  time.Hour,
	"2h":  2 * time.Hour,
	"4h":  4 * time.Hour,
	"6h":  6 * time.Hour,
	"12h": 12 * time.Hour,
	"1d":  24 * time.Hour,
}

// IntervalDuration maps a kline interval code to its length.
func IntervalDuration(interval string) (time.Duration, bool) {
	d, ok := intervalDurations[interval]
	return d, ok
}
