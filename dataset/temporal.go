/*
temporal.go - Date/time normalization

Upstream rows carry dates as typed instants or as text in a handful of
known shapes (ISO date/datetime with or without offset, US month/day/year
with meridiem, slash-separated dates). ParseFlexible tries them all and
resolves anything unparseable to a missing-value marker - never an error -
so downstream aggregation can simply skip the row.
*/
package dataset

import (
	"strings"
	"time"
)

// dateLayouts is tried in order. First match wins.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04Z",
	"2006/01/02",
	"01/02/2006 03:04 PM",
	"01/02/2006",
}

// ParseFlexible normalizes a cell to a time.Time. The boolean reports
// success; on failure the zero time is returned and callers treat the
// value as missing.
func ParseFlexible(v any) (time.Time, bool) {
	switch val := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if val.IsZero() {
			return time.Time{}, false
		}
		return val, true
	case *time.Time:
		if val == nil || val.IsZero() {
			return time.Time{}, false
		}
		return *val, true
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// MinutesBetween returns the span between two cells in minutes, rounded
// to one digit. Missing or unparseable endpoints yield ok=false.
func MinutesBetween(start, end any) (float64, bool) {
	s, ok := ParseFlexible(start)
	if !ok {
		return 0, false
	}
	e, ok := ParseFlexible(end)
	if !ok {
		return 0, false
	}
	minutes := e.Sub(s).Minutes()
	return roundTo(minutes, 1), true
}

// DayOf truncates a parsed cell to its calendar date (UTC). Used as the
// rollup grouping key.
func DayOf(v any) (time.Time, bool) {
	t, ok := ParseFlexible(v)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}

func roundTo(f float64, places int) float64 {
	shift := 1.0
	for i := 0; i < places; i++ {
		shift *= 10
	}
	if f < 0 {
		return float64(int64(f*shift-0.5)) / shift
	}
	return float64(int64(f*shift+0.5)) / shift
}
