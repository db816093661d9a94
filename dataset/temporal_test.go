package dataset

import (
	"testing"
	"time"
)

// =============================================================================
// FLEXIBLE DATE PARSING TESTS
// =============================================================================

func TestParseFlexible_KnownShapes(t *testing.T) {
	// GIVEN: Date cells in every shape upstream actually produces
	// WHEN: Parsed
	// THEN: All resolve to the same instant (up to their precision)

	cases := []struct {
		name string
		in   any
		want time.Time
	}{
		{"iso date", "2025-03-01", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"iso datetime", "2025-03-01 09:30", time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)},
		{"iso datetime seconds", "2025-03-01 09:30:15", time.Date(2025, 3, 1, 9, 30, 15, 0, time.UTC)},
		{"t-separated", "2025-03-01T09:30:15", time.Date(2025, 3, 1, 9, 30, 15, 0, time.UTC)},
		{"slash date", "2025/03/01", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"us meridiem", "03/01/2025 09:30 AM", time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)},
		{"us date", "03/01/2025", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"typed instant", time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseFlexible(tc.in)
			if !ok {
				t.Fatalf("expected %v to parse", tc.in)
			}
			if !got.Equal(tc.want) {
				t.Errorf("ParseFlexible(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseFlexible_Unparseable(t *testing.T) {
	// GIVEN: Values with no recoverable date
	// WHEN: Parsed
	// THEN: The missing-value marker, never an error

	for _, in := range []any{nil, "", "not a date", 42, "31/31/2025"} {
		if _, ok := ParseFlexible(in); ok {
			t.Errorf("expected %v to fail parsing", in)
		}
	}
}

// =============================================================================
// DURATION AND ROLLUP-KEY TESTS
// =============================================================================

func TestMinutesBetween(t *testing.T) {
	// GIVEN: Open and close timestamps two and a half hours apart
	// WHEN: The span is computed
	// THEN: 150.0 minutes, one digit

	minutes, ok := MinutesBetween("2025-03-01 09:00", "2025-03-01 11:30")
	if !ok {
		t.Fatal("expected both endpoints to parse")
	}
	if minutes != 150.0 {
		t.Errorf("expected 150.0 minutes, got %v", minutes)
	}
}

func TestMinutesBetween_MissingEnd(t *testing.T) {
	if _, ok := MinutesBetween("2025-03-01 09:00", nil); ok {
		t.Error("a missing end timestamp must yield ok=false")
	}
	if _, ok := MinutesBetween(nil, "2025-03-01 11:30"); ok {
		t.Error("a missing start timestamp must yield ok=false")
	}
}

func TestDayOf(t *testing.T) {
	// GIVEN: A full timestamp
	// WHEN: Truncated to its rollup key
	// THEN: Midnight UTC of the same calendar date

	day, ok := DayOf("2025-03-01T15:04:05")
	if !ok {
		t.Fatal("expected timestamp to parse")
	}
	want := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	if !day.Equal(want) {
		t.Errorf("DayOf = %v, want %v", day, want)
	}
}
