package busday

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddBusinessDaysSkipsWeekend(t *testing.T) {
	friday := date(2025, time.March, 7)
	monday := date(2025, time.March, 10)

	if got := AddBusinessDays(friday, 1); !got.Equal(monday) {
		t.Fatalf("AddBusinessDays(friday, 1) = %v, want %v", got, monday)
	}
}

func TestAddBusinessDaysPlainWeekday(t *testing.T) {
	monday := date(2025, time.March, 10)
	tuesday := date(2025, time.March, 11)

	if got := AddBusinessDays(monday, 1); !got.Equal(tuesday) {
		t.Fatalf("AddBusinessDays(monday, 1) = %v, want %v", got, tuesday)
	}
}

func TestAddBusinessDaysMultiple(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		n     int
		want  time.Time
	}{
		{"thursday plus two spans weekend", date(2025, time.March, 6), 2, date(2025, time.March, 10)},
		{"saturday start lands on monday", date(2025, time.March, 8), 1, date(2025, time.March, 10)},
		{"full week", date(2025, time.March, 10), 5, date(2025, time.March, 17)},
		{"zero is identity", date(2025, time.March, 12), 0, date(2025, time.March, 12)},
	}

	for _, tc := range tests {
		if got := AddBusinessDays(tc.start, tc.n); !got.Equal(tc.want) {
			t.Errorf("%s: AddBusinessDays(%v, %d) = %v, want %v", tc.name, tc.start, tc.n, got, tc.want)
		}
	}
}

func TestAddCalendarDaysIgnoresWeekend(t *testing.T) {
	friday := date(2025, time.March, 7)
	want := date(2025, time.March, 15)

	if got := AddCalendarDays(friday, 8); !got.Equal(want) {
		t.Fatalf("AddCalendarDays(friday, 8) = %v, want %v", got, want)
	}
}

func TestDateOnlyDropsTimeComponent(t *testing.T) {
	ts := time.Date(2025, time.March, 7, 16, 45, 12, 999, time.UTC)
	if got := DateOnly(ts); !got.Equal(date(2025, time.March, 7)) {
		t.Fatalf("DateOnly(%v) = %v", ts, got)
	}
}

func TestSameDay(t *testing.T) {
	morning := time.Date(2025, time.March, 7, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2025, time.March, 7, 23, 59, 0, 0, time.UTC)
	nextDay := time.Date(2025, time.March, 8, 0, 0, 0, 0, time.UTC)

	if !SameDay(morning, evening) {
		t.Error("expected morning and evening of the same date to match")
	}
	if SameDay(evening, nextDay) {
		t.Error("expected different dates not to match")
	}
}

func TestNextWeekday(t *testing.T) {
	// Wednesday → next Monday 09:00
	wednesday := time.Date(2025, time.March, 5, 14, 30, 0, 0, time.UTC)
	want := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	if got := NextWeekday(wednesday, time.Monday, 9); !got.Equal(want) {
		t.Fatalf("NextWeekday(wed, Monday, 9) = %v, want %v", got, want)
	}

	// Monday → the following Monday, never the same day.
	monday := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	want = time.Date(2025, time.March, 17, 9, 0, 0, 0, time.UTC)
	if got := NextWeekday(monday, time.Monday, 9); !got.Equal(want) {
		t.Fatalf("NextWeekday(mon, Monday, 9) = %v, want %v", got, want)
	}
}
