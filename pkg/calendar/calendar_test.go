package calendar

import (
	"testing"
	"time"
)

func TestStaticSet(t *testing.T) {
	holiday := time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC)
	cal := NewStaticSet(holiday)

	tests := []struct {
		name string
		date time.Time
		want bool
	}{
		{"exact holiday date", holiday, true},
		{"same day different time", time.Date(2026, 12, 25, 15, 30, 0, 0, time.UTC), true},
		{"day before", time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC), false},
		{"day after", time.Date(2026, 12, 26, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cal.IsHoliday(tt.date); got != tt.want {
				t.Errorf("IsHoliday(%v) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestNoHolidays(t *testing.T) {
	var cal NoHolidays
	if cal.IsHoliday(time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC)) {
		t.Error("NoHolidays must never report a holiday")
	}
}

func TestMonth(t *testing.T) {
	got := Month(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	if got != "2026-03" {
		t.Errorf("Month() = %q, want %q", got, "2026-03")
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	b := time.Date(2026, 3, 15, 23, 0, 0, 0, time.UTC)
	c := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	if !SameDay(a, b) {
		t.Error("expected same day")
	}
	if SameDay(a, c) {
		t.Error("expected different day")
	}
}
