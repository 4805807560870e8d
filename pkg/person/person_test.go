package person

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAbsence(t *testing.T) {
	p := New("alice", 1.0, true)
	p.AddAbsence(day(2026, 3, 10))

	if !p.IsAbsent(day(2026, 3, 10)) {
		t.Error("expected absence on 2026-03-10")
	}
	if p.IsAbsent(day(2026, 3, 11)) {
		t.Error("expected no absence on 2026-03-11")
	}
}

func TestActiveRotation(t *testing.T) {
	p := New("bob", 1.0, true)
	p.AddRotation(Rotation{
		Template: "night-lead",
		Start:    day(2026, 3, 1),
		End:      day(2026, 3, 15),
	})

	if tmpl, ok := p.ActiveRotation(day(2026, 3, 5)); !ok || tmpl != "night-lead" {
		t.Errorf("expected active rotation night-lead, got %v, %v", tmpl, ok)
	}
	if _, ok := p.ActiveRotation(day(2026, 3, 15)); ok {
		t.Error("rotation end date should be exclusive")
	}
	if _, ok := p.ActiveRotation(day(2026, 2, 28)); ok {
		t.Error("expected no active rotation before start")
	}
}
