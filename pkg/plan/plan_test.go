package plan

import (
	"testing"
	"time"

	"github.com/wisbric/dutyplan/pkg/duty"
	"github.com/wisbric/dutyplan/pkg/person"
)

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestPlace_OverwritesPriorHolder(t *testing.T) {
	p := New(nil)
	p.Place(day(1), "F", "alice")
	p.Place(day(1), "F", "bob")

	who, ok := p.Get(day(1), "F")
	if !ok || who != "bob" {
		t.Errorf("expected bob, got %v, %v", who, ok)
	}
}

func TestUnplace(t *testing.T) {
	p := New(nil)
	p.Place(day(1), "F", "alice")
	p.Unplace(day(1), "F")

	if _, ok := p.Get(day(1), "F"); ok {
		t.Error("expected no assignment after unplace")
	}
	if len(p.Dates()) != 0 {
		t.Error("expected empty day map to be pruned")
	}
}

func TestDutiesOfAndHasPerson(t *testing.T) {
	p := New(nil)
	p.Place(day(1), "F1", "alice")
	p.Place(day(1), "F2", "alice")
	p.Place(day(1), "F3", "bob")

	got := p.DutiesOf(day(1), "alice")
	if len(got) != 2 {
		t.Errorf("expected 2 duties for alice, got %d", len(got))
	}
	if !p.HasPerson(day(1), "bob") {
		t.Error("expected bob to hold a duty on day 1")
	}
	if p.HasPerson(day(2), "bob") {
		t.Error("expected bob to hold no duty on day 2")
	}
}

func TestDates_SortedAscending(t *testing.T) {
	p := New(nil)
	p.Place(day(5), "F", "alice")
	p.Place(day(1), "F", "bob")
	p.Place(day(3), "F", "carol")

	dates := p.Dates()
	for i := 1; i < len(dates); i++ {
		if !dates[i-1].Before(dates[i]) {
			t.Errorf("dates not sorted: %v", dates)
		}
	}
}

func TestNew_Seed(t *testing.T) {
	seed := map[time.Time]map[duty.FormID]person.ID{
		day(1): {"F": "alice"},
	}
	p := New(seed)

	who, ok := p.Get(day(1), "F")
	if !ok || who != "alice" {
		t.Errorf("expected seeded assignment alice, got %v, %v", who, ok)
	}
}
