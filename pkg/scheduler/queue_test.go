package scheduler

import (
	"testing"
	"time"

	"github.com/wisbric/dutyplan/pkg/duty"
	"github.com/wisbric/dutyplan/pkg/person"
	"github.com/wisbric/dutyplan/pkg/rule"
	"github.com/wisbric/dutyplan/pkg/wish"
)

func day(n int) time.Time {
	return time.Date(2026, 3, n, 0, 0, 0, 0, time.UTC)
}

func testContext(t *testing.T, forms []*duty.Form, rules []*rule.Rule, wishes []*wish.Wish, free []*wish.FreeWish) *Context {
	t.Helper()
	cat, err := duty.NewCatalog(forms, []*duty.Group{{ID: "g"}})
	if err != nil {
		t.Fatal(err)
	}
	return &Context{
		People:   map[person.ID]*person.Person{},
		Catalog:  cat,
		Rules:    rule.NewNetwork(rules),
		Wishes:   wish.NewRegistry(wishes, free),
		Calendar: calendarStub{},
	}
}

type calendarStub struct{}

func (calendarStub) IsHoliday(time.Time) bool { return false }

func TestQueue_RebuildOrdersByCandidateSetSize(t *testing.T) {
	ctx := testContext(t, nil, nil, nil, nil)
	pm := PlanningMap{
		day(1): {
			"wide": CandidateSet{Candidates: []person.ID{"a", "b", "c"}},
			"tight": CandidateSet{Candidates: []person.ID{"a"}},
		},
	}
	q := NewQueue(ctx, pm)

	first, ok := q.Pop()
	if !ok {
		t.Fatal("expected an entry")
	}
	if first.Duty != "tight" {
		t.Errorf("expected tight candidate set to be prioritized, got %s", first.Duty)
	}
}

func TestQueue_WishedEntriesComeFirst(t *testing.T) {
	ctx := testContext(t, nil, nil,
		[]*wish.Wish{{Person: "a", Date: day(1), Duty: "wished"}}, nil)
	pm := PlanningMap{
		day(1): {
			"wished":   CandidateSet{WishFlag: true, Candidates: []person.ID{"a", "b"}},
			"unwished": CandidateSet{Candidates: []person.ID{"a"}},
		},
	}
	q := NewQueue(ctx, pm)

	first, ok := q.Pop()
	if !ok {
		t.Fatal("expected an entry")
	}
	if first.Duty != "wished" {
		t.Errorf("expected wished entry first despite larger candidate set, got %s", first.Duty)
	}
}

func TestQueue_RemovePersonFromDate(t *testing.T) {
	ctx := testContext(t, nil, nil, nil, nil)
	pm := PlanningMap{
		day(1): {
			"a": CandidateSet{Candidates: []person.ID{"x", "y"}},
			"b": CandidateSet{Candidates: []person.ID{"x"}},
		},
	}
	q := NewQueue(ctx, pm)
	q.RemovePersonFromDate(day(1), "x")

	eA, _ := q.Get(day(1), "a")
	if containsPerson(eA.Candidates, "x") {
		t.Error("expected x removed from entry a")
	}
	eB, _ := q.Get(day(1), "b")
	if len(eB.Candidates) != 0 {
		t.Error("expected x removed from entry b, leaving it empty")
	}
}

func TestQueue_RemoveEntry(t *testing.T) {
	ctx := testContext(t, nil, nil, nil, nil)
	pm := PlanningMap{
		day(1): {"a": CandidateSet{Candidates: []person.ID{"x"}}},
	}
	q := NewQueue(ctx, pm)
	q.RemoveEntry(day(1), "a")

	if _, ok := q.Get(day(1), "a"); ok {
		t.Error("expected entry to be gone")
	}
	if q.Len() != 0 {
		t.Errorf("expected empty queue, got %d", q.Len())
	}
}
