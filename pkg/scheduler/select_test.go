package scheduler

import (
	"testing"
	"time"

	"github.com/wisbric/dutyplan/pkg/duty"
	"github.com/wisbric/dutyplan/pkg/person"
	"github.com/wisbric/dutyplan/pkg/plan"
	"github.com/wisbric/dutyplan/pkg/wish"
)

func TestSelectBest_PrefersLowerWeightedMonthlyTotal(t *testing.T) {
	f := &duty.Form{ID: "F", Weekday: time.Friday, Group: "g", MaxInARow: 1, Weight: 1}
	other := &duty.Form{ID: "O", Weekday: time.Thursday, Group: "g", MaxInARow: 1, Weight: 1}
	ctx := testContext(t, []*duty.Form{f, other}, nil, nil, nil)
	addPeople(ctx, person.New("alice", 1.0, true), person.New("bob", 1.0, true))

	// alice already has a duty earlier this month; bob has none.
	p := plan.New(map[time.Time]map[duty.FormID]person.ID{
		day(5): {"O": "alice"},
	})

	q := NewQueue(ctx, PlanningMap{
		day(6): {"F": CandidateSet{Candidates: []person.ID{"alice", "bob"}}},
	})
	e, _ := q.Pop()

	who, ok := selectBest(ctx, q, p, e)
	if !ok {
		t.Fatal("expected a candidate to be chosen")
	}
	if who != "bob" {
		t.Errorf("expected bob (lower monthly total) to be chosen, got %s", who)
	}
}

func TestSelectBest_NoSurvivorsReturnsFalse(t *testing.T) {
	f := &duty.Form{ID: "F", Weekday: time.Friday, Group: "g", MaxInARow: 1, MaxPerMonth: 1}
	ctx := testContext(t, []*duty.Form{f}, nil, nil, nil)
	addPeople(ctx, person.New("alice", 1.0, true))

	p := plan.New(map[time.Time]map[duty.FormID]person.ID{
		day(1): {"F": "alice"},
	})

	q := NewQueue(ctx, PlanningMap{
		day(6): {"F": CandidateSet{Candidates: []person.ID{"alice"}}},
	})
	e, _ := q.Pop()

	if _, ok := selectBest(ctx, q, p, e); ok {
		t.Error("expected no survivors: alice is already at her monthly cap for F")
	}
}

func TestSelectBestWish_FallsBackWhenNoWisherSurvives(t *testing.T) {
	f := &duty.Form{ID: "F", Weekday: time.Friday, Group: "g", MaxInARow: 1, MaxPerMonth: 1}
	ctx := testContext(t, []*duty.Form{f}, nil, nil, nil)
	addPeople(ctx, person.New("alice", 1.0, true), person.New("bob", 1.0, true))

	p := plan.New(map[time.Time]map[duty.FormID]person.ID{
		day(1): {"F": "alice"},
	})

	q := NewQueue(ctx, PlanningMap{
		day(6): {"F": CandidateSet{WishFlag: true, Candidates: []person.ID{"alice", "bob"}}},
	})
	e, _ := q.Pop()

	// Only alice wished, but she is over her monthly cap; selectBestWish
	// must fall back to the general ordering and pick bob.
	ctx.Wishes = wish.NewRegistry([]*wish.Wish{{Person: "alice", Date: day(6), Duty: "F"}}, nil)

	who, ok := selectBestWish(ctx, q, p, e)
	if !ok || who != "bob" {
		t.Errorf("expected fallback to pick bob, got %s (ok=%v)", who, ok)
	}
}
