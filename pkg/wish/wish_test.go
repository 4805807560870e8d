package wish

import (
	"testing"
	"time"
)

func TestRegistry_WishFlow(t *testing.T) {
	date := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	w1 := &Wish{Person: "alice", Date: date, Duty: "friday-night"}
	w2 := &Wish{Person: "bob", Date: date, Duty: "friday-night"}
	r := NewRegistry([]*Wish{w1, w2}, nil)

	if !r.IsRequested(date, "friday-night") {
		t.Error("expected friday-night to be requested")
	}
	if r.WishCount(date, "friday-night") != 2 {
		t.Errorf("expected 2 wishers, got %d", r.WishCount(date, "friday-night"))
	}
	if r.IsRequested(date, "saturday-day") {
		t.Error("expected saturday-day to not be requested")
	}

	r.MarkFulfilled("alice", date, "friday-night")
	if !w1.Fulfilled {
		t.Error("expected alice's wish to be marked fulfilled")
	}
	if r.FulfilledCount("alice") != 1 {
		t.Errorf("expected alice fulfilled count 1, got %d", r.FulfilledCount("alice"))
	}
	if r.SubmittedCount("bob") != 1 {
		t.Errorf("expected bob submitted count 1, got %d", r.SubmittedCount("bob"))
	}
}

func TestRegistry_FreeWish(t *testing.T) {
	date := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	r := NewRegistry(nil, []*FreeWish{{Person: "alice", Date: date}})

	if !r.HasFreeWish("alice", date) {
		t.Error("expected alice to have a free wish on date")
	}
	if r.HasFreeWish("bob", date) {
		t.Error("expected bob to have no free wish")
	}
}
