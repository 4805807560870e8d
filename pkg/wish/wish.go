// Package wish tracks explicit duty requests ("wishes") from staff: a
// person's request for a specific (date, duty) assignment, a person's
// request to be free of any duty on a date, and the per-person counters
// the scheduler's wish tie-break rules depend on.
package wish

import (
	"time"

	"github.com/wisbric/dutyplan/pkg/duty"
	"github.com/wisbric/dutyplan/pkg/person"
)

// Wish is a person's request for a specific duty on a specific date.
type Wish struct {
	Person    person.ID
	Date      time.Time
	Duty      duty.FormID
	Fulfilled bool
}

// FreeWish is a person's request to hold no duty at all on a date.
type FreeWish struct {
	Person person.ID
	Date   time.Time
}

type dateDutyKey struct {
	date time.Time
	duty duty.FormID
}

type personDateKey struct {
	person person.ID
	date   time.Time
}

// Registry indexes wishes and free-wishes and maintains the submitted and
// fulfilled counters used by the select-best-wish tie-break.
type Registry struct {
	byDateDuty map[dateDutyKey][]*Wish
	free       map[personDateKey]bool
	submitted  map[person.ID]int
	fulfilled  map[person.ID]int
}

// NewRegistry builds a Registry from the given wishes and free-wishes.
func NewRegistry(wishes []*Wish, freeWishes []*FreeWish) *Registry {
	r := &Registry{
		byDateDuty: make(map[dateDutyKey][]*Wish),
		free:       make(map[personDateKey]bool),
		submitted:  make(map[person.ID]int),
		fulfilled:  make(map[person.ID]int),
	}
	for _, w := range wishes {
		key := dateDutyKey{w.Date, w.Duty}
		r.byDateDuty[key] = append(r.byDateDuty[key], w)
		r.submitted[w.Person]++
		if w.Fulfilled {
			r.fulfilled[w.Person]++
		}
	}
	for _, fw := range freeWishes {
		r.free[personDateKey{fw.Person, fw.Date}] = true
	}
	return r
}

// IsRequested reports whether any wish exists for (date, duty).
func (r *Registry) IsRequested(date time.Time, f duty.FormID) bool {
	return len(r.byDateDuty[dateDutyKey{date, f}]) > 0
}

// WishPersons returns the people who wished for (date, duty).
func (r *Registry) WishPersons(date time.Time, f duty.FormID) []person.ID {
	wishes := r.byDateDuty[dateDutyKey{date, f}]
	out := make([]person.ID, 0, len(wishes))
	for _, w := range wishes {
		out = append(out, w.Person)
	}
	return out
}

// WishCount returns how many wishes were registered for (date, duty).
func (r *Registry) WishCount(date time.Time, f duty.FormID) int {
	return len(r.byDateDuty[dateDutyKey{date, f}])
}

// HasFreeWish reports whether p requested to be free of duty on date.
func (r *Registry) HasFreeWish(p person.ID, date time.Time) bool {
	return r.free[personDateKey{p, date}]
}

// SubmittedCount returns how many wishes p has submitted in total.
func (r *Registry) SubmittedCount(p person.ID) int {
	return r.submitted[p]
}

// FulfilledCount returns how many of p's wishes have been fulfilled.
func (r *Registry) FulfilledCount(p person.ID) int {
	return r.fulfilled[p]
}

// MarkFulfilled flags p's wish for (date, duty) as fulfilled and bumps the
// per-person fulfilled counter. It is a no-op if no such wish exists.
func (r *Registry) MarkFulfilled(p person.ID, date time.Time, f duty.FormID) {
	for _, w := range r.byDateDuty[dateDutyKey{date, f}] {
		if w.Person == p && !w.Fulfilled {
			w.Fulfilled = true
			r.fulfilled[p]++
			return
		}
	}
}
