// Package plan holds the produced duty plan: a mapping from date to duty
// form to assigned person. It is the one piece of engine state that is
// mutated as planning proceeds, and that a later repair phase is allowed
// to mutate afterward, through Place and Unplace.
package plan

import (
	"fmt"
	"sort"
	"time"

	"github.com/wisbric/dutyplan/pkg/duty"
	"github.com/wisbric/dutyplan/pkg/person"
)

type key struct {
	date time.Time
	duty duty.FormID
}

// Plan is the mutable (date, duty) -> person mapping produced by a
// scheduling run. It enforces at most one person per (date, duty) by
// construction: Place always overwrites any prior holder.
type Plan struct {
	entries map[key]person.ID
	days    map[time.Time]map[duty.FormID]person.ID
}

// New creates an empty plan, optionally seeded with existing entries
// (a previously committed plan state supplied as external input).
func New(seed map[time.Time]map[duty.FormID]person.ID) *Plan {
	p := &Plan{
		entries: make(map[key]person.ID),
		days:    make(map[time.Time]map[duty.FormID]person.ID),
	}
	for d, byDuty := range seed {
		for f, who := range byDuty {
			p.Place(d, f, who)
		}
	}
	return p
}

// Place assigns person to (date, f), overwriting any prior assignment.
func (p *Plan) Place(date time.Time, f duty.FormID, who person.ID) {
	p.entries[key{date, f}] = who
	if p.days[date] == nil {
		p.days[date] = make(map[duty.FormID]person.ID)
	}
	p.days[date][f] = who
}

// Unplace removes the assignment at (date, f), if any. This is the only
// operation that may remove a plan entry, and it is reserved for the
// repair phase that runs after planning completes.
func (p *Plan) Unplace(date time.Time, f duty.FormID) {
	delete(p.entries, key{date, f})
	if byDuty := p.days[date]; byDuty != nil {
		delete(byDuty, f)
		if len(byDuty) == 0 {
			delete(p.days, date)
		}
	}
}

// Get returns the person assigned to (date, f), if any.
func (p *Plan) Get(date time.Time, f duty.FormID) (person.ID, bool) {
	who, ok := p.entries[key{date, f}]
	return who, ok
}

// Day returns the duty-to-person mapping for date. The returned map must
// not be mutated by callers.
func (p *Plan) Day(date time.Time) map[duty.FormID]person.ID {
	return p.days[date]
}

// Dates returns every date with at least one assignment, sorted ascending.
func (p *Plan) Dates() []time.Time {
	out := make([]time.Time, 0, len(p.days))
	for d := range p.days {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// DutiesOf returns the duty forms that who holds on date.
func (p *Plan) DutiesOf(date time.Time, who person.ID) []duty.FormID {
	var out []duty.FormID
	for f, assignee := range p.days[date] {
		if assignee == who {
			out = append(out, f)
		}
	}
	return out
}

// HasPerson reports whether who holds any duty on date.
func (p *Plan) HasPerson(date time.Time, who person.ID) bool {
	for _, assignee := range p.days[date] {
		if assignee == who {
			return true
		}
	}
	return false
}

// Snapshot returns the full plan as a plain map, suitable for serialization
// by an external persistence layer.
func (p *Plan) Snapshot() map[time.Time]map[duty.FormID]person.ID {
	out := make(map[time.Time]map[duty.FormID]person.ID, len(p.days))
	for d, byDuty := range p.days {
		cp := make(map[duty.FormID]person.ID, len(byDuty))
		for f, who := range byDuty {
			cp[f] = who
		}
		out[d] = cp
	}
	return out
}

// Entry is a single (date, duty, person) triple, used for plan-wide
// iteration in the checker and in reporting.
type Entry struct {
	Date   time.Time
	Duty   duty.FormID
	Person person.ID
}

// Entries returns every assignment in the plan as a flat list, sorted by
// date then duty form id for reproducibility.
func (p *Plan) Entries() []Entry {
	out := make([]Entry, 0, len(p.entries))
	for k, who := range p.entries {
		out = append(out, Entry{Date: k.date, Duty: k.duty, Person: who})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Duty < out[j].Duty
	})
	return out
}

func (e Entry) String() string {
	return fmt.Sprintf("%s/%s=%s", e.Date.Format("2006-01-02"), e.Duty, e.Person)
}
