package scheduler

import (
	"sort"
	"time"

	"github.com/wisbric/dutyplan/pkg/duty"
	"github.com/wisbric/dutyplan/pkg/person"
	"github.com/wisbric/dutyplan/pkg/rule"
)

type entryKey struct {
	date time.Time
	duty duty.FormID
}

// queueEntry is an unassigned (date, duty) pair with its live candidate set.
type queueEntry struct {
	Date       time.Time
	Duty       duty.FormID
	Candidates []person.ID
	WishFlag   bool
	order      int // insertion order, the final tie-break
}

// Queue is the dynamic-priority planning queue. Because candidate-set
// size changes after every placement, a binary heap cannot represent the
// ordering keys; the queue instead does a full rebuild (clear-and-resort)
// after each assignment.
type Queue struct {
	ctx     *Context
	entries []*queueEntry
	index   map[entryKey]*queueEntry
	next    int
}

// NewQueue builds the initial queue from a planning map. Entries are
// inserted in (date, duty-form-id) order, which is the insertion-order
// tie-break the comparator falls back to.
func NewQueue(ctx *Context, pm PlanningMap) *Queue {
	q := &Queue{ctx: ctx, index: make(map[entryKey]*queueEntry)}

	dates := make([]time.Time, 0, len(pm))
	for d := range pm {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	for _, d := range dates {
		forms := make([]duty.FormID, 0, len(pm[d]))
		for f := range pm[d] {
			forms = append(forms, f)
		}
		sort.Slice(forms, func(i, j int) bool { return forms[i] < forms[j] })

		for _, f := range forms {
			cs := pm[d][f]
			cands := make([]person.ID, len(cs.Candidates))
			copy(cands, cs.Candidates)
			e := &queueEntry{
				Date:       d,
				Duty:       f,
				Candidates: cands,
				WishFlag:   cs.WishFlag,
				order:      q.next,
			}
			q.next++
			q.entries = append(q.entries, e)
			q.index[entryKey{d, f}] = e
		}
	}
	q.Rebuild()
	return q
}

// Len reports how many unresolved entries remain.
func (q *Queue) Len() int { return len(q.entries) }

// Rebuild re-sorts the queue by the four-key comparator. Called after
// every placement, since candidate-set size is part of the sort key.
func (q *Queue) Rebuild() {
	sort.SliceStable(q.entries, func(i, j int) bool {
		return q.less(q.entries[i], q.entries[j])
	})
}

func (q *Queue) less(a, b *queueEntry) bool {
	// 1. wished before unwished.
	if a.WishFlag != b.WishFlag {
		return a.WishFlag
	}
	// 2. fewer wishers first, among wished entries.
	if a.WishFlag && b.WishFlag {
		aw := q.ctx.Wishes.WishCount(a.Date, a.Duty)
		bw := q.ctx.Wishes.WishCount(b.Date, b.Duty)
		if aw != bw {
			return aw < bw
		}
	}
	// 3. tightest candidate set first.
	if len(a.Candidates) != len(b.Candidates) {
		return len(a.Candidates) < len(b.Candidates)
	}
	// 4. more rule-entangled duty first (descending fine-priority).
	ap := q.ctx.Rules.FinePriority(rule.DutyForm(a.Duty))
	bp := q.ctx.Rules.FinePriority(rule.DutyForm(b.Duty))
	if ap != bp {
		return ap > bp
	}
	// insertion-order tie-break.
	return a.order < b.order
}

// Pop removes and returns the top entry. ok is false if the queue is empty.
func (q *Queue) Pop() (*queueEntry, bool) {
	if len(q.entries) == 0 {
		return nil, false
	}
	e := q.entries[0]
	q.removeAt(0)
	return e, true
}

func (q *Queue) removeAt(i int) {
	e := q.entries[i]
	q.entries = append(q.entries[:i], q.entries[i+1:]...)
	delete(q.index, entryKey{e.Date, e.Duty})
}

// Get returns the live entry for (date, f), if it is still unresolved.
func (q *Queue) Get(date time.Time, f duty.FormID) (*queueEntry, bool) {
	e, ok := q.index[entryKey{date, f}]
	return e, ok
}

// RemoveEntry deletes the (date, f) entry from the queue entirely, used
// when joint placement consumes a linked slot.
func (q *Queue) RemoveEntry(date time.Time, f duty.FormID) {
	for i, e := range q.entries {
		if e.Date.Equal(date) && e.Duty == f {
			q.removeAt(i)
			return
		}
	}
}

// RemovePersonFromDate removes who from the candidate sets of every
// unresolved entry on date. Used by same-day cascade removal after a
// placement consumes who's availability for the rest of the day.
func (q *Queue) RemovePersonFromDate(date time.Time, who person.ID) {
	for _, e := range q.entries {
		if e.Date.Equal(date) {
			e.Candidates = removePerson(e.Candidates, who)
		}
	}
}

// RemovePersonFromDuty removes who from the candidate set of the (date, f)
// entry, if it is still unresolved. Used by the MUST-FORBIDDEN duty-duty
// cascade that walks linked forms after a placement.
func (q *Queue) RemovePersonFromDuty(date time.Time, f duty.FormID, who person.ID) {
	if e, ok := q.index[entryKey{date, f}]; ok {
		e.Candidates = removePerson(e.Candidates, who)
	}
}

// RemovePersonFromFollowUpFreeDuties removes who from the candidate set of
// every unresolved entry on date whose duty form is follow-up-free. Used by
// the backward cascade pass: placing who on an ordinary duty on d must not
// retroactively violate a follow-up-free duty already held on d-1, which can
// happen because the driver does not plan strictly in chronological order.
func (q *Queue) RemovePersonFromFollowUpFreeDuties(date time.Time, who person.ID, catalog *duty.Catalog) {
	for _, e := range q.entries {
		if !e.Date.Equal(date) {
			continue
		}
		if f, ok := catalog.Form(e.Duty); ok && f.FollowUpFree {
			e.Candidates = removePerson(e.Candidates, who)
		}
	}
}

// QueueAvailabilityCount returns the number of unresolved entries whose
// candidate set still contains who. Used as a selection tie-break: people
// with fewer remaining opportunities are preferred for a contested slot.
func (q *Queue) QueueAvailabilityCount(who person.ID) int {
	n := 0
	for _, e := range q.entries {
		if containsPerson(e.Candidates, who) {
			n++
		}
	}
	return n
}
