package scheduler

import (
	"time"

	"github.com/wisbric/dutyplan/pkg/duty"
	"github.com/wisbric/dutyplan/pkg/person"
	"github.com/wisbric/dutyplan/pkg/plan"
	"github.com/wisbric/dutyplan/pkg/rule"
)

// UnfilledSlot is a (date, duty) pair that reached the front of the queue
// with no surviving candidate.
type UnfilledSlot struct {
	Date time.Time
	Duty duty.FormID
}

// Result is the outcome of a planning run: the resulting plan and any
// slots that could not be filled.
type Result struct {
	Plan     *plan.Plan
	Unfilled []UnfilledSlot
}

// Scheduler drives the planning queue to completion: on each iteration it
// pops the top entry, attempts a joint placement if a mandatory
// combination rule links it to another duty form, otherwise falls back to
// single placement, and cascades the consequences of every placement
// before rebuilding the queue and continuing.
type Scheduler struct {
	ctx   *Context
	queue *Queue
	plan  *plan.Plan
}

// NewScheduler builds the planning queue for [start, start+horizonDays)
// against seed (an empty plan if seed is nil) and returns a driver ready
// to run.
func NewScheduler(ctx *Context, seed *plan.Plan, start time.Time, horizonDays int) *Scheduler {
	if seed == nil {
		seed = plan.New(nil)
	}
	pm := BuildPlanningMap(ctx, seed, start, horizonDays)
	return &Scheduler{
		ctx:   ctx,
		queue: NewQueue(ctx, pm),
		plan:  seed,
	}
}

// Run drains the queue, placing one (date, duty) slot at a time until
// none remain.
func (s *Scheduler) Run() Result {
	var unfilled []UnfilledSlot
	for {
		e, ok := s.queue.Pop()
		if !ok {
			break
		}
		if s.tryJointPlacement(e) {
			continue
		}
		who, ok := s.selectForEntry(e)
		if !ok {
			unfilled = append(unfilled, UnfilledSlot{Date: e.Date, Duty: e.Duty})
			continue
		}
		if e.WishFlag {
			s.ctx.Wishes.MarkFulfilled(who, e.Date, e.Duty)
		}
		s.place(e.Date, e.Duty, who)
	}
	return Result{Plan: s.plan, Unfilled: unfilled}
}

func (s *Scheduler) selectForEntry(e *queueEntry) (person.ID, bool) {
	if e.WishFlag {
		return selectBestWish(s.ctx, s.queue, s.plan, e)
	}
	return selectBest(s.ctx, s.queue, s.plan, e)
}

// mustCombinationPartner returns the duty form linked to f by a
// MUST-weight Combination DutyDuty rule, if one exists.
func mustCombinationPartner(rules *rule.Network, f duty.FormID) (*rule.Rule, duty.FormID, bool) {
	for _, r := range rules.RulesOf(rule.DutyForm(f)) {
		if r.Weight != rule.MUST || r.Kind != rule.Combination || r.Subtype != rule.DutyDuty {
			continue
		}
		if other, ok := r.Other(f); ok {
			return r, other, true
		}
	}
	return nil, "", false
}

// tryJointPlacement attempts to place e together with a mandatory linked
// duty on the same person. It returns false (without mutating anything)
// if no mandatory combination rule applies, or no candidate can hold both,
// leaving e to fall through to single placement.
func (s *Scheduler) tryJointPlacement(e *queueEntry) bool {
	r, otherForm, ok := mustCombinationPartner(s.ctx.Rules, e.Duty)
	if !ok {
		return false
	}
	linkedDate, linkedForm, ok := r.LinkedDay(s.ctx.Catalog, e.Date, e.Duty)
	if !ok || linkedForm != otherForm {
		return false
	}
	other, ok := s.queue.Get(linkedDate, linkedForm)
	if !ok {
		return false
	}

	aCands, _, ok := eligibleNow(s.ctx, s.plan, e)
	if !ok {
		return false
	}
	bCands, _, ok := eligibleNow(s.ctx, s.plan, other)
	if !ok {
		return false
	}

	bSet := make(map[person.ID]bool, len(bCands))
	for _, id := range bCands {
		bSet[id] = true
	}

	// Both halves already passed the 4.5.1.c dynamic-cap filter individually
	// (via eligibleNow); joint placement just intersects the two sets.
	var joint []person.ID
	for _, id := range aCands {
		if !bSet[id] {
			continue
		}
		if _, ok := s.ctx.person(id); !ok {
			continue
		}
		joint = append(joint, id)
	}
	if len(joint) == 0 {
		return false
	}

	best, bestIsWish := s.bestJointCandidate(joint, e, other)

	s.queue.RemoveEntry(linkedDate, linkedForm)
	if bestIsWish {
		if e.WishFlag {
			s.ctx.Wishes.MarkFulfilled(best, e.Date, e.Duty)
		}
		if other.WishFlag {
			s.ctx.Wishes.MarkFulfilled(best, linkedDate, linkedForm)
		}
	}
	s.place(e.Date, e.Duty, best)
	s.place(linkedDate, linkedForm, best)
	return true
}

// bestJointCandidate orders joint candidates the way select-best does:
// wishers for either half of the combination take priority (4.5.1.b), then
// the same comparator chain selectBestWish/selectBest use for a single
// slot (4.5.2 for wishers, 4.5.1.d otherwise). It reports whether the
// chosen person wished for either slot.
func (s *Scheduler) bestJointCandidate(joint []person.ID, e, other *queueEntry) (person.ID, bool) {
	sortPersonIDs(joint)

	wishers := make(map[person.ID]bool)
	for _, id := range s.ctx.Wishes.WishPersons(e.Date, e.Duty) {
		wishers[id] = true
	}
	for _, id := range s.ctx.Wishes.WishPersons(other.Date, other.Duty) {
		wishers[id] = true
	}

	pool := joint
	isWish := false
	if len(wishers) > 0 {
		var wished []person.ID
		for _, id := range joint {
			if wishers[id] {
				wished = append(wished, id)
			}
		}
		if len(wished) > 0 {
			pool = wished
			isWish = true
		}
	}

	if isWish {
		return bestByWishOrder(s.ctx, s.queue, s.plan, e.Date, pool), true
	}
	return bestByGeneralOrder(s.ctx, s.queue, s.plan, e.Date, pool), false
}

// place commits an assignment, cascades its consequences through the
// remaining queue, and rebuilds the queue's ordering.
func (s *Scheduler) place(d time.Time, f duty.FormID, who person.ID) {
	s.plan.Place(d, f, who)
	s.cascade(who, f, d)
	s.queue.Rebuild()
}

type visitKey struct {
	rule string
	date time.Time
}

// cascade removes who from every remaining queue candidate set that the
// new assignment renders infeasible: the rest of d, the next day if f is
// follow-up-free, any follow-up-free duty still open on d-1 (since who now
// holds d, a follow-up-free duty the day before would be violated just as
// surely as one placed forward), the day that would push who over f's
// in-a-row limit, and a recursive walk of MUST-FORBIDDEN DutyDuty rules
// linked to f.
func (s *Scheduler) cascade(who person.ID, f duty.FormID, d time.Time) {
	s.queue.RemovePersonFromDate(d, who)

	// Planning does not proceed in chronological order, so the duty just
	// placed on d may have been assigned before d-1's follow-up-free slot
	// was resolved; without this backward pass who could still win that
	// slot and retroactively violate it.
	s.queue.RemovePersonFromFollowUpFreeDuties(d.AddDate(0, 0, -1), who, s.ctx.Catalog)

	form, ok := s.ctx.Catalog.Form(f)
	if !ok {
		return
	}

	if form.FollowUpFree {
		s.queue.RemovePersonFromDate(d.AddDate(0, 0, 1), who)
	}

	nextDay := d.AddDate(0, 0, 1)
	if consecutiveRun(s.plan, who, f, nextDay) >= form.MaxInARow {
		s.queue.RemovePersonFromDuty(nextDay, f, who)
	}

	s.cascadeForbidden(who, f, d, make(map[visitKey]bool))
}

// cascadeForbidden walks MUST-FORBIDDEN DutyDuty rules touching (f, d),
// removing who from the candidate set of each linked slot and recursing
// from there. visited guards against cycles: each (rule id, date) pair is
// only expanded once.
func (s *Scheduler) cascadeForbidden(who person.ID, f duty.FormID, d time.Time, visited map[visitKey]bool) {
	for _, r := range s.ctx.Rules.RulesOf(rule.DutyForm(f)) {
		if r.Weight != rule.MUST || r.Kind != rule.Forbidden || r.Subtype != rule.DutyDuty {
			continue
		}
		vk := visitKey{r.ID, d}
		if visited[vk] {
			continue
		}
		visited[vk] = true

		linkedDate, linkedForm, ok := r.LinkedDay(s.ctx.Catalog, d, f)
		if !ok {
			continue
		}
		s.queue.RemovePersonFromDuty(linkedDate, linkedForm, who)
		s.cascadeForbidden(who, linkedForm, linkedDate, visited)
	}
}

// Plan returns the plan built (or being built) by the scheduler.
func (s *Scheduler) Plan() *plan.Plan { return s.plan }

// QueueLength returns the number of unresolved slots still in the
// planning queue.
func (s *Scheduler) QueueLength() int { return s.queue.Len() }

// Place assigns who to (d, f) directly, bypassing the queue. It is the
// repair-phase entry point for fixing a slot a reviewer flagged, after
// planning has already run to completion.
func (s *Scheduler) Place(d time.Time, f duty.FormID, who person.ID) {
	s.plan.Place(d, f, who)
}

// Unplace clears the assignment at (d, f), if any.
func (s *Scheduler) Unplace(d time.Time, f duty.FormID) {
	s.plan.Unplace(d, f)
}

// Candidates recomputes, from scratch, the people eligible for (d, f)
// against the scheduler's current plan state. It is meant for interactive
// repair: recompute candidates after a manual Unplace, before choosing a
// replacement.
func (s *Scheduler) Candidates(d time.Time, f duty.FormID) []person.ID {
	form, ok := s.ctx.Catalog.Form(f)
	if !ok {
		return nil
	}
	var out []person.ID
	for _, id := range s.ctx.sortedPeopleIDs() {
		if StaticEligible(s.ctx, s.plan, d, id, form) {
			out = append(out, id)
		}
	}
	out = filterByCap(s.ctx, s.plan, form, d, out)
	out = filterByForbiddenNeighbor(s.ctx, s.plan, form, d, out)
	return out
}

// Violations runs the post-hoc rule checker against the scheduler's
// current plan state.
func (s *Scheduler) Violations() []Violation {
	return CheckAll(s.ctx, s.plan)
}
