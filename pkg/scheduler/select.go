package scheduler

import (
	"time"

	"github.com/wisbric/dutyplan/pkg/duty"
	"github.com/wisbric/dutyplan/pkg/person"
	"github.com/wisbric/dutyplan/pkg/plan"
	"github.com/wisbric/dutyplan/pkg/rule"
)

// filterByCap drops every candidate who would exceed their dynamic monthly
// cap (weighted total, or the duty form's own max-per-month) if assigned
// f on d.
func filterByCap(ctx *Context, p *plan.Plan, f *duty.Form, d time.Time, cands []person.ID) []person.ID {
	var out []person.ID
	for _, id := range cands {
		per, ok := ctx.person(id)
		if !ok {
			continue
		}
		if f.MaxPerMonth > 0 && countForDutyMonth(p, id, f.ID, d) >= f.MaxPerMonth {
			continue
		}
		// 4.5.1.c: reject at round(10*capacity) - 1, not the full ceiling —
		// the safety margin noted in spec §9 ("capped at round-1 during
		// selection").
		ceiling := capacityCeiling(per.WorkCapacity)
		if weightedMonthlyTotal(p, ctx.Catalog, id, d) >= float64(ceiling-1) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// filterByForbiddenNeighbor drops every candidate who would form a
// MUST-weight FORBIDDEN PersonPerson pair with someone already holding a
// linked (concurrently staffed) duty form on d.
func filterByForbiddenNeighbor(ctx *Context, p *plan.Plan, f *duty.Form, d time.Time, cands []person.ID) []person.ID {
	if len(f.LinkedForms) == 0 {
		return cands
	}
	var neighbors []person.ID
	for _, lf := range f.LinkedForms {
		if who, ok := p.Get(d, lf); ok {
			neighbors = append(neighbors, who)
		}
	}
	if len(neighbors) == 0 {
		return cands
	}
	var out []person.ID
	for _, id := range cands {
		blocked := false
		for _, n := range neighbors {
			if ctx.Rules.ExistsMustForbidden(rule.Person(id), rule.Person(n)) {
				blocked = true
				break
			}
		}
		if !blocked {
			out = append(out, id)
		}
	}
	return out
}

// eligibleNow narrows a queue entry's candidate set to the subset still
// assignable at selection time: the static set minus anyone who now
// exceeds a dynamic cap or would form a forbidden pairing.
func eligibleNow(ctx *Context, p *plan.Plan, e *queueEntry) ([]person.ID, *duty.Form, bool) {
	f, ok := ctx.Catalog.Form(e.Duty)
	if !ok {
		return nil, nil, false
	}
	cands := filterByCap(ctx, p, f, e.Date, e.Candidates)
	cands = filterByForbiddenNeighbor(ctx, p, f, e.Date, cands)
	return cands, f, true
}

// selectBest chooses the single best candidate for a non-wished (or
// already-resolved-by-wish) entry. It returns false if no candidate
// survives the dynamic filters, leaving the slot unfilled.
func selectBest(ctx *Context, q *Queue, p *plan.Plan, e *queueEntry) (person.ID, bool) {
	cands, _, ok := eligibleNow(ctx, p, e)
	if !ok || len(cands) == 0 {
		return "", false
	}
	return bestByGeneralOrder(ctx, q, p, e.Date, cands), true
}

// bestByGeneralOrder picks the best of cands by spec §4.5.1(d)'s ordering:
// ascending weighted-count-this-month, then ascending
// queue-availability-count, then ascending damped weighted-count, with a
// final person-id tie-break for reproducibility. cands must be non-empty.
func bestByGeneralOrder(ctx *Context, q *Queue, p *plan.Plan, date time.Time, cands []person.ID) person.ID {
	if len(cands) == 1 {
		return cands[0]
	}

	scoredCands := make([]scoredCand, 0, len(cands))
	for _, id := range cands {
		w := weightedMonthlyTotal(p, ctx.Catalog, id, date)
		scoredCands = append(scoredCands, scoredCand{
			id:           id,
			weighted:     w,
			queueAvail:   q.QueueAvailabilityCount(id),
			dampedWeight: w * 0.5,
		})
	}

	best := scoredCands[0]
	for _, c := range scoredCands[1:] {
		if less3(c, best) {
			best = c
		}
	}
	return best.id
}

type scoredCand struct {
	id           person.ID
	weighted     float64
	queueAvail   int
	dampedWeight float64
}

// less3 orders candidates by ascending weighted-count, then ascending
// queue-availability-count, then ascending damped weighted-count, with a
// final person-id tie-break for reproducibility.
func less3(a, b scoredCand) bool {
	if a.weighted != b.weighted {
		return a.weighted < b.weighted
	}
	if a.queueAvail != b.queueAvail {
		return a.queueAvail < b.queueAvail
	}
	if a.dampedWeight != b.dampedWeight {
		return a.dampedWeight < b.dampedWeight
	}
	return a.id < b.id
}

// selectBestWish chooses among the people who explicitly wished for this
// (date, duty) slot, falling back to selectBest's general ordering if
// none of the wishers survive the dynamic filters.
func selectBestWish(ctx *Context, q *Queue, p *plan.Plan, e *queueEntry) (person.ID, bool) {
	cands, _, ok := eligibleNow(ctx, p, e)
	if !ok || len(cands) == 0 {
		return "", false
	}

	wishers := ctx.Wishes.WishPersons(e.Date, e.Duty)
	wishSet := make(map[person.ID]bool, len(wishers))
	for _, w := range wishers {
		wishSet[w] = true
	}

	var eligible []person.ID
	for _, id := range cands {
		if wishSet[id] {
			eligible = append(eligible, id)
		}
	}
	if len(eligible) == 0 {
		return selectBest(ctx, q, p, e)
	}
	return bestByWishOrder(ctx, q, p, e.Date, eligible), true
}

type wishScored struct {
	id         person.ID
	fulfilled  int
	submitted  int
	queueAvail int
	weighted   float64
}

// bestByWishOrder picks the best of cands by spec §4.5.2's ordering:
// ascending fulfilled-wish-count, then descending submitted-wish-count,
// then ascending queue-availability-count, then ascending
// weighted-count-this-month, with a final person-id tie-break. cands must
// be non-empty.
func bestByWishOrder(ctx *Context, q *Queue, p *plan.Plan, date time.Time, cands []person.ID) person.ID {
	if len(cands) == 1 {
		return cands[0]
	}

	scoredCands := make([]wishScored, 0, len(cands))
	for _, id := range cands {
		scoredCands = append(scoredCands, wishScored{
			id:         id,
			fulfilled:  ctx.Wishes.FulfilledCount(id),
			submitted:  ctx.Wishes.SubmittedCount(id),
			queueAvail: q.QueueAvailabilityCount(id),
			weighted:   weightedMonthlyTotal(p, ctx.Catalog, id, date),
		})
	}

	best := scoredCands[0]
	for _, c := range scoredCands[1:] {
		switch {
		case c.fulfilled != best.fulfilled:
			if c.fulfilled < best.fulfilled {
				best = c
			}
		case c.submitted != best.submitted:
			if c.submitted > best.submitted {
				best = c
			}
		case c.queueAvail != best.queueAvail:
			if c.queueAvail < best.queueAvail {
				best = c
			}
		case c.weighted != best.weighted:
			if c.weighted < best.weighted {
				best = c
			}
		case c.id < best.id:
			best = c
		}
	}
	return best.id
}
