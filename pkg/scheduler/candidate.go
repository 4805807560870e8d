package scheduler

import (
	"time"

	"github.com/wisbric/dutyplan/pkg/duty"
	"github.com/wisbric/dutyplan/pkg/person"
	"github.com/wisbric/dutyplan/pkg/plan"
	"github.com/wisbric/dutyplan/pkg/rule"
)

// StaticEligible is the static eligibility filter for assigning person p to
// duty form f on date d, given the plan state seeded before planning begins
// (an empty plan if there was no seed-plan input). Dynamic caps (monthly
// weighted totals) are deliberately not checked here; they apply at
// selection time (see selectBest).
func StaticEligible(ctx *Context, seeded *plan.Plan, d time.Time, p person.ID, f *duty.Form) bool {
	per, ok := ctx.person(p)
	if !ok {
		return false
	}

	// 1. Not absent; duty-fit.
	if per.IsAbsent(d) || !per.DutyFit {
		return false
	}

	// 2. No free-wish on d.
	if ctx.Wishes.HasFreeWish(p, d) {
		return false
	}

	// 3. No MUST-FORBIDDEN PersonDuty rule between p and f.
	if ctx.Rules.ExistsMustForbidden(rule.Person(p), rule.DutyForm(f.ID)) {
		return false
	}

	// 4. Did not hold a follow-up-free duty the day before.
	yesterday := d.AddDate(0, 0, -1)
	for _, g := range seeded.DutiesOf(yesterday, p) {
		if gf, ok := ctx.Catalog.Form(g); ok && gf.FollowUpFree {
			return false
		}
	}

	// 5. Not at the in-a-row limit for f.
	if consecutiveRun(seeded, p, f.ID, d) >= f.MaxInARow {
		return false
	}

	// 6. If p already holds some duty g on d (from the seed), a
	// MUST-COMBINATION DutyDuty rule between f and g must exist.
	for _, g := range seeded.DutiesOf(d, p) {
		if g == f.ID {
			continue
		}
		if !ctx.Rules.Exists(rule.DutyForm(f.ID), rule.DutyForm(g), rule.MUST, rule.Combination) {
			return false
		}
	}

	// 7. If p has an active rotation on d, no MUST-weight RotationDuty
	// FORBIDDEN rule may forbid (rotation-template, f).
	if tmpl, ok := per.ActiveRotation(d); ok {
		if ctx.Rules.Exists(rule.RotationTemplate(tmpl), rule.DutyForm(f.ID), rule.MUST, rule.Forbidden) {
			return false
		}
	}

	return true
}

// consecutiveRun scans backward from the day before d and returns the
// length of the unbroken run of duty f held by who immediately preceding d.
func consecutiveRun(p *plan.Plan, who person.ID, f duty.FormID, d time.Time) int {
	k := 0
	cursor := d.AddDate(0, 0, -1)
	for {
		holder, ok := p.Get(cursor, f)
		if !ok || holder != who {
			break
		}
		k++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return k
}

// CandidateSet is the static eligibility result for a (date, duty) slot:
// whether the slot was explicitly wished for, and the eligible people.
type CandidateSet struct {
	WishFlag   bool
	Candidates []person.ID
}

// PlanningMap holds, for every day in a planning horizon, the relevant
// duties and their candidate sets.
type PlanningMap map[time.Time]map[duty.FormID]CandidateSet

// BuildPlanningMap computes the planning map for [start, start+horizonDays)
// against the seeded plan state.
func BuildPlanningMap(ctx *Context, seeded *plan.Plan, start time.Time, horizonDays int) PlanningMap {
	out := make(PlanningMap, horizonDays)
	people := ctx.sortedPeopleIDs()

	for i := 0; i < horizonDays; i++ {
		d := start.AddDate(0, 0, i)
		holiday := ctx.Calendar != nil && ctx.Calendar.IsHoliday(d)
		duties := ctx.Catalog.RelevantDuties(d, holiday)
		if len(duties) == 0 {
			continue
		}

		byForm := make(map[duty.FormID]CandidateSet, len(duties))
		for _, f := range duties {
			var cands []person.ID
			for _, pid := range people {
				if StaticEligible(ctx, seeded, d, pid, f) {
					cands = append(cands, pid)
				}
			}
			byForm[f.ID] = CandidateSet{
				WishFlag:   ctx.Wishes.IsRequested(d, f.ID),
				Candidates: cands,
			}
		}
		out[d] = byForm
	}
	return out
}
