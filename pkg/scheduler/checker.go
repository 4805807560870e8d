package scheduler

import (
	"time"

	"github.com/wisbric/dutyplan/pkg/duty"
	"github.com/wisbric/dutyplan/pkg/person"
	"github.com/wisbric/dutyplan/pkg/plan"
	"github.com/wisbric/dutyplan/pkg/rule"
)

// Violation is one rule failure found by the post-hoc checker: a MUST
// rule that a committed plan does not satisfy on a given date.
type Violation struct {
	Date   time.Time
	RuleID string
	Status rule.Status
}

// CheckAll re-validates every MUST rule against p, independent of how p
// was produced. It is meant to run after planning (and after any manual
// repair) to catch anything the driver's cascades missed or that a
// repair step introduced.
func CheckAll(ctx *Context, p *plan.Plan) []Violation {
	var out []Violation
	for _, d := range p.Dates() {
		for _, r := range ctx.Rules.All() {
			if r.Weight != rule.MUST {
				continue
			}
			var v *Violation
			switch r.Subtype {
			case rule.PersonPerson:
				v = checkPersonPerson(p, d, r)
			case rule.PersonDuty:
				v = checkPersonDuty(p, d, r)
			case rule.DutyDuty:
				v = checkDutyDuty(ctx.Catalog, p, d, r)
			case rule.RotationDuty:
				v = checkRotationDuty(ctx, p, d, r)
			}
			if v != nil {
				out = append(out, *v)
			}
		}
	}
	return out
}

func checkPersonPerson(p *plan.Plan, d time.Time, r *rule.Rule) *Violation {
	a := person.ID(r.A.ID)
	b := person.ID(r.B.ID)
	aHas := p.HasPerson(d, a)
	bHas := p.HasPerson(d, b)

	switch r.Kind {
	case rule.Forbidden:
		if aHas && bHas {
			return &Violation{Date: d, RuleID: r.ID, Status: rule.ForbiddenViolated}
		}
	case rule.Combination:
		if aHas != bHas {
			return &Violation{Date: d, RuleID: r.ID, Status: rule.CombinationMissing}
		}
	}
	return nil
}

func checkPersonDuty(p *plan.Plan, d time.Time, r *rule.Rule) *Violation {
	var personID person.ID
	var formID duty.FormID
	if r.A.Kind == rule.KindPerson {
		personID, formID = person.ID(r.A.ID), duty.FormID(r.B.ID)
	} else {
		personID, formID = person.ID(r.B.ID), duty.FormID(r.A.ID)
	}

	holder, holds := p.Get(d, formID)

	switch r.Kind {
	case rule.Forbidden:
		if holds && holder == personID {
			return &Violation{Date: d, RuleID: r.ID, Status: rule.ForbiddenViolated}
		}
	case rule.Combination:
		// If personID holds some other duty that day, formID must be
		// theirs too.
		if p.HasPerson(d, personID) && (!holds || holder != personID) {
			return &Violation{Date: d, RuleID: r.ID, Status: rule.CombinationMissing}
		}
	}
	return nil
}

func checkDutyDuty(catalog *duty.Catalog, p *plan.Plan, d time.Time, r *rule.Rule) *Violation {
	formA := duty.FormID(r.A.ID)
	holderA, ok := p.Get(d, formA)
	if !ok {
		return nil
	}
	linkedDate, formB, ok := r.LinkedDay(catalog, d, formA)
	if !ok {
		return nil
	}
	holderB, okB := p.Get(linkedDate, formB)

	switch r.Kind {
	case rule.Combination:
		if !okB || holderB != holderA {
			return &Violation{Date: d, RuleID: r.ID, Status: rule.CombinationMissing}
		}
	case rule.Forbidden:
		if okB && holderB == holderA {
			return &Violation{Date: d, RuleID: r.ID, Status: rule.ForbiddenViolated}
		}
	}
	return nil
}

func checkRotationDuty(ctx *Context, p *plan.Plan, d time.Time, r *rule.Rule) *Violation {
	var tmplID person.RotationTemplateID
	var formID duty.FormID
	if r.A.Kind == rule.KindRotationTemplate {
		tmplID, formID = person.RotationTemplateID(r.A.ID), duty.FormID(r.B.ID)
	} else {
		tmplID, formID = person.RotationTemplateID(r.B.ID), duty.FormID(r.A.ID)
	}

	holder, ok := p.Get(d, formID)
	if !ok {
		return nil
	}
	per, ok := ctx.person(holder)
	if !ok {
		return nil
	}
	active, ok := per.ActiveRotation(d)
	if !ok {
		return nil
	}

	switch r.Kind {
	case rule.Forbidden:
		if active == tmplID {
			return &Violation{Date: d, RuleID: r.ID, Status: rule.ForbiddenViolated}
		}
	case rule.Combination:
		if active != tmplID {
			return &Violation{Date: d, RuleID: r.ID, Status: rule.CombinationMissing}
		}
	}
	return nil
}
