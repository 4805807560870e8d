// Package rule models the MUST/SHOULD/MAY constraint network between
// people, duty forms, and rotations. Rules are represented as a tagged
// variant (per participant subtype) rather than an inheritance hierarchy,
// dispatching on an explicit Subtype field instead of virtual methods.
package rule

import (
	"time"

	"github.com/wisbric/dutyplan/pkg/duty"
	"github.com/wisbric/dutyplan/pkg/person"
)

// Weight is a rule's enforcement strength. Only MUST is enforced during
// placement; SHOULD and MAY are informational.
type Weight int

const (
	MUST Weight = iota
	SHOULD
	MAY
)

// Kind distinguishes a required joint assignment from a prohibited one.
type Kind int

const (
	Combination Kind = iota
	Forbidden
)

// Subtype identifies which pair of entity kinds a rule relates.
type Subtype int

const (
	// DutyDuty rules relate two duty forms (a required or forbidden joint
	// assignment to the same person across their linked day).
	DutyDuty Subtype = iota
	// PersonPerson rules relate two people (e.g. a forbidden pairing on
	// concurrently-staffed duties).
	PersonPerson
	// PersonDuty rules relate a person and a duty form directly.
	PersonDuty
	// RotationDuty rules relate an active rotation template and a duty
	// form.
	RotationDuty
)

// EntityKind tags what an Entity identifies.
type EntityKind int

const (
	KindPerson EntityKind = iota
	KindDutyForm
	KindRotationTemplate
)

// Entity is a reference to a participant in a rule: a person, a duty form,
// or a rotation template.
type Entity struct {
	Kind EntityKind
	ID   string
}

// Person builds an Entity referring to a person.
func Person(id person.ID) Entity { return Entity{Kind: KindPerson, ID: string(id)} }

// DutyForm builds an Entity referring to a duty form.
func DutyForm(id duty.FormID) Entity { return Entity{Kind: KindDutyForm, ID: string(id)} }

// RotationTemplate builds an Entity referring to a rotation template.
func RotationTemplate(id person.RotationTemplateID) Entity {
	return Entity{Kind: KindRotationTemplate, ID: string(id)}
}

// Rule is one MUST/SHOULD/MAY constraint between exactly two participants.
type Rule struct {
	ID      string
	Weight  Weight
	Kind    Kind
	Subtype Subtype

	// A and B are the two participants. For DutyDuty rules, A is
	// considered to come "first": LinkedDay searches forward from A to
	// find B's occurrence, and backward from B to find A's.
	A, B Entity
}

// Status is the outcome of checking a rule against a plan on a date.
type Status int

const (
	OK Status = iota
	CombinationMissing
	ForbiddenViolated
)

// IsRelevant reports whether the rule should be checked on date d. Every
// rule is relevant on every date; duty-weekday applicability is already
// enforced by the duty catalog and candidate computation, so the checker
// does not need to re-derive it here.
func (r *Rule) IsRelevant(time.Time) bool { return true }

// Other returns the participant of a DutyDuty rule that is not f, and
// whether f participates in the rule at all.
func (r *Rule) Other(f duty.FormID) (duty.FormID, bool) {
	if r.Subtype != DutyDuty {
		return "", false
	}
	switch {
	case r.A.Kind == KindDutyForm && r.A.ID == string(f):
		return duty.FormID(r.B.ID), true
	case r.B.Kind == KindDutyForm && r.B.ID == string(f):
		return duty.FormID(r.A.ID), true
	default:
		return "", false
	}
}

// LinkedDay computes the second date implied by a DutyDuty rule whose
// duty f is planned on d: the first date within a 7-day window, in the
// direction determined by whether f is the rule's first or second
// participant, whose weekday matches the other duty's weekday.
func (r *Rule) LinkedDay(catalog *duty.Catalog, d time.Time, f duty.FormID) (time.Time, duty.FormID, bool) {
	other, ok := r.Other(f)
	if !ok {
		return time.Time{}, "", false
	}
	otherForm, ok := catalog.Form(other)
	if !ok {
		return time.Time{}, "", false
	}

	forward := r.A.Kind == KindDutyForm && r.A.ID == string(f)

	if forward {
		for i := 0; i < 7; i++ {
			cand := d.AddDate(0, 0, i)
			if cand.Weekday() == otherForm.Weekday {
				return cand, other, true
			}
		}
	} else {
		for i := 0; i < 7; i++ {
			cand := d.AddDate(0, 0, -i)
			if cand.Weekday() == otherForm.Weekday {
				return cand, other, true
			}
		}
	}
	return time.Time{}, "", false
}
