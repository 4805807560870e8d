// Package person models staff members participating in the duty plan:
// their availability, duty-fitness, and active rotations.
package person

import "time"

// ID is a stable person identifier.
type ID string

// RotationTemplateID identifies the higher-level work-rotation template a
// person may be actively assigned to on a given date. Rotations participate
// in rule checks (Combination rules between a rotation template and a duty
// form) but are not themselves shift assignments.
type RotationTemplateID string

// Rotation is a concrete, timed assignment of a person to a rotation
// template, active over [Start, End).
type Rotation struct {
	Template RotationTemplateID
	Start    time.Time
	End      time.Time
}

func (r Rotation) active(d time.Time) bool {
	return !d.Before(r.Start) && d.Before(r.End)
}

// Person holds the attributes the scheduling engine reads when deciding
// eligibility: work capacity, duty fitness, absences, and rotations.
type Person struct {
	ID ID

	// WorkCapacity is in (0,1]; it caps the weighted monthly duty total a
	// person may be assigned.
	WorkCapacity float64

	// DutyFit is false for people who cannot be assigned any duty at all
	// (e.g. on long-term leave), independent of per-date absences.
	DutyFit bool

	absences  map[string]bool
	rotations []Rotation
}

// New creates a Person with the given id, work capacity, and duty-fitness.
func New(id ID, workCapacity float64, dutyFit bool) *Person {
	return &Person{
		ID:           id,
		WorkCapacity: workCapacity,
		DutyFit:      dutyFit,
		absences:     make(map[string]bool),
	}
}

// AddAbsence records d as a date the person is unavailable for any duty.
func (p *Person) AddAbsence(d time.Time) {
	p.absences[dayKey(d)] = true
}

// IsAbsent reports whether the person is absent on d.
func (p *Person) IsAbsent(d time.Time) bool {
	return p.absences[dayKey(d)]
}

// AddRotation registers a concrete, timed rotation assignment.
func (p *Person) AddRotation(r Rotation) {
	p.rotations = append(p.rotations, r)
}

// ActiveRotation returns the rotation template active for the person on d,
// if any.
func (p *Person) ActiveRotation(d time.Time) (RotationTemplateID, bool) {
	for _, r := range p.rotations {
		if r.active(d) {
			return r.Template, true
		}
	}
	return "", false
}

func dayKey(d time.Time) string {
	return d.Format("2006-01-02")
}
