// Package calendar provides the pure date utilities the scheduling engine
// depends on: weekday lookup and holiday classification. Holiday lookup
// itself is an external collaborator — this package only defines the
// interface and a couple of trivial implementations useful for tests and
// simple deployments.
package calendar

import "time"

// Calendar classifies dates. Implementations must be pure: given the same
// date, IsHoliday must always return the same answer.
type Calendar interface {
	IsHoliday(d time.Time) bool
}

// Weekday returns the day of week for d. It exists mostly so callers don't
// reach for time.Time.Weekday directly and so the semantics in this package
// read as one unit.
func Weekday(d time.Time) time.Weekday {
	return d.Weekday()
}

// SameDay reports whether a and b fall on the same calendar day, ignoring
// time-of-day. The worker normalizes its planning start to midnight with
// Normalize, but external callers may not have done so.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Normalize truncates d to midnight in its own location, which is the form
// every engine component expects dates to be in.
func Normalize(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, d.Location())
}

// Month returns a key identifying the calendar month containing d, suitable
// for use as a map key when tallying monthly totals.
func Month(d time.Time) string {
	return d.Format("2006-01")
}

// NoHolidays is a Calendar that never reports a holiday. Useful for tests
// and for deployments that don't model holidays at all.
type NoHolidays struct{}

// IsHoliday always returns false.
func (NoHolidays) IsHoliday(time.Time) bool { return false }

// StaticSet is a Calendar backed by an explicit set of holiday dates. It is
// a convenience implementation — production deployments are expected to
// supply their own Calendar backed by a real holiday source.
type StaticSet struct {
	dates map[string]bool
}

// NewStaticSet builds a StaticSet from a list of holiday dates.
func NewStaticSet(dates ...time.Time) *StaticSet {
	s := &StaticSet{dates: make(map[string]bool, len(dates))}
	for _, d := range dates {
		s.dates[Normalize(d).Format("2006-01-02")] = true
	}
	return s
}

// IsHoliday reports whether d was registered as a holiday.
func (s *StaticSet) IsHoliday(d time.Time) bool {
	return s.dates[Normalize(d).Format("2006-01-02")]
}
