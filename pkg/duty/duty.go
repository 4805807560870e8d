// Package duty holds the duty-form catalog: the metadata every concrete
// shift type carries (weekday applicability, follow-up-free, in-a-row and
// monthly caps, weight, and linked concurrent duties), plus duty groups,
// which carry holiday applicability.
package duty

import (
	"fmt"
	"time"
)

// FormID is a stable duty-form identifier.
type FormID string

// GroupID is a stable duty-group identifier.
type GroupID string

// Group is an equivalence class of duty forms across weekdays, carrying
// holiday applicability: if AppliesOnHolidays, the group's SUNDAY-weekday
// form is the one scheduled on holiday dates (see Catalog.RelevantDuties).
type Group struct {
	ID                GroupID
	AppliesOnHolidays bool
}

// Form is a concrete duty/shift type tied to a weekday.
type Form struct {
	ID      FormID
	Weekday time.Weekday
	Group   GroupID

	// FollowUpFree bars the holder from any duty on the next calendar day.
	FollowUpFree bool

	// MaxInARow is the maximum number of consecutive days the same person
	// may hold this duty form. Must be >= 1.
	MaxInARow int

	// MaxPerMonth caps how many times a person may hold this duty form in
	// a calendar month. Zero means unbounded.
	MaxPerMonth int

	// Weight contributes to a person's weighted monthly duty total.
	Weight float64

	// LinkedForms are duty forms staffed concurrently with this one on the
	// same day (used by forbidden-neighbor checks in select-best).
	LinkedForms []FormID
}

// Catalog indexes duty forms and groups by id and answers the
// weekday/holiday relevance queries the planning-map construction needs.
type Catalog struct {
	forms  map[FormID]*Form
	groups map[GroupID]*Group
}

// NewCatalog validates and indexes the given forms and groups. It returns
// an error if a form has inconsistent metadata or references an unknown
// group.
func NewCatalog(forms []*Form, groups []*Group) (*Catalog, error) {
	c := &Catalog{
		forms:  make(map[FormID]*Form, len(forms)),
		groups: make(map[GroupID]*Group, len(groups)),
	}
	for _, g := range groups {
		c.groups[g.ID] = g
	}
	for _, f := range forms {
		if f.MaxInARow < 1 {
			return nil, fmt.Errorf("duty form %q: max-in-a-row must be >= 1, got %d", f.ID, f.MaxInARow)
		}
		if _, ok := c.groups[f.Group]; !ok {
			return nil, fmt.Errorf("duty form %q: references unknown group %q", f.ID, f.Group)
		}
		c.forms[f.ID] = f
	}
	return c, nil
}

// Form returns the duty form for id.
func (c *Catalog) Form(id FormID) (*Form, bool) {
	f, ok := c.forms[id]
	return f, ok
}

// Group returns the duty group for id.
func (c *Catalog) Group(id GroupID) (*Group, bool) {
	g, ok := c.groups[id]
	return g, ok
}

// AppliesOnHolidays reports whether the given group's forms are eligible
// for holiday scheduling.
func (c *Catalog) AppliesOnHolidays(g GroupID) bool {
	group, ok := c.groups[g]
	return ok && group.AppliesOnHolidays
}

// RelevantDuties returns the duty forms that must be staffed on date d.
// On a holiday date, only the SUNDAY-weekday form of each holiday-eligible
// group is relevant; on an ordinary date, every form whose weekday matches
// d's weekday is relevant.
func (c *Catalog) RelevantDuties(d time.Time, isHoliday bool) []*Form {
	var out []*Form
	if isHoliday {
		seen := make(map[GroupID]bool)
		for _, f := range c.forms {
			if seen[f.Group] {
				continue
			}
			if !c.AppliesOnHolidays(f.Group) {
				continue
			}
			if f.Weekday != time.Sunday {
				continue
			}
			seen[f.Group] = true
			out = append(out, f)
		}
		return out
	}

	weekday := d.Weekday()
	for _, f := range c.forms {
		if f.Weekday == weekday {
			out = append(out, f)
		}
	}
	return out
}

// AllForms returns every duty form in the catalog, order unspecified.
func (c *Catalog) AllForms() []*Form {
	out := make([]*Form, 0, len(c.forms))
	for _, f := range c.forms {
		out = append(out, f)
	}
	return out
}
