// Package scheduler implements the duty-scheduling engine: static
// candidate computation, the dynamic-priority planning queue, the
// scheduler driver (single and joint placement, cascading removal), and
// the post-hoc rule checker.
package scheduler

import (
	"github.com/wisbric/dutyplan/pkg/calendar"
	"github.com/wisbric/dutyplan/pkg/duty"
	"github.com/wisbric/dutyplan/pkg/person"
	"github.com/wisbric/dutyplan/pkg/rule"
	"github.com/wisbric/dutyplan/pkg/wish"
)

// Context bundles the read-only shared references every engine
// computation needs: the people roster, duty catalog, rule network,
// wish registry, and calendar. These are owned by the caller and must
// not be mutated during a planning run.
type Context struct {
	People   map[person.ID]*person.Person
	Catalog  *duty.Catalog
	Rules    *rule.Network
	Wishes   *wish.Registry
	Calendar calendar.Calendar
}

func (c *Context) person(id person.ID) (*person.Person, bool) {
	p, ok := c.People[id]
	return p, ok
}

// sortedPeopleIDs returns every known person id in a stable order, used
// wherever candidate-set iteration order must be reproducible.
func (c *Context) sortedPeopleIDs() []person.ID {
	out := make([]person.ID, 0, len(c.People))
	for id := range c.People {
		out = append(out, id)
	}
	sortPersonIDs(out)
	return out
}
