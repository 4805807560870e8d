package scheduler

import (
	"sort"

	"github.com/wisbric/dutyplan/pkg/person"
)

// sortPersonIDs sorts ids in place, lexicographically. The engine relies
// on this for reproducible output wherever candidate sets are iterated or
// ties need breaking.
func sortPersonIDs(ids []person.ID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

// containsPerson reports whether id is present in ids.
func containsPerson(ids []person.ID, id person.ID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// removePerson returns ids with id removed, preserving order.
func removePerson(ids []person.ID, id person.ID) []person.ID {
	out := ids[:0:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}
