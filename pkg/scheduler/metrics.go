package scheduler

import (
	"math"
	"time"

	"github.com/wisbric/dutyplan/pkg/calendar"
	"github.com/wisbric/dutyplan/pkg/duty"
	"github.com/wisbric/dutyplan/pkg/person"
	"github.com/wisbric/dutyplan/pkg/plan"
)

// weightedMonthlyTotal sums f.Weight for every duty p holds in the
// calendar month containing d.
func weightedMonthlyTotal(p *plan.Plan, catalog *duty.Catalog, who person.ID, d time.Time) float64 {
	month := calendar.Month(d)
	total := 0.0
	for _, e := range p.Entries() {
		if e.Person != who || calendar.Month(e.Date) != month {
			continue
		}
		if f, ok := catalog.Form(e.Duty); ok {
			total += f.Weight
		}
	}
	return total
}

// countForDutyMonth counts how many times who holds duty form f within the
// calendar month containing d, for enforcing a form's max-per-month cap.
func countForDutyMonth(p *plan.Plan, who person.ID, f duty.FormID, d time.Time) int {
	month := calendar.Month(d)
	count := 0
	for _, e := range p.Entries() {
		if e.Person == who && e.Duty == f && calendar.Month(e.Date) == month {
			count++
		}
	}
	return count
}

// capacityCeiling returns round(10 * workCapacity), a person's dynamic
// monthly cap on total weighted duty load.
func capacityCeiling(workCapacity float64) int {
	return int(math.Round(10 * workCapacity))
}
