package rule

import (
	"testing"
	"time"

	"github.com/wisbric/dutyplan/pkg/duty"
)

func catalogFor(t *testing.T, forms ...*duty.Form) *duty.Catalog {
	t.Helper()
	cat, err := duty.NewCatalog(forms, []*duty.Group{{ID: "g"}})
	if err != nil {
		t.Fatal(err)
	}
	return cat
}

func TestNetwork_RulesBetweenIsOrderIndependent(t *testing.T) {
	a := Person("alice")
	b := Person("bob")
	r := &Rule{ID: "r1", Weight: MUST, Kind: Forbidden, Subtype: PersonPerson, A: a, B: b}
	n := NewNetwork([]*Rule{r})

	if len(n.RulesBetween(a, b)) != 1 {
		t.Fatal("expected one rule between a and b")
	}
	if len(n.RulesBetween(b, a)) != 1 {
		t.Fatal("expected RulesBetween to be symmetric")
	}
}

func TestNetwork_ExistsMustForbidden(t *testing.T) {
	a := Person("alice")
	b := Person("bob")
	c := Person("carol")
	r := &Rule{ID: "r1", Weight: MUST, Kind: Forbidden, Subtype: PersonPerson, A: a, B: b}
	n := NewNetwork([]*Rule{r})

	if !n.ExistsMustForbidden(a, b) {
		t.Error("expected forbidden rule between a and b")
	}
	if n.ExistsMustForbidden(a, c) {
		t.Error("expected no forbidden rule between a and c")
	}
}

func TestNetwork_FinePriority(t *testing.T) {
	fri := duty.FormID("friday-night")
	sun := duty.FormID("sunday-day")
	r1 := &Rule{ID: "r1", Weight: MUST, Kind: Combination, Subtype: DutyDuty, A: DutyForm(fri), B: DutyForm(sun)}
	r2 := &Rule{ID: "r2", Weight: SHOULD, Kind: Forbidden, Subtype: PersonDuty, A: Person("alice"), B: DutyForm(fri)}
	n := NewNetwork([]*Rule{r1, r2})

	if got := n.FinePriority(DutyForm(fri)); got != 2 {
		t.Errorf("FinePriority(friday-night) = %d, want 2", got)
	}
	if got := n.FinePriority(DutyForm(sun)); got != 1 {
		t.Errorf("FinePriority(sunday-day) = %d, want 1", got)
	}
}

func TestRule_LinkedDay_Forward(t *testing.T) {
	fri := &duty.Form{ID: "F", Weekday: time.Friday, Group: "g", MaxInARow: 1}
	sun := &duty.Form{ID: "S", Weekday: time.Sunday, Group: "g", MaxInARow: 1}
	cat := catalogFor(t, fri, sun)

	r := &Rule{ID: "r1", Weight: MUST, Kind: Combination, Subtype: DutyDuty, A: DutyForm("F"), B: DutyForm("S")}

	friday := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC) // a Friday
	linkedDate, linkedForm, ok := r.LinkedDay(cat, friday, "F")
	if !ok {
		t.Fatal("expected linked day to be found")
	}
	if linkedForm != "S" {
		t.Errorf("expected linked form S, got %s", linkedForm)
	}
	wantSunday := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	if !linkedDate.Equal(wantSunday) {
		t.Errorf("expected linked date %v, got %v", wantSunday, linkedDate)
	}
}

func TestRule_LinkedDay_Backward(t *testing.T) {
	fri := &duty.Form{ID: "F", Weekday: time.Friday, Group: "g", MaxInARow: 1}
	sun := &duty.Form{ID: "S", Weekday: time.Sunday, Group: "g", MaxInARow: 1}
	cat := catalogFor(t, fri, sun)

	r := &Rule{ID: "r1", Weight: MUST, Kind: Combination, Subtype: DutyDuty, A: DutyForm("F"), B: DutyForm("S")}

	sunday := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	linkedDate, linkedForm, ok := r.LinkedDay(cat, sunday, "S")
	if !ok {
		t.Fatal("expected linked day to be found")
	}
	if linkedForm != "F" {
		t.Errorf("expected linked form F, got %s", linkedForm)
	}
	wantFriday := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	if !linkedDate.Equal(wantFriday) {
		t.Errorf("expected linked date %v, got %v", wantFriday, linkedDate)
	}
}
