package scheduler

import (
	"testing"
	"time"

	"github.com/wisbric/dutyplan/pkg/duty"
	"github.com/wisbric/dutyplan/pkg/person"
	"github.com/wisbric/dutyplan/pkg/plan"
	"github.com/wisbric/dutyplan/pkg/rule"
	"github.com/wisbric/dutyplan/pkg/wish"
)

func TestStaticEligible_RejectsAbsentAndUnfit(t *testing.T) {
	f := &duty.Form{ID: "F", Weekday: time.Friday, Group: "g", MaxInARow: 1}
	ctx := testContext(t, []*duty.Form{f}, nil, nil, nil)
	alice := person.New("alice", 1.0, true)
	alice.AddAbsence(day(6))
	bob := person.New("bob", 1.0, false)
	addPeople(ctx, alice, bob)

	seed := plan.New(nil)
	if StaticEligible(ctx, seed, day(6), "alice", f) {
		t.Error("expected alice excluded: absent")
	}
	if StaticEligible(ctx, seed, day(6), "bob", f) {
		t.Error("expected bob excluded: not duty-fit")
	}
}

func TestStaticEligible_RejectsFreeWish(t *testing.T) {
	f := &duty.Form{ID: "F", Weekday: time.Friday, Group: "g", MaxInARow: 1}
	ctx := testContext(t, []*duty.Form{f}, nil, nil,
		[]*wish.FreeWish{{Person: "alice", Date: day(6)}})
	addPeople(ctx, person.New("alice", 1.0, true))

	if StaticEligible(ctx, plan.New(nil), day(6), "alice", f) {
		t.Error("expected alice excluded by her own free-wish")
	}
}

func TestStaticEligible_RejectsMustForbiddenPersonDuty(t *testing.T) {
	f := &duty.Form{ID: "F", Weekday: time.Friday, Group: "g", MaxInARow: 1}
	r := &rule.Rule{ID: "r1", Weight: rule.MUST, Kind: rule.Forbidden, Subtype: rule.PersonDuty,
		A: rule.Person("alice"), B: rule.DutyForm("F")}
	ctx := testContext(t, []*duty.Form{f}, []*rule.Rule{r}, nil, nil)
	addPeople(ctx, person.New("alice", 1.0, true))

	if StaticEligible(ctx, plan.New(nil), day(6), "alice", f) {
		t.Error("expected alice excluded by MUST-FORBIDDEN person-duty rule")
	}
}

func TestStaticEligible_RejectsFollowUpFreeYesterday(t *testing.T) {
	followUpFree := &duty.Form{ID: "night", Weekday: time.Thursday, Group: "g", MaxInARow: 1, FollowUpFree: true}
	f := &duty.Form{ID: "F", Weekday: time.Friday, Group: "g", MaxInARow: 1}
	ctx := testContext(t, []*duty.Form{followUpFree, f}, nil, nil, nil)
	addPeople(ctx, person.New("alice", 1.0, true))

	seed := plan.New(map[time.Time]map[duty.FormID]person.ID{
		day(5): {"night": "alice"},
	})
	if StaticEligible(ctx, seed, day(6), "alice", f) {
		t.Error("expected alice excluded: held a follow-up-free duty yesterday")
	}
}

func TestStaticEligible_RejectsInARowLimit(t *testing.T) {
	f := &duty.Form{ID: "F", Weekday: time.Friday, Group: "g", MaxInARow: 1}
	ctx := testContext(t, []*duty.Form{f}, nil, nil, nil)
	addPeople(ctx, person.New("alice", 1.0, true))

	seed := plan.New(map[time.Time]map[duty.FormID]person.ID{
		day(5): {"F": "alice"},
	})
	if StaticEligible(ctx, seed, day(6), "alice", f) {
		t.Error("expected alice excluded: already at the in-a-row cap for F")
	}
}

func TestStaticEligible_RequiresCombinationForSameDayDoubleBooking(t *testing.T) {
	f := &duty.Form{ID: "F", Weekday: time.Friday, Group: "g", MaxInARow: 1}
	g := &duty.Form{ID: "G", Weekday: time.Friday, Group: "g", MaxInARow: 1}
	ctx := testContext(t, []*duty.Form{f, g}, nil, nil, nil)
	addPeople(ctx, person.New("alice", 1.0, true))

	seed := plan.New(map[time.Time]map[duty.FormID]person.ID{
		day(6): {"G": "alice"},
	})
	if StaticEligible(ctx, seed, day(6), "alice", f) {
		t.Error("expected alice excluded from F: already holds G same day with no combination rule")
	}

	combo := &rule.Rule{ID: "combo", Weight: rule.MUST, Kind: rule.Combination, Subtype: rule.DutyDuty,
		A: rule.DutyForm("F"), B: rule.DutyForm("G")}
	ctx.Rules = rule.NewNetwork([]*rule.Rule{combo})
	if !StaticEligible(ctx, seed, day(6), "alice", f) {
		t.Error("expected alice eligible for F once a combination rule links F and G")
	}
}

func TestStaticEligible_RejectsMustForbiddenRotationDuty(t *testing.T) {
	f := &duty.Form{ID: "F", Weekday: time.Friday, Group: "g", MaxInARow: 1}
	r := &rule.Rule{ID: "r1", Weight: rule.MUST, Kind: rule.Forbidden, Subtype: rule.RotationDuty,
		A: rule.RotationTemplate("oncall-rotation"), B: rule.DutyForm("F")}
	ctx := testContext(t, []*duty.Form{f}, []*rule.Rule{r}, nil, nil)
	alice := person.New("alice", 1.0, true)
	alice.AddRotation(person.Rotation{Template: "oncall-rotation", Start: day(1), End: day(30)})
	addPeople(ctx, alice)

	if StaticEligible(ctx, plan.New(nil), day(6), "alice", f) {
		t.Error("expected alice excluded: her active rotation is MUST-FORBIDDEN alongside F")
	}
}

func TestConsecutiveRun(t *testing.T) {
	p := plan.New(map[time.Time]map[duty.FormID]person.ID{
		day(4): {"F": "alice"},
		day(5): {"F": "alice"},
	})
	if got := consecutiveRun(p, "alice", "F", day(6)); got != 2 {
		t.Errorf("consecutiveRun = %d, want 2", got)
	}
	if got := consecutiveRun(p, "bob", "F", day(6)); got != 0 {
		t.Errorf("consecutiveRun for a person with no run = %d, want 0", got)
	}
}
