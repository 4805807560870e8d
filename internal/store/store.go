// Package store is the Postgres adapter: it loads the roster, duty
// catalog, rule network, and wish registry a planning run needs, and
// persists the plan a run produces. It talks to the database with raw
// SQL through pgx, no ORM or code generator, matching the rest of the
// stack's direct-query style.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wisbric/dutyplan/pkg/calendar"
	"github.com/wisbric/dutyplan/pkg/duty"
	"github.com/wisbric/dutyplan/pkg/person"
	"github.com/wisbric/dutyplan/pkg/plan"
	"github.com/wisbric/dutyplan/pkg/rule"
	"github.com/wisbric/dutyplan/pkg/scheduler"
	"github.com/wisbric/dutyplan/pkg/wish"
)

// Store provides database operations backing a planning run.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// LoadContext assembles a scheduler.Context from the current database
// state: the roster, duty catalog, rule network, and wish registry. cal
// is supplied by the caller since holiday lookup is an external
// collaborator, not something this store owns.
func (s *Store) LoadContext(ctx context.Context, cal calendar.Calendar) (*scheduler.Context, error) {
	people, err := s.loadPeople(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading people: %w", err)
	}
	catalog, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading duty catalog: %w", err)
	}
	rules, err := s.loadRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}
	wishes, freeWishes, err := s.loadWishes(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading wishes: %w", err)
	}

	return &scheduler.Context{
		People:   people,
		Catalog:  catalog,
		Rules:    rule.NewNetwork(rules),
		Wishes:   wish.NewRegistry(wishes, freeWishes),
		Calendar: cal,
	}, nil
}

func (s *Store) loadPeople(ctx context.Context) (map[person.ID]*person.Person, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, work_capacity, duty_fit FROM people`)
	if err != nil {
		return nil, fmt.Errorf("querying people: %w", err)
	}
	defer rows.Close()

	out := make(map[person.ID]*person.Person)
	for rows.Next() {
		var id string
		var workCapacity float64
		var dutyFit bool
		if err := rows.Scan(&id, &workCapacity, &dutyFit); err != nil {
			return nil, fmt.Errorf("scanning person row: %w", err)
		}
		out[person.ID(id)] = person.New(person.ID(id), workCapacity, dutyFit)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	absRows, err := s.pool.Query(ctx, `SELECT person_id, absence_date FROM person_absences`)
	if err != nil {
		return nil, fmt.Errorf("querying absences: %w", err)
	}
	defer absRows.Close()
	for absRows.Next() {
		var id string
		var d time.Time
		if err := absRows.Scan(&id, &d); err != nil {
			return nil, fmt.Errorf("scanning absence row: %w", err)
		}
		if p, ok := out[person.ID(id)]; ok {
			p.AddAbsence(d)
		}
	}
	if err := absRows.Err(); err != nil {
		return nil, err
	}

	rotRows, err := s.pool.Query(ctx, `SELECT person_id, template_id, start_at, end_at FROM person_rotations`)
	if err != nil {
		return nil, fmt.Errorf("querying rotations: %w", err)
	}
	defer rotRows.Close()
	for rotRows.Next() {
		var id, template string
		var start, end time.Time
		if err := rotRows.Scan(&id, &template, &start, &end); err != nil {
			return nil, fmt.Errorf("scanning rotation row: %w", err)
		}
		if p, ok := out[person.ID(id)]; ok {
			p.AddRotation(person.Rotation{
				Template: person.RotationTemplateID(template),
				Start:    start,
				End:      end,
			})
		}
	}
	return out, rotRows.Err()
}

func (s *Store) loadCatalog(ctx context.Context) (*duty.Catalog, error) {
	groupRows, err := s.pool.Query(ctx, `SELECT id, applies_on_holidays FROM duty_groups`)
	if err != nil {
		return nil, fmt.Errorf("querying duty groups: %w", err)
	}
	defer groupRows.Close()

	var groups []*duty.Group
	for groupRows.Next() {
		var id string
		var holidays bool
		if err := groupRows.Scan(&id, &holidays); err != nil {
			return nil, fmt.Errorf("scanning duty group row: %w", err)
		}
		groups = append(groups, &duty.Group{ID: duty.GroupID(id), AppliesOnHolidays: holidays})
	}
	if err := groupRows.Err(); err != nil {
		return nil, err
	}

	formRows, err := s.pool.Query(ctx, `SELECT id, weekday, group_id, follow_up_free,
		max_in_a_row, max_per_month, weight FROM duty_forms`)
	if err != nil {
		return nil, fmt.Errorf("querying duty forms: %w", err)
	}
	defer formRows.Close()

	forms := make(map[string]*duty.Form)
	var order []string
	for formRows.Next() {
		var id, groupID string
		var weekday, maxInARow, maxPerMonth int
		var followUpFree bool
		var weight float64
		if err := formRows.Scan(&id, &weekday, &groupID, &followUpFree, &maxInARow, &maxPerMonth, &weight); err != nil {
			return nil, fmt.Errorf("scanning duty form row: %w", err)
		}
		forms[id] = &duty.Form{
			ID:           duty.FormID(id),
			Weekday:      time.Weekday(weekday),
			Group:        duty.GroupID(groupID),
			FollowUpFree: followUpFree,
			MaxInARow:    maxInARow,
			MaxPerMonth:  maxPerMonth,
			Weight:       weight,
		}
		order = append(order, id)
	}
	if err := formRows.Err(); err != nil {
		return nil, err
	}

	linkRows, err := s.pool.Query(ctx, `SELECT form_id, linked_form_id FROM duty_form_links`)
	if err != nil {
		return nil, fmt.Errorf("querying duty form links: %w", err)
	}
	defer linkRows.Close()
	for linkRows.Next() {
		var formID, linkedID string
		if err := linkRows.Scan(&formID, &linkedID); err != nil {
			return nil, fmt.Errorf("scanning duty form link row: %w", err)
		}
		if f, ok := forms[formID]; ok {
			f.LinkedForms = append(f.LinkedForms, duty.FormID(linkedID))
		}
	}
	if err := linkRows.Err(); err != nil {
		return nil, err
	}

	formList := make([]*duty.Form, 0, len(order))
	for _, id := range order {
		formList = append(formList, forms[id])
	}

	return duty.NewCatalog(formList, groups)
}

func (s *Store) loadRules(ctx context.Context) ([]*rule.Rule, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, weight, kind, subtype,
		a_kind, a_id, b_kind, b_id FROM rules`)
	if err != nil {
		return nil, fmt.Errorf("querying rules: %w", err)
	}
	defer rows.Close()

	var out []*rule.Rule
	for rows.Next() {
		var id string
		var weight, kind, subtype, aKind, bKind int
		var aID, bID string
		if err := rows.Scan(&id, &weight, &kind, &subtype, &aKind, &aID, &bKind, &bID); err != nil {
			return nil, fmt.Errorf("scanning rule row: %w", err)
		}
		out = append(out, &rule.Rule{
			ID:      id,
			Weight:  rule.Weight(weight),
			Kind:    rule.Kind(kind),
			Subtype: rule.Subtype(subtype),
			A:       rule.Entity{Kind: rule.EntityKind(aKind), ID: aID},
			B:       rule.Entity{Kind: rule.EntityKind(bKind), ID: bID},
		})
	}
	return out, rows.Err()
}

func (s *Store) loadWishes(ctx context.Context) ([]*wish.Wish, []*wish.FreeWish, error) {
	wishRows, err := s.pool.Query(ctx, `SELECT person_id, wish_date, duty_id, fulfilled FROM wishes`)
	if err != nil {
		return nil, nil, fmt.Errorf("querying wishes: %w", err)
	}
	defer wishRows.Close()

	var wishes []*wish.Wish
	for wishRows.Next() {
		var personID, dutyID string
		var d time.Time
		var fulfilled bool
		if err := wishRows.Scan(&personID, &d, &dutyID, &fulfilled); err != nil {
			return nil, nil, fmt.Errorf("scanning wish row: %w", err)
		}
		wishes = append(wishes, &wish.Wish{
			Person:    person.ID(personID),
			Date:      d,
			Duty:      duty.FormID(dutyID),
			Fulfilled: fulfilled,
		})
	}
	if err := wishRows.Err(); err != nil {
		return nil, nil, err
	}

	freeRows, err := s.pool.Query(ctx, `SELECT person_id, wish_date FROM free_wishes`)
	if err != nil {
		return nil, nil, fmt.Errorf("querying free wishes: %w", err)
	}
	defer freeRows.Close()

	var freeWishes []*wish.FreeWish
	for freeRows.Next() {
		var personID string
		var d time.Time
		if err := freeRows.Scan(&personID, &d); err != nil {
			return nil, nil, fmt.Errorf("scanning free wish row: %w", err)
		}
		freeWishes = append(freeWishes, &wish.FreeWish{Person: person.ID(personID), Date: d})
	}
	return wishes, freeWishes, freeRows.Err()
}

// SavePlan upserts every entry of p into plan_entries, inside a single
// transaction so a partial write never becomes visible.
func (s *Store) SavePlan(ctx context.Context, p *plan.Plan) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning plan save transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range p.Entries() {
		_, err := tx.Exec(ctx, `INSERT INTO plan_entries (plan_date, duty_id, person_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (plan_date, duty_id) DO UPDATE SET person_id = EXCLUDED.person_id`,
			e.Date, string(e.Duty), string(e.Person))
		if err != nil {
			return fmt.Errorf("upserting plan entry %s: %w", e, err)
		}
	}

	return tx.Commit(ctx)
}

// PlanRange returns every plan entry with a date in [from, to).
func (s *Store) PlanRange(ctx context.Context, from, to time.Time) ([]plan.Entry, error) {
	rows, err := s.pool.Query(ctx, `SELECT plan_date, duty_id, person_id FROM plan_entries
		WHERE plan_date >= $1 AND plan_date < $2 ORDER BY plan_date, duty_id`, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying plan range: %w", err)
	}
	defer rows.Close()

	var out []plan.Entry
	for rows.Next() {
		var d time.Time
		var dutyID, personID string
		if err := rows.Scan(&d, &dutyID, &personID); err != nil {
			return nil, fmt.Errorf("scanning plan entry row: %w", err)
		}
		out = append(out, plan.Entry{Date: d, Duty: duty.FormID(dutyID), Person: person.ID(personID)})
	}
	return out, rows.Err()
}

// MarkWishFulfilled flags a person's wish for (date, duty) as fulfilled.
func (s *Store) MarkWishFulfilled(ctx context.Context, who person.ID, date time.Time, f duty.FormID) error {
	_, err := s.pool.Exec(ctx, `UPDATE wishes SET fulfilled = true
		WHERE person_id = $1 AND wish_date = $2 AND duty_id = $3 AND fulfilled = false`,
		string(who), date, string(f))
	if err != nil {
		return fmt.Errorf("marking wish fulfilled: %w", err)
	}
	return nil
}
