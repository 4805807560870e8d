// Package worker runs the duty-scheduling engine periodically: acquire
// the run lock, build a scheduler.Context from the store, run the
// scheduler, persist the result, record metrics, and send a digest of
// anything that needs human attention.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/wisbric/dutyplan/internal/notify"
	"github.com/wisbric/dutyplan/internal/runlock"
	"github.com/wisbric/dutyplan/internal/store"
	"github.com/wisbric/dutyplan/internal/telemetry"
	"github.com/wisbric/dutyplan/pkg/calendar"
	"github.com/wisbric/dutyplan/pkg/duty"
	"github.com/wisbric/dutyplan/pkg/person"
	"github.com/wisbric/dutyplan/pkg/plan"
	"github.com/wisbric/dutyplan/pkg/rule"
	"github.com/wisbric/dutyplan/pkg/scheduler"
)

// lookback is how far behind the planning horizon's start the worker
// reads already-committed entries from, so the in-a-row and
// follow-up-free checks see continuity across runs.
const lookback = 7 * 24 * time.Hour

// Worker periodically re-plans the duty roster.
type Worker struct {
	store    *store.Store
	lock     *runlock.Lock
	notifier *notify.Notifier
	calendar calendar.Calendar
	logger   *slog.Logger

	horizonDays int
}

// New creates a Worker.
func New(s *store.Store, lock *runlock.Lock, notifier *notify.Notifier, cal calendar.Calendar, horizonDays int, logger *slog.Logger) *Worker {
	return &Worker{
		store:       s,
		lock:        lock,
		notifier:    notifier,
		calendar:    cal,
		horizonDays: horizonDays,
		logger:      logger,
	}
}

// Run executes one planning cycle: acquire the lock, plan, persist,
// notify, release. It returns without error (other than logging) if
// another worker already holds the lock.
func (w *Worker) Run(ctx context.Context) error {
	acquired, err := w.lock.Acquire(ctx)
	if err != nil {
		return err
	}
	if !acquired {
		w.logger.Debug("run lock held by another worker, skipping cycle")
		return nil
	}
	telemetry.RunLockHeld.Set(1)
	defer func() {
		telemetry.RunLockHeld.Set(0)
		if err := w.lock.Release(ctx); err != nil {
			w.logger.Error("releasing run lock", "error", err)
		}
	}()

	start := time.Now()
	// Plan from midnight UTC, the form the store's DATE columns load as, so
	// seeded entries and wishes line up with the planning dates.
	planStart := calendar.Normalize(start.UTC())
	sctx, err := w.store.LoadContext(ctx, w.calendar)
	if err != nil {
		telemetry.RunsTotal.WithLabelValues("error").Inc()
		return err
	}

	seed, err := w.seedPlan(ctx, planStart)
	if err != nil {
		telemetry.RunsTotal.WithLabelValues("error").Inc()
		return err
	}

	runner := scheduler.NewScheduler(sctx, seed, planStart, w.horizonDays)
	telemetry.QueueLength.Set(float64(runner.QueueLength()))
	result := runner.Run()

	if err := w.store.SavePlan(ctx, result.Plan); err != nil {
		telemetry.RunsTotal.WithLabelValues("error").Inc()
		return err
	}

	for _, e := range result.Plan.Entries() {
		if sctx.Wishes.IsRequested(e.Date, e.Duty) {
			_ = w.store.MarkWishFulfilled(ctx, e.Person, e.Date, e.Duty)
		}
	}

	violations := scheduler.CheckAll(sctx, result.Plan)

	telemetry.RunDuration.Observe(time.Since(start).Seconds())
	telemetry.SlotsUnfilledTotal.Add(float64(len(result.Unfilled)))
	for _, v := range violations {
		telemetry.RuleViolationsTotal.WithLabelValues(statusLabel(v)).Inc()
	}

	outcome := "clean"
	if len(result.Unfilled) > 0 || len(violations) > 0 {
		outcome = "incomplete"
	}
	telemetry.RunsTotal.WithLabelValues(outcome).Inc()

	w.logger.Info("planning cycle completed",
		"unfilled", len(result.Unfilled),
		"violations", len(violations),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if w.notifier != nil {
		if err := w.notifier.Digest(ctx, result, violations); err != nil {
			w.logger.Error("sending run digest", "error", err)
		}
	}

	return nil
}

// RunLoop runs Run once immediately, then on every tick of interval
// until ctx is cancelled.
func (w *Worker) RunLoop(ctx context.Context, interval time.Duration) {
	w.logger.Info("planning worker loop started", "interval", interval)

	if err := w.Run(ctx); err != nil {
		w.logger.Error("initial planning cycle", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("planning worker loop stopped")
			return
		case <-ticker.C:
			if err := w.Run(ctx); err != nil {
				w.logger.Error("planning cycle", "error", err)
			}
		}
	}
}

// seedPlan loads already-committed entries in the lookback window before
// start so continuity checks (in-a-row limits, follow-up-free) see
// across the run boundary.
func (w *Worker) seedPlan(ctx context.Context, start time.Time) (*plan.Plan, error) {
	entries, err := w.store.PlanRange(ctx, start.Add(-lookback), start)
	if err != nil {
		return nil, err
	}
	seed := make(map[time.Time]map[duty.FormID]person.ID)
	for _, e := range entries {
		if seed[e.Date] == nil {
			seed[e.Date] = make(map[duty.FormID]person.ID)
		}
		seed[e.Date][e.Duty] = e.Person
	}
	return plan.New(seed), nil
}

func statusLabel(v scheduler.Violation) string {
	switch v.Status {
	case rule.CombinationMissing:
		return "combination_missing"
	case rule.ForbiddenViolated:
		return "forbidden_violated"
	default:
		return "unknown"
	}
}
