package telemetry

import "github.com/prometheus/client_golang/prometheus"

var RunsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "dutyplan",
		Subsystem: "run",
		Name:      "total",
		Help:      "Total number of planning runs, by outcome.",
	},
	[]string{"outcome"},
)

var RunDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: "dutyplan",
		Subsystem: "run",
		Name:      "duration_seconds",
		Help:      "Wall-clock duration of a planning run.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	},
)

var SlotsUnfilledTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "dutyplan",
		Subsystem: "run",
		Name:      "slots_unfilled_total",
		Help:      "Total number of duty slots left unfilled across all runs.",
	},
)

var RuleViolationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "dutyplan",
		Subsystem: "checker",
		Name:      "rule_violations_total",
		Help:      "Total number of MUST-rule violations found by the post-hoc checker, by status.",
	},
	[]string{"status"},
)

var QueueLength = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "dutyplan",
		Subsystem: "run",
		Name:      "queue_length",
		Help:      "Number of unresolved (date, duty) slots remaining in the planning queue.",
	},
)

var RunLockHeld = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "dutyplan",
		Subsystem: "runlock",
		Name:      "held",
		Help:      "1 if this process currently holds the single-writer run lock, 0 otherwise.",
	},
)

var NotificationsSentTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "dutyplan",
		Subsystem: "notify",
		Name:      "sent_total",
		Help:      "Total number of Slack digest notifications sent, by kind.",
	},
	[]string{"kind"},
)

// All returns every dutyplan-specific metric for registration.
func All() []prometheus.Collector {
	return []prometheus.Collector{
		RunsTotal,
		RunDuration,
		SlotsUnfilledTotal,
		RuleViolationsTotal,
		QueueLength,
		RunLockHeld,
		NotificationsSentTotal,
	}
}
