// Package metrics provides Prometheus metrics for powertray.
// Exposed on the control API's /metrics endpoint when telemetry is
// enabled in the config.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PlanSwitches counts plan activations by origin: "afk" (entering the
// away state), "restore" (returning from it), or "manual".
var PlanSwitches = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "powertray",
	Name:      "plan_switches_total",
	Help:      "Total power plan switches issued.",
}, []string{"reason"})

// AfkTransitions counts engine edges by direction ("away", "home").
var AfkTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "powertray",
	Name:      "afk_transitions_total",
	Help:      "Total AFK state transitions.",
}, []string{"direction"})

// AfkApplied is 1 while the away plan is applied.
var AfkApplied = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "powertray",
	Name:      "afk_applied",
	Help:      "Whether the away power plan is currently applied.",
})

// IdleSeconds is the most recent idle reading.
var IdleSeconds = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "powertray",
	Name:      "idle_seconds",
	Help:      "Seconds since the last user input, as of the last AFK tick.",
})

// ExternalPlanChanges counts active-plan changes detected by the poll
// that this process did not issue itself.
var ExternalPlanChanges = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "powertray",
	Name:      "external_plan_changes_total",
	Help:      "Active plan changes made outside powertray.",
})

// SwitchFailures counts plan switches the OS rejected.
var SwitchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "powertray",
	Name:      "plan_switch_failures_total",
	Help:      "Plan switch attempts that failed.",
}, []string{"reason"})
