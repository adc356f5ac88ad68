// Package metrics exposes prometheus instrumentation for the trigger
// pipeline: lines admitted, triggers fired, events emitted/dropped, and the
// size of the driver's active-action pool. Purely observational — it never
// influences pipeline behavior.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry is the engine's dedicated prometheus registry. Kept separate from
// the global default registry so embedding applications can expose it (or
// not) on their own terms.
var Registry = prometheus.NewRegistry()

var (
	// LinesAdmitted counts lines that passed a character's prefilter.
	LinesAdmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "comrade_lines_admitted_total",
		Help: "Log lines admitted by a character's prefilter.",
	}, []string{"character_id"})

	// LinesParsedFailed counts lines that failed the wire-format regex.
	LinesParsedFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "comrade_lines_parse_failed_total",
		Help: "Log lines that did not match the wire-format regex.",
	}, []string{"character_id"})

	// TriggersFired counts compiled-trigger matches.
	TriggersFired = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "comrade_triggers_fired_total",
		Help: "Compiled trigger matches.",
	}, []string{"character_id", "trigger_ref"})

	// EventsEmitted counts events delivered to the event bus, by kind.
	EventsEmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "comrade_events_emitted_total",
		Help: "Events delivered to the event bus.",
	}, []string{"kind"})

	// EventsDropped counts events dropped because the event bus was full.
	EventsDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "comrade_events_dropped_total",
		Help: "Events dropped because the event bus was full.",
	}, []string{"kind"})

	// ActiveActions reports the current size of the driver's active-action pool.
	ActiveActions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "comrade_active_actions",
		Help: "Number of in-flight (delayed/countdown) actions.",
	})
)

func init() {
	Registry.MustRegister(LinesAdmitted, LinesParsedFailed, TriggersFired, EventsEmitted, EventsDropped, ActiveActions)
}
