// Package eventbus implements the bounded multi-producer, single-consumer
// queue of outbound Events (spec.md §4.F). Producers are driver goroutines;
// the consumer is the UI polling with a non-blocking receive. Overflow is
// handled producer-side: drop and log, never block.
package eventbus

import (
	"gswarm-sidecar/internal/logging"
	"gswarm-sidecar/internal/metrics"
	"gswarm-sidecar/internal/model"
)

// Capacity is the event bus's fixed buffer size (spec.md §4.F).
const Capacity = 1000

var log = logging.For("eventbus")

// Bus is a bounded channel of outbound Events with a drop-on-full producer
// side and a non-blocking consumer side.
type Bus struct {
	events chan model.Event
}

// New returns an empty, open Bus.
func New() *Bus {
	return &Bus{events: make(chan model.Event, Capacity)}
}

// kindLabel maps an EventKindTag to the metrics label used for it.
func kindLabel(tag model.EventKindTag) string {
	switch tag {
	case model.EventTriggered:
		return "triggered"
	case model.EventDisplayText:
		return "display_text"
	case model.EventCountdown:
		return "countdown"
	default:
		return "unknown"
	}
}

// Send attempts to enqueue ev without blocking. If the bus is full, the
// event is dropped and logged at warn level (spec.md §7 "EventBusFull").
func (b *Bus) Send(ev model.Event) {
	label := kindLabel(ev.Kind.Tag)
	select {
	case b.events <- ev:
		metrics.EventsEmitted.WithLabelValues(label).Inc()
	default:
		metrics.EventsDropped.WithLabelValues(label).Inc()
		log.WithField("kind", label).Warn("event bus full, dropping event")
	}
}

// TryReceive performs a non-blocking pull from the bus (spec.md §4.G
// "event()"). ok is false if no event is currently queued or the bus has
// been closed and drained.
func (b *Bus) TryReceive() (ev model.Event, ok bool) {
	select {
	case ev, ok = <-b.events:
		return ev, ok
	default:
		return model.Event{}, false
	}
}

// Close closes the producer side. Closing causes the consumer's drain to
// eventually observe end-of-stream once queued events are consumed
// (spec.md §4.F).
func (b *Bus) Close() {
	close(b.events)
}
