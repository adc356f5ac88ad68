// Package driver runs the engine's single worker goroutine (spec.md §4.E):
// it consumes parsed LogEvents, fires triggers against them, advances the
// resulting LiveActions on a fixed tick, and publishes outbound Events.
package driver

import (
	"sync"
	"time"

	"gswarm-sidecar/internal/eventbus"
	"gswarm-sidecar/internal/logging"
	"gswarm-sidecar/internal/metrics"
	"gswarm-sidecar/internal/model"
	"gswarm-sidecar/internal/snapshot"
	"gswarm-sidecar/internal/trigger"
)

// tickInterval is how often in-flight actions are re-evaluated (spec.md §4.E
// "tick").
const tickInterval = 250 * time.Millisecond

var log = logging.For("driver")

// Driver owns the single worker goroutine that turns LogEvents into
// outbound Events. Exactly one Driver runs per engine instance.
type Driver struct {
	cell *snapshot.Cell
	logs <-chan *model.LogEvent
	bus  *eventbus.Bus

	actions []*trigger.LiveAction

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// New constructs a Driver reading from logs and publishing to bus, consulting
// cell for the current configuration snapshot on every LogEvent.
func New(cell *snapshot.Cell, logs <-chan *model.LogEvent, bus *eventbus.Bus) *Driver {
	return &Driver{
		cell: cell,
		logs: logs,
		bus:  bus,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Start spawns the worker goroutine. The driver idles harmlessly against an
// empty snapshot until configuration is loaded (spec.md §4.G "new()").
func (d *Driver) Start() {
	log.Debug("driver starting")
	go d.run()
}

// Stop signals the worker to exit and blocks until it has. Idempotent.
func (d *Driver) Stop() {
	d.stopOnce.Do(func() {
		close(d.stop)
	})
	<-d.done
	log.Debug("driver stopped")
}

func (d *Driver) run() {
	defer close(d.done)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.stop:
			return
		case ev, ok := <-d.logs:
			if !ok {
				return
			}
			d.onLogEvent(ev)
		case now := <-ticker.C:
			d.onTick(now)
		}
	}
}

// onLogEvent fires every compiled trigger registered for ev's character
// against it, immediately emitting each produced action's first pass and
// retaining any that are not yet finished (spec.md §4.E "on_log_event").
func (d *Driver) onLogEvent(ev *model.LogEvent) {
	snap := d.cell.Load()
	if _, ok := snap.Characters[ev.CharacterID]; !ok {
		return
	}

	compiledTriggers := snap.TriggersByCharacter[ev.CharacterID]
	if len(compiledTriggers) == 0 {
		return
	}

	now := time.Now()
	for _, ct := range compiledTriggers {
		fired := ct.Fire(ev)
		if fired == nil {
			continue
		}
		metrics.TriggersFired.WithLabelValues(ev.CharacterID, ct.Ref.String()).Inc()
		for _, a := range fired {
			d.emit(a, now)
			if !a.Finished() {
				d.actions = append(d.actions, a)
			}
		}
	}

	metrics.ActiveActions.Set(float64(len(d.actions)))
}

// onTick re-evaluates every in-flight action against now, emitting whatever
// each one produces, then compacts finished actions out of the slice
// (spec.md §4.E "on_tick").
func (d *Driver) onTick(now time.Time) {
	if len(d.actions) == 0 {
		return
	}

	kept := d.actions[:0]
	for _, a := range d.actions {
		d.emit(a, now)
		if !a.Finished() {
			kept = append(kept, a)
		}
	}
	d.actions = kept

	metrics.ActiveActions.Set(float64(len(d.actions)))
}

// emit evaluates a at now and forwards whatever events it produces to the
// bus.
func (d *Driver) emit(a *trigger.LiveAction, now time.Time) {
	for _, kind := range a.Emit(now) {
		d.bus.Send(model.NewEvent(kind))
	}
}
