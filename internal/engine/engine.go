// Package engine wires together the config loader, tailers, driver and
// event bus into the runnable orchestrator spec.md §4.G describes
// (the original's Engine/Orchestrator). It owns the shared fsnotify.Watcher
// and the atomically-swappable configuration snapshot.
package engine

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"

	"gswarm-sidecar/internal/config"
	"gswarm-sidecar/internal/driver"
	"gswarm-sidecar/internal/engineerr"
	"gswarm-sidecar/internal/eventbus"
	"gswarm-sidecar/internal/logging"
	"gswarm-sidecar/internal/model"
	"gswarm-sidecar/internal/prefilter"
	"gswarm-sidecar/internal/snapshot"
	"gswarm-sidecar/internal/tailer"
	"gswarm-sidecar/internal/trigger"
)

var log = logging.For("engine")

// osFs is the production filesystem tailers read through; the tailer tests
// construct tailers directly against afero.NewMemMapFs(), while the engine
// tests use real files under t.TempDir().
var osFs = afero.NewOsFs()

// Engine is the top-level orchestrator: config snapshot cell, shared
// filesystem watcher, one tailer per character, the driver goroutine and the
// outbound event bus (spec.md §4.G).
type Engine struct {
	dirs config.Directories

	cell   *snapshot.Cell
	bus    *eventbus.Bus
	logs   chan *model.LogEvent
	driver *driver.Driver

	watcher *fsnotify.Watcher
	tailers map[string]*tailer.Tailer // keyed by absolute filename

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	started bool
}

// logChannelCapacity bounds the tailer->driver channel; it must-deliver
// (blocking) rather than drop, so this only provides slack against bursts
// (spec.md §4.B/§4.E).
const logChannelCapacity = 256

// New constructs an Engine against an empty configuration snapshot and
// immediately starts its driver goroutine, which idles harmlessly until
// Load/Init populate real characters and triggers (spec.md §4.G "new()").
func New(dirs config.Directories) (*Engine, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, &engineerr.FileNotifierError{Err: err}
	}

	ctx, cancel := context.WithCancel(context.Background())

	e := &Engine{
		dirs:    dirs,
		cell:    snapshot.NewCell(snapshot.Empty()),
		bus:     eventbus.New(),
		logs:    make(chan *model.LogEvent, logChannelCapacity),
		watcher: watcher,
		tailers: make(map[string]*tailer.Tailer),
		ctx:     ctx,
		cancel:  cancel,
	}

	e.driver = driver.New(e.cell, e.logs, e.bus)
	e.driver.Start()

	return e, nil
}

// Load reads characters.yaml and the trigger sets from disk, compiles every
// (character, trigger) pair, and publishes the result as the new active
// snapshot (spec.md §4.D/§4.G "load()"). The previous snapshot remains
// active if Load fails.
func (e *Engine) Load() error {
	characters, err := config.LoadCharacters(e.dirs)
	if err != nil {
		return err
	}

	rawSets, err := config.LoadTriggerSets(e.dirs)
	if err != nil {
		return err
	}

	sets := make(map[model.TriggerSource]map[model.TriggerID]model.Trigger, len(rawSets))
	for source, set := range rawSets {
		sets[source] = set.Triggers
	}

	compiled, err := trigger.CompileAll(characters, sets)
	if err != nil {
		return err
	}

	snap, err := snapshot.Build(characters, compiled)
	if err != nil {
		return err
	}

	e.cell.Store(snap)
	e.refreshFilters(snap)
	log.WithField("characters", len(characters)).WithField("compiled_triggers", len(compiled)).Info("configuration loaded")
	return nil
}

// refreshFilters pushes each running tailer's prefilter predicate to match
// snap, keyed by character ID rather than the tailer's absolute filename, so
// Load stays re-entrant: every call after Init must swap in the filters the
// new snapshot compiled, not just the ones in effect when the tailer was
// constructed (spec.md §5 re-entrancy, §4.C "swapping in the new predicate
// is atomic per tailer"). A character dropped from snap falls back to
// prefilter.Reject rather than keeping a stale, possibly-removed trigger set
// live.
func (e *Engine) refreshFilters(snap *snapshot.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, t := range e.tailers {
		pred, ok := snap.FiltersByCharacter[t.CharacterID()]
		if !ok {
			pred = prefilter.Reject
		}
		t.SetFilter(pred)
	}
}

// Init creates one tailer per configured character and registers its file
// with the shared watcher, applying that character's prefilter predicate
// from the current snapshot (spec.md §4.G "init()"). Returns
// engineerr.AlreadyWatchingError if two characters resolve to the same
// absolute filename.
func (e *Engine) Init() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := e.cell.Load()

	for id, character := range snap.Characters {
		abs, err := filepath.Abs(character.Filename)
		if err != nil || abs == "." || abs == string(filepath.Separator) {
			return &engineerr.InvalidPathError{Path: character.Filename}
		}

		if _, exists := e.tailers[abs]; exists {
			return &engineerr.AlreadyWatchingError{Filename: abs}
		}

		t := tailer.New(id, abs, e.logs, osFs)
		if pred, ok := snap.FiltersByCharacter[id]; ok {
			t.SetFilter(pred)
		}

		e.tailers[abs] = t

		if err := e.watcher.Add(filepath.Dir(abs)); err != nil {
			return &engineerr.FileNotifierError{Err: err}
		}
	}

	log.WithField("tailers", len(e.tailers)).Info("tailers initialized")
	return nil
}

// Start begins dispatching filesystem notifications to their owning tailers
// (spec.md §4.G "start()"). Init must be called first.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return
	}
	e.started = true
	e.mu.Unlock()

	e.wg.Add(1)
	go e.watchLoop()
}

func (e *Engine) watchLoop() {
	defer e.wg.Done()

	for {
		select {
		case <-e.ctx.Done():
			return
		case ev, ok := <-e.watcher.Events:
			if !ok {
				return
			}
			e.dispatch(ev)
		case err, ok := <-e.watcher.Errors:
			if !ok {
				return
			}
			log.WithError(err).Error("filesystem watcher error")
		}
	}
}

func (e *Engine) dispatch(ev fsnotify.Event) {
	e.mu.Lock()
	t, ok := e.tailers[ev.Name]
	e.mu.Unlock()
	if !ok {
		return
	}
	t.HandleEvent(ev.Op)
}

// Stop halts filesystem-notification dispatch. Safe to call once; further
// calls are no-ops. The driver keeps running, idling on no input, until
// Close (spec.md §4.G "stop()").
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return
	}
	e.started = false
	e.mu.Unlock()

	e.cancel()
	e.wg.Wait()

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range e.tailers {
		if err := t.Close(); err != nil {
			log.WithError(err).Warn("error closing tailer")
		}
	}
	_ = e.watcher.Close()
}

// Close stops the driver goroutine and closes the event bus. Call once,
// after Stop, at final shutdown (spec.md §6 "clean shutdown requires stop()
// before drop").
func (e *Engine) Close() {
	e.driver.Stop()
	e.bus.Close()
}

// Event performs a single non-blocking poll of the outbound event bus
// (spec.md §4.G "event()").
func (e *Engine) Event() (model.Event, bool) {
	return e.bus.TryReceive()
}

