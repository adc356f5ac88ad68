// Package snapshot holds the immutable, atomically-swappable configuration
// bundle spec.md §3/§9 calls the "config snapshot": characters, their
// compiled triggers, and per-character prefilter predicates, published as
// one consistent unit per configuration generation.
package snapshot

import (
	"sync/atomic"

	"gswarm-sidecar/internal/model"
	"gswarm-sidecar/internal/prefilter"
	"gswarm-sidecar/internal/trigger"
)

// Snapshot is one immutable configuration generation. Never mutated after
// construction; readers hold a pointer for the duration of a single
// operation.
type Snapshot struct {
	Characters map[string]*model.Character

	// TriggersByCharacter groups compiled triggers by character id so the
	// driver can iterate "compiled triggers for that character" in O(k)
	// (spec.md §4.E).
	TriggersByCharacter map[string][]*trigger.CompiledTrigger

	// FiltersByCharacter holds each character's compiled prefilter
	// predicate (spec.md §4.C).
	FiltersByCharacter map[string]prefilter.Predicate
}

// Empty returns a valid, empty snapshot (spec.md §4.G "new()").
func Empty() *Snapshot {
	return &Snapshot{
		Characters:          map[string]*model.Character{},
		TriggersByCharacter: map[string][]*trigger.CompiledTrigger{},
		FiltersByCharacter:  map[string]prefilter.Predicate{},
	}
}

// Build groups compiled triggers by character and compiles one prefilter
// predicate per character from that character's trigger search_texts.
func Build(characters map[string]*model.Character, compiled []*trigger.CompiledTrigger) (*Snapshot, error) {
	s := &Snapshot{
		Characters:          characters,
		TriggersByCharacter: make(map[string][]*trigger.CompiledTrigger, len(characters)),
		FiltersByCharacter:  make(map[string]prefilter.Predicate, len(characters)),
	}

	patternsByCharacter := make(map[string][]string, len(characters))
	for _, ct := range compiled {
		id := ct.Character.ID
		s.TriggersByCharacter[id] = append(s.TriggersByCharacter[id], ct)
		patternsByCharacter[id] = append(patternsByCharacter[id], ct.Def.SearchText)
	}

	for id := range characters {
		pred, err := prefilter.Build(patternsByCharacter[id])
		if err != nil {
			return nil, err
		}
		s.FiltersByCharacter[id] = pred
	}

	return s, nil
}

// Cell is the atomically-swappable reference cell holding the current
// Snapshot (spec.md §9 "Hot-swappable config"), the Go analogue of the
// original's arc_swap::ArcSwap<Config>.
type Cell struct {
	ptr atomic.Pointer[Snapshot]
}

// NewCell returns a Cell initialized to initial.
func NewCell(initial *Snapshot) *Cell {
	c := &Cell{}
	c.Store(initial)
	return c
}

// Load returns the current snapshot. Many readers, one writer; readers never
// retain the result longer than a single operation (spec.md §5).
func (c *Cell) Load() *Snapshot {
	return c.ptr.Load()
}

// Store atomically publishes next as the current snapshot.
func (c *Cell) Store(next *Snapshot) {
	c.ptr.Store(next)
}
