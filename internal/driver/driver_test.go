package driver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gswarm-sidecar/internal/eventbus"
	"gswarm-sidecar/internal/model"
	"gswarm-sidecar/internal/snapshot"
	"gswarm-sidecar/internal/trigger"
)

func buildSnapshot(t *testing.T, characterID string, triggers ...*model.Trigger) *snapshot.Cell {
	t.Helper()
	character := &model.Character{ID: characterID, DisabledTriggers: map[model.TriggerRef]struct{}{}}
	characters := map[string]*model.Character{characterID: character}

	sets := map[model.TriggerSource]map[model.TriggerID]model.Trigger{
		model.LocalSource: {},
	}
	for i, def := range triggers {
		sets[model.LocalSource][model.TriggerID(ref(i))] = *def
	}

	compiled, err := trigger.CompileAll(characters, sets)
	require.NoError(t, err)

	snap, err := snapshot.Build(characters, compiled)
	require.NoError(t, err)

	return snapshot.NewCell(snap)
}

func ref(i int) string {
	return string(rune('A' + i))
}

func drainBus(b *eventbus.Bus) []model.Event {
	var out []model.Event
	for {
		ev, ok := b.TryReceive()
		if !ok {
			return out
		}
		out = append(out, ev)
	}
}

func TestOnLogEventDropsUnknownCharacter(t *testing.T) {
	cell := buildSnapshot(t, "char1")
	bus := eventbus.New()
	d := New(cell, nil, bus)

	d.onLogEvent(&model.LogEvent{CharacterID: "unknown", Message: "anything"})

	assert.Empty(t, drainBus(bus))
	assert.Empty(t, d.actions)
}

func TestOnLogEventFiresMatchingTriggerImmediately(t *testing.T) {
	cell := buildSnapshot(t, "char1", &model.Trigger{
		SearchText: "slain by",
		Actions: []model.ActionTemplate{
			{Kind: model.ActionDisplayText, Text: "ouch"},
		},
	})
	bus := eventbus.New()
	d := New(cell, nil, bus)

	d.onLogEvent(&model.LogEvent{CharacterID: "char1", Message: "You were slain by Grendel."})

	events := drainBus(bus)
	require.Len(t, events, 2) // Triggered + DisplayText
	assert.Equal(t, model.EventTriggered, events[0].Kind.Tag)
	assert.Equal(t, model.EventDisplayText, events[1].Kind.Tag)
	assert.Empty(t, d.actions) // both finished immediately, nothing retained
}

func TestOnLogEventRetainsDelayedAction(t *testing.T) {
	cell := buildSnapshot(t, "char1", &model.Trigger{
		SearchText: "slain by",
		Actions: []model.ActionTemplate{
			{Kind: model.ActionDisplayText, Text: "ouch", Delay: time.Hour},
		},
	})
	bus := eventbus.New()
	d := New(cell, nil, bus)

	d.onLogEvent(&model.LogEvent{CharacterID: "char1", Message: "You were slain by Grendel."})

	events := drainBus(bus)
	require.Len(t, events, 1) // only the synthetic Triggered event fires immediately
	assert.Equal(t, model.EventTriggered, events[0].Kind.Tag)
	assert.Len(t, d.actions, 1) // delayed DisplayText retained for a later tick
}

func TestOnTickCompactsFinishedActions(t *testing.T) {
	cell := buildSnapshot(t, "char1", &model.Trigger{
		SearchText: "go",
		Actions: []model.ActionTemplate{
			{Kind: model.ActionDisplayText, Text: "go!", Delay: time.Hour},
		},
	})
	bus := eventbus.New()
	d := New(cell, nil, bus)

	d.onLogEvent(&model.LogEvent{CharacterID: "char1", Message: "go"})
	require.Len(t, d.actions, 1)
	drainBus(bus)

	// Before the delay clears, the tick emits nothing and keeps the action.
	d.onTick(time.Now())
	assert.Len(t, d.actions, 1)
	assert.Empty(t, drainBus(bus))

	// Once the delay clears, the tick emits and the action is compacted out.
	d.onTick(time.Now().Add(2 * time.Hour))
	assert.Empty(t, d.actions)
	events := drainBus(bus)
	require.Len(t, events, 1)
	assert.Equal(t, "go!", events[0].Kind.Text)
}
