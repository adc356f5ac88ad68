package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gswarm-sidecar/internal/model"
	"gswarm-sidecar/internal/trigger"
)

func TestEmptyIsValid(t *testing.T) {
	s := Empty()
	assert.Empty(t, s.Characters)
	assert.Empty(t, s.TriggersByCharacter)
	assert.Empty(t, s.FiltersByCharacter)
}

func TestBuildGroupsByCharacterAndCompilesFilters(t *testing.T) {
	characters := map[string]*model.Character{
		"char1": {ID: "char1", DisabledTriggers: map[model.TriggerRef]struct{}{}},
	}
	sets := map[model.TriggerSource]map[model.TriggerID]model.Trigger{
		model.LocalSource: {
			"T1": {SearchText: "slain by"},
		},
	}
	compiled, err := trigger.CompileAll(characters, sets)
	require.NoError(t, err)

	snap, err := Build(characters, compiled)
	require.NoError(t, err)

	require.Len(t, snap.TriggersByCharacter["char1"], 1)
	pred, ok := snap.FiltersByCharacter["char1"]
	require.True(t, ok)
	assert.True(t, pred("You were slain by Grendel."))
	assert.False(t, pred("all quiet"))
}

func TestCellLoadStore(t *testing.T) {
	c := NewCell(Empty())
	assert.Equal(t, Empty(), c.Load())

	next := Empty()
	next.Characters["char1"] = &model.Character{ID: "char1"}
	c.Store(next)

	assert.Contains(t, c.Load().Characters, "char1")
}
