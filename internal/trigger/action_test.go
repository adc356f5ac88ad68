package trigger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gswarm-sidecar/internal/model"
)

func compileOne(t *testing.T, searchText string, actions ...model.ActionTemplate) *CompiledTrigger {
	t.Helper()
	c := testCharacter()
	def := &model.Trigger{SearchText: searchText, Actions: actions}
	ref := model.TriggerRef{Source: model.LocalSource, ID: "T1"}
	ct, err := Compile(c, ref, def)
	require.NoError(t, err)
	return ct
}

func TestDisplayTextFinishesAfterOneEmit(t *testing.T) {
	ct := compileOne(t, "boom", model.ActionTemplate{Kind: model.ActionDisplayText, Text: "Boom!"})
	actions := ct.Fire(&model.LogEvent{Message: "boom"})
	require.Len(t, actions, 2)

	display := actions[1]
	assert.False(t, display.Finished())

	kinds := display.Emit(time.Now())
	require.Len(t, kinds, 1)
	assert.Equal(t, "Boom!", kinds[0].Text)
	assert.True(t, display.Finished())

	assert.Empty(t, display.Emit(time.Now()))
}

func TestDelayedActionWithholdsUntilDelayUntil(t *testing.T) {
	ct := compileOne(t, "boom", model.ActionTemplate{
		Kind: model.ActionDisplayText, Text: "Boom!", Delay: 100 * time.Millisecond,
	})
	actions := ct.Fire(&model.LogEvent{Message: "boom"})
	display := actions[1]

	assert.Empty(t, display.Emit(time.Now()))
	assert.False(t, display.Finished())

	assert.NotEmpty(t, display.Emit(time.Now().Add(200*time.Millisecond)))
	assert.True(t, display.Finished())
}

func TestCountdownEmitsDecreasingRemainingUntilFinished(t *testing.T) {
	ct := compileOne(t, "start", model.ActionTemplate{
		Kind: model.ActionCountdown, Text: "Boss enrages", Duration: 5 * time.Second,
	})
	actions := ct.Fire(&model.LogEvent{Message: "start"})
	cd := actions[1]

	creation := time.Now()

	kinds := cd.Emit(creation)
	require.Len(t, kinds, 1)
	assert.False(t, cd.Finished())
	firstRemaining := kinds[0].Remaining
	assert.InDelta(t, float64(5*time.Second), float64(firstRemaining), float64(50*time.Millisecond))

	kinds = cd.Emit(creation.Add(2 * time.Second))
	require.Len(t, kinds, 1)
	assert.False(t, cd.Finished())
	secondRemaining := kinds[0].Remaining
	assert.Less(t, secondRemaining, firstRemaining)

	kinds = cd.Emit(creation.Add(6 * time.Second))
	require.Len(t, kinds, 1)
	assert.True(t, cd.Finished())
	assert.Equal(t, time.Duration(0), kinds[0].Remaining)
}

func TestCountdownWithDelayKeepsEndsAtFixedAtCreation(t *testing.T) {
	ct := compileOne(t, "start", model.ActionTemplate{
		Kind: model.ActionCountdown, Text: "Boss enrages",
		Delay: 1 * time.Second, Duration: 4 * time.Second,
	})
	actions := ct.Fire(&model.LogEvent{Message: "start"})
	cd := actions[1]

	creation := time.Now()

	// During the delay window, nothing is emitted.
	assert.Empty(t, cd.Emit(creation.Add(500*time.Millisecond)))

	// Once armed, remaining reflects ends_at fixed at creation + delay + duration,
	// not delay + duration measured from when the delay cleared.
	kinds := cd.Emit(creation.Add(2 * time.Second))
	require.Len(t, kinds, 1)
	expectedRemaining := 3 * time.Second // ends_at = creation+5s, now = creation+2s
	assert.InDelta(t, float64(expectedRemaining), float64(kinds[0].Remaining), float64(50*time.Millisecond))
}
