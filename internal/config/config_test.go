package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gswarm-sidecar/internal/model"
)

func TestLoadCharactersMissingFileYieldsEmptyMap(t *testing.T) {
	dirs := Directories{Config: t.TempDir()}
	characters, err := LoadCharacters(dirs)
	require.NoError(t, err)
	assert.Empty(t, characters)
}

func TestLoadCharactersParsesDisabledTriggers(t *testing.T) {
	dir := t.TempDir()
	yaml := `
characters:
  char1:
    name: Aria
    server: Crystal
    filename: /logs/aria.log
    disabled_triggers:
      - "local/T1"
      - "remote:bazaar/T2"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, charactersFilename), []byte(yaml), 0o644))

	characters, err := LoadCharacters(Directories{Config: dir})
	require.NoError(t, err)
	require.Contains(t, characters, "char1")

	c := characters["char1"]
	assert.Equal(t, "Aria", c.Name)
	assert.Equal(t, "Crystal", c.Server)
	assert.Equal(t, "/logs/aria.log", c.Filename)

	assert.True(t, c.DisabledTrigger(model.TriggerRef{Source: model.LocalSource, ID: "T1"}))
	assert.True(t, c.DisabledTrigger(model.TriggerRef{Source: model.RemoteSource("bazaar"), ID: "T2"}))
	assert.False(t, c.DisabledTrigger(model.TriggerRef{Source: model.LocalSource, ID: "T3"}))
}

func TestLoadCharactersRejectsMalformedTriggerRef(t *testing.T) {
	dir := t.TempDir()
	yaml := `
characters:
  char1:
    name: Aria
    filename: /logs/aria.log
    disabled_triggers:
      - "not-a-valid-ref"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, charactersFilename), []byte(yaml), 0o644))

	_, err := LoadCharacters(Directories{Config: dir})
	assert.Error(t, err)
}

func TestLoadTriggerSetsMissingDirYieldsEmptyMap(t *testing.T) {
	sets, err := LoadTriggerSets(Directories{Data: t.TempDir()})
	require.NoError(t, err)
	assert.Empty(t, sets)
}

func TestLoadTriggerSetsParsesActionsAndSource(t *testing.T) {
	dir := t.TempDir()
	triggersDir := filepath.Join(dir, triggersSubdir)
	require.NoError(t, os.MkdirAll(triggersDir, 0o755))

	yaml := `
meta:
  source: local
triggers:
  T1:
    name: Slain
    search_text: "slain by (\\w+)"
    actions:
      - type: display_text
        text: "Killed by $1!"
      - type: countdown
        text: "Boss enrages"
        delay: 5
        duration: 30
`
	require.NoError(t, os.WriteFile(filepath.Join(triggersDir, "local.yaml"), []byte(yaml), 0o644))

	sets, err := LoadTriggerSets(Directories{Data: dir})
	require.NoError(t, err)
	require.Contains(t, sets, model.LocalSource)

	set := sets[model.LocalSource]
	require.Contains(t, set.Triggers, model.TriggerID("T1"))
	trig := set.Triggers["T1"]
	assert.Equal(t, "Slain", trig.Name)
	require.Len(t, trig.Actions, 2)
	assert.Equal(t, model.ActionDisplayText, trig.Actions[0].Kind)
	assert.Equal(t, model.ActionCountdown, trig.Actions[1].Kind)
}

func TestLoadTriggerSetsCountdownRequiresDuration(t *testing.T) {
	dir := t.TempDir()
	triggersDir := filepath.Join(dir, triggersSubdir)
	require.NoError(t, os.MkdirAll(triggersDir, 0o755))

	yaml := `
meta:
  source: local
triggers:
  T1:
    search_text: "x"
    actions:
      - type: countdown
        text: "no duration"
`
	require.NoError(t, os.WriteFile(filepath.Join(triggersDir, "local.yaml"), []byte(yaml), 0o644))

	_, err := LoadTriggerSets(Directories{Data: dir})
	assert.Error(t, err)
}
