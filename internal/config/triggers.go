package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"gswarm-sidecar/internal/engineerr"
	"gswarm-sidecar/internal/model"
)

type actionYAML struct {
	Type     string `yaml:"type"`
	Text     string `yaml:"text"`
	DelayS   *int64 `yaml:"delay"`
	Duration *int64 `yaml:"duration"`
}

type triggerYAML struct {
	Name       string       `yaml:"name"`
	Comment    string       `yaml:"comment"`
	SearchText string       `yaml:"search_text"`
	Actions    []actionYAML `yaml:"actions"`
}

type triggerMetaYAML struct {
	Source string `yaml:"source"`
}

type triggerSetYAML struct {
	Meta     triggerMetaYAML        `yaml:"meta"`
	Triggers map[string]triggerYAML `yaml:"triggers"`
}

// TriggerSet is one source's loaded, not-yet-compiled trigger definitions.
type TriggerSet struct {
	Source   model.TriggerSource
	Triggers map[model.TriggerID]model.Trigger
}

const triggersSubdir = "triggers"

// LoadTriggerSets reads every *.yaml file under <dirs.Data>/triggers and
// returns one TriggerSet per file, keyed by its declared meta.source. A
// missing triggers directory yields an empty result, not an error.
func LoadTriggerSets(dirs Directories) (map[model.TriggerSource]*TriggerSet, error) {
	dir := filepath.Join(dirs.Data, triggersSubdir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[model.TriggerSource]*TriggerSet{}, nil
		}
		return nil, fmt.Errorf("reading trigger directory %s: %w", dir, err)
	}

	out := make(map[model.TriggerSource]*TriggerSet, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		set, err := loadTriggerSetFile(path)
		if err != nil {
			return nil, err
		}
		out[set.Source] = set
	}

	return out, nil
}

func loadTriggerSetFile(path string) (*TriggerSet, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- operator-controlled trigger directory
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var raw triggerSetYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &engineerr.ConfigParseError{Filename: path, Err: err}
	}

	source, err := parseTriggerSource(raw.Meta.Source)
	if err != nil {
		return nil, &engineerr.ConfigParseError{Filename: path, Err: err}
	}

	triggers := make(map[model.TriggerID]model.Trigger, len(raw.Triggers))
	for id, t := range raw.Triggers {
		actions := make([]model.ActionTemplate, 0, len(t.Actions))
		for _, a := range t.Actions {
			tmpl, err := convertAction(a)
			if err != nil {
				return nil, &engineerr.ConfigParseError{
					Filename: path,
					Err:      fmt.Errorf("trigger %s: %w", id, err),
				}
			}
			actions = append(actions, tmpl)
		}

		triggers[model.TriggerID(id)] = model.Trigger{
			Name:       t.Name,
			Comment:    t.Comment,
			SearchText: t.SearchText,
			Actions:    actions,
		}
	}

	return &TriggerSet{Source: source, Triggers: triggers}, nil
}

func convertAction(a actionYAML) (model.ActionTemplate, error) {
	delay := durationFromSeconds(a.DelayS)

	switch a.Type {
	case "DisplayText", "display_text":
		return model.ActionTemplate{
			Kind:  model.ActionDisplayText,
			Text:  a.Text,
			Delay: delay,
		}, nil
	case "Countdown", "countdown":
		if a.Duration == nil {
			return model.ActionTemplate{}, fmt.Errorf("countdown action missing duration")
		}
		return model.ActionTemplate{
			Kind:     model.ActionCountdown,
			Text:     a.Text,
			Delay:    delay,
			Duration: time.Duration(*a.Duration) * time.Second,
		}, nil
	default:
		return model.ActionTemplate{}, fmt.Errorf("unknown action type %q", a.Type)
	}
}

func durationFromSeconds(s *int64) time.Duration {
	if s == nil {
		return 0
	}
	return time.Duration(*s) * time.Second
}
