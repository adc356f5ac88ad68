// Package config loads the engine's configuration: characters and trigger
// sets. This is the concrete implementation of the "external config
// collaborator" spec.md §1 declares out of scope for the trigger pipeline
// proper — it exists so the repository is a complete, runnable program.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"gswarm-sidecar/internal/engineerr"
	"gswarm-sidecar/internal/model"
)

const appName = "comrade"

// Directories mirrors the original's platform_dirs-derived Directories:
// where configuration lives and where trigger data lives.
type Directories struct {
	Config string
	Data   string
}

// DefaultDirectories resolves the standard per-user config/data locations.
func DefaultDirectories() Directories {
	cfg, err := os.UserConfigDir()
	if err != nil {
		cfg = "."
	}
	return Directories{
		Config: filepath.Join(cfg, appName),
		Data:   filepath.Join(cfg, appName, "data"),
	}
}

type characterYAML struct {
	Name             string   `yaml:"name"`
	Server           string   `yaml:"server"`
	Filename         string   `yaml:"filename"`
	DisabledTriggers []string `yaml:"disabled_triggers"`
}

type charactersYAML struct {
	Characters map[string]characterYAML `yaml:"characters"`
}

const charactersFilename = "characters.yaml"

// LoadCharacters reads <dirs.Config>/characters.yaml and returns the parsed
// Character map (spec.md §3/§6). A missing file yields an empty map, not an
// error — the engine is valid with zero characters configured.
func LoadCharacters(dirs Directories) (map[string]*model.Character, error) {
	path := filepath.Join(dirs.Config, charactersFilename)

	data, err := os.ReadFile(path) // #nosec G304 -- operator-controlled config path
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*model.Character{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var raw charactersYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &engineerr.ConfigParseError{Filename: path, Err: err}
	}

	out := make(map[string]*model.Character, len(raw.Characters))
	for id, c := range raw.Characters {
		disabled := make(map[model.TriggerRef]struct{}, len(c.DisabledTriggers))
		for _, ref := range c.DisabledTriggers {
			r, err := parseTriggerRef(ref)
			if err != nil {
				return nil, &engineerr.ConfigParseError{Filename: path, Err: err}
			}
			disabled[r] = struct{}{}
		}

		out[id] = &model.Character{
			ID:               id,
			Name:             c.Name,
			Server:           c.Server,
			Filename:         c.Filename,
			DisabledTriggers: disabled,
		}
	}

	return out, nil
}

// parseTriggerRef parses "local/T1" or "remote:bazaar/T1" into a TriggerRef.
func parseTriggerRef(s string) (model.TriggerRef, error) {
	idx := strings.LastIndex(s, "/")
	if idx < 0 {
		return model.TriggerRef{}, fmt.Errorf("malformed trigger ref %q: expected <source>/<id>", s)
	}
	sourcePart, idPart := s[:idx], s[idx+1:]
	if idPart == "" {
		return model.TriggerRef{}, fmt.Errorf("malformed trigger ref %q: empty trigger id", s)
	}

	source, err := parseTriggerSource(sourcePart)
	if err != nil {
		return model.TriggerRef{}, err
	}

	return model.TriggerRef{Source: source, ID: model.TriggerID(idPart)}, nil
}

func parseTriggerSource(s string) (model.TriggerSource, error) {
	if s == "local" {
		return model.LocalSource, nil
	}
	if name, ok := strings.CutPrefix(s, "remote:"); ok && name != "" {
		return model.RemoteSource(name), nil
	}
	return model.TriggerSource{}, fmt.Errorf("malformed trigger source %q: expected \"local\" or \"remote:<name>\"", s)
}
