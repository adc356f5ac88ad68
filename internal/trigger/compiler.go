// Package trigger turns declarative trigger definitions into executable,
// pre-compiled units (spec.md §4.D) and the runtime "live action" state they
// produce when fired (spec.md §4.E's LiveAction state machine).
package trigger

import (
	"regexp"

	"gswarm-sidecar/internal/engineerr"
	"gswarm-sidecar/internal/model"
)

// CompiledTrigger is the runtime form of one (character, trigger) pair:
// regex pre-compiled, action templates retained, character/trigger metadata
// referenced so outbound events can point back at them without copies.
// Immutable once built.
type CompiledTrigger struct {
	Character *model.Character
	Ref       model.TriggerRef
	Def       *model.Trigger
	Regex     *regexp.Regexp
}

// Compile compiles one (character, trigger) pair into a CompiledTrigger. A
// compile failure is reported via engineerr.InvalidRegexError, naming the
// source and trigger id (spec.md §4.D/§7).
func Compile(character *model.Character, ref model.TriggerRef, def *model.Trigger) (*CompiledTrigger, error) {
	re, err := regexp.Compile(def.SearchText)
	if err != nil {
		return nil, &engineerr.InvalidRegexError{
			Source:  ref.Source.String(),
			Trigger: string(ref.ID),
			Err:     err,
		}
	}

	return &CompiledTrigger{
		Character: character,
		Ref:       ref,
		Def:       def,
		Regex:     re,
	}, nil
}

// Fire executes the per-trigger regex against event.Message. If it matches,
// it returns an ordered list of LiveActions: first a synthetic Triggered
// action (no delay, finishes immediately), then one LiveAction per action
// template with capture-group expansion applied (spec.md §4.D "Fire").
// Returns nil if the trigger did not match.
func (c *CompiledTrigger) Fire(event *model.LogEvent) []*LiveAction {
	loc := c.Regex.FindStringSubmatchIndex(event.Message)
	if loc == nil {
		return nil
	}

	actions := make([]*LiveAction, 0, len(c.Def.Actions)+1)
	actions = append(actions, newTriggeredAction(c, event))
	for _, tmpl := range c.Def.Actions {
		actions = append(actions, newTemplateAction(c, event, tmpl, loc))
	}
	return actions
}

// CompileAll compiles one CompiledTrigger per (character, trigger) pair,
// skipping pairs where the character has disabled that trigger ref
// (spec.md §4.D). A compile failure aborts the whole load.
func CompileAll(characters map[string]*model.Character, sets map[model.TriggerSource]map[model.TriggerID]model.Trigger) ([]*CompiledTrigger, error) {
	var out []*CompiledTrigger

	for _, character := range characters {
		for source, triggers := range sets {
			for id, def := range triggers {
				ref := model.TriggerRef{Source: source, ID: id}
				if character.DisabledTrigger(ref) {
					continue
				}

				def := def
				ct, err := Compile(character, ref, &def)
				if err != nil {
					return nil, err
				}
				out = append(out, ct)
			}
		}
	}

	return out, nil
}
