package trigger

import (
	"time"

	"gswarm-sidecar/internal/model"
)

type runtimeKind int

const (
	kindTriggered runtimeKind = iota
	kindDisplayText
	kindCountdown
)

// LiveAction is the runtime state of one in-flight action (spec.md §3/§4.E).
// Exclusively owned by the driver once created.
//
//	pending_delay  --(now >= delayUntil)--> armed
//	armed          --(Triggered/DisplayText, emit)--> finished
//	armed          --(Countdown, now<endsAt, emit)--> armed
//	armed          --(Countdown, now>=endsAt, emit final)--> finished
type LiveAction struct {
	character *model.Character
	ref       model.TriggerRef
	def       *model.Trigger
	log       *model.LogEvent

	kind     runtimeKind
	text     string
	duration time.Duration
	endsAt   time.Time

	delayUntil *time.Time
	finished   bool
}

func newTriggeredAction(c *CompiledTrigger, event *model.LogEvent) *LiveAction {
	return &LiveAction{
		character: c.Character,
		ref:       c.Ref,
		def:       c.Def,
		log:       event,
		kind:      kindTriggered,
	}
}

func newTemplateAction(c *CompiledTrigger, event *model.LogEvent, tmpl model.ActionTemplate, matchLoc []int) *LiveAction {
	text := string(c.Regex.ExpandString(nil, tmpl.Text, event.Message, matchLoc))

	a := &LiveAction{
		character: c.Character,
		ref:       c.Ref,
		def:       c.Def,
		log:       event,
		text:      text,
	}

	now := time.Now()
	if tmpl.Delay > 0 {
		until := now.Add(tmpl.Delay)
		a.delayUntil = &until
	}

	switch tmpl.Kind {
	case model.ActionDisplayText:
		a.kind = kindDisplayText
	case model.ActionCountdown:
		a.kind = kindCountdown
		a.duration = tmpl.Duration
		// ends_at is fixed at creation: delay elapses, then the countdown
		// runs for its full duration. This keeps ends_at - now monotonically
		// non-increasing across ticks regardless of when the delay clears.
		a.endsAt = now.Add(tmpl.Delay).Add(tmpl.Duration)
	}

	return a
}

// Emit evaluates one driver tick (or the immediate post-fire pass) against
// now, returning zero or more EventKinds and advancing the action's state
// (spec.md §4.E "emit_pass").
func (a *LiveAction) Emit(now time.Time) []model.EventKind {
	if a.finished {
		return nil
	}
	if a.delayUntil != nil {
		if now.Before(*a.delayUntil) {
			return nil
		}
		a.delayUntil = nil
	}

	switch a.kind {
	case kindTriggered:
		a.finished = true
		return []model.EventKind{{
			Tag:        model.EventTriggered,
			Character:  a.character,
			Trigger:    a.def,
			TriggerRef: a.ref,
			Log:        a.log,
		}}
	case kindDisplayText:
		a.finished = true
		return []model.EventKind{{
			Tag:  model.EventDisplayText,
			Text: a.text,
		}}
	case kindCountdown:
		if !now.Before(a.endsAt) {
			a.finished = true
			return []model.EventKind{{
				Tag:           model.EventCountdown,
				CountdownText: a.text,
				Duration:      a.duration,
				Remaining:     0,
			}}
		}
		return []model.EventKind{{
			Tag:           model.EventCountdown,
			CountdownText: a.text,
			Duration:      a.duration,
			Remaining:     a.endsAt.Sub(now),
		}}
	default:
		a.finished = true
		return nil
	}
}

// Finished reports whether this action has emitted its last event.
func (a *LiveAction) Finished() bool { return a.finished }
