// Package model holds the data types shared across the trigger pipeline:
// characters, trigger definitions, compiled log events and outbound events.
package model

import (
	"fmt"
	"time"
)

// Character is one monitored log source, created from configuration.
// Immutable per configuration generation.
type Character struct {
	ID               string
	Name             string
	Server           string
	Filename         string
	DisabledTriggers map[TriggerRef]struct{}
}

// DisabledTrigger reports whether ref has been disabled for this character.
func (c *Character) DisabledTrigger(ref TriggerRef) bool {
	_, ok := c.DisabledTriggers[ref]
	return ok
}

// TriggerSourceKind tags the origin of a trigger set.
type TriggerSourceKind int

const (
	// SourceLocal is the engine's own local trigger set.
	SourceLocal TriggerSourceKind = iota
	// SourceRemote is a declared extension point; the current engine loads
	// remote-tagged trigger sets from disk exactly like local ones and does
	// not fetch them over a network.
	SourceRemote
)

func (k TriggerSourceKind) String() string {
	switch k {
	case SourceLocal:
		return "local"
	case SourceRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// TriggerSource identifies the origin of a trigger set.
type TriggerSource struct {
	Kind TriggerSourceKind
	// Name is set only when Kind == SourceRemote.
	Name string
}

// LocalSource is the well-known Local trigger source.
var LocalSource = TriggerSource{Kind: SourceLocal}

// RemoteSource builds a Remote(name) trigger source.
func RemoteSource(name string) TriggerSource {
	return TriggerSource{Kind: SourceRemote, Name: name}
}

func (s TriggerSource) String() string {
	if s.Kind == SourceRemote {
		return fmt.Sprintf("remote(%s)", s.Name)
	}
	return "local"
}

// TriggerID is unique within its source.
type TriggerID string

// TriggerRef globally identifies a trigger.
type TriggerRef struct {
	Source TriggerSource
	ID     TriggerID
}

func (r TriggerRef) String() string {
	return fmt.Sprintf("%s/%s", r.Source, r.ID)
}

// ActionKind tags an ActionTemplate variant.
type ActionKind int

const (
	// ActionDisplayText emits a single templated text message.
	ActionDisplayText ActionKind = iota
	// ActionCountdown emits a repeating countdown timer.
	ActionCountdown
)

// ActionTemplate is the declarative form of one trigger action.
type ActionTemplate struct {
	Kind Kind
	// Text is the expansion template; may reference $1, $name, etc.
	Text string
	// Delay, if set, postpones the action's first emission.
	Delay time.Duration
	// Duration is only meaningful for ActionCountdown.
	Duration time.Duration
}

// Kind is an alias kept for readability at call sites (ActionTemplate.Kind).
type Kind = ActionKind

// Trigger is the declarative trigger definition.
type Trigger struct {
	Name       string
	Comment    string
	SearchText string
	Actions    []ActionTemplate
}

// LogEvent is one parsed, admitted log line, shared by pointer from tailer to
// driver.
type LogEvent struct {
	CharacterID string
	Date        time.Time
	Message     string
}

// EventKindTag tags an outbound Event variant.
type EventKindTag int

const (
	// EventTriggered reports a raw trigger match.
	EventTriggered EventKindTag = iota
	// EventDisplayText reports an expanded text message.
	EventDisplayText
	// EventCountdown reports a countdown tick.
	EventCountdown
)

// EventKind is the payload of an outbound Event.
type EventKind struct {
	Tag EventKindTag

	// Set when Tag == EventTriggered.
	Character *Character
	Trigger   *Trigger
	TriggerRef TriggerRef
	Log       *LogEvent

	// Set when Tag == EventDisplayText.
	Text string

	// Set when Tag == EventCountdown.
	CountdownText string
	Duration      time.Duration
	Remaining     time.Duration
}

// Event is one outbound notification delivered to the event bus.
type Event struct {
	Created time.Time
	Kind    EventKind
}

// NewEvent stamps kind with the current time.
func NewEvent(kind EventKind) Event {
	return Event{Created: time.Now(), Kind: kind}
}
