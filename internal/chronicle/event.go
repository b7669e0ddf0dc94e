package chronicle

import (
	"encoding/json"
	"maps"
	"time"
)

// EventType classifies a logged event.
type EventType string

const (
	EventNarration    EventType = "narration"
	EventPlayerAction EventType = "player_action"
	EventDiceRoll     EventType = "dice_roll"
	EventNPCAction    EventType = "npc_action"
	EventNPCDialogue  EventType = "npc_dialogue"
	EventSystem       EventType = "system"
	EventToolCall     EventType = "tool_call"
	EventStateChange  EventType = "state_change"
)

// Event is one immutable entry in a scene. Corrections are modeled as new
// events, never in-place edits.
type Event struct {
	ID        string
	Timestamp time.Time
	Type      EventType
	// Actor identifies who performed the action. Empty when the event is
	// not attributable to anyone.
	Actor string
	// Payload is the typed payload serialized as JSON. It is kept verbatim
	// so unknown fields survive a round trip; use a Registry to decode.
	Payload json.RawMessage
	// Metadata carries free-form string annotations.
	Metadata map[string]string
}

// clone returns a copy safe to hand outside the log's lock.
func (e Event) clone() Event {
	out := e
	out.Payload = append(json.RawMessage(nil), e.Payload...)
	if e.Metadata != nil {
		out.Metadata = maps.Clone(e.Metadata)
	}
	return out
}
