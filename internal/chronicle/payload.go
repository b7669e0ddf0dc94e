package chronicle

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/hearthglen/chronicler/internal/platform/errors"
)

// NarrationPayload carries narrator prose.
type NarrationPayload struct {
	Text string `json:"text"`
}

// PlayerActionPayload carries a player's declared action.
type PlayerActionPayload struct {
	Text string `json:"text"`
}

// DiceRollPayload records the outcome of a dice roll.
type DiceRollPayload struct {
	Notation string `json:"notation"`
	Total    int    `json:"total"`
	Detail   string `json:"detail"`
	Seed     *int64 `json:"seed,omitempty"`
}

// NPCActionPayload records an action taken by a non-player character.
type NPCActionPayload struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// NPCDialoguePayload records speech by a non-player character.
type NPCDialoguePayload struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// SystemPayload carries system messages such as scene transitions.
type SystemPayload struct {
	Text string `json:"text"`
}

// ToolCallPayload records one tool invocation requested by the generator.
type ToolCallPayload struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
}

// StateChangePayload records a tracked game-state transition.
type StateChangePayload struct {
	Field string `json:"field"`
	From  string `json:"from,omitempty"`
	To    string `json:"to"`
}

// Definition describes one event type and how to decode its payload.
type Definition struct {
	Type EventType
	// New allocates an empty payload value for Decode to unmarshal into.
	New func() any
}

// Registry maps event types to payload definitions. Definitions are
// validated at registration time, not at decode time.
type Registry struct {
	defs map[EventType]Definition
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[EventType]Definition)}
}

// Register adds a definition. It fails on an empty type, a nil allocator,
// or a duplicate registration.
func (r *Registry) Register(def Definition) error {
	if def.Type == "" {
		return apperrors.New(apperrors.CodeEventTypeUnknown, "event definition missing type")
	}
	if def.New == nil {
		return apperrors.WithMetadata(apperrors.CodeEventTypeUnknown, "event definition missing allocator",
			map[string]string{"type": string(def.Type)})
	}
	if _, exists := r.defs[def.Type]; exists {
		return apperrors.WithMetadata(apperrors.CodeEventTypeUnknown, "event type already registered",
			map[string]string{"type": string(def.Type)})
	}
	r.defs[def.Type] = def
	return nil
}

// Known reports whether the event type has a registered definition.
func (r *Registry) Known(t EventType) bool {
	_, ok := r.defs[t]
	return ok
}

// Decode unmarshals an event's payload into its registered type.
func (r *Registry) Decode(evt Event) (any, error) {
	def, ok := r.defs[evt.Type]
	if !ok {
		return nil, apperrors.WithMetadata(apperrors.CodeEventTypeUnknown, "no definition for event type",
			map[string]string{"type": string(evt.Type)})
	}
	payload := def.New()
	if len(evt.Payload) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(evt.Payload, payload); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", evt.Type, err)
	}
	return payload, nil
}

// CoreRegistry returns a registry with every core event type registered.
func CoreRegistry() *Registry {
	r := NewRegistry()
	defs := []Definition{
		{Type: EventNarration, New: func() any { return &NarrationPayload{} }},
		{Type: EventPlayerAction, New: func() any { return &PlayerActionPayload{} }},
		{Type: EventDiceRoll, New: func() any { return &DiceRollPayload{} }},
		{Type: EventNPCAction, New: func() any { return &NPCActionPayload{} }},
		{Type: EventNPCDialogue, New: func() any { return &NPCDialoguePayload{} }},
		{Type: EventSystem, New: func() any { return &SystemPayload{} }},
		{Type: EventToolCall, New: func() any { return &ToolCallPayload{} }},
		{Type: EventStateChange, New: func() any { return &StateChangePayload{} }},
	}
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			// Static definitions above; a failure is a programming error.
			panic(err)
		}
	}
	return r
}

// MarshalPayload serializes a typed payload for LogEvent.
func MarshalPayload(payload any) (json.RawMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return raw, nil
}
