package chronicle

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/hearthglen/chronicler/internal/platform/errors"
)

func TestRegistryValidatesAtRegistration(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
	}{
		{name: "empty type", def: Definition{New: func() any { return &SystemPayload{} }}},
		{name: "nil allocator", def: Definition{Type: EventSystem}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			if err := r.Register(tt.def); err == nil {
				t.Fatal("expected registration error")
			}
		})
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	def := Definition{Type: EventSystem, New: func() any { return &SystemPayload{} }}
	if err := r.Register(def); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.Register(def); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

func TestCoreRegistryDecodesTypedPayloads(t *testing.T) {
	r := CoreRegistry()
	evt := Event{
		Type:      EventDiceRoll,
		Timestamp: time.Now(),
		Payload:   []byte(`{"notation":"4d6kh3","total":14,"detail":"4d6kh3: [5 3 6 1] kept [6 5 3] = 14"}`),
	}

	decoded, err := r.Decode(evt)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	payload, ok := decoded.(*DiceRollPayload)
	if !ok {
		t.Fatalf("decoded type = %T, want *DiceRollPayload", decoded)
	}
	if payload.Notation != "4d6kh3" || payload.Total != 14 {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	r := CoreRegistry()
	_, err := r.Decode(Event{Type: EventType("teleport")})
	if !errors.Is(err, apperrors.New(apperrors.CodeEventTypeUnknown, "")) {
		t.Fatalf("error = %v, want event type unknown", err)
	}
}

func TestCoreRegistryKnowsAllCoreTypes(t *testing.T) {
	r := CoreRegistry()
	for _, eventType := range []EventType{
		EventNarration, EventPlayerAction, EventDiceRoll, EventNPCAction,
		EventNPCDialogue, EventSystem, EventToolCall, EventStateChange,
	} {
		if !r.Known(eventType) {
			t.Fatalf("core registry missing %q", eventType)
		}
	}
}
