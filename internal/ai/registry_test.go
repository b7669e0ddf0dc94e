package ai

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	apperrors "github.com/hearthglen/chronicler/internal/platform/errors"
)

func echoHandler(_ context.Context, arguments string) (string, error) {
	return arguments, nil
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		tool Tool
	}{
		{
			name: "empty name",
			tool: Tool{Handler: echoHandler},
		},
		{
			name: "nil handler",
			tool: Tool{Name: "roll_dice"},
		},
		{
			name: "invalid schema",
			tool: Tool{Name: "roll_dice", Handler: echoHandler, Schema: json.RawMessage(`{"type":`)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			err := reg.Register(tt.tool)
			if err == nil {
				t.Fatal("expected registration error")
			}
			if !errors.Is(err, apperrors.New(apperrors.CodeToolInvalid, "")) {
				t.Fatalf("error = %v, want code %s", err, apperrors.CodeToolInvalid)
			}
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	reg := NewRegistry()
	tool := Tool{Name: "roll_dice", Handler: echoHandler}
	if err := reg.Register(tool); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := reg.Register(tool); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

func TestToolsPreservesRegistrationOrder(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"roll_dice", "start_scene", "end_scene"} {
		if err := reg.Register(Tool{Name: name, Handler: echoHandler}); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	tools := reg.Tools()
	want := []string{"roll_dice", "start_scene", "end_scene"}
	if len(tools) != len(want) {
		t.Fatalf("got %d tools, want %d", len(tools), len(want))
	}
	for i, name := range want {
		if tools[i].Name != name {
			t.Fatalf("tools[%d] = %s, want %s", i, tools[i].Name, name)
		}
	}
}

func TestDispatch(t *testing.T) {
	reg := NewRegistry()
	err := reg.Register(Tool{
		Name: "roll_dice",
		Handler: func(_ context.Context, arguments string) (string, error) {
			return `{"total":17}`, nil
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	result, err := reg.Dispatch(context.Background(), "roll_dice", `{"notation":"d20"}`)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if result != `{"total":17}` {
		t.Fatalf("result = %s", result)
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Dispatch(context.Background(), "fireball", "{}")
	if !errors.Is(err, apperrors.New(apperrors.CodeToolNotFound, "")) {
		t.Fatalf("error = %v, want code %s", err, apperrors.CodeToolNotFound)
	}
}
