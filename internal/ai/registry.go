package ai

import (
	"context"
	"encoding/json"

	apperrors "github.com/hearthglen/chronicler/internal/platform/errors"
)

// Handler executes a tool. Arguments arrive as the raw JSON object the
// generator produced; the returned string is serialized back to it.
type Handler func(ctx context.Context, arguments string) (string, error)

// Tool describes one capability offered to the generator. Schema is the
// JSON Schema for the tool's arguments object.
type Tool struct {
	Name        string
	Description string
	Schema      json.RawMessage
	Handler     Handler
}

// Registry holds the tools available to a generator, preserving
// registration order for the request surface.
type Registry struct {
	tools []Tool
	index map[string]int
}

// NewRegistry returns an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register validates and adds a tool. Tools need a name, a handler, and a
// valid JSON schema; duplicate names are rejected.
func (r *Registry) Register(tool Tool) error {
	if tool.Name == "" {
		return apperrors.New(apperrors.CodeToolInvalid, "tool name is empty")
	}
	if tool.Handler == nil {
		return apperrors.WithMetadata(apperrors.CodeToolInvalid, "tool has no handler",
			map[string]string{"tool": tool.Name})
	}
	if len(tool.Schema) > 0 && !json.Valid(tool.Schema) {
		return apperrors.WithMetadata(apperrors.CodeToolInvalid, "tool schema is not valid JSON",
			map[string]string{"tool": tool.Name})
	}
	if _, exists := r.index[tool.Name]; exists {
		return apperrors.WithMetadata(apperrors.CodeToolInvalid, "tool already registered",
			map[string]string{"tool": tool.Name})
	}
	r.index[tool.Name] = len(r.tools)
	r.tools = append(r.tools, tool)
	return nil
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	out := make([]Tool, len(r.tools))
	copy(out, r.tools)
	return out
}

// Dispatch runs the named tool's handler with the given arguments.
func (r *Registry) Dispatch(ctx context.Context, name, arguments string) (string, error) {
	idx, ok := r.index[name]
	if !ok {
		return "", apperrors.WithMetadata(apperrors.CodeToolNotFound, "unknown tool",
			map[string]string{"tool": name})
	}
	return r.tools[idx].Handler(ctx, arguments)
}

// Invoker adapts the registry to the InvokeFunc a Request expects.
func (r *Registry) Invoker() InvokeFunc {
	return r.Dispatch
}
