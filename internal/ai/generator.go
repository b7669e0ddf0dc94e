// Package ai provides the narration generator boundary: an opaque text
// generation capability plus a typed registry of tools the generator may
// invoke mid-turn. The rest of the system depends only on the Generator
// interface; the OpenAI-backed client is one implementation.
package ai

import (
	"context"

	"github.com/hearthglen/chronicler/internal/narrative"
)

// ToolCall records one tool invocation the generator requested during a
// turn, together with the result that was handed back.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
	Result    string
}

// Reply is the outcome of one generation turn. ToolCalls lists every tool
// round that ran before the final text was produced, in invocation order.
type Reply struct {
	Text      string
	ToolCalls []ToolCall
}

// InvokeFunc executes a named tool with raw JSON arguments and returns the
// serialized result handed back to the generator.
type InvokeFunc func(ctx context.Context, name, arguments string) (string, error)

// Request carries everything a generator needs for one turn: the assembled
// session context, the player's input, the table rules as a system prompt,
// and the tools the generator may call. Invoke may be nil when no tools are
// offered.
type Request struct {
	Context narrative.Package
	Input   string
	System  string
	Tools   []Tool
	Invoke  InvokeFunc
}

// Generator produces a narration reply for a request. Implementations run
// any tool rounds internally via Request.Invoke before returning.
type Generator interface {
	Generate(ctx context.Context, req Request) (Reply, error)
}
