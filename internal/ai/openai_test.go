package ai

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/hearthglen/chronicler/internal/narrative"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestToolDefinitions(t *testing.T) {
	tools := []Tool{
		{
			Name:        "roll_dice",
			Description: "Roll dice notation",
			Schema:      json.RawMessage(`{"type":"object","properties":{"notation":{"type":"string"}}}`),
			Handler:     echoHandler,
		},
		{Name: "end_scene", Handler: echoHandler},
	}

	defs := toolDefinitions(tools)
	if len(defs) != 2 {
		t.Fatalf("got %d definitions, want 2", len(defs))
	}
	if defs[0].Type != openai.ToolTypeFunction {
		t.Fatalf("type = %s", defs[0].Type)
	}
	if defs[0].Function.Name != "roll_dice" || defs[0].Function.Description != "Roll dice notation" {
		t.Fatalf("function = %+v", defs[0].Function)
	}

	// Tools without a schema still get a valid empty-object parameters
	// document so the API accepts them.
	raw, ok := defs[1].Function.Parameters.(json.RawMessage)
	if !ok {
		t.Fatalf("parameters type = %T", defs[1].Function.Parameters)
	}
	if !json.Valid(raw) {
		t.Fatalf("parameters not valid JSON: %s", raw)
	}
}

func TestToolDefinitionsEmpty(t *testing.T) {
	if defs := toolDefinitions(nil); defs != nil {
		t.Fatalf("got %v, want nil", defs)
	}
}

func TestRenderContext(t *testing.T) {
	pkg := narrative.Package{Blocks: []narrative.Block{
		{Kind: narrative.BlockSummary, Text: "**Docks**: a quiet night\n"},
		{Kind: narrative.BlockScene, Text: "## The Chase\n[gm] whistles blow\n"},
		{Kind: narrative.BlockCurrentScene, Text: "## The Rooftop\n[mira] jumps\n"},
	}}

	got := renderContext(pkg)
	want := "**Docks**: a quiet night\n## The Chase\n[gm] whistles blow\n## The Rooftop\n[mira] jumps"
	if got != want {
		t.Fatalf("rendered:\n%q\nwant:\n%q", got, want)
	}
}

func TestRenderContextEmpty(t *testing.T) {
	if got := renderContext(narrative.Package{}); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(ClientConfig{}, testLogger()); err == nil {
		t.Fatal("expected error for missing api key")
	}
	client, err := NewClient(ClientConfig{APIKey: "test"}, testLogger())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.model == "" {
		t.Fatal("default model not applied")
	}
	if client.timeout <= 0 {
		t.Fatal("default timeout not applied")
	}
}
