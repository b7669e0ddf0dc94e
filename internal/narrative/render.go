package narrative

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hearthglen/chronicler/internal/chronicle"
)

// renderScene formats a scene's events as a markdown block:
//
//	## The Tavern
//	Location: Dockside
//	[mira] I order an ale
func renderScene(scene chronicle.Scene) string {
	var b strings.Builder
	title := scene.Title
	if title == "" {
		title = scene.ID
	}
	fmt.Fprintf(&b, "## %s\n", title)
	if scene.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", scene.Location)
	}
	for _, evt := range scene.Events {
		b.WriteString(renderEvent(evt))
		b.WriteByte('\n')
	}
	return b.String()
}

// renderSummary formats an ended scene's summary block.
func renderSummary(scene chronicle.Scene) string {
	title := scene.Title
	if title == "" {
		title = scene.ID
	}
	return fmt.Sprintf("**%s**: %s\n", title, scene.Summary)
}

// renderEvent renders one event as a single line, prefixed with the actor
// when the event is attributable.
func renderEvent(evt chronicle.Event) string {
	text := payloadText(evt.Payload)
	if evt.Actor != "" {
		return fmt.Sprintf("[%s] %s", evt.Actor, text)
	}
	return text
}

// payloadText extracts the human-readable line from a payload without
// knowing its concrete schema. All core payloads expose either "text" or
// "detail"; anything else falls back to the compact JSON.
func payloadText(payload json.RawMessage) string {
	var fields struct {
		Text   string `json:"text"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(payload, &fields); err == nil {
		if fields.Text != "" {
			return fields.Text
		}
		if fields.Detail != "" {
			return fields.Detail
		}
	}
	return string(payload)
}
