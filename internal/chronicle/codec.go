package chronicle

import (
	"encoding/json"
	"fmt"
	"time"
)

// The persisted document uses stable snake_case field names so session
// files written by earlier versions of the game remain readable. The codec
// owns the format; stores treat the document as opaque bytes.

type sessionDoc struct {
	SessionID    string     `json:"session_id"`
	CreatedAt    string     `json:"created_at"`
	Scenes       []sceneDoc `json:"scenes"`
	CurrentScene string     `json:"current_scene_id,omitempty"`
}

type sceneDoc struct {
	SceneID      string     `json:"scene_id"`
	Title        string     `json:"title,omitempty"`
	Location     string     `json:"location,omitempty"`
	Participants []string   `json:"participants,omitempty"`
	StartTime    string     `json:"start_time"`
	EndTime      *string    `json:"end_time,omitempty"`
	Events       []eventDoc `json:"events"`
	Summary      string     `json:"summary,omitempty"`
	IsActive     bool       `json:"is_active"`
}

type eventDoc struct {
	EventID   string            `json:"event_id"`
	Timestamp string            `json:"timestamp"`
	EventType string            `json:"event_type"`
	Actor     string            `json:"actor,omitempty"`
	Payload   json.RawMessage   `json:"payload,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return t.UTC(), nil
}

// MarshalSession serializes a session into its persisted JSON document.
func MarshalSession(session *Session) ([]byte, error) {
	doc := sessionDoc{
		SessionID: session.ID,
		CreatedAt: encodeTime(session.CreatedAt),
		Scenes:    make([]sceneDoc, 0, len(session.Scenes)),
	}
	if active := session.Active(); active != nil {
		doc.CurrentScene = active.ID
	}
	for _, scene := range session.Scenes {
		sd := sceneDoc{
			SceneID:      scene.ID,
			Title:        scene.Title,
			Location:     scene.Location,
			Participants: scene.Participants,
			StartTime:    encodeTime(scene.StartedAt),
			Events:       make([]eventDoc, 0, len(scene.Events)),
			Summary:      scene.Summary,
			IsActive:     scene.Active,
		}
		if scene.EndedAt != nil {
			ended := encodeTime(*scene.EndedAt)
			sd.EndTime = &ended
		}
		for _, evt := range scene.Events {
			sd.Events = append(sd.Events, eventDoc{
				EventID:   evt.ID,
				Timestamp: encodeTime(evt.Timestamp),
				EventType: string(evt.Type),
				Actor:     evt.Actor,
				Payload:   evt.Payload,
				Metadata:  evt.Metadata,
			})
		}
		doc.Scenes = append(doc.Scenes, sd)
	}
	// Compact on purpose: indentation would reformat the verbatim payload
	// bytes and break byte-level round-tripping of event payloads.
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal session %s: %w", session.ID, err)
	}
	return raw, nil
}

// UnmarshalSession parses a persisted JSON document back into a session.
// Marshal followed by Unmarshal reproduces the session field for field.
func UnmarshalSession(raw []byte) (*Session, error) {
	var doc sessionDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal session document: %w", err)
	}

	createdAt, err := decodeTime(doc.CreatedAt)
	if err != nil {
		return nil, err
	}
	session := &Session{
		ID:          doc.SessionID,
		CreatedAt:   createdAt,
		ActiveScene: -1,
		Scenes:      make([]Scene, 0, len(doc.Scenes)),
	}

	for i, sd := range doc.Scenes {
		startedAt, err := decodeTime(sd.StartTime)
		if err != nil {
			return nil, err
		}
		scene := Scene{
			ID:           sd.SceneID,
			Title:        sd.Title,
			Location:     sd.Location,
			Participants: sd.Participants,
			StartedAt:    startedAt,
			Summary:      sd.Summary,
			Active:       sd.IsActive,
			Events:       make([]Event, 0, len(sd.Events)),
		}
		if sd.EndTime != nil {
			endedAt, err := decodeTime(*sd.EndTime)
			if err != nil {
				return nil, err
			}
			scene.EndedAt = &endedAt
		}
		for _, ed := range sd.Events {
			timestamp, err := decodeTime(ed.Timestamp)
			if err != nil {
				return nil, err
			}
			scene.Events = append(scene.Events, Event{
				ID:        ed.EventID,
				Timestamp: timestamp,
				Type:      EventType(ed.EventType),
				Actor:     ed.Actor,
				Payload:   ed.Payload,
				Metadata:  ed.Metadata,
			})
		}
		session.Scenes = append(session.Scenes, scene)

		if doc.CurrentScene != "" && sd.SceneID == doc.CurrentScene && sd.IsActive {
			session.ActiveScene = i
		}
	}
	return session, nil
}
