package chronicle

import (
	"slices"
	"time"
)

// Scene is a bounded narrative unit containing an ordered list of events.
//
// A scene is active from creation until explicitly ended. Ending is
// terminal: a scene never reactivates, a new scene is started instead.
type Scene struct {
	ID    string
	Title string
	// Location names where the scene takes place.
	Location string
	// Participants is an insertion-ordered set of actor ids, grown
	// automatically as attributed events are appended.
	Participants []string
	StartedAt    time.Time
	EndedAt      *time.Time
	// Summary is a short recap written when the scene ends, used by the
	// context assembler once the scene falls out of the recency window.
	Summary string
	Events  []Event
	Active  bool
}

// addParticipant records an actor in the participant set.
func (s *Scene) addParticipant(actor string) {
	if actor == "" || slices.Contains(s.Participants, actor) {
		return
	}
	s.Participants = append(s.Participants, actor)
}

// end finalizes the scene. Ending an already-ended scene is a no-op.
func (s *Scene) end(at time.Time, summary string) {
	if !s.Active {
		return
	}
	ended := at
	s.EndedAt = &ended
	s.Active = false
	if summary != "" {
		s.Summary = summary
	}
}

// clone returns a deep copy of the scene.
func (s Scene) clone() Scene {
	out := s
	out.Participants = slices.Clone(s.Participants)
	if s.EndedAt != nil {
		ended := *s.EndedAt
		out.EndedAt = &ended
	}
	out.Events = make([]Event, len(s.Events))
	for i, evt := range s.Events {
		out.Events[i] = evt.clone()
	}
	return out
}
