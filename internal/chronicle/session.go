package chronicle

import "time"

// Session owns the ordered scenes of one play-through. Scenes never outlive
// their session.
type Session struct {
	ID        string
	CreatedAt time.Time
	Scenes    []Scene
	// ActiveScene indexes the single active scene in Scenes, or -1.
	ActiveScene int
}

// NewSession returns an empty session with no active scene.
func NewSession(id string, createdAt time.Time) *Session {
	return &Session{
		ID:          id,
		CreatedAt:   createdAt.UTC(),
		ActiveScene: -1,
	}
}

// Active returns the active scene, or nil.
func (s *Session) Active() *Scene {
	if s.ActiveScene < 0 || s.ActiveScene >= len(s.Scenes) {
		return nil
	}
	scene := &s.Scenes[s.ActiveScene]
	if !scene.Active {
		return nil
	}
	return scene
}

// Clone returns a deep copy of the session, safe to read while the
// original keeps mutating.
func (s *Session) Clone() *Session {
	out := &Session{
		ID:          s.ID,
		CreatedAt:   s.CreatedAt,
		ActiveScene: s.ActiveScene,
	}
	out.Scenes = make([]Scene, len(s.Scenes))
	for i, scene := range s.Scenes {
		out.Scenes[i] = scene.clone()
	}
	return out
}
