package chronicle

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/hearthglen/chronicler/internal/platform/errors"
	"github.com/hearthglen/chronicler/internal/platform/id"
)

// ErrNoActiveScene indicates an operation that requires an active scene was
// attempted with none. Callers recover by starting a scene first; the log
// never creates an implicit scene.
var ErrNoActiveScene = apperrors.New(apperrors.CodeNoActiveScene, "no active scene")

// SessionSaver persists whole session documents after mutations.
type SessionSaver interface {
	SaveSession(ctx context.Context, session *Session) error
}

// Log provides the append-only operations over a session.
//
// All mutating operations hold a single writer lock, and reads copy under
// the same lock, so a Log is safe for concurrent use from a host program.
// Every mutation auto-saves through the configured SessionSaver; a failed
// save is surfaced to the caller but the in-memory session remains
// authoritative and the next mutation (or Flush) retries.
type Log struct {
	mu       sync.Mutex
	session  *Session
	saver    SessionSaver
	registry *Registry
	now      func() time.Time
	newID    func() (string, error)
	logger   zerolog.Logger
	dirty    bool
}

// Option configures a Log.
type Option func(*Log)

// WithClock overrides the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// WithIDFunc overrides the identifier generator, for deterministic tests.
func WithIDFunc(newID func() (string, error)) Option {
	return func(l *Log) { l.newID = newID }
}

// WithLogger sets the structured logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Log) { l.logger = logger }
}

// WithRegistry sets the payload registry used to validate event types on
// append. Without a registry any event type is accepted.
func WithRegistry(registry *Registry) Option {
	return func(l *Log) { l.registry = registry }
}

// NewLog wraps a session. A nil saver keeps the log purely in memory.
func NewLog(session *Session, saver SessionSaver, opts ...Option) *Log {
	l := &Log{
		session: session,
		saver:   saver,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   id.NewID,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SessionID returns the wrapped session's identifier.
func (l *Log) SessionID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.session.ID
}

// StartScene ends any active scene (with no summary) and activates a new
// one. It returns the new scene's id. The only failure mode beyond id
// generation is storage I/O, in which case the scene is still started in
// memory and the id is returned alongside the error.
func (l *Log) StartScene(ctx context.Context, title, location string, participants []string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	sceneID, err := l.newID()
	if err != nil {
		return "", err
	}

	now := l.now()
	if active := l.session.Active(); active != nil {
		active.end(now, "")
	}

	scene := Scene{
		ID:        sceneID,
		Title:     title,
		Location:  location,
		StartedAt: now,
		Active:    true,
	}
	for _, participant := range participants {
		scene.addParticipant(participant)
	}
	l.session.Scenes = append(l.session.Scenes, scene)
	l.session.ActiveScene = len(l.session.Scenes) - 1

	l.logger.Info().Str("scene_id", sceneID).Str("title", title).Msg("scene started")
	return sceneID, l.persist(ctx)
}

// EndScene finalizes the active scene with an optional summary. It returns
// ErrNoActiveScene when nothing is active.
func (l *Log) EndScene(ctx context.Context, summary string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	active := l.session.Active()
	if active == nil {
		return ErrNoActiveScene
	}
	active.end(l.now(), summary)
	l.session.ActiveScene = -1

	l.logger.Info().Str("scene_id", active.ID).Msg("scene ended")
	return l.persist(ctx)
}

// LogEvent appends an event to the active scene and returns its id. It
// returns ErrNoActiveScene when no scene is active.
func (l *Log) LogEvent(ctx context.Context, eventType EventType, actor string, payload json.RawMessage, metadata map[string]string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.registry != nil && !l.registry.Known(eventType) {
		return "", apperrors.WithMetadata(apperrors.CodeEventTypeUnknown, "unregistered event type",
			map[string]string{"type": string(eventType)})
	}
	active := l.session.Active()
	if active == nil {
		return "", ErrNoActiveScene
	}

	eventID, err := l.newID()
	if err != nil {
		return "", err
	}
	evt := Event{
		ID:        eventID,
		Timestamp: l.now(),
		Type:      eventType,
		Actor:     actor,
		Payload:   append(json.RawMessage(nil), payload...),
		Metadata:  metadata,
	}
	active.Events = append(active.Events, evt)
	active.addParticipant(actor)

	return eventID, l.persist(ctx)
}

// Filter narrows QueryEvents. Zero-valued fields match everything; the
// time bounds are inclusive.
type Filter struct {
	Type    EventType
	Actor   string
	SceneID string
	From    time.Time
	To      time.Time
}

func (f Filter) matches(evt Event) bool {
	if f.Type != "" && evt.Type != f.Type {
		return false
	}
	if f.Actor != "" && evt.Actor != f.Actor {
		return false
	}
	if !f.From.IsZero() && evt.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && evt.Timestamp.After(f.To) {
		return false
	}
	return true
}

// QueryEvents returns matching events across all scenes in append order.
// The result is a snapshot: repeated calls without intervening mutation
// yield the same sequence, and the returned events are copies.
func (l *Log) QueryEvents(filter Filter) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []Event
	for i := range l.session.Scenes {
		scene := &l.session.Scenes[i]
		if filter.SceneID != "" && scene.ID != filter.SceneID {
			continue
		}
		for _, evt := range scene.Events {
			if filter.matches(evt) {
				out = append(out, evt.clone())
			}
		}
	}
	return out
}

// Recent returns the last n events across all scenes in chronological
// (append) order.
func (l *Log) Recent(n int) []Event {
	events := l.QueryEvents(Filter{})
	if n > 0 && len(events) > n {
		events = events[len(events)-n:]
	}
	return events
}

// Snapshot returns a deep copy of the session for read-side projections
// such as context assembly.
func (l *Log) Snapshot() *Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.session.Clone()
}

// Stats summarizes the session.
type Stats struct {
	SessionID     string
	SceneCount    int
	EventCount    int
	ActiveSceneID string
	EventTypes    map[EventType]int
	First         time.Time
	Last          time.Time
}

// Stats returns per-type counts and the event time range.
func (l *Log) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := Stats{
		SessionID:  l.session.ID,
		SceneCount: len(l.session.Scenes),
		EventTypes: make(map[EventType]int),
	}
	if active := l.session.Active(); active != nil {
		stats.ActiveSceneID = active.ID
	}
	for _, scene := range l.session.Scenes {
		for _, evt := range scene.Events {
			stats.EventCount++
			stats.EventTypes[evt.Type]++
			if stats.First.IsZero() || evt.Timestamp.Before(stats.First) {
				stats.First = evt.Timestamp
			}
			if evt.Timestamp.After(stats.Last) {
				stats.Last = evt.Timestamp
			}
		}
	}
	return stats
}

// Flush retries persistence without mutating the session.
func (l *Log) Flush(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.persist(ctx)
}

// persist saves the session through the saver. Must be called with the
// lock held. On failure the dirty flag stays set so the next mutation
// retries the same document.
func (l *Log) persist(ctx context.Context) error {
	if l.saver == nil {
		return nil
	}
	l.dirty = true
	if err := l.saver.SaveSession(ctx, l.session); err != nil {
		l.logger.Warn().Err(err).Str("session_id", l.session.ID).Msg("auto-save failed; retrying on next mutation")
		return apperrors.Wrap(apperrors.CodeStorageFailure, "save session", err)
	}
	l.dirty = false
	return nil
}
