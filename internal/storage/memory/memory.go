// Package memory provides an in-memory session store for tests and
// ephemeral play.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/hearthglen/chronicler/internal/chronicle"
	"github.com/hearthglen/chronicler/internal/storage"
)

// Store keeps serialized session documents in a map. Documents are stored
// in codec form, not as live pointers, so loads return independent copies
// exactly like a durable store would.
type Store struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{docs: make(map[string][]byte)}
}

// SaveSession serializes and stores the session, replacing any previous
// document under the same id.
func (s *Store) SaveSession(_ context.Context, session *chronicle.Session) error {
	raw, err := chronicle.MarshalSession(session)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[session.ID] = raw
	return nil
}

// LoadSession recalls a stored session, or storage.ErrNotFound.
func (s *Store) LoadSession(_ context.Context, id string) (*chronicle.Session, error) {
	s.mu.RLock()
	raw, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, storage.ErrNotFound
	}
	return chronicle.UnmarshalSession(raw)
}

// ListSessionIDs returns stored session ids in ascending order.
func (s *Store) ListSessionIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.docs))
	for id := range s.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
