// Package storage defines the persistence sink for session documents.
//
// Stores treat sessions as opaque serialized records: the chronicle codec
// owns the document format, stores own durability. Implementations live in
// the memory and sqlite subpackages.
package storage

import (
	"context"

	"github.com/hearthglen/chronicler/internal/chronicle"
	apperrors "github.com/hearthglen/chronicler/internal/platform/errors"
)

// ErrNotFound indicates a requested session record is missing. Callers use
// this to differentiate "no such session" from transport or corruption
// failures.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "session not found")

// SessionStore persists and recalls whole session documents.
type SessionStore interface {
	chronicle.SessionSaver

	// LoadSession recalls a session by id, or ErrNotFound.
	LoadSession(ctx context.Context, id string) (*chronicle.Session, error)

	// ListSessionIDs returns every stored session id in ascending order.
	ListSessionIDs(ctx context.Context) ([]string, error)
}
