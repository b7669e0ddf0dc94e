// Package chronicle is the append-only record of a play-through.
//
// A Session owns an ordered sequence of Scenes; a Scene owns an ordered
// sequence of Events. Events are immutable once appended and Scenes never
// reactivate once ended, so the chronicle is trivially replayable: append
// order, not timestamps, is the authoritative order.
//
// The Log type provides the mutating operations (StartScene, EndScene,
// LogEvent) under a single-writer lock and auto-persists the session after
// every mutation. Persistence failures never lose in-memory state; the next
// mutation retries the save.
package chronicle
