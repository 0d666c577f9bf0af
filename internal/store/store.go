// Package store keeps session chat history.
package store

import (
	"context"

	"github.com/dmytrop/nbu-agent/internal/domain"
)

// Store is the session history store. Sessions hold an ordered turn
// sequence capped at a fixed number of most-recent turns.
type Store interface {
	// GetOrCreate returns sessionID unchanged when it names an existing
	// session, otherwise mints a fresh id with an empty session.
	GetOrCreate(ctx context.Context, sessionID string) (string, error)

	// Exists reports whether the session id is known.
	Exists(ctx context.Context, sessionID string) (bool, error)

	// History returns the session's turns in order. Unknown ids yield an
	// empty sequence, not an error.
	History(ctx context.Context, sessionID string) ([]domain.Turn, error)

	// Append adds a user turn then an assistant turn, creating the session
	// if absent, then evicts the oldest turns down to the retention cap.
	// Every call adds two turns; callers invoke it once per completed
	// exchange.
	Append(ctx context.Context, sessionID, userText, assistantText string) error

	// Delete removes the session and reports whether it existed.
	Delete(ctx context.Context, sessionID string) (bool, error)

	// List summarizes every live session.
	List(ctx context.Context) ([]domain.SessionSummary, error)

	Close() error
}
