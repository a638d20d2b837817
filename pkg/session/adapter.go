// Package session provides persistent per-user session state. A session's
// data lives behind a StoreAdapter; redis, database and file backends ship
// with the framework and any other backend can be plugged in by satisfying
// the same interface.
package session

import (
	"context"
	"errors"
)

var (
	// ErrSessionNotFound is returned when no live session exists for an id.
	ErrSessionNotFound = errors.New("session: not found")

	// ErrStoreUnavailable wraps backend failures so callers can tell a
	// missing session from a store outage.
	ErrStoreUnavailable = errors.New("session: store unavailable")
)

// StoreAdapter persists session data under string ids. Expiry is the
// adapter's concern: Load and Has must never surface expired sessions.
type StoreAdapter interface {
	// Create persists a new session. Creating over an expired session with
	// the same id resets it; creating over a live one is idempotent.
	Create(ctx context.Context, id string, data map[string]any) error

	// Load returns the data of a live session, or ErrSessionNotFound.
	Load(ctx context.Context, id string) (map[string]any, error)

	// Persist replaces the data of a live session without extending its
	// lifetime, unless the adapter is configured otherwise.
	Persist(ctx context.Context, id string, data map[string]any) error

	// Remove deletes the session. Unknown ids are not an error.
	Remove(ctx context.Context, id string) error

	// Has reports whether a live session exists under the id.
	Has(ctx context.Context, id string) (bool, error)
}

// Sweepable is implemented by adapters whose backends do not expire
// sessions on their own and need periodic cleanup.
type Sweepable interface {
	// Sweep deletes all expired sessions.
	Sweep(ctx context.Context) error
}
