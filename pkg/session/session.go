package session

import (
	"context"

	"github.com/zenapp/zen/pkg/orm"
)

// Session is what controller methods receive for a declared provider. An
// unauthenticated request still gets a session under a fresh id; its User
// is nil and IsAuth reports false, but its data persists like any other.
type Session struct {
	// ID is the session id.
	ID string
	// Provider is the security provider the session belongs to.
	Provider string
	// User is the authenticated user record, nil when anonymous.
	User orm.Record
	// Data is the session's persistent data bag.
	Data *Store
}

// IsAuth reports whether the session belongs to an authenticated user.
func (s *Session) IsAuth() bool {
	return s != nil && s.User != nil && s.ID != ""
}

// Destroy removes the session from its backend. Anonymous sessions are a
// no-op.
func (s *Session) Destroy(ctx context.Context) error {
	if !s.IsAuth() || s.Data == nil || s.Data.adapter == nil {
		return nil
	}
	return s.Data.adapter.Remove(ctx, s.ID)
}
