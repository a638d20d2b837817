package session

import "context"

// Store is the mutable data bag of one session. Reads and writes address
// values by dot path ("cart.items"). Writes only mark the store dirty;
// nothing reaches the backend until Save, and Save is a no-op for a store
// that was never modified.
type Store struct {
	id       string
	adapter  StoreAdapter
	data     map[string]any
	modified bool
}

// NewStore wraps loaded session data. A nil adapter or empty id yields a
// detached store whose Save never touches a backend.
func NewStore(id string, adapter StoreAdapter, data map[string]any) *Store {
	if data == nil {
		data = make(map[string]any)
	}
	return &Store{id: id, adapter: adapter, data: data}
}

// Get returns the value at the dot path, or nil.
func (s *Store) Get(path string) any {
	return pathGet(s.data, path)
}

// Set writes the value at the dot path and marks the store dirty.
func (s *Store) Set(path string, value any) {
	pathSet(s.data, path, value)
	s.modified = true
}

// Remove deletes the value at the dot path. The store is only marked dirty
// when something was actually removed.
func (s *Store) Remove(path string) {
	if pathUnset(s.data, path) {
		s.modified = true
	}
}

// Modified reports whether the store has unsaved changes.
func (s *Store) Modified() bool {
	return s.modified
}

// Data returns the underlying map. Mutating it directly bypasses dirty
// tracking.
func (s *Store) Data() map[string]any {
	return s.data
}

// Save writes the data to the backend if the store is dirty. Unmodified
// and detached stores are a no-op.
func (s *Store) Save(ctx context.Context) error {
	if !s.modified || s.adapter == nil || s.id == "" {
		return nil
	}
	if err := s.adapter.Persist(ctx, s.id, s.data); err != nil {
		return err
	}
	s.modified = false
	return nil
}
