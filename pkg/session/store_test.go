package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingAdapter struct {
	persisted map[string]map[string]any
	failWith  error
}

func newRecordingAdapter() *recordingAdapter {
	return &recordingAdapter{persisted: make(map[string]map[string]any)}
}

func (a *recordingAdapter) Create(ctx context.Context, id string, data map[string]any) error {
	return nil
}

func (a *recordingAdapter) Load(ctx context.Context, id string) (map[string]any, error) {
	data, ok := a.persisted[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return data, nil
}

func (a *recordingAdapter) Persist(ctx context.Context, id string, data map[string]any) error {
	if a.failWith != nil {
		return a.failWith
	}
	a.persisted[id] = data
	return nil
}

func (a *recordingAdapter) Remove(ctx context.Context, id string) error {
	delete(a.persisted, id)
	return nil
}

func (a *recordingAdapter) Has(ctx context.Context, id string) (bool, error) {
	_, ok := a.persisted[id]
	return ok, nil
}

func TestStoreGetSet(t *testing.T) {
	t.Parallel()

	s := NewStore("sid", nil, nil)
	assert.Nil(t, s.Get("missing"))
	assert.False(t, s.Modified())

	s.Set("user", "alice")
	assert.Equal(t, "alice", s.Get("user"))
	assert.True(t, s.Modified())
}

func TestStoreDotPaths(t *testing.T) {
	t.Parallel()

	s := NewStore("sid", nil, nil)
	s.Set("cart.items.0", "book")
	s.Set("cart.total", 42)

	assert.Equal(t, "book", s.Get("cart.items.0"))
	assert.Equal(t, 42, s.Get("cart.total"))
	assert.Equal(t, map[string]any{"0": "book"}, s.Get("cart.items"))
	assert.Nil(t, s.Get("cart.missing"))
	assert.Nil(t, s.Get("cart.total.deeper"))
}

func TestStoreSetReplacesNonMapIntermediate(t *testing.T) {
	t.Parallel()

	s := NewStore("sid", nil, nil)
	s.Set("a", "scalar")
	s.Set("a.b", 1)
	assert.Equal(t, 1, s.Get("a.b"))
}

func TestStoreRemove(t *testing.T) {
	t.Parallel()

	s := NewStore("sid", nil, map[string]any{
		"cart": map[string]any{"total": 42, "items": map[string]any{"0": "book"}},
	})

	// Removing nothing leaves the store clean.
	s.Remove("cart.missing")
	s.Remove("not.even.close")
	assert.False(t, s.Modified())

	s.Remove("cart.items.0")
	assert.True(t, s.Modified())
	assert.Nil(t, s.Get("cart.items.0"))
	assert.Equal(t, 42, s.Get("cart.total"))
}

func TestStoreSaveOnlyWhenDirty(t *testing.T) {
	t.Parallel()

	adapter := newRecordingAdapter()
	s := NewStore("sid", adapter, nil)

	require.NoError(t, s.Save(context.Background()))
	assert.Empty(t, adapter.persisted, "clean store must not persist")

	s.Set("user", "alice")
	require.NoError(t, s.Save(context.Background()))
	assert.Equal(t, "alice", adapter.persisted["sid"]["user"])
	assert.False(t, s.Modified())

	// A second save without changes is again a no-op.
	delete(adapter.persisted, "sid")
	require.NoError(t, s.Save(context.Background()))
	assert.Empty(t, adapter.persisted)
}

func TestStoreSaveDetached(t *testing.T) {
	t.Parallel()

	// Anonymous sessions carry a store with no adapter or id behind it.
	s := NewStore("", nil, nil)
	s.Set("user", "alice")
	require.NoError(t, s.Save(context.Background()))
	assert.True(t, s.Modified(), "detached store keeps its dirty flag")
}

func TestStoreSaveError(t *testing.T) {
	t.Parallel()

	adapter := newRecordingAdapter()
	adapter.failWith = errors.New("disk full")
	s := NewStore("sid", adapter, nil)
	s.Set("user", "alice")

	err := s.Save(context.Background())
	require.Error(t, err)
	assert.True(t, s.Modified(), "failed save keeps the dirty flag")
}
