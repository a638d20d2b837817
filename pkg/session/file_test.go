package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileAdapterRoundtrip(t *testing.T) {
	t.Parallel()

	a := NewFileAdapter(t.TempDir(), "sess_", time.Hour)
	ctx := context.Background()

	require.NoError(t, a.Create(ctx, "abc", map[string]any{"user": "alice"}))

	data, err := a.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "alice", data["user"])

	ok, err := a.Has(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, a.Remove(ctx, "abc"))
	_, err = a.Load(ctx, "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	ok, err = a.Has(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileAdapterCreateKeepsLiveSession(t *testing.T) {
	t.Parallel()

	a := NewFileAdapter(t.TempDir(), "", time.Hour)
	ctx := context.Background()

	require.NoError(t, a.Create(ctx, "abc", map[string]any{"v": "first"}))
	require.NoError(t, a.Create(ctx, "abc", map[string]any{"v": "second"}))

	data, err := a.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "first", data["v"])
}

func TestFileAdapterCreateReplacesExpired(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := NewFileAdapter(dir, "", time.Hour)
	ctx := context.Background()

	writeSessionFile(t, dir, "abc", map[string]any{"v": "old"}, time.Now().Add(-time.Minute))
	require.NoError(t, a.Create(ctx, "abc", map[string]any{"v": "new"}))

	data, err := a.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "new", data["v"])
}

func TestFileAdapterExpiredRemovedOnAccess(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := NewFileAdapter(dir, "", time.Hour)
	ctx := context.Background()

	writeSessionFile(t, dir, "abc", map[string]any{"v": 1}, time.Now().Add(-time.Minute))

	_, err := a.Load(ctx, "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, statErr := os.Stat(filepath.Join(dir, "abc.json"))
	assert.True(t, os.IsNotExist(statErr), "expired file must be deleted on load")

	writeSessionFile(t, dir, "def", map[string]any{"v": 1}, time.Now().Add(-time.Minute))
	err = a.Persist(ctx, "def", map[string]any{"v": 2})
	assert.ErrorIs(t, err, ErrSessionNotFound)

	writeSessionFile(t, dir, "ghi", map[string]any{"v": 1}, time.Now().Add(-time.Minute))
	ok, err := a.Has(ctx, "ghi")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileAdapterPersistKeepsExpiry(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := NewFileAdapter(dir, "", time.Hour)
	ctx := context.Background()

	require.NoError(t, a.Create(ctx, "abc", map[string]any{}))
	before := readSessionFile(t, dir, "abc")

	require.NoError(t, a.Persist(ctx, "abc", map[string]any{"user": "alice"}))
	after := readSessionFile(t, dir, "abc")

	assert.Equal(t, before.ExpiredAt, after.ExpiredAt)
	assert.Equal(t, "alice", after.Data["user"])
}

func TestFileAdapterPersistUnknownSession(t *testing.T) {
	t.Parallel()

	a := NewFileAdapter(t.TempDir(), "", time.Hour)
	err := a.Persist(context.Background(), "nope", map[string]any{})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestFileAdapterRemoveUnknownIsNoError(t *testing.T) {
	t.Parallel()

	a := NewFileAdapter(t.TempDir(), "", time.Hour)
	assert.NoError(t, a.Remove(context.Background(), "nope"))
}

func TestFileAdapterSweep(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := NewFileAdapter(dir, "", time.Hour)
	ctx := context.Background()

	require.NoError(t, a.Create(ctx, "live", map[string]any{}))
	writeSessionFile(t, dir, "dead1", map[string]any{}, time.Now().Add(-time.Minute))
	writeSessionFile(t, dir, "dead2", map[string]any{}, time.Now().Add(-time.Hour))
	// Unrelated files are left alone.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0o600))

	require.NoError(t, a.Sweep(ctx))

	assert.FileExists(t, filepath.Join(dir, "live.json"))
	assert.NoFileExists(t, filepath.Join(dir, "dead1.json"))
	assert.NoFileExists(t, filepath.Join(dir, "dead2.json"))
	assert.FileExists(t, filepath.Join(dir, "notes.txt"))
}

func TestFileAdapterSweepSkipsOtherPrefixes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := NewFileAdapter(dir, "app_", time.Hour)

	writeSessionFile(t, dir, "other", map[string]any{}, time.Now().Add(-time.Minute))
	require.NoError(t, a.Sweep(context.Background()))
	assert.FileExists(t, filepath.Join(dir, "other.json"))
}

func TestFileAdapterSweepMissingFolder(t *testing.T) {
	t.Parallel()

	a := NewFileAdapter(filepath.Join(t.TempDir(), "missing"), "", time.Hour)
	assert.NoError(t, a.Sweep(context.Background()))
}

func TestFileAdapterSanitizesID(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := NewFileAdapter(dir, "", time.Hour)
	ctx := context.Background()

	require.NoError(t, a.Create(ctx, "../escape", map[string]any{"v": 1}))
	assert.FileExists(t, filepath.Join(dir, ".._escape.json"))
}

func writeSessionFile(t *testing.T, dir, id string, data map[string]any, expiredAt time.Time) {
	t.Helper()
	raw, err := json.Marshal(fileEnvelope{
		SessionID: id,
		Data:      data,
		CreatedAt: time.Now().Add(-time.Hour),
		ExpiredAt: expiredAt,
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, id+".json"), raw, 0o600))
}

func readSessionFile(t *testing.T, dir, id string) fileEnvelope {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(dir, id+".json"))
	require.NoError(t, err)
	var env fileEnvelope
	require.NoError(t, json.Unmarshal(raw, &env))
	return env
}
