package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// fileEnvelope is the on-disk shape of one session.
type fileEnvelope struct {
	SessionID string         `json:"sessionId"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"createdAt"`
	ExpiredAt time.Time      `json:"expiredAt"`
}

// FileAdapter keeps each session as a JSON file. Meant for development and
// single-node setups; expired files are deleted lazily on access and in
// bulk by Sweep.
type FileAdapter struct {
	folder string
	prefix string
	ttl    time.Duration
}

// NewFileAdapter creates a file-backed session adapter. The folder is
// created on demand.
func NewFileAdapter(folder, prefix string, ttl time.Duration) *FileAdapter {
	return &FileAdapter{folder: folder, prefix: prefix, ttl: ttl}
}

func (a *FileAdapter) path(id string) string {
	return filepath.Join(a.folder, a.prefix+SanitizeFilename(id)+".json")
}

// Create writes a fresh session file. An expired leftover under the same
// id is overwritten; a live one is kept as is.
func (a *FileAdapter) Create(ctx context.Context, id string, data map[string]any) error {
	if env, err := a.read(id); err == nil && env.ExpiredAt.After(time.Now()) {
		return nil
	}
	if err := os.MkdirAll(a.folder, 0o700); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	now := time.Now().UTC()
	return a.write(id, fileEnvelope{
		SessionID: id,
		Data:      data,
		CreatedAt: now,
		ExpiredAt: now.Add(a.ttl),
	})
}

// Load returns the data of a live session file. Expired files are removed
// on the spot.
func (a *FileAdapter) Load(ctx context.Context, id string) (map[string]any, error) {
	env, err := a.read(id)
	if err != nil {
		return nil, err
	}
	if !env.ExpiredAt.After(time.Now()) {
		_ = os.Remove(a.path(id))
		return nil, ErrSessionNotFound
	}
	return env.Data, nil
}

// Persist replaces the data of a live session file, keeping its expiry.
func (a *FileAdapter) Persist(ctx context.Context, id string, data map[string]any) error {
	env, err := a.read(id)
	if err != nil {
		return err
	}
	if !env.ExpiredAt.After(time.Now()) {
		_ = os.Remove(a.path(id))
		return ErrSessionNotFound
	}
	env.Data = data
	return a.write(id, env)
}

// Remove deletes the session file.
func (a *FileAdapter) Remove(ctx context.Context, id string) error {
	if err := os.Remove(a.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Has reports whether a live session file exists.
func (a *FileAdapter) Has(ctx context.Context, id string) (bool, error) {
	env, err := a.read(id)
	if err == ErrSessionNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return env.ExpiredAt.After(time.Now()), nil
}

// Sweep deletes all expired session files in the folder.
func (a *FileAdapter) Sweep(ctx context.Context) error {
	entries, err := os.ReadDir(a.folder)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	now := time.Now()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if a.prefix != "" && !strings.HasPrefix(entry.Name(), a.prefix) {
			continue
		}
		path := filepath.Join(a.folder, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var env fileEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}
		if !env.ExpiredAt.After(now) {
			_ = os.Remove(path)
		}
	}
	return nil
}

func (a *FileAdapter) read(id string) (fileEnvelope, error) {
	raw, err := os.ReadFile(a.path(id))
	if os.IsNotExist(err) {
		return fileEnvelope{}, ErrSessionNotFound
	}
	if err != nil {
		return fileEnvelope{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	var env fileEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fileEnvelope{}, fmt.Errorf("session: decode: %w", err)
	}
	return env, nil
}

func (a *FileAdapter) write(id string, env fileEnvelope) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	if err := os.WriteFile(a.path(id), raw, 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
