package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx the database adapter needs. *pgxpool.Pool
// satisfies it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DatabaseAdapter keeps sessions in a table with an expired_at column. The
// table never expires rows on its own; every read filters on expired_at
// and a periodic Sweep deletes the leftovers.
type DatabaseAdapter struct {
	q     Querier
	table string
	ttl   time.Duration
}

// NewDatabaseAdapter creates a database-backed session adapter. The table
// needs columns id (primary key), data, created_at and expired_at.
func NewDatabaseAdapter(q Querier, table string, ttl time.Duration) *DatabaseAdapter {
	if table == "" {
		table = "zen_sessions"
	}
	return &DatabaseAdapter{q: q, table: table, ttl: ttl}
}

func (a *DatabaseAdapter) ident() string {
	return pgx.Identifier{a.table}.Sanitize()
}

// Create inserts a new session row. A leftover expired row under the same
// id is reset; a live row is left untouched.
func (a *DatabaseAdapter) Create(ctx context.Context, id string, data map[string]any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	now := time.Now().UTC()
	sql := fmt.Sprintf(`INSERT INTO %s (id, data, created_at, expired_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET data = $2, created_at = $3, expired_at = $4
		WHERE %s.expired_at <= $3`, a.ident(), a.ident())
	if _, err := a.q.Exec(ctx, sql, id, payload, now, now.Add(a.ttl)); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Load returns the data of a row whose expiry lies in the future.
func (a *DatabaseAdapter) Load(ctx context.Context, id string) (map[string]any, error) {
	sql := fmt.Sprintf("SELECT data FROM %s WHERE id = $1 AND expired_at > $2", a.ident())
	var payload []byte
	err := a.q.QueryRow(ctx, sql, id, time.Now().UTC()).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	var data map[string]any
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("session: decode: %w", err)
	}
	return data, nil
}

// Persist replaces the data of a live row. expired_at stays put, so the
// session's lifetime is unchanged.
func (a *DatabaseAdapter) Persist(ctx context.Context, id string, data map[string]any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	sql := fmt.Sprintf("UPDATE %s SET data = $2 WHERE id = $1 AND expired_at > $3", a.ident())
	if _, err := a.q.Exec(ctx, sql, id, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Remove deletes the session row.
func (a *DatabaseAdapter) Remove(ctx context.Context, id string) error {
	sql := fmt.Sprintf("DELETE FROM %s WHERE id = $1", a.ident())
	if _, err := a.q.Exec(ctx, sql, id); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Has reports whether a live row exists.
func (a *DatabaseAdapter) Has(ctx context.Context, id string) (bool, error) {
	sql := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1 AND expired_at > $2)", a.ident())
	var exists bool
	if err := a.q.QueryRow(ctx, sql, id, time.Now().UTC()).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return exists, nil
}

// Sweep deletes all expired rows.
func (a *DatabaseAdapter) Sweep(ctx context.Context) error {
	sql := fmt.Sprintf("DELETE FROM %s WHERE expired_at <= $1", a.ident())
	if _, err := a.q.Exec(ctx, sql, time.Now().UTC()); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
