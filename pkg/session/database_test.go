package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

// fakeQuerier records the statements the adapter issues.
type fakeQuerier struct {
	execSQL  []string
	execArgs [][]any
	row      pgx.Row
}

func (q *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.execSQL = append(q.execSQL, sql)
	q.execArgs = append(q.execArgs, args)
	return pgconn.NewCommandTag("OK"), nil
}

func (q *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.execSQL = append(q.execSQL, sql)
	q.execArgs = append(q.execArgs, args)
	return q.row
}

func TestDatabaseAdapterCreate(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{}
	a := NewDatabaseAdapter(q, "zen_sessions", time.Hour)

	require.NoError(t, a.Create(context.Background(), "abc", map[string]any{"user": "alice"}))

	require.Len(t, q.execSQL, 1)
	sql := q.execSQL[0]
	assert.Contains(t, sql, `INSERT INTO "zen_sessions"`)
	// A conflicting row is only reset when it has already expired.
	assert.Contains(t, sql, "ON CONFLICT (id) DO UPDATE")
	assert.Contains(t, sql, `"zen_sessions".expired_at <= $3`)

	args := q.execArgs[0]
	require.Len(t, args, 4)
	assert.Equal(t, "abc", args[0])
	created := args[2].(time.Time)
	expired := args[3].(time.Time)
	assert.Equal(t, time.Hour, expired.Sub(created))
}

func TestDatabaseAdapterLoad(t *testing.T) {
	t.Parallel()

	payload, _ := json.Marshal(map[string]any{"user": "alice"})
	q := &fakeQuerier{row: fakeRow{scan: func(dest ...any) error {
		*(dest[0].(*[]byte)) = payload
		return nil
	}}}
	a := NewDatabaseAdapter(q, "", time.Hour)

	data, err := a.Load(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "alice", data["user"])

	// Expired rows must be invisible to reads.
	assert.Contains(t, q.execSQL[0], "expired_at > $2")
}

func TestDatabaseAdapterLoadMissing(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{row: fakeRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}}
	a := NewDatabaseAdapter(q, "", time.Hour)

	_, err := a.Load(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDatabaseAdapterPersist(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{}
	a := NewDatabaseAdapter(q, "", time.Hour)

	require.NoError(t, a.Persist(context.Background(), "abc", map[string]any{"user": "alice"}))

	sql := q.execSQL[0]
	assert.Contains(t, sql, "UPDATE")
	assert.Contains(t, sql, "SET data = $2")
	assert.Contains(t, sql, "expired_at > $3")
	assert.NotContains(t, sql, "SET expired_at", "persist must not touch the session lifetime")
}

func TestDatabaseAdapterHas(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{row: fakeRow{scan: func(dest ...any) error {
		*(dest[0].(*bool)) = true
		return nil
	}}}
	a := NewDatabaseAdapter(q, "", time.Hour)

	ok, err := a.Has(context.Background(), "abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, q.execSQL[0], "expired_at > $2")
}

func TestDatabaseAdapterSweep(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{}
	a := NewDatabaseAdapter(q, "", time.Hour)

	require.NoError(t, a.Sweep(context.Background()))
	assert.Contains(t, q.execSQL[0], "DELETE")
	assert.Contains(t, q.execSQL[0], "expired_at <= $1")
}

func TestDatabaseAdapterDefaultTable(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{}
	a := NewDatabaseAdapter(q, "", time.Hour)
	require.NoError(t, a.Remove(context.Background(), "abc"))
	assert.Contains(t, q.execSQL[0], `"zen_sessions"`)
}
