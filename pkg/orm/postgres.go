package orm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx a postgres connection needs.
// *pgxpool.Pool satisfies it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Postgres is a Connection backed by a pgx querier. Each entity maps to a
// table of the same name; records are read column-by-column into generic
// maps. It implements just enough of the repository contract for the
// framework's needs; it is not an ORM.
type Postgres struct {
	q      Querier
	custom map[string]Repository
}

// NewPostgres creates a postgres-backed connection.
func NewPostgres(q Querier) *Postgres {
	return &Postgres{q: q, custom: make(map[string]Repository)}
}

// Repository returns the table-backed repository for an entity.
func (p *Postgres) Repository(entity string) Repository {
	return &table{q: p.q, name: entity}
}

// TreeRepository returns the repository used for hierarchical entities.
// The storage layout is the caller's concern; at this boundary it behaves
// like a standard repository.
func (p *Postgres) TreeRepository(entity string) Repository {
	return &table{q: p.q, name: entity}
}

// CustomRepository returns a repository registered via RegisterCustom,
// or nil if the name is unknown.
func (p *Postgres) CustomRepository(name string) Repository {
	return p.custom[name]
}

// RegisterCustom registers a hand-written repository under a name.
func (p *Postgres) RegisterCustom(name string, repo Repository) {
	p.custom[name] = repo
}

type table struct {
	q    Querier
	name string
}

func (t *table) FindOne(ctx context.Context, filter Record) (Record, error) {
	where, args := buildWhere(filter, 1)
	sql := fmt.Sprintf("SELECT * FROM %s%s LIMIT 1", quoteIdent(t.name), where)

	rows, err := t.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return scanRecord(rows)
}

func (t *table) Find(ctx context.Context) ([]Record, error) {
	sql := fmt.Sprintf("SELECT * FROM %s", quoteIdent(t.name))

	rows, err := t.q.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (t *table) Save(ctx context.Context, entity Record) error {
	cols := sortedKeys(entity)
	placeholders := make([]string, len(cols))
	quoted := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		quoted[i] = quoteIdent(col)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = entity[col]
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(t.name), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
	_, err := t.q.Exec(ctx, sql, args...)
	return err
}

func (t *table) Update(ctx context.Context, filter, patch Record) error {
	cols := sortedKeys(patch)
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+len(filter))
	for i, col := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", quoteIdent(col), i+1)
		args = append(args, patch[col])
	}

	where, whereArgs := buildWhere(filter, len(cols)+1)
	args = append(args, whereArgs...)

	sql := fmt.Sprintf("UPDATE %s SET %s%s", quoteIdent(t.name), strings.Join(sets, ", "), where)
	_, err := t.q.Exec(ctx, sql, args...)
	return err
}

func (t *table) Delete(ctx context.Context, filter Record) error {
	where, args := buildWhere(filter, 1)
	sql := fmt.Sprintf("DELETE FROM %s%s", quoteIdent(t.name), where)
	_, err := t.q.Exec(ctx, sql, args...)
	return err
}

func scanRecord(rows pgx.Rows) (Record, error) {
	values, err := rows.Values()
	if err != nil {
		return nil, err
	}
	fields := rows.FieldDescriptions()
	rec := make(Record, len(fields))
	for i, fd := range fields {
		rec[fd.Name] = values[i]
	}
	return rec, nil
}

// buildWhere renders an AND-joined WHERE clause with deterministic column
// order. startIdx is the first placeholder number to use.
func buildWhere(filter Record, startIdx int) (string, []any) {
	if len(filter) == 0 {
		return "", nil
	}
	cols := sortedKeys(filter)
	conds := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		conds[i] = fmt.Sprintf("%s = $%d", quoteIdent(col), startIdx+i)
		args[i] = filter[col]
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func sortedKeys(rec Record) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}
