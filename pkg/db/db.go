// Package db opens the application's PostgreSQL pool and applies
// migrations.
package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

var (
	// ErrParseConfig is returned for a connection string pgx cannot parse.
	ErrParseConfig = errors.New("db: failed to parse connection string")
	// ErrConnect is returned when no connection could be established.
	ErrConnect = errors.New("db: failed to establish connection")
	// ErrMigrate is returned when applying migrations fails.
	ErrMigrate = errors.New("db: failed to apply migrations")
)

// Option configures the connection.
type Option func(*options)

type options struct {
	maxConns      int32
	retryAttempts int
	retryInterval time.Duration
}

// WithMaxConns sets the pool's maximum connection count. Default: 10.
func WithMaxConns(n int32) Option {
	return func(o *options) { o.maxConns = n }
}

// WithRetry configures connection retries with linear backoff.
// Default: 3 attempts, 2 second base interval.
func WithRetry(attempts int, interval time.Duration) Option {
	return func(o *options) {
		o.retryAttempts = attempts
		o.retryInterval = interval
	}
}

// Open creates a connection pool and verifies it with a ping.
func Open(ctx context.Context, connString string, opts ...Option) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, errors.Join(ErrParseConfig, err)
	}

	o := &options{maxConns: 10, retryAttempts: 3, retryInterval: 2 * time.Second}
	for _, opt := range opts {
		opt(o)
	}
	cfg.MaxConns = o.maxConns

	attempts := max(o.retryAttempts, 1)
	for i := range attempts {
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnect, ctx.Err())
		case <-time.After(time.Duration(i+1) * o.retryInterval):
		}
	}
	return nil, ErrConnect
}

// Migrate applies all pending goose migrations from the embedded
// filesystem. The pool's connections are shared with goose through the
// stdlib bridge, so the bridge is not closed here.
func Migrate(ctx context.Context, pool *pgxpool.Pool, migrations embed.FS, log *slog.Logger) error {
	sqlDB := stdlib.OpenDBFromPool(pool)

	goose.SetBaseFS(migrations)
	goose.SetLogger(&gooseLogger{log})
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrMigrate, err)
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return errors.Join(ErrMigrate, err)
	}
	return nil
}

type gooseLogger struct {
	log *slog.Logger
}

func (g *gooseLogger) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...))
}

func (g *gooseLogger) Fatalf(format string, args ...any) {
	// Errors propagate through goose's return value; no os.Exit here.
	g.log.Error(fmt.Sprintf(format, args...))
}
