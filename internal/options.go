package internal

import (
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/zenapp/zen/pkg/cookie"
	"github.com/zenapp/zen/pkg/mailer"
	"github.com/zenapp/zen/pkg/metadata"
	"github.com/zenapp/zen/pkg/orm"
	"github.com/zenapp/zen/pkg/security"
)

// Option configures the application.
type Option func(*App)

// WithControllers registers controllers. Each controller's Routes method
// runs once during New.
func WithControllers(ctrls ...metadata.Controller) Option {
	return func(a *App) {
		a.controllers = append(a.controllers, ctrls...)
	}
}

// WithService registers a named service. Controllers implementing
// ServicesConsumer receive the full registry.
func WithService(name string, svc any) Option {
	return func(a *App) {
		a.services[name] = svc
	}
}

// WithSecret sets the token signing secret. Required when security
// providers are registered; must be at least 32 characters.
func WithSecret(secret string) Option {
	return func(a *App) {
		a.secret = secret
	}
}

// WithSecurity registers security providers by their options.
func WithSecurity(opts ...security.Options) Option {
	return func(a *App) {
		a.securityOpts = append(a.securityOpts, opts...)
	}
}

// WithDatabase sets the PostgreSQL pool. It backs both the repository
// layer and the database session store.
func WithDatabase(pool *pgxpool.Pool) Option {
	return func(a *App) {
		a.pool = pool
	}
}

// WithConnection sets a custom repository connection, overriding the one
// derived from the pool. Useful for tests and non-PostgreSQL data layers.
func WithConnection(conn orm.Connection) Option {
	return func(a *App) {
		a.conn = conn
	}
}

// WithRedis sets the redis client used by redis session stores.
func WithRedis(client redis.UniversalClient) Option {
	return func(a *App) {
		a.redis = client
	}
}

// WithMailer sets the application mailer.
func WithMailer(m *mailer.Mailer) Option {
	return func(a *App) {
		a.mail = m
	}
}

// WithLogger sets the application logger. Default: discard.
func WithLogger(log *slog.Logger) Option {
	return func(a *App) {
		if log != nil {
			a.log = log
		}
	}
}

// WithCookies configures the cookie manager shared by all cookie jars.
func WithCookies(opts ...cookie.Option) Option {
	return func(a *App) {
		a.cookies = cookie.New(opts...)
	}
}

// WithErrorHandler sets a custom error handler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithSessionCleanup sets the cron schedule for sweeping expired sessions
// out of stores that cannot expire them on their own.
// Default: "@every 1h".
func WithSessionCleanup(schedule string) Option {
	return func(a *App) {
		a.sweepCron = schedule
	}
}

// WithMiddleware adds router-level middleware, applied in order.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}
