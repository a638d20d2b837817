package zen

import (
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/zenapp/zen/internal"
	"github.com/zenapp/zen/pkg/mailer"
	"github.com/zenapp/zen/pkg/orm"
)

// WithControllers registers controllers. Each controller's Routes method
// runs once during New.
func WithControllers(ctrls ...Controller) Option {
	return internal.WithControllers(ctrls...)
}

// WithService registers a named service.
func WithService(name string, svc any) Option {
	return internal.WithService(name, svc)
}

// WithSecret sets the token signing secret (minimum 32 characters).
func WithSecret(secret string) Option {
	return internal.WithSecret(secret)
}

// WithSecurity registers security providers.
func WithSecurity(opts ...SecurityOptions) Option {
	return internal.WithSecurity(opts...)
}

// WithDatabase sets the PostgreSQL pool backing repositories and the
// database session store.
func WithDatabase(pool *pgxpool.Pool) Option {
	return internal.WithDatabase(pool)
}

// WithConnection sets a custom repository connection.
func WithConnection(conn orm.Connection) Option {
	return internal.WithConnection(conn)
}

// WithRedis sets the redis client used by redis session stores.
func WithRedis(client redis.UniversalClient) Option {
	return internal.WithRedis(client)
}

// WithMailer sets the application mailer.
func WithMailer(m *mailer.Mailer) Option {
	return internal.WithMailer(m)
}

// WithLogger sets the application logger.
func WithLogger(log *slog.Logger) Option {
	return internal.WithLogger(log)
}

// WithCookies configures the shared cookie manager.
func WithCookies(opts ...CookieOption) Option {
	return internal.WithCookies(opts...)
}

// WithErrorHandler sets a custom error handler.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithSessionCleanup sets the cron schedule for sweeping expired sessions.
func WithSessionCleanup(schedule string) Option {
	return internal.WithSessionCleanup(schedule)
}

// WithMiddleware adds router-level middleware.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return internal.WithMiddleware(mw...)
}
