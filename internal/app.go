package internal

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/zenapp/zen/pkg/cookie"
	"github.com/zenapp/zen/pkg/logger"
	"github.com/zenapp/zen/pkg/mailer"
	"github.com/zenapp/zen/pkg/metadata"
	"github.com/zenapp/zen/pkg/orm"
	"github.com/zenapp/zen/pkg/security"
	"github.com/zenapp/zen/pkg/session"
)

// App wires controllers, security providers and shared dependencies into
// one HTTP application. It is immutable after New.
type App struct {
	router       chi.Router
	store        *metadata.Store
	sessions     *session.Factory
	handler      *RequestHandler
	sweeper      *session.Sweeper
	log          *slog.Logger
	conn         orm.Connection
	pool         *pgxpool.Pool
	redis        redis.UniversalClient
	mail         *mailer.Mailer
	cookies      *cookie.Manager
	errorHandler ErrorHandler
	services     Services
	controllers  []metadata.Controller
	securityOpts []security.Options
	middlewares  []func(http.Handler) http.Handler
	secret       string
	sweepCron    string
}

// New builds the application. Registration order is fixed: shared
// dependencies are handed to consumers first, then security providers are
// built, then every controller declares its routes into the metadata
// store, and finally the router is assembled.
func New(opts ...Option) (*App, error) {
	a := &App{
		store:    metadata.NewStore(),
		log:      logger.NewNope(),
		cookies:  cookie.New(),
		services: make(Services),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.pool != nil && a.conn == nil {
		a.conn = orm.NewPostgres(a.pool)
	}

	if err := a.buildSecurity(); err != nil {
		return nil, err
	}
	a.injectConsumers()

	var routes []metadata.Route
	seen := make(map[string]bool)
	for _, ctrl := range a.controllers {
		key := metadata.ControllerKey(ctrl)
		if seen[key] {
			return nil, fmt.Errorf("zen: controller %q registered twice", key)
		}
		seen[key] = true

		b := metadata.NewBinder(a.store, key)
		ctrl.Routes(b)
		routes = append(routes, b.Table()...)
	}

	injector := NewInjector(a.store, a.conn, a.sessions, a.mail, a.log)
	a.handler = NewRequestHandler(a.store, injector, a.sessions, a.cookies, a.log, a.errorHandler)

	mux := NewRouter(a.middlewares...)
	mux.NotFound(NotFoundHandler(a.log))
	MountRoutes(mux, a.handler, routes)
	if a.sessions != nil {
		MountSecurity(mux, a.handler, a.sessions.Providers())
	}
	a.router = mux

	a.buildSweeper()
	return a, nil
}

// buildSecurity turns the registered security option sets into providers
// with their session stores, all sharing one token service.
func (a *App) buildSecurity() error {
	if len(a.securityOpts) == 0 {
		return nil
	}

	tokens, err := security.NewJWTService(a.secret)
	if err != nil {
		return err
	}
	a.sessions = session.NewFactory(a.log)

	var dbq session.Querier
	if a.pool != nil {
		dbq = a.pool
	}

	for _, opts := range a.securityOpts {
		if err := opts.Validate(); err != nil {
			return err
		}
		if a.conn == nil {
			return fmt.Errorf("zen: security provider %q needs a database connection", opts.Name)
		}

		adapter, err := session.BuildAdapter(opts, a.redis, dbq)
		if err != nil {
			return err
		}
		provider, err := security.NewProvider(opts, a.conn.Repository(opts.UserEntity), adapter, tokens, a.log)
		if err != nil {
			return err
		}
		if err := a.sessions.Register(provider, adapter); err != nil {
			return err
		}
	}
	return nil
}

// injectConsumers hands shared dependencies to controllers and services
// that ask for them through the consumer interfaces.
func (a *App) injectConsumers() {
	targets := make([]any, 0, len(a.controllers)+len(a.services))
	for _, ctrl := range a.controllers {
		targets = append(targets, ctrl)
	}
	for _, svc := range a.services {
		targets = append(targets, svc)
	}

	for _, t := range targets {
		if c, ok := t.(ConnectionConsumer); ok && a.conn != nil {
			c.SetConnection(a.conn)
		}
		if c, ok := t.(RedisConsumer); ok && a.redis != nil {
			c.SetRedis(a.redis)
		}
		if c, ok := t.(MailerConsumer); ok && a.mail != nil {
			c.SetMailer(a.mail)
		}
		if c, ok := t.(LoggerConsumer); ok {
			c.SetLogger(a.log)
		}
		if c, ok := t.(ServicesConsumer); ok {
			c.SetServices(a.services)
		}
	}
}

// buildSweeper schedules cleanup for the session stores that need it.
func (a *App) buildSweeper() {
	if a.sessions == nil {
		return
	}
	var targets []session.Sweepable
	for _, adapter := range a.sessions.Adapters() {
		if s, ok := adapter.(session.Sweepable); ok {
			targets = append(targets, s)
		}
	}
	if len(targets) > 0 {
		a.sweeper = session.NewSweeper(a.sweepCron, a.log, targets...)
	}
}

// Router returns the assembled router.
func (a *App) Router() chi.Router {
	return a.router
}

// ServeHTTP makes the app an http.Handler, mainly for tests.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Sessions returns the session factory, nil when security is not
// configured.
func (a *App) Sessions() *session.Factory {
	return a.sessions
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.log
}
