package zen

import (
	"github.com/zenapp/zen/internal"
	"github.com/zenapp/zen/pkg/cookie"
	"github.com/zenapp/zen/pkg/logger"
	"github.com/zenapp/zen/pkg/metadata"
	"github.com/zenapp/zen/pkg/orm"
	"github.com/zenapp/zen/pkg/security"
	"github.com/zenapp/zen/pkg/session"
	"github.com/zenapp/zen/pkg/validator"
)

// Type aliases - public API
type (
	// App wires controllers, security providers and shared dependencies
	// into one HTTP application.
	App = internal.App

	// Context provides request and response access to controller methods.
	Context = internal.Context

	// Controller is implemented by types that declare routes.
	Controller = metadata.Controller

	// Binder records route and parameter-binding facts for a controller.
	Binder = metadata.Binder

	// Param declares one injectable method parameter.
	Param = metadata.Param

	// Option configures the application.
	Option = internal.Option

	// ErrorHandler renders errors returned from controller methods.
	ErrorHandler = internal.ErrorHandler

	// ErrorFactory builds HTTP errors inside controller methods.
	ErrorFactory = internal.ErrorFactory

	// HTTPError carries everything needed to render a failed request.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// HTMLRenderer is implemented by return values that render to HTML.
	HTMLRenderer = internal.HTMLRenderer

	// Services is the application's named service registry.
	Services = internal.Services

	// SecurityOptions configures one security provider.
	SecurityOptions = security.Options

	// SecurityProvider authenticates users and manages their sessions.
	SecurityProvider = security.Provider

	// Session is the per-request session of a security provider.
	Session = session.Session

	// SessionStore is a session's mutable data bag.
	SessionStore = session.Store

	// StoreAdapter persists session data.
	StoreAdapter = session.StoreAdapter

	// Repository is the minimal persistence contract per entity.
	Repository = orm.Repository

	// Connection hands out repository handles by entity name.
	Connection = orm.Connection

	// Record is a generic row representation keyed by column name.
	Record = orm.Record

	// Schema maps body field names to validation rules.
	Schema = validator.Schema

	// Rule describes the constraints on a single body field.
	Rule = validator.Rule

	// ContextExtractor extracts a slog attribute from context.
	ContextExtractor = logger.ContextExtractor

	// CookieOption configures the cookie manager.
	CookieOption = cookie.Option
)

// New creates a new application with the given options. The App is
// immutable after creation.
//
// Example:
//
//	app, err := zen.New(
//	    zen.WithLogger(log),
//	    zen.WithDatabase(pool),
//	    zen.WithRedis(client),
//	    zen.WithSecret(cfg.Secret),
//	    zen.WithSecurity(zen.SecurityOptions{
//	        Name:       "user",
//	        UserEntity: "users",
//	    }),
//	    zen.WithControllers(controllers.NewTodo()),
//	)
//	if err != nil {
//	    log.Error("startup failed", slog.Any("error", err))
//	    os.Exit(1)
//	}
//	err = app.Run(":8080")
func New(opts ...Option) (*App, error) {
	return internal.New(opts...)
}
