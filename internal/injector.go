package internal

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/redis/go-redis/v9"

	"github.com/zenapp/zen/pkg/mailer"
	"github.com/zenapp/zen/pkg/metadata"
	"github.com/zenapp/zen/pkg/orm"
	"github.com/zenapp/zen/pkg/session"
)

// ErrorFactory builds HTTP errors inside controller methods that declared
// an errors parameter.
type ErrorFactory func(code int, message string, opts ...HTTPErrorOption) *HTTPError

// Services is the application's named service registry.
type Services map[string]any

// Consumer interfaces. Controllers and services implementing one of these
// receive the shared dependency once, at registration time.
type (
	// ConnectionConsumer receives the database connection.
	ConnectionConsumer interface {
		SetConnection(conn orm.Connection)
	}

	// RedisConsumer receives the redis client.
	RedisConsumer interface {
		SetRedis(client redis.UniversalClient)
	}

	// MailerConsumer receives the application mailer.
	MailerConsumer interface {
		SetMailer(m *mailer.Mailer)
	}

	// LoggerConsumer receives the application logger.
	LoggerConsumer interface {
		SetLogger(log *slog.Logger)
	}

	// ServicesConsumer receives the named service registry.
	ServicesConsumer interface {
		SetServices(services Services)
	}
)

// Injector resolves declared parameter slots into the argument list of a
// controller method call. Slots are resolved in declared index order; a
// slot that cannot be resolved, or whose value does not fit the parameter
// type, leaves the parameter at its zero value rather than failing the
// request.
type Injector struct {
	store    *metadata.Store
	conn     orm.Connection
	sessions *session.Factory
	mail     *mailer.Mailer
	log      *slog.Logger
}

// NewInjector creates an injector over the metadata store. conn and mail
// may be nil when the application runs without them.
func NewInjector(store *metadata.Store, conn orm.Connection, sessions *session.Factory, mail *mailer.Mailer, log *slog.Logger) *Injector {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Injector{store: store, conn: conn, sessions: sessions, mail: mail, log: log}
}

// Resolve builds the arguments for one method call.
func (in *Injector) Resolve(ctx *requestContext, handler reflect.Value, target, member string) ([]reflect.Value, error) {
	ft := handler.Type()
	args := make([]reflect.Value, ft.NumIn())
	for i := range args {
		args[i] = reflect.Zero(ft.In(i))
	}

	for _, slot := range in.store.Params(target, member) {
		if slot.Index < 0 || slot.Index >= ft.NumIn() {
			in.log.Warn("parameter index out of range",
				slog.String("target", target), slog.String("member", member), slog.Int("index", slot.Index))
			continue
		}

		value, err := in.resolve(ctx, slot)
		if err != nil {
			return nil, err
		}
		if value == nil {
			continue
		}

		v := reflect.ValueOf(value)
		if !v.Type().AssignableTo(ft.In(slot.Index)) {
			in.log.Warn("parameter type mismatch",
				slog.String("target", target), slog.String("member", member), slog.Int("index", slot.Index),
				slog.String("have", v.Type().String()), slog.String("want", ft.In(slot.Index).String()))
			continue
		}
		args[slot.Index] = v
	}
	return args, nil
}

// resolve produces the value of one slot. A nil value with nil error means
// the slot has nothing to offer and is skipped; errors are infrastructure
// failures that abort the request.
func (in *Injector) resolve(ctx *requestContext, slot metadata.ParamSlot) (any, error) {
	switch slot.Source {
	case metadata.SourceBody:
		return ctx.Body(), nil
	case metadata.SourceQuery:
		return ctx.QueryValues(), nil
	case metadata.SourceParams:
		return ctx.Params(), nil
	case metadata.SourceCookie:
		return ctx.Cookies(), nil
	case metadata.SourceRequest:
		return ctx.Request(), nil
	case metadata.SourceResponse:
		return ctx.Response(), nil
	case metadata.SourceError:
		return ErrorFactory(NewHTTPError), nil
	case metadata.SourceContext:
		return ctx, nil
	case metadata.SourceSession:
		sess, err := ctx.Session(slot.Name)
		if err != nil {
			return nil, err
		}
		return sess, nil
	case metadata.SourceSecurityProvider:
		if in.sessions == nil {
			return nil, nil
		}
		if p := in.sessions.Provider(slot.Name); p != nil {
			return p, nil
		}
		return nil, nil
	case metadata.SourceRepository:
		return in.repository(slot), nil
	case metadata.SourceEmail:
		if in.mail == nil {
			return nil, nil
		}
		return in.mail, nil
	default:
		return nil, fmt.Errorf("internal: unknown parameter source %d", slot.Source)
	}
}

func (in *Injector) repository(slot metadata.ParamSlot) any {
	if in.conn == nil {
		return nil
	}
	var repo orm.Repository
	switch slot.RepoKind {
	case metadata.RepoTree:
		repo = in.conn.TreeRepository(slot.Entity)
	case metadata.RepoCustom:
		repo = in.conn.CustomRepository(slot.Entity)
	default:
		repo = in.conn.Repository(slot.Entity)
	}
	if repo == nil {
		return nil
	}
	return repo
}
