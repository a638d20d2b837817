package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/zenapp/zen/pkg/security"
)

// Factory builds request-scoped sessions. It holds every registered
// security provider together with the store adapter backing it, keyed by
// the provider's unique name.
type Factory struct {
	providers map[string]*security.Provider
	adapters  map[string]StoreAdapter
	log       *slog.Logger
}

// NewFactory creates an empty session factory.
func NewFactory(log *slog.Logger) *Factory {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Factory{
		providers: make(map[string]*security.Provider),
		adapters:  make(map[string]StoreAdapter),
		log:       log,
	}
}

// Register adds a provider and its adapter. Provider names must be unique.
func (f *Factory) Register(p *security.Provider, adapter StoreAdapter) error {
	name := p.Name()
	if _, exists := f.providers[name]; exists {
		return fmt.Errorf("session: provider %q registered twice", name)
	}
	f.providers[name] = p
	f.adapters[name] = adapter
	return nil
}

// Provider returns the registered provider, or nil.
func (f *Factory) Provider(name string) *security.Provider {
	return f.providers[name]
}

// Adapter returns the adapter backing the named provider, or nil.
func (f *Factory) Adapter(name string) StoreAdapter {
	return f.adapters[name]
}

// Providers returns all registered providers keyed by name.
func (f *Factory) Providers() map[string]*security.Provider {
	return f.providers
}

// Adapters returns all registered adapters keyed by provider name.
func (f *Factory) Adapters() map[string]StoreAdapter {
	return f.adapters
}

// Build creates the session of the named provider for a request. A loaded
// auth from an earlier authorization check is reused so the token is not
// verified twice per request; pass nil when no check ran. Requests that do
// not authorize against the provider get a fresh anonymous session backed
// by the same adapter; only unknown providers and store outages produce
// errors.
func (f *Factory) Build(ctx context.Context, r *http.Request, provider string, loaded *security.Auth) (*Session, error) {
	p, ok := f.providers[provider]
	if !ok {
		return nil, fmt.Errorf("session: unknown provider %q", provider)
	}
	adapter := f.adapters[provider]

	auth := loaded
	if auth == nil || auth.Provider != provider {
		var err error
		auth, err = p.Authorize(ctx, r)
		if errors.Is(err, security.ErrUnauthorized) {
			return f.anonymous(ctx, provider, adapter)
		}
		if err != nil {
			return nil, err
		}
	}

	data, err := adapter.Load(ctx, auth.SessionID)
	if errors.Is(err, ErrSessionNotFound) {
		// The session vanished between authorization and load.
		f.log.Debug("session disappeared during build",
			slog.String("provider", provider), slog.String("session_id", auth.SessionID))
		return f.anonymous(ctx, provider, adapter)
	}
	if err != nil {
		return nil, err
	}

	return &Session{
		ID:       auth.SessionID,
		Provider: provider,
		User:     auth.User,
		Data:     NewStore(auth.SessionID, adapter, data),
	}, nil
}

// anonymous creates an adapter-backed session under a fresh id with no
// user attached, so data written by unauthenticated requests still
// persists across the response.
func (f *Factory) anonymous(ctx context.Context, provider string, adapter StoreAdapter) (*Session, error) {
	id, err := security.GenerateSessionID()
	if err != nil {
		return nil, err
	}
	if err := adapter.Create(ctx, id, map[string]any{}); err != nil {
		return nil, fmt.Errorf("session: create anonymous session: %w", err)
	}
	return &Session{
		ID:       id,
		Provider: provider,
		Data:     NewStore(id, adapter, nil),
	}, nil
}

// BuildAdapter constructs the store adapter a provider's options call for.
// The shared redis client and database querier come from the application;
// an option set that names a backend without its dependency is an error.
func BuildAdapter(opts security.Options, redisClient redis.UniversalClient, db Querier) (StoreAdapter, error) {
	switch opts.Store {
	case security.StoreRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("session: provider %q wants the redis store but no redis client is configured", opts.Name)
		}
		return NewRedisAdapter(redisClient, opts.RedisPrefix, opts.Expiry, opts.RedisKeepTTL), nil
	case security.StoreDatabase:
		if db == nil {
			return nil, fmt.Errorf("session: provider %q wants the database store but no database is configured", opts.Name)
		}
		return NewDatabaseAdapter(db, opts.DBTable, opts.Expiry), nil
	case security.StoreFile:
		return NewFileAdapter(opts.FileFolder, opts.FilePrefix, opts.Expiry), nil
	default:
		return nil, fmt.Errorf("session: provider %q has unknown store %q", opts.Name, opts.Store)
	}
}
