// Package security implements name-keyed authentication providers. Each
// provider owns a user entity, a password hasher, a session store and a
// token carrier; several providers can coexist in one application and in
// one token.
package security

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/zenapp/zen/pkg/orm"
)

// ErrUnauthorized is returned by Authorize when the request cannot be tied
// to a live session of this provider.
var ErrUnauthorized = errors.New("security: unauthorized")

// SessionStore is the slice of the session store a provider needs. The
// session package's adapters satisfy it.
type SessionStore interface {
	// Create persists a new, empty session under the given id.
	Create(ctx context.Context, id string, data map[string]any) error
	// Remove deletes the session. Removing an unknown id is not an error.
	Remove(ctx context.Context, id string) error
	// Has reports whether a live session exists under the id.
	Has(ctx context.Context, id string) (bool, error)
}

// Auth is the outcome of a successful authorization.
type Auth struct {
	Provider  string
	SessionID string
	User      orm.Record
}

// Provider authenticates users of one entity and manages their sessions.
type Provider struct {
	opts      Options
	users     orm.Repository
	store     SessionStore
	tokens    *JWTService
	carrier   Carrier
	hasher    PasswordHasher
	responder *responder
	log       *slog.Logger
}

// NewProvider builds a provider from validated options.
func NewProvider(opts Options, users orm.Repository, store SessionStore, tokens *JWTService, log *slog.Logger) (*Provider, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if users == nil {
		return nil, fmt.Errorf("security: provider %q has no user repository", opts.Name)
	}
	if store == nil {
		return nil, fmt.Errorf("security: provider %q has no session store", opts.Name)
	}
	if tokens == nil {
		return nil, fmt.Errorf("security: provider %q has no token service", opts.Name)
	}
	hasher, err := NewHasher(opts)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Provider{
		opts:      opts,
		users:     users,
		store:     store,
		tokens:    tokens,
		carrier:   NewCarrier(opts),
		hasher:    hasher,
		responder: &responder{opts: opts},
		log:       log.With(slog.String("provider", opts.Name)),
	}, nil
}

// Name returns the provider's unique name.
func (p *Provider) Name() string { return p.opts.Name }

// Options returns a copy of the provider's validated options.
func (p *Provider) Options() Options { return p.opts }

// Login authenticates the credentials in the request body. On success it
// creates a session, issues a token that keeps other providers' entries
// intact, and responds per the configured response type. Bad credentials
// produce a failure response, not an error; only infrastructure failures
// are returned.
func (p *Provider) Login(ctx Context) error {
	body := ctx.Body()
	username, _ := body[p.opts.UsernameField].(string)
	password, _ := body[p.opts.PasswordField].(string)
	if username == "" || password == "" {
		return p.responder.LoginFailed(ctx)
	}

	reqCtx := ctx.Request().Context()
	user, err := p.users.FindOne(reqCtx, orm.Record{p.opts.UsernameField: username})
	if errors.Is(err, orm.ErrNotFound) {
		p.log.Debug("login failed, unknown user")
		return p.responder.LoginFailed(ctx)
	}
	if err != nil {
		return fmt.Errorf("security: user lookup: %w", err)
	}

	hash, _ := user[p.opts.PasswordColumn].(string)
	if err := p.hasher.Verify(password, hash); err != nil {
		p.log.Debug("login failed, password mismatch")
		return p.responder.LoginFailed(ctx)
	}

	sessionID, err := GenerateSessionID()
	if err != nil {
		return err
	}
	if err := p.store.Create(reqCtx, sessionID, map[string]any{}); err != nil {
		return fmt.Errorf("security: create session: %w", err)
	}

	entry := TokenData{
		Provider:  p.opts.Name,
		UserID:    user[p.opts.IdentifierColumn],
		SessionID: sessionID,
	}
	token, err := p.tokens.Sign(p.mergeProviders(ctx, entry), p.opts.Expiry)
	if err != nil {
		return fmt.Errorf("security: sign token: %w", err)
	}

	p.carrier.Attach(ctx.Response(), token, p.opts.Expiry)
	p.log.Debug("login succeeded")
	return p.responder.LoginSuccess(ctx, token)
}

// Logout removes this provider's session and entry from the token. Entries
// of other providers survive: the token is re-signed without this provider,
// and only cleared entirely when no entries remain.
func (p *Provider) Logout(ctx Context) error {
	raw, ok := p.carrier.Token(ctx.Request())
	if !ok {
		return p.responder.LogoutFailed(ctx)
	}
	claims, err := p.tokens.Verify(raw)
	if err != nil {
		return p.responder.LogoutFailed(ctx)
	}

	var own *TokenData
	remaining := make([]TokenData, 0, len(claims.Providers))
	for _, td := range claims.Providers {
		if td.Provider == p.opts.Name {
			td := td
			own = &td
			continue
		}
		remaining = append(remaining, td)
	}
	if own == nil {
		return p.responder.LogoutFailed(ctx)
	}

	if err := p.store.Remove(ctx.Request().Context(), own.SessionID); err != nil {
		return fmt.Errorf("security: remove session: %w", err)
	}

	if len(remaining) == 0 {
		p.carrier.Clear(ctx.Response())
	} else {
		token, err := p.tokens.Sign(remaining, p.opts.Expiry)
		if err != nil {
			return fmt.Errorf("security: sign token: %w", err)
		}
		p.carrier.Attach(ctx.Response(), token, p.opts.Expiry)
	}

	p.log.Debug("logout succeeded")
	return p.responder.LogoutSuccess(ctx)
}

// Authorize ties the request to a live session of this provider and loads
// the owning user. It fails closed: any missing, invalid or stale piece of
// the chain yields ErrUnauthorized.
func (p *Provider) Authorize(ctx context.Context, r *http.Request) (*Auth, error) {
	raw, ok := p.carrier.Token(r)
	if !ok {
		return nil, ErrUnauthorized
	}
	claims, err := p.tokens.Verify(raw)
	if err != nil {
		return nil, ErrUnauthorized
	}

	var own *TokenData
	for _, td := range claims.Providers {
		if td.Provider == p.opts.Name {
			td := td
			own = &td
			break
		}
	}
	if own == nil {
		return nil, ErrUnauthorized
	}

	alive, err := p.store.Has(ctx, own.SessionID)
	if err != nil {
		return nil, fmt.Errorf("security: session lookup: %w", err)
	}
	if !alive {
		return nil, ErrUnauthorized
	}

	user, err := p.users.FindOne(ctx, orm.Record{p.opts.IdentifierColumn: own.UserID})
	if errors.Is(err, orm.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("security: user lookup: %w", err)
	}

	return &Auth{Provider: p.opts.Name, SessionID: own.SessionID, User: user}, nil
}

// Forbidden responds to an unauthorized request per the configured response
// type.
func (p *Provider) Forbidden(ctx Context) error {
	return p.responder.Forbidden(ctx)
}

// GeneratePasswordHash hashes a plaintext password with the provider's
// configured algorithm. Intended for user creation and password changes.
func (p *Provider) GeneratePasswordHash(password string) (string, error) {
	return p.hasher.Hash(password)
}

// mergeProviders folds the new entry into the entries of a prior valid
// token, so logging in against one provider keeps the client logged in
// against the others. A prior entry of the same provider is replaced.
func (p *Provider) mergeProviders(ctx Context, entry TokenData) []TokenData {
	providers := []TokenData{}
	if raw, ok := p.carrier.Token(ctx.Request()); ok {
		if claims, err := p.tokens.Verify(raw); err == nil {
			for _, td := range claims.Providers {
				if td.Provider != entry.Provider {
					providers = append(providers, td)
				}
			}
		}
	}
	return append(providers, entry)
}

// GenerateSessionID returns a fresh 128-bit random id in hex.
func GenerateSessionID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
