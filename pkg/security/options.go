package security

import (
	"errors"
	"fmt"
	"time"
)

// Algorithm selects the password hashing scheme of a provider.
type Algorithm string

const (
	// AlgorithmBcrypt hashes passwords with bcrypt.
	AlgorithmBcrypt Algorithm = "bcrypt"
	// AlgorithmArgon2id hashes passwords with argon2id.
	AlgorithmArgon2id Algorithm = "argon2id"
)

// TokenStrategy selects where a provider's token travels.
type TokenStrategy string

const (
	// StrategyCookie carries the token in an HTTP cookie.
	StrategyCookie TokenStrategy = "cookie"
	// StrategyHeader carries the token in the Authorization header.
	StrategyHeader TokenStrategy = "header"
	// StrategyHybrid accepts both; the header wins when both are present.
	StrategyHybrid TokenStrategy = "hybrid"
)

// ResponseType selects how login and logout outcomes are reported.
type ResponseType string

const (
	// ResponseJSON reports outcomes as JSON bodies.
	ResponseJSON ResponseType = "json"
	// ResponseRedirect reports outcomes as redirects to configured URLs.
	ResponseRedirect ResponseType = "redirect"
)

// StoreKind selects the session store backing a provider.
type StoreKind string

const (
	// StoreRedis keeps sessions in redis.
	StoreRedis StoreKind = "redis"
	// StoreDatabase keeps sessions in a database table.
	StoreDatabase StoreKind = "database"
	// StoreFile keeps sessions as JSON files on disk.
	StoreFile StoreKind = "file"
)

// DefaultExpiry is applied when no session expiry is configured.
const DefaultExpiry = 7 * 24 * time.Hour

// DefaultCookieKey is the cookie name used when none is configured.
const DefaultCookieKey = "zenapp_jwt"

// Argon2Params tunes the argon2id hasher.
type Argon2Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Params returns the parameters used when none are configured.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Memory:      64 * 1024,
		Iterations:  1,
		Parallelism: 4,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Options configures one security provider.
type Options struct {
	// Name identifies the provider. It is mandatory and must be unique
	// across the application.
	Name string

	// Algorithm selects the password hasher. Defaults to bcrypt.
	Algorithm Algorithm
	// BcryptCost overrides the bcrypt cost. 0 uses the library default.
	BcryptCost int
	// Argon2 overrides the argon2id parameters.
	Argon2 Argon2Params

	// UserEntity is the entity holding the provider's user records.
	UserEntity string
	// IdentifierColumn is the primary key column. Defaults to "id".
	IdentifierColumn string
	// PasswordColumn is the hashed password column. Defaults to "password".
	PasswordColumn string
	// UsernameField names both the login body field and the lookup column.
	// Defaults to "username".
	UsernameField string
	// PasswordField names the login body field. Defaults to "password".
	PasswordField string

	// Strategy selects the token carrier. Defaults to cookie.
	Strategy TokenStrategy
	// CookieKey overrides the token cookie name.
	CookieKey string
	// CookieSecure marks the token cookie as Secure.
	CookieSecure bool

	// Store selects the session store backend. Defaults to redis.
	Store StoreKind
	// RedisPrefix prefixes session keys in redis.
	RedisPrefix string
	// RedisKeepTTL keeps the remaining TTL when a session is rewritten.
	RedisKeepTTL bool
	// DBTable is the session table name. Defaults to "zen_sessions".
	DBTable string
	// FileFolder is the directory holding session files.
	FileFolder string
	// FilePrefix prefixes session file names.
	FilePrefix string

	// Expiry is the session lifetime. Values <= 0 use DefaultExpiry.
	Expiry time.Duration

	// Response selects the login/logout response style. Defaults to json.
	Response ResponseType
	// LoginSuccessURL, LoginFailedURL, LogoutURL and ForbiddenURL are the
	// redirect targets when Response is redirect.
	LoginSuccessURL string
	LoginFailedURL  string
	LogoutURL       string
	ForbiddenURL    string

	// LoginRoute and LogoutRoute are where the provider's endpoints are
	// mounted. Default to "/login" and "/logout".
	LoginRoute  string
	LogoutRoute string
}

func (o *Options) applyDefaults() {
	if o.Algorithm == "" {
		o.Algorithm = AlgorithmBcrypt
	}
	if o.Argon2 == (Argon2Params{}) {
		o.Argon2 = DefaultArgon2Params()
	}
	if o.IdentifierColumn == "" {
		o.IdentifierColumn = "id"
	}
	if o.PasswordColumn == "" {
		o.PasswordColumn = "password"
	}
	if o.UsernameField == "" {
		o.UsernameField = "username"
	}
	if o.PasswordField == "" {
		o.PasswordField = "password"
	}
	if o.Strategy == "" {
		o.Strategy = StrategyCookie
	}
	if o.CookieKey == "" {
		o.CookieKey = DefaultCookieKey
	}
	if o.Store == "" {
		o.Store = StoreRedis
	}
	if o.DBTable == "" {
		o.DBTable = "zen_sessions"
	}
	if o.Expiry <= 0 {
		o.Expiry = DefaultExpiry
	}
	if o.Response == "" {
		o.Response = ResponseJSON
	}
	if o.LoginRoute == "" {
		o.LoginRoute = "/login"
	}
	if o.LogoutRoute == "" {
		o.LogoutRoute = "/logout"
	}
}

// Validate checks the options and fills in defaults.
func (o *Options) Validate() error {
	if o.Name == "" {
		return errors.New("security: provider name is required")
	}
	if o.UserEntity == "" {
		return fmt.Errorf("security: provider %q needs a user entity", o.Name)
	}
	o.applyDefaults()

	switch o.Algorithm {
	case AlgorithmBcrypt, AlgorithmArgon2id:
	default:
		return fmt.Errorf("security: provider %q has unknown algorithm %q", o.Name, o.Algorithm)
	}
	switch o.Strategy {
	case StrategyCookie, StrategyHeader, StrategyHybrid:
	default:
		return fmt.Errorf("security: provider %q has unknown token strategy %q", o.Name, o.Strategy)
	}
	switch o.Store {
	case StoreRedis, StoreDatabase, StoreFile:
	default:
		return fmt.Errorf("security: provider %q has unknown store %q", o.Name, o.Store)
	}
	if o.Store == StoreFile && o.FileFolder == "" {
		return fmt.Errorf("security: provider %q uses the file store but has no folder", o.Name)
	}
	if o.Response == ResponseRedirect {
		if o.LoginSuccessURL == "" || o.LoginFailedURL == "" {
			return fmt.Errorf("security: provider %q uses redirect responses but is missing login URLs", o.Name)
		}
	}
	return nil
}
