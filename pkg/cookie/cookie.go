// Package cookie wraps plain and HMAC-signed cookie handling behind a
// small manager. Controllers receive a request-bound Jar so they never
// touch the raw writer for cookie work.
package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrNotFound is returned when the request has no such cookie.
	ErrNotFound = errors.New("cookie: not found")
	// ErrNoSecret is returned by signed operations without a secret.
	ErrNoSecret = errors.New("cookie: secret required")
	// ErrBadSig is returned when a signed cookie fails verification.
	ErrBadSig = errors.New("cookie: invalid signature")
)

// Manager holds cookie defaults shared across the application.
type Manager struct {
	secret   []byte
	domain   string
	path     string
	secure   bool
	httpOnly bool
	sameSite http.SameSite
}

// Option configures the Manager.
type Option func(*Manager)

// New creates a cookie manager. Defaults: path "/", HttpOnly, SameSite Lax.
func New(opts ...Option) *Manager {
	m := &Manager{
		path:     "/",
		httpOnly: true,
		sameSite: http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithSecret enables signed cookies. Secrets under 32 bytes are ignored.
func WithSecret(secret string) Option {
	return func(m *Manager) {
		if len(secret) >= 32 {
			m.secret = []byte(secret)
		}
	}
}

// WithDomain sets the cookie domain.
func WithDomain(domain string) Option {
	return func(m *Manager) { m.domain = domain }
}

// WithPath sets the cookie path.
func WithPath(path string) Option {
	return func(m *Manager) { m.path = path }
}

// WithSecure sets the Secure flag.
func WithSecure(secure bool) Option {
	return func(m *Manager) { m.secure = secure }
}

// WithSameSite sets the SameSite attribute.
func WithSameSite(ss http.SameSite) Option {
	return func(m *Manager) { m.sameSite = ss }
}

// Get returns a plain cookie value.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Set writes a plain cookie.
func (m *Manager) Set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, m.build(name, value, maxAge))
}

// Delete removes a cookie.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, m.build(name, "", -1))
}

// SetSigned writes a cookie with an HMAC signature appended.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, maxAge int) error {
	if m.secret == nil {
		return ErrNoSecret
	}
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(value))
	signed := base64.RawURLEncoding.EncodeToString([]byte(value)) +
		"." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	http.SetCookie(w, m.build(name, signed, maxAge))
	return nil
}

// GetSigned returns a signed cookie value after verifying its signature.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	if m.secret == nil {
		return "", ErrNoSecret
	}
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	encoded, encodedSig, found := strings.Cut(raw, ".")
	if !found {
		return "", ErrBadSig
	}
	value, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrBadSig
	}
	sig, err := base64.RawURLEncoding.DecodeString(encodedSig)
	if err != nil {
		return "", ErrBadSig
	}
	mac := hmac.New(sha256.New, m.secret)
	mac.Write(value)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return "", ErrBadSig
	}
	return string(value), nil
}

func (m *Manager) build(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Domain:   m.domain,
		Path:     m.path,
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: m.httpOnly,
		SameSite: m.sameSite,
	}
}

// Jar binds a manager to one request/response pair. It is what controller
// methods receive when they declare a cookies parameter.
type Jar struct {
	m *Manager
	r *http.Request
	w http.ResponseWriter
}

// NewJar binds the manager to a request and response.
func NewJar(m *Manager, w http.ResponseWriter, r *http.Request) *Jar {
	return &Jar{m: m, r: r, w: w}
}

// Get returns a plain cookie value from the request.
func (j *Jar) Get(name string) (string, error) {
	return j.m.Get(j.r, name)
}

// Set writes a plain cookie to the response.
func (j *Jar) Set(name, value string, maxAge int) {
	j.m.Set(j.w, name, value, maxAge)
}

// Delete removes a cookie.
func (j *Jar) Delete(name string) {
	j.m.Delete(j.w, name)
}

// GetSigned returns a verified signed cookie value.
func (j *Jar) GetSigned(name string) (string, error) {
	return j.m.GetSigned(j.r, name)
}

// SetSigned writes a signed cookie.
func (j *Jar) SetSigned(name, value string, maxAge int) error {
	return j.m.SetSigned(j.w, name, value, maxAge)
}
