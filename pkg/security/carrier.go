package security

import (
	"net/http"
	"strings"
	"time"
)

// Carrier moves the signed token between client and server. Implementations
// must treat a missing or malformed location as "no token", never as an
// error.
type Carrier interface {
	// Token extracts the token from the request. ok is false when the
	// request carries none.
	Token(r *http.Request) (token string, ok bool)

	// Attach writes the token to the response so the client sends it back
	// on subsequent requests. Carriers that rely on the client storing the
	// token itself may do nothing here.
	Attach(w http.ResponseWriter, token string, expiry time.Duration)

	// Clear removes any server-managed token state from the client.
	Clear(w http.ResponseWriter)
}

// NewCarrier returns the carrier for the configured token strategy.
func NewCarrier(opts Options) Carrier {
	cookie := &cookieCarrier{key: opts.CookieKey, secure: opts.CookieSecure}
	switch opts.Strategy {
	case StrategyHeader:
		return headerCarrier{}
	case StrategyHybrid:
		return &hybridCarrier{cookie: cookie}
	default:
		return cookie
	}
}

type cookieCarrier struct {
	key    string
	secure bool
}

func (c *cookieCarrier) Token(r *http.Request) (string, bool) {
	ck, err := r.Cookie(c.key)
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}

func (c *cookieCarrier) Attach(w http.ResponseWriter, token string, expiry time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.key,
		Value:    token,
		Path:     "/",
		MaxAge:   int(expiry / time.Second),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *cookieCarrier) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.key,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

type headerCarrier struct{}

func (headerCarrier) Token(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(auth, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

// Attach is a no-op: the client receives the token in the login response
// body and is responsible for sending it back.
func (headerCarrier) Attach(http.ResponseWriter, string, time.Duration) {}

func (headerCarrier) Clear(http.ResponseWriter) {}

// hybridCarrier accepts tokens from either location. The Authorization
// header wins when both are present, so an explicitly sent token is never
// shadowed by a stale cookie.
type hybridCarrier struct {
	cookie *cookieCarrier
}

func (h *hybridCarrier) Token(r *http.Request) (string, bool) {
	if token, ok := (headerCarrier{}).Token(r); ok {
		return token, true
	}
	return h.cookie.Token(r)
}

// Attach writes the token through both transports.
func (h *hybridCarrier) Attach(w http.ResponseWriter, token string, expiry time.Duration) {
	headerCarrier{}.Attach(w, token, expiry)
	h.cookie.Attach(w, token, expiry)
}

func (h *hybridCarrier) Clear(w http.ResponseWriter) {
	headerCarrier{}.Clear(w)
	h.cookie.Clear(w)
}
