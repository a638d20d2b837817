package internal

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zenapp/zen/pkg/cookie"
	"github.com/zenapp/zen/pkg/security"
	"github.com/zenapp/zen/pkg/session"
)

// Context provides request and response access to controller methods. It
// also implements context.Context by delegating to the request context.
type Context interface {
	context.Context

	// Request returns the underlying *http.Request.
	Request() *http.Request

	// Response returns the response writer.
	Response() http.ResponseWriter

	// Param returns the URL parameter value by name, or "".
	Param(name string) string

	// Params returns all matched URL parameters.
	Params() map[string]string

	// Query returns the query parameter value by name, or "".
	Query(name string) string

	// QueryValues returns all query parameters.
	QueryValues() url.Values

	// Body returns the parsed request body. JSON bodies and form posts
	// both end up as a generic map; an unparsable or absent body yields
	// an empty map.
	Body() map[string]any

	// Header returns a request header value.
	Header(name string) string

	// SetHeader sets a response header.
	SetHeader(name, value string)

	// Status overrides the status code used when the method's return
	// value is serialized.
	Status(code int)

	// JSON writes a JSON response with the given status code.
	JSON(code int, v any) error

	// String writes a plain text response.
	String(code int, s string) error

	// HTML writes an HTML response.
	HTML(code int, html string) error

	// NoContent writes a response with no body.
	NoContent(code int) error

	// Redirect redirects to the given URL.
	Redirect(code int, url string) error

	// Error creates an HTTPError without writing anything. Return it from
	// the method to trigger the error handler.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// Cookies returns the request-bound cookie jar.
	Cookies() *cookie.Jar

	// Session returns the session of the named security provider,
	// building it on first access. Dirty sessions are persisted
	// automatically before the response is written.
	Session(provider string) (*session.Session, error)

	// Logger returns the request logger.
	Logger() *slog.Logger

	// Written reports whether the response has been committed.
	Written() bool
}

type requestContext struct {
	w        *ResponseWriter
	r        *http.Request
	log      *slog.Logger
	cookies  *cookie.Manager
	sessions *session.Factory

	body       map[string]any
	bodyParsed bool

	// auth holds the route-level authorization outcome so session
	// building does not verify the token a second time.
	auth  *security.Auth
	built map[string]*session.Session

	status    int
	statusSet bool
}

func newRequestContext(w *ResponseWriter, r *http.Request, log *slog.Logger, cookies *cookie.Manager, sessions *session.Factory) *requestContext {
	return &requestContext{
		w:        w,
		r:        r,
		log:      log,
		cookies:  cookies,
		sessions: sessions,
		built:    make(map[string]*session.Session),
	}
}

func (c *requestContext) Deadline() (time.Time, bool) { return c.r.Context().Deadline() }
func (c *requestContext) Done() <-chan struct{}       { return c.r.Context().Done() }
func (c *requestContext) Err() error                  { return c.r.Context().Err() }
func (c *requestContext) Value(key any) any           { return c.r.Context().Value(key) }

func (c *requestContext) Request() *http.Request {
	return c.r
}

func (c *requestContext) Response() http.ResponseWriter {
	return c.w
}

func (c *requestContext) Param(name string) string {
	return chi.URLParam(c.r, name)
}

func (c *requestContext) Params() map[string]string {
	params := make(map[string]string)
	if rctx := chi.RouteContext(c.r.Context()); rctx != nil {
		for i, key := range rctx.URLParams.Keys {
			params[key] = rctx.URLParams.Values[i]
		}
	}
	return params
}

func (c *requestContext) Query(name string) string {
	return c.r.URL.Query().Get(name)
}

func (c *requestContext) QueryValues() url.Values {
	return c.r.URL.Query()
}

func (c *requestContext) Body() map[string]any {
	if !c.bodyParsed {
		c.body = parseBody(c.r, c.log)
		c.bodyParsed = true
	}
	return c.body
}

func (c *requestContext) Header(name string) string {
	return c.r.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.w.Header().Set(name, value)
}

func (c *requestContext) Status(code int) {
	c.status = code
	c.statusSet = true
}

func (c *requestContext) JSON(code int, v any) error {
	c.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.w.WriteHeader(code)
	return json.NewEncoder(c.w).Encode(v)
}

func (c *requestContext) String(code int, s string) error {
	c.w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.w.WriteHeader(code)
	_, err := c.w.Write([]byte(s))
	return err
}

func (c *requestContext) HTML(code int, html string) error {
	c.w.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.w.WriteHeader(code)
	_, err := c.w.Write([]byte(html))
	return err
}

func (c *requestContext) NoContent(code int) error {
	c.w.WriteHeader(code)
	return nil
}

func (c *requestContext) Redirect(code int, url string) error {
	http.Redirect(c.w, c.r, url, code)
	return nil
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

func (c *requestContext) Cookies() *cookie.Jar {
	return cookie.NewJar(c.cookies, c.w, c.r)
}

func (c *requestContext) Session(provider string) (*session.Session, error) {
	if sess, ok := c.built[provider]; ok {
		return sess, nil
	}
	if c.sessions == nil {
		return nil, ErrInternal("sessions are not configured")
	}
	sess, err := c.sessions.Build(c.r.Context(), c.r, provider, c.auth)
	if err != nil {
		return nil, err
	}
	c.built[provider] = sess

	// Persist dirty session data right before the response commits.
	c.w.OnBeforeWrite(func() {
		if err := sess.Data.Save(c.r.Context()); err != nil {
			c.log.Error("session save failed",
				slog.String("provider", provider), slog.Any("error", err))
		}
	})
	return sess, nil
}

func (c *requestContext) Logger() *slog.Logger {
	return c.log
}

func (c *requestContext) Written() bool {
	return c.w.Written()
}

// resultStatus picks the status for serialized return values: an explicit
// Status call wins, POSTs default to 201, everything else to 200.
func (c *requestContext) resultStatus() int {
	if c.statusSet {
		return c.status
	}
	if c.r.Method == http.MethodPost {
		return http.StatusCreated
	}
	return http.StatusOK
}
