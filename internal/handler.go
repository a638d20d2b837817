package internal

import (
	"errors"
	"log/slog"
	"net/http"
	"reflect"

	"github.com/zenapp/zen/pkg/cookie"
	"github.com/zenapp/zen/pkg/metadata"
	"github.com/zenapp/zen/pkg/security"
	"github.com/zenapp/zen/pkg/session"
	"github.com/zenapp/zen/pkg/validator"
)

// ErrorHandler renders errors returned from controller methods.
type ErrorHandler func(Context, error)

// HTMLRenderer is implemented by return values that render to HTML. The
// request handler sends the rendered markup with a text/html content type.
type HTMLRenderer interface {
	RenderHTML() (string, error)
}

// RequestHandler turns registered routes into http handlers. Each request
// runs the same pipeline: authorize, validate, inject, invoke, serialize.
// Once a response has been written by any stage the remaining stages that
// would write are skipped.
type RequestHandler struct {
	store        *metadata.Store
	injector     *Injector
	sessions     *session.Factory
	cookies      *cookie.Manager
	log          *slog.Logger
	errorHandler ErrorHandler
}

// NewRequestHandler creates the request pipeline.
func NewRequestHandler(store *metadata.Store, injector *Injector, sessions *session.Factory, cookies *cookie.Manager, log *slog.Logger, errorHandler ErrorHandler) *RequestHandler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if errorHandler == nil {
		errorHandler = DefaultErrorHandler(log)
	}
	if cookies == nil {
		cookies = cookie.New()
	}
	return &RequestHandler{
		store:        store,
		injector:     injector,
		sessions:     sessions,
		cookies:      cookies,
		log:          log,
		errorHandler: errorHandler,
	}
}

// Handle builds the http handler for one route.
func (h *RequestHandler) Handle(route metadata.Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rw := NewResponseWriter(w)
		ctx := newRequestContext(rw, r, h.log, h.cookies, h.sessions)

		if !h.authorize(ctx, route) {
			return
		}
		if !h.validate(ctx, route) {
			return
		}

		args, err := h.injector.Resolve(ctx, route.Handler, route.Target, route.Member)
		if err != nil {
			h.errorHandler(ctx, err)
			return
		}

		value, err := splitResults(route.Handler.Call(args))
		if err != nil {
			if !rw.Written() {
				h.errorHandler(ctx, err)
			}
			return
		}

		// The method may have written the response itself; serializing the
		// return value on top would corrupt it.
		if rw.Written() {
			return
		}
		h.serialize(ctx, value)
	}
}

// authorize enforces the route's declared security provider. Requests the
// provider cannot tie to a live session get the provider's forbidden
// response; the method never runs.
func (h *RequestHandler) authorize(ctx *requestContext, route metadata.Route) bool {
	v, ok := h.store.Get(metadata.KindAuthProvider, route.Target, route.Member)
	if !ok {
		return true
	}
	name := v.(string)

	if h.sessions == nil {
		h.errorHandler(ctx, ErrInternal("security is not configured"))
		return false
	}
	p := h.sessions.Provider(name)
	if p == nil {
		h.errorHandler(ctx, ErrInternal("unknown security provider "+name))
		return false
	}

	auth, err := p.Authorize(ctx.Request().Context(), ctx.Request())
	if err != nil {
		if !errors.Is(err, security.ErrUnauthorized) {
			h.log.Error("authorization check failed", slog.Any("error", err))
		}
		if err := p.Forbidden(ctx); err != nil {
			h.log.Error("forbidden response failed", slog.Any("error", err))
		}
		return false
	}
	// Session injection reuses the resolved auth instead of verifying the
	// token again.
	ctx.auth = auth
	return true
}

// validate runs the route's declared schema against the parsed body and
// short-circuits with a 422 listing every violation.
func (h *RequestHandler) validate(ctx *requestContext, route metadata.Route) bool {
	v, ok := h.store.Get(metadata.KindValidation, route.Target, route.Member)
	if !ok {
		return true
	}
	schema := v.(validator.Schema)

	if errs := schema.Validate(ctx.Body()); len(errs) > 0 {
		h.errorHandler(ctx, ErrUnprocessable("Bad Data", WithData(map[string]any{"errors": errs})))
		return false
	}
	return true
}

// serialize writes the method's return value: HTML renderers as text/html,
// strings as plain text, objects and arrays as JSON. Anything else, and a
// method that neither writes nor returns a value, is a bug surfaced as a
// 500.
func (h *RequestHandler) serialize(ctx *requestContext, value any) {
	if value == nil {
		h.errorHandler(ctx, ErrInternal("no response produced"))
		return
	}

	status := ctx.resultStatus()
	var err error
	switch v := value.(type) {
	case HTMLRenderer:
		var html string
		if html, err = v.RenderHTML(); err == nil {
			err = ctx.HTML(status, html)
		}
	case string:
		err = ctx.String(status, v)
	case []byte:
		ctx.w.WriteHeader(status)
		_, err = ctx.w.Write(v)
	default:
		if !jsonShaped(value) {
			h.errorHandler(ctx, ErrInternal("unsupported return value"))
			return
		}
		err = ctx.JSON(status, v)
	}
	if err != nil {
		h.log.Error("response write failed", slog.Any("error", err))
	}
}

// jsonShaped reports whether a value has an object or array shape.
func jsonShaped(value any) bool {
	v := reflect.ValueOf(value)
	for v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Map, reflect.Struct, reflect.Slice, reflect.Array:
		return true
	default:
		return false
	}
}

// splitResults separates a method's return values into the result value
// and the error. Supported shapes: none, (T), (error), (T, error).
func splitResults(results []reflect.Value) (any, error) {
	var value any
	var err error
	for _, res := range results {
		if res.Type().Implements(reflect.TypeFor[error]()) {
			if !res.IsNil() {
				err = res.Interface().(error)
			}
			continue
		}
		if res.Kind() == reflect.Pointer || res.Kind() == reflect.Interface ||
			res.Kind() == reflect.Map || res.Kind() == reflect.Slice {
			if res.IsNil() {
				continue
			}
		}
		value = res.Interface()
	}
	return value, err
}

// DefaultErrorHandler renders errors as JSON. Internal errors are logged
// with their underlying cause and rendered without it.
func DefaultErrorHandler(log *slog.Logger) ErrorHandler {
	return func(ctx Context, err error) {
		httpErr := AsHTTPError(err)
		if httpErr == nil {
			httpErr = ErrInternal("internal server error", WithError(err))
		}
		if httpErr.Code >= http.StatusInternalServerError {
			log.Error("request failed",
				slog.Int("status", httpErr.Code),
				slog.String("message", httpErr.Message),
				slog.Any("error", httpErr.Err))
		}

		if ctx.Written() {
			return
		}
		payload := map[string]any{"error": httpErr.Message}
		if httpErr.Data != nil {
			payload["data"] = httpErr.Data
		}
		if writeErr := ctx.JSON(httpErr.Code, payload); writeErr != nil {
			log.Error("error response failed", slog.Any("error", writeErr))
		}
	}
}
