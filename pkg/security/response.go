package security

import "net/http"

// Context is the slice of the request context the security subsystem needs.
// The framework's request context satisfies it structurally.
type Context interface {
	Request() *http.Request
	Response() http.ResponseWriter
	Body() map[string]any
	JSON(code int, v any) error
	Redirect(code int, url string) error
}

// responder turns provider outcomes into HTTP responses, either as JSON
// bodies or as redirects to the configured URLs.
type responder struct {
	opts Options
}

func (r *responder) LoginSuccess(ctx Context, token string) error {
	if r.opts.Response == ResponseRedirect {
		return ctx.Redirect(http.StatusFound, r.opts.LoginSuccessURL)
	}
	return ctx.JSON(http.StatusOK, map[string]any{"token": token})
}

func (r *responder) LoginFailed(ctx Context) error {
	if r.opts.Response == ResponseRedirect {
		return ctx.Redirect(http.StatusFound, r.opts.LoginFailedURL)
	}
	return ctx.JSON(http.StatusForbidden, map[string]any{"error": "invalid credentials"})
}

func (r *responder) LogoutSuccess(ctx Context) error {
	if r.opts.Response == ResponseRedirect && r.opts.LogoutURL != "" {
		return ctx.Redirect(http.StatusFound, r.opts.LogoutURL)
	}
	return ctx.JSON(http.StatusOK, map[string]any{"logout": true})
}

func (r *responder) LogoutFailed(ctx Context) error {
	if r.opts.Response == ResponseRedirect && r.opts.LogoutURL != "" {
		return ctx.Redirect(http.StatusFound, r.opts.LogoutURL)
	}
	return ctx.JSON(http.StatusBadRequest, map[string]any{"logout": false})
}

func (r *responder) Forbidden(ctx Context) error {
	if r.opts.Response == ResponseRedirect && r.opts.ForbiddenURL != "" {
		return ctx.Redirect(http.StatusFound, r.opts.ForbiddenURL)
	}
	return ctx.JSON(http.StatusForbidden, map[string]any{"error": "forbidden"})
}
