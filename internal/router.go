package internal

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zenapp/zen/pkg/metadata"
	"github.com/zenapp/zen/pkg/security"
)

// NewRouter creates the chi router with the application middlewares
// applied to every route.
func NewRouter(middlewares ...func(http.Handler) http.Handler) *chi.Mux {
	mux := chi.NewRouter()
	for _, mw := range middlewares {
		mux.Use(mw)
	}
	return mux
}

// MountRoutes registers every declared controller route on the router.
func MountRoutes(mux chi.Router, h *RequestHandler, routes []metadata.Route) {
	for _, route := range routes {
		mux.Method(route.Method, route.Path, h.Handle(route))
	}
}

// MountSecurity mounts each provider's login and logout endpoints at its
// configured routes. Logout answers both GET and POST so plain links work.
func MountSecurity(mux chi.Router, h *RequestHandler, providers map[string]*security.Provider) {
	for _, p := range providers {
		opts := p.Options()
		mux.Post(opts.LoginRoute, h.loginHandler(p))
		mux.Post(opts.LogoutRoute, h.logoutHandler(p))
		mux.Get(opts.LogoutRoute, h.logoutHandler(p))
	}
}

func (h *RequestHandler) loginHandler(p *security.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := newRequestContext(NewResponseWriter(w), r, h.log, h.cookies, h.sessions)
		if err := p.Login(ctx); err != nil {
			h.errorHandler(ctx, err)
		}
	}
}

func (h *RequestHandler) logoutHandler(p *security.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := newRequestContext(NewResponseWriter(w), r, h.log, h.cookies, h.sessions)
		if err := p.Logout(ctx); err != nil {
			h.errorHandler(ctx, err)
		}
	}
}

// NotFoundHandler is the router's fallback for unmatched paths.
func NotFoundHandler(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("route not found", slog.String("path", r.URL.Path))
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
	}
}
