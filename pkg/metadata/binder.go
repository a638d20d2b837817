package metadata

import (
	"fmt"
	"net/http"
	"reflect"
	"runtime"
	"strings"

	"github.com/zenapp/zen/pkg/validator"
)

// Controller is implemented by types that declare routes and parameter
// bindings. Routes is called exactly once per controller at application
// start; the Binder records every declared fact into the metadata store.
type Controller interface {
	Routes(b *Binder)
}

// Keyer optionally overrides the controller key derived from the type name.
type Keyer interface {
	ControllerKey() string
}

// Route is one mounted controller method.
type Route struct {
	Method  string
	Path    string
	Target  string
	Member  string
	Handler reflect.Value
}

// Binder records route and parameter-binding facts for a single controller.
type Binder struct {
	store  *Store
	target string
	prefix string
	routes []Route
}

// NewBinder creates a binder writing facts for the given controller key.
func NewBinder(store *Store, target string) *Binder {
	return &Binder{store: store, target: target}
}

// Prefix sets a URL prefix applied to every route of this controller.
func (b *Binder) Prefix(path string) {
	b.prefix = strings.TrimSuffix(path, "/")
	b.store.Define(KindPrefix, b.prefix, b.target, "")
}

// GET mounts fn under a GET route.
func (b *Binder) GET(path string, fn any, params ...Param) *RouteBuilder {
	return b.handle(http.MethodGet, path, fn, params)
}

// POST mounts fn under a POST route.
func (b *Binder) POST(path string, fn any, params ...Param) *RouteBuilder {
	return b.handle(http.MethodPost, path, fn, params)
}

// PUT mounts fn under a PUT route.
func (b *Binder) PUT(path string, fn any, params ...Param) *RouteBuilder {
	return b.handle(http.MethodPut, path, fn, params)
}

// PATCH mounts fn under a PATCH route.
func (b *Binder) PATCH(path string, fn any, params ...Param) *RouteBuilder {
	return b.handle(http.MethodPatch, path, fn, params)
}

// DELETE mounts fn under a DELETE route.
func (b *Binder) DELETE(path string, fn any, params ...Param) *RouteBuilder {
	return b.handle(http.MethodDelete, path, fn, params)
}

// OPTIONS mounts fn under an OPTIONS route.
func (b *Binder) OPTIONS(path string, fn any, params ...Param) *RouteBuilder {
	return b.handle(http.MethodOptions, path, fn, params)
}

// Table returns the routes declared so far.
func (b *Binder) Table() []Route {
	return b.routes
}

func (b *Binder) handle(method, path string, fn any, params []Param) *RouteBuilder {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		panic(fmt.Sprintf("metadata: %s %s handler must be a func, got %T", method, path, fn))
	}

	member := funcMember(v)
	b.store.Define(KindHTTPMethod, method, b.target, member)
	b.store.Define(KindPath, path, b.target, member)

	for _, p := range params {
		p(member, b.target, b.store)
	}

	b.routes = append(b.routes, Route{
		Method:  method,
		Path:    b.prefix + path,
		Target:  b.target,
		Member:  member,
		Handler: v,
	})

	return &RouteBuilder{store: b.store, target: b.target, member: member}
}

// RouteBuilder attaches member-level facts to a mounted route.
type RouteBuilder struct {
	store  *Store
	target string
	member string
}

// Auth requires the named security provider to authorize requests before the
// method is invoked.
func (r *RouteBuilder) Auth(provider string) *RouteBuilder {
	r.store.Define(KindAuthProvider, provider, r.target, r.member)
	return r
}

// Validate runs the schema against the parsed request body; failures
// short-circuit the request with a 422 before the method is invoked.
func (r *RouteBuilder) Validate(schema validator.Schema) *RouteBuilder {
	r.store.Define(KindValidation, schema, r.target, r.member)
	return r
}

// ControllerKey derives the metadata key for a controller instance.
// Types may override it by implementing Keyer.
func ControllerKey(ctrl any) string {
	if k, ok := ctrl.(Keyer); ok {
		return k.ControllerKey()
	}
	t := reflect.TypeOf(ctrl)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// funcMember derives a stable member name from a bound method value,
// e.g. "github.com/acme/app.(*TodoController).Create-fm" -> "Create".
func funcMember(v reflect.Value) string {
	name := runtime.FuncForPC(v.Pointer()).Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "-fm")
}
