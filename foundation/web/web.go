// Package web is a thin context-aware wrapper around httptreemux: routes
// carry a context.Context through the handler chain, middleware compose
// as Handler-to-Handler transforms, and every request gets a trace id and
// a start time stashed in its context before the first middleware runs.
package web

import (
	"context"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/dimfeld/httptreemux/v5"
	"github.com/google/uuid"
)

// ctxKey represents the type of value for the context key.
type ctxKey int

// key is how request values are stored/retrieved from a context.
const key ctxKey = 1

// Values carries request-scoped data through the handler chain.
type Values struct {
	TraceID    string
	Now        time.Time
	StatusCode int
}

// GetValues returns the Values stashed in ctx by the App's top-level
// handler wrapper.
func GetValues(ctx context.Context) (Values, error) {
	v, ok := ctx.Value(key).(*Values)
	if !ok {
		return Values{}, ErrWebValueMissing
	}

	return *v, nil
}

// SetStatusCode records the response status code into the request's
// Values, so logging middleware can report it after the handler returns.
func SetStatusCode(ctx context.Context, statusCode int) error {
	v, ok := ctx.Value(key).(*Values)
	if !ok {
		return ErrWebValueMissing
	}

	v.StatusCode = statusCode

	return nil
}

// =============================================================================

// Handler is the signature every Nolemma HTTP handler implements.
type Handler func(ctx context.Context, w http.ResponseWriter, r *http.Request) error

// Middleware wraps a Handler with cross-cutting behavior, returning the
// wrapped Handler.
type Middleware func(Handler) Handler

// wrapMiddleware composes a handler with a stack of middleware, applied
// outermost-first (mw[0] runs first, closest to the caller).
func wrapMiddleware(mw []Middleware, handler Handler) Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		if mw[i] != nil {
			handler = mw[i](handler)
		}
	}

	return handler
}

// =============================================================================

// App is the entrypoint into the web framework: an httptreemux router
// plus a shutdown channel handlers can use to request a graceful
// shutdown, and a default middleware stack applied to every route.
type App struct {
	mux      *httptreemux.ContextMux
	shutdown chan os.Signal
	mw       []Middleware
}

// NewApp constructs an App. shutdown lets SignalShutdown cooperatively
// request the process terminate, mirroring the channel main() listens
// on for SIGINT/SIGTERM.
func NewApp(shutdown chan os.Signal, mw ...Middleware) *App {
	return &App{
		mux:      httptreemux.NewContextMux(),
		shutdown: shutdown,
		mw:       mw,
	}
}

// SignalShutdown sends a signal on the shutdown channel, asking the
// owning process to begin a graceful shutdown. Used by a handler that
// detects the application is in an integrity-violating state.
func (a *App) SignalShutdown() {
	a.shutdown <- syscall.SIGTERM
}

// ServeHTTP implements http.Handler by delegating to the underlying mux.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// Handle registers a route. group namespaces the path (e.g. "v1"); an
// empty group registers the path as given. Per-route middleware runs
// inside the App's default stack.
func (a *App) Handle(method string, group string, path string, handler Handler, mw ...Middleware) {
	handler = wrapMiddleware(mw, handler)
	handler = wrapMiddleware(a.mw, handler)

	h := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		v := Values{
			TraceID: uuid.NewString(),
			Now:     time.Now(),
		}
		ctx = context.WithValue(ctx, key, &v)

		if err := handler(ctx, w, r); err != nil {
			if IsShutdown(err) {
				a.SignalShutdown()
			}
		}
	}

	finalPath := path
	if group != "" {
		finalPath = "/" + group + path
	}

	a.mux.Handle(method, finalPath, h)
}

// Param returns the named URL parameter, or "" if absent.
func Param(r *http.Request, name string) string {
	params := httptreemux.ContextParams(r.Context())
	return params[name]
}
