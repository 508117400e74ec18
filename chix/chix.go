// Package chix provides request-scoped resolution for chi routers.
//
// ScopeMiddleware enters a container scope for each request, attaches it to
// the request context, and closes it when the request completes. Handle
// resolves a controller from that scope and invokes one of its methods.
//
//	r := chi.NewRouter()
//	r.Use(chix.ScopeMiddleware(container))
//
//	r.Post("/signin", chix.Handle((*AuthController).SignIn))
//	r.Get("/users", chix.Handle((*UserController).List))
package chix

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cradlekit/cradle"
)

// ErrNoScopeInContext indicates the request context carries no scope, which
// usually means ScopeMiddleware is not installed on the route.
var ErrNoScopeInContext = errors.New("chix: no scope in request context")

type scopeContextKey struct{}

// NewContext returns a copy of ctx carrying the scope.
func NewContext(ctx context.Context, scope *cradle.Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, scope)
}

// FromContext returns the scope attached to the request context by
// ScopeMiddleware.
func FromContext(ctx context.Context) (*cradle.Scope, error) {
	scope, ok := ctx.Value(scopeContextKey{}).(*cradle.Scope)
	if !ok {
		return nil, ErrNoScopeInContext
	}
	return scope, nil
}

// Config holds the configuration for the scope middleware.
type Config struct {
	// ErrorHandler is called when scope creation fails. If nil, a default
	// handler returning 500 Internal Server Error is used.
	ErrorHandler func(http.ResponseWriter, *http.Request, error)

	// CloseErrorHandler is called when closing the request scope fails.
	// If nil, errors are logged using slog.
	CloseErrorHandler func(error)
}

// Option configures the scope middleware.
type Option func(*Config)

// WithErrorHandler sets the handler for scope creation failures.
func WithErrorHandler(h func(http.ResponseWriter, *http.Request, error)) Option {
	return func(c *Config) {
		c.ErrorHandler = h
	}
}

// WithCloseErrorHandler sets the handler for scope close failures.
func WithCloseErrorHandler(h func(error)) Option {
	return func(c *Config) {
		c.CloseErrorHandler = h
	}
}

func defaultConfig() *Config {
	return &Config{
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		},
		CloseErrorHandler: func(err error) {
			slog.Error("failed to close request scope", "error", err)
		},
	}
}

// ScopeMiddleware creates a middleware that enters a scope per request.
// The scope is attached to the request context and closed when the request
// completes, disposing every scoped instance the request constructed.
func ScopeMiddleware(container *cradle.Container, opts ...Option) func(http.Handler) http.Handler {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, err := container.EnterScope()
			if err != nil {
				cfg.ErrorHandler(w, r, err)
				return
			}

			defer func() {
				if err := scope.Close(); err != nil {
					cfg.CloseErrorHandler(err)
				}
			}()

			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), scope)))
		})
	}
}

// Handle wraps a controller method for resolution from the request scope.
// The controller type T is resolved from the scope attached to the request
// context, then the method is invoked on it.
//
// The method signature is func(T, http.ResponseWriter, *http.Request), which
// method expressions like (*UserController).List satisfy.
func Handle[T any](method func(T, http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := FromContext(r.Context())
		if err != nil {
			slog.Error("failed to get scope from context", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		controller, err := cradle.Resolve[T](scope)
		if err != nil {
			slog.Error("failed to resolve controller", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		method(controller, w, r)
	}
}
