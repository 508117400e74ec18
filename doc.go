// Package cradle provides a small dependency resolution and lifecycle
// container. It maps a service type to a producer and a lifetime policy,
// constructs instances on demand with their dependencies recursively
// resolved, and controls how long each instance lives.
//
// # Lifetimes
//
//   - Transient: a fresh instance on every resolution, never cached
//   - Scoped: one instance per scope, shared within that scope
//   - Singleton: one instance per container, created lazily on first use
//
// # Basic usage
//
// Create a container, register producers, and resolve:
//
//	container := cradle.New()
//	container.RegisterSingleton(NewLogger)
//	container.RegisterScoped(NewUserService)
//	defer container.Close()
//
//	scope, err := container.EnterScope()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer scope.Close()
//
//	svc, err := cradle.Resolve[*UserService](scope)
//
// # Dependency injection
//
// Producers declare their dependencies as constructor parameters:
//
//	func NewUserService(repo Repository, logger *zap.Logger) *UserService {
//	    return &UserService{repo: repo, logger: logger}
//	}
//
// Each parameter is resolved against the registry by its type. A parameter
// can instead be pinned to a literal value at registration time with
// WithParam, which takes precedence over resolution:
//
//	container.RegisterSingleton(NewFileRepository,
//	    cradle.As((*Repository)(nil)),
//	    cradle.WithParam(0, "users.json"))
//
// # Scopes
//
// Scoped services require an active scope; resolving one directly from the
// container fails with ErrNoActiveScope. Scopes nest: a nested scope starts
// with an empty instance table and leaves the enclosing scope's instances
// untouched. Closing a scope disposes every instance it constructed that
// implements Disposable, in reverse construction order.
//
// # Errors
//
// Resolution failures are typed: ResolutionError (wrapping
// ErrServiceNotFound or ErrNoActiveScope), ConstructionError (wrapping
// whatever the producer raised), and CircularDependencyError for dependency
// cycles. Match with errors.Is or errors.As.
package cradle
