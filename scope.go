package cradle

import (
	"reflect"
	"sync/atomic"

	"github.com/google/uuid"
)

// Scope is a bounded span during which scoped instances are cached and
// shared. Each scope owns its own instance table: entering a scope, even
// nested inside another, starts with an empty table, and closing it
// discards the table and disposes the instances it accumulated. A scope
// nested inside another leaves its parent's instances untouched, so after
// the child closes the parent resolves exactly what it resolved before.
type Scope struct {
	id          string
	container   *Container
	parent      *Scope
	instances   *instanceCache
	disposables disposalList
	closed      atomic.Bool
}

func newScope(c *Container, parent *Scope) *Scope {
	return &Scope{
		id:        uuid.NewString(),
		container: c,
		parent:    parent,
		instances: newInstanceCache(),
	}
}

// ID returns the unique identifier of this scope.
func (s *Scope) ID() string {
	return s.id
}

// Parent returns the enclosing scope, or nil if this scope was entered
// directly from the container.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// EnterScope starts a nested scope with a fresh, empty instance table.
func (s *Scope) EnterScope() (*Scope, error) {
	if s.closed.Load() {
		return nil, ErrScopeClosed
	}
	if s.container.closed.Load() {
		return nil, ErrContainerClosed
	}
	return newScope(s.container, s), nil
}

// Resolve returns an instance for the given service type. Scoped services
// are cached in this scope's table; singletons come from the container;
// transients are constructed fresh with their dependencies resolved against
// this scope.
func (s *Scope) Resolve(serviceType reflect.Type) (any, error) {
	if s.closed.Load() {
		return nil, &ResolutionError{ServiceType: serviceType, Cause: ErrScopeClosed}
	}
	if s.container.closed.Load() {
		return nil, ErrContainerClosed
	}
	return resolve(s.container, s, serviceType, &resolutionContext{})
}

// Close discards the scope's instance table, disposing the instances the
// scope constructed in reverse construction order. Closing twice returns
// ErrScopeClosed.
func (s *Scope) Close() error {
	if s.closed.Swap(true) {
		return ErrScopeClosed
	}
	return s.disposables.dispose("scope")
}
