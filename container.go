package cradle

import (
	"reflect"
	"sync/atomic"
)

// Resolver resolves a service instance by type. It is implemented by both
// *Container and *Scope, and a constructor may declare a Resolver parameter
// to receive whichever of the two is performing the resolution.
type Resolver interface {
	Resolve(serviceType reflect.Type) (any, error)
}

// Container owns the registry and the singleton instances. Scoped instances
// live in Scope values created with EnterScope; the container itself never
// acts as a scope, so resolving a scoped service from it fails with
// ErrNoActiveScope.
//
// All operations are safe for concurrent use. The singleton cache is
// populated lazily: if two goroutines race on the first resolution of the
// same singleton, both may construct an instance, but only the first stored
// one is retained and returned to every caller.
type Container struct {
	registry    *Registry
	singletons  *instanceCache
	disposables disposalList
	closed      atomic.Bool
}

// New creates an empty container.
func New() *Container {
	return &Container{
		registry:   NewRegistry(),
		singletons: newInstanceCache(),
	}
}

// Register adds or silently replaces the registration for the producer's
// service type. The producer is either a constructor function taking zero or
// more parameters and returning (T) or (T, error), or, for Singleton
// lifetime, a pre-built instance.
func (c *Container) Register(producer any, lifetime Lifetime, opts ...RegisterOption) error {
	if c.closed.Load() {
		return ErrContainerClosed
	}
	return c.registry.Register(producer, lifetime, opts...)
}

// RegisterTransient registers a producer with the Transient lifetime.
func (c *Container) RegisterTransient(producer any, opts ...RegisterOption) error {
	return c.Register(producer, Transient, opts...)
}

// RegisterScoped registers a producer with the Scoped lifetime.
func (c *Container) RegisterScoped(producer any, opts ...RegisterOption) error {
	return c.Register(producer, Scoped, opts...)
}

// RegisterSingleton registers a producer with the Singleton lifetime.
func (c *Container) RegisterSingleton(producer any, opts ...RegisterOption) error {
	return c.Register(producer, Singleton, opts...)
}

// RegisterInstance registers an already-constructed value as a singleton.
// The container shares the instance but does not dispose it on Close.
func (c *Container) RegisterInstance(instance any, opts ...RegisterOption) error {
	return c.Register(instance, Singleton, opts...)
}

// Resolve returns an instance for the given service type, constructing it
// and any dependencies as dictated by the registered lifetimes.
func (c *Container) Resolve(serviceType reflect.Type) (any, error) {
	if c.closed.Load() {
		return nil, ErrContainerClosed
	}
	return resolve(c, nil, serviceType, &resolutionContext{})
}

// EnterScope starts a new scope. The caller must close the returned scope;
// the idiomatic form is:
//
//	scope, err := container.EnterScope()
//	if err != nil {
//	    return err
//	}
//	defer scope.Close()
//
// defer guarantees the scope is released on every exit path.
func (c *Container) EnterScope() (*Scope, error) {
	if c.closed.Load() {
		return nil, ErrContainerClosed
	}
	return newScope(c, nil), nil
}

// Close disposes all container-constructed singletons in reverse
// construction order. Closing an already-closed container returns
// ErrContainerClosed.
func (c *Container) Close() error {
	if c.closed.Swap(true) {
		return ErrContainerClosed
	}
	return c.disposables.dispose("container")
}
