package cradle

import (
	"fmt"
	"reflect"
)

// typeFor returns the reflect.Type of T, working for interface types as well
// as concrete ones.
func typeFor[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Resolve resolves a service of type T from a Container or Scope.
//
//	repo, err := cradle.Resolve[Repository](scope)
func Resolve[T any](r Resolver) (T, error) {
	var zero T

	if r == nil {
		return zero, ErrResolverNil
	}

	instance, err := r.Resolve(typeFor[T]())
	if err != nil {
		return zero, err
	}

	result, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("type assertion failed: expected %T, got %T", zero, instance)
	}
	return result, nil
}

// MustResolve resolves a service of type T and panics on error. Intended for
// application startup paths where a missing registration is a programming
// error.
func MustResolve[T any](r Resolver) T {
	instance, err := Resolve[T](r)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %s: %v", formatType(typeFor[T]()), err))
	}
	return instance
}

// IsRegistered reports whether a registration exists for type T.
func IsRegistered[T any](c *Container) bool {
	return c.registry.Contains(typeFor[T]())
}
