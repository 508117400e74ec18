package cradle

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Sentinel errors. These are always wrapped in one of the typed errors below
// before being returned, so callers can match them with errors.Is while still
// getting the service type in the message.
var (
	// ErrServiceNotFound indicates a resolution was attempted for a type
	// that was never registered.
	ErrServiceNotFound = errors.New("service not registered")

	// ErrNoActiveScope indicates a scoped service was resolved directly from
	// the container rather than through a scope.
	ErrNoActiveScope = errors.New("no active scope")

	// ErrScopeClosed indicates an operation on a scope after Close.
	ErrScopeClosed = errors.New("scope has been closed")

	// ErrContainerClosed indicates an operation on a container after Close.
	ErrContainerClosed = errors.New("container has been closed")

	// ErrConstructorNil indicates a nil producer was passed to Register.
	ErrConstructorNil = errors.New("constructor cannot be nil")

	// ErrResolverNil indicates a nil Resolver was passed to a package-level
	// helper.
	ErrResolverNil = errors.New("resolver cannot be nil")

	// ErrInvalidConstructor indicates a producer function with an unsupported
	// signature (no service return value, or more than one non-error return).
	ErrInvalidConstructor = errors.New("constructor must return (T) or (T, error)")
)

var (
	_ error = LifetimeError{}
	_ error = RegistrationError{}
	_ error = ResolutionError{}
	_ error = ConstructionError{}
	_ error = CircularDependencyError{}
	_ error = DisposalError{}
)

// LifetimeError indicates an invalid lifetime value.
type LifetimeError struct {
	Value any
}

func (e LifetimeError) Error() string {
	return fmt.Sprintf("invalid lifetime: %v", e.Value)
}

// RegistrationError wraps errors that occur while registering a service.
type RegistrationError struct {
	ServiceType reflect.Type
	Cause       error
}

func (e RegistrationError) Error() string {
	if e.ServiceType == nil {
		return fmt.Sprintf("registration failed: %v", e.Cause)
	}
	return fmt.Sprintf("failed to register %s: %v", formatType(e.ServiceType), e.Cause)
}

func (e RegistrationError) Unwrap() error {
	return e.Cause
}

// ResolutionError wraps errors that occur while locating a service, before
// any construction takes place.
type ResolutionError struct {
	ServiceType reflect.Type
	Cause       error
}

func (e ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve %s: %v", formatType(e.ServiceType), e.Cause)
}

func (e ResolutionError) Unwrap() error {
	return e.Cause
}

// ConstructionError wraps whatever a producer raised while building an
// instance: a constructor error return, a recovered panic, a failed
// dependency, or a parameter with no registration and no fixed value.
type ConstructionError struct {
	ServiceType reflect.Type
	Cause       error
}

func (e ConstructionError) Error() string {
	return fmt.Sprintf("failed to construct %s: %v", formatType(e.ServiceType), e.Cause)
}

func (e ConstructionError) Unwrap() error {
	return e.Cause
}

// CircularDependencyError indicates a dependency chain that revisits a type
// already under construction.
type CircularDependencyError struct {
	Chain []reflect.Type
}

func (e CircularDependencyError) Error() string {
	parts := make([]string, len(e.Chain))
	for i, t := range e.Chain {
		parts[i] = formatType(t)
	}
	return "circular dependency: " + strings.Join(parts, " -> ")
}

// DisposalError aggregates failures from disposing instances when a scope or
// container closes.
type DisposalError struct {
	Context string // "container" or "scope"
	Errors  []error
}

func (e DisposalError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("%s disposal failed: %v", e.Context, e.Errors[0])
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s disposal failed with %d errors:", e.Context, len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "\n  %d. %v", i+1, err)
	}
	return b.String()
}

func (e DisposalError) Unwrap() []error {
	return e.Errors
}

// formatType formats a reflect.Type for error messages, preferring short
// names over fully qualified ones.
func formatType(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind() {
	case reflect.Pointer:
		return "*" + formatType(t.Elem())
	case reflect.Slice:
		return "[]" + formatType(t.Elem())
	case reflect.Map:
		return "map[" + formatType(t.Key()) + "]" + formatType(t.Elem())
	case reflect.Interface, reflect.Struct:
		if t.Name() != "" {
			return t.Name()
		}
		return t.String()
	default:
		return t.String()
	}
}
