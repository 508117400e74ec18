package cradle

import (
	"errors"
	"fmt"
	"reflect"
)

var resolverType = reflect.TypeOf((*Resolver)(nil)).Elem()

// resolutionContext tracks the chain of types currently under construction
// for a single top-level Resolve call, so that a dependency cycle fails fast
// instead of recursing until the stack is exhausted.
type resolutionContext struct {
	path []reflect.Type
}

func (rc *resolutionContext) enter(serviceType reflect.Type) error {
	for _, t := range rc.path {
		if t == serviceType {
			chain := make([]reflect.Type, 0, len(rc.path)+1)
			chain = append(chain, rc.path...)
			chain = append(chain, serviceType)
			return CircularDependencyError{Chain: chain}
		}
	}
	rc.path = append(rc.path, serviceType)
	return nil
}

func (rc *resolutionContext) exit() {
	rc.path = rc.path[:len(rc.path)-1]
}

// resolve is the central resolution algorithm shared by Container and Scope.
// scope is nil when resolving directly from the container.
func resolve(c *Container, s *Scope, serviceType reflect.Type, rc *resolutionContext) (any, error) {
	reg, err := c.registry.Lookup(serviceType)
	if err != nil {
		return nil, err
	}

	// Pre-built instances are shared as-is; the container does not own them
	// and never disposes them.
	if reg.IsInstance {
		return reg.Instance, nil
	}

	switch reg.Lifetime {
	case Singleton:
		return getOrConstruct(c, s, reg, rc, c.singletons, &c.disposables)

	case Scoped:
		if s == nil {
			return nil, &ResolutionError{ServiceType: serviceType, Cause: ErrNoActiveScope}
		}
		return getOrConstruct(c, s, reg, rc, s.instances, &s.disposables)

	default: // Transient
		instance, err := construct(c, s, reg, rc)
		if err != nil {
			return nil, err
		}
		// The owning scope releases disposable transients on close. A
		// transient resolved without a scope belongs to the caller.
		if s != nil {
			s.disposables.track(instance)
		}
		return instance, nil
	}
}

// getOrConstruct implements the lazy check-construct-recheck pattern for the
// singleton and scoped caches. Construction happens without holding the cache
// lock; if two goroutines race on first access, the first stored instance
// wins and the loser is disposed. Once populated an entry is never replaced.
func getOrConstruct(c *Container, s *Scope, reg *Registration, rc *resolutionContext, cache *instanceCache, disposables *disposalList) (any, error) {
	if instance, ok := cache.get(reg.Type); ok {
		return instance, nil
	}

	instance, err := construct(c, s, reg, rc)
	if err != nil {
		return nil, err
	}

	retained, raced := cache.setIfAbsent(reg.Type, instance)
	if raced {
		closeQuietly(instance)
	} else {
		disposables.track(retained)
	}
	return retained, nil
}

// construct invokes the registration's constructor, filling each parameter
// from, in order of precedence: the registration's fixed values, the
// resolving Container/Scope itself (for Resolver parameters), or a recursive
// resolution of the parameter type.
func construct(c *Container, s *Scope, reg *Registration, rc *resolutionContext) (any, error) {
	if err := rc.enter(reg.Type); err != nil {
		return nil, err
	}
	defer rc.exit()

	var resolver Resolver = c
	if s != nil {
		resolver = s
	}

	args := make([]reflect.Value, len(reg.params))
	for i, paramType := range reg.params {
		if value, ok := reg.fixed[i]; ok {
			args[i] = argValue(value, paramType)
			continue
		}

		if paramType == resolverType {
			args[i] = reflect.ValueOf(resolver)
			continue
		}

		if c.registry.Contains(paramType) {
			dep, err := resolve(c, s, paramType, rc)
			if err != nil {
				return nil, wrapDependencyError(reg.Type, err)
			}
			args[i] = argValue(dep, paramType)
			continue
		}

		return nil, &ConstructionError{
			ServiceType: reg.Type,
			Cause: fmt.Errorf("parameter %d (%s) is not registered and has no fixed value",
				i, formatType(paramType)),
		}
	}

	return invoke(reg, args)
}

// invoke calls the constructor, converting an error return or a panic into
// a ConstructionError.
func invoke(reg *Registration, args []reflect.Value) (instance any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ConstructionError{
				ServiceType: reg.Type,
				Cause:       fmt.Errorf("constructor panicked: %v", r),
			}
		}
	}()

	out := reg.Constructor.Call(args)

	if reg.hasError {
		if callErr, _ := out[1].Interface().(error); callErr != nil {
			return nil, &ConstructionError{ServiceType: reg.Type, Cause: callErr}
		}
	}

	return out[0].Interface(), nil
}

// wrapDependencyError wraps a failed dependency resolution in the dependent
// service's ConstructionError. Cycle errors already carry the full chain and
// pass through unwrapped.
func wrapDependencyError(serviceType reflect.Type, err error) error {
	var cycle CircularDependencyError
	if errors.As(err, &cycle) {
		return err
	}
	return &ConstructionError{ServiceType: serviceType, Cause: err}
}

// argValue converts a resolved or fixed value to a reflect.Value suitable for
// the parameter type. nil values become the parameter's zero value.
func argValue(value any, paramType reflect.Type) reflect.Value {
	if value == nil {
		return reflect.Zero(paramType)
	}
	return reflect.ValueOf(value)
}
