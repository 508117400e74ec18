package cradle

import (
	"fmt"
	"reflect"
	"sync"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Registration is a single registry entry: the producer for a service type
// together with its lifetime and any fixed constructor parameters.
type Registration struct {
	// Type is the service type this registration produces. It is the
	// constructor's first return type unless overridden with As.
	Type reflect.Type

	// Lifetime determines instance caching behavior.
	Lifetime Lifetime

	// Constructor is the reflected producer function. Invalid when the
	// registration holds a pre-built instance.
	Constructor reflect.Value

	// IsInstance indicates the registration holds a value rather than a
	// constructor. Instance registrations are always singletons.
	IsInstance bool

	// Instance is the pre-built value when IsInstance is true.
	Instance any

	params   []reflect.Type // constructor parameter types
	fixed    map[int]any    // position -> literal value, overrides resolution
	hasError bool           // constructor has a trailing error return
}

// RegisterOption customizes a registration.
type RegisterOption interface {
	applyRegisterOption(*registerOptions) error
}

type registerOptions struct {
	as    reflect.Type
	fixed map[int]any
}

type asOption struct{ iface any }

func (o asOption) applyRegisterOption(opts *registerOptions) error {
	t := reflect.TypeOf(o.iface)
	if t == nil || t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Interface {
		return fmt.Errorf("As requires a pointer to an interface, got %T", o.iface)
	}
	opts.as = t.Elem()
	return nil
}

// As registers the producer under an interface type instead of its concrete
// return type. Pass a nil pointer to the interface:
//
//	c.RegisterSingleton(NewFileRepository, cradle.As((*Repository)(nil)))
func As(iface any) RegisterOption {
	return asOption{iface: iface}
}

type paramOption struct {
	position int
	value    any
}

func (o paramOption) applyRegisterOption(opts *registerOptions) error {
	if o.position < 0 {
		return fmt.Errorf("fixed parameter position %d is negative", o.position)
	}
	if opts.fixed == nil {
		opts.fixed = make(map[int]any)
	}
	opts.fixed[o.position] = o.value
	return nil
}

// WithParam supplies a literal value for the constructor parameter at the
// given position. Fixed parameters are applied before dependency resolution
// and take precedence over it, so a parameter whose type is also registered
// still receives the fixed value.
func WithParam(position int, value any) RegisterOption {
	return paramOption{position: position, value: value}
}

// Registry maps service types to registrations. It stores metadata only;
// all caching and construction lives in Container and Scope.
type Registry struct {
	mu      sync.RWMutex
	entries map[reflect.Type]*Registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[reflect.Type]*Registration)}
}

// Register inserts or silently replaces the registration for the producer's
// service type. Last write wins. Dependencies declared by the constructor are
// not validated here; a missing dependency surfaces when the service is
// resolved, not when it is registered.
func (r *Registry) Register(producer any, lifetime Lifetime, opts ...RegisterOption) error {
	reg, err := newRegistration(producer, lifetime, opts...)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[reg.Type] = reg
	return nil
}

// Lookup returns the registration for the given service type.
func (r *Registry) Lookup(serviceType reflect.Type) (*Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.entries[serviceType]
	if !ok {
		return nil, &ResolutionError{ServiceType: serviceType, Cause: ErrServiceNotFound}
	}
	return reg, nil
}

// Contains reports whether a registration exists for the given service type.
func (r *Registry) Contains(serviceType reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[serviceType]
	return ok
}

func newRegistration(producer any, lifetime Lifetime, opts ...RegisterOption) (*Registration, error) {
	if !lifetime.IsValid() {
		return nil, LifetimeError{Value: lifetime}
	}
	if producer == nil {
		return nil, &RegistrationError{Cause: ErrConstructorNil}
	}

	options := &registerOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyRegisterOption(options); err != nil {
			return nil, &RegistrationError{Cause: err}
		}
	}

	value := reflect.ValueOf(producer)
	if value.Kind() == reflect.Pointer && value.IsNil() {
		return nil, &RegistrationError{Cause: ErrConstructorNil}
	}

	if value.Kind() != reflect.Func {
		return newInstanceRegistration(producer, value, lifetime, options)
	}

	return newConstructorRegistration(value, lifetime, options)
}

func newInstanceRegistration(producer any, value reflect.Value, lifetime Lifetime, options *registerOptions) (*Registration, error) {
	serviceType := value.Type()

	if lifetime != Singleton {
		return nil, &RegistrationError{
			ServiceType: serviceType,
			Cause:       fmt.Errorf("instance registrations must be %s, got %s", Singleton, lifetime),
		}
	}
	if len(options.fixed) > 0 {
		return nil, &RegistrationError{
			ServiceType: serviceType,
			Cause:       fmt.Errorf("fixed parameters do not apply to instance registrations"),
		}
	}
	if options.as != nil {
		if !serviceType.AssignableTo(options.as) {
			return nil, &RegistrationError{
				ServiceType: serviceType,
				Cause:       fmt.Errorf("%s does not implement %s", formatType(serviceType), formatType(options.as)),
			}
		}
		serviceType = options.as
	}

	return &Registration{
		Type:       serviceType,
		Lifetime:   Singleton,
		IsInstance: true,
		Instance:   producer,
	}, nil
}

func newConstructorRegistration(ctor reflect.Value, lifetime Lifetime, options *registerOptions) (*Registration, error) {
	ctorType := ctor.Type()

	if ctorType.IsVariadic() {
		return nil, &RegistrationError{Cause: fmt.Errorf("variadic constructors are not supported")}
	}

	serviceType, hasError, err := constructorReturns(ctorType)
	if err != nil {
		return nil, &RegistrationError{Cause: err}
	}

	if options.as != nil {
		if !serviceType.AssignableTo(options.as) {
			return nil, &RegistrationError{
				ServiceType: serviceType,
				Cause:       fmt.Errorf("%s does not implement %s", formatType(serviceType), formatType(options.as)),
			}
		}
		serviceType = options.as
	}

	params := make([]reflect.Type, ctorType.NumIn())
	for i := range params {
		params[i] = ctorType.In(i)
	}

	for position, value := range options.fixed {
		if position >= len(params) {
			return nil, &RegistrationError{
				ServiceType: serviceType,
				Cause:       fmt.Errorf("fixed parameter position %d out of range: constructor has %d parameters", position, len(params)),
			}
		}
		if !assignableAsArg(value, params[position]) {
			return nil, &RegistrationError{
				ServiceType: serviceType,
				Cause: fmt.Errorf("fixed parameter %d: %T is not assignable to %s",
					position, value, formatType(params[position])),
			}
		}
	}

	return &Registration{
		Type:        serviceType,
		Lifetime:    lifetime,
		Constructor: ctor,
		params:      params,
		fixed:       options.fixed,
		hasError:    hasError,
	}, nil
}

// constructorReturns validates a constructor signature and returns the
// service type plus whether the constructor has a trailing error return.
func constructorReturns(ctorType reflect.Type) (reflect.Type, bool, error) {
	switch ctorType.NumOut() {
	case 1:
		if ctorType.Out(0) == errorType {
			return nil, false, ErrInvalidConstructor
		}
		return ctorType.Out(0), false, nil
	case 2:
		if ctorType.Out(0) == errorType || !ctorType.Out(1).Implements(errorType) {
			return nil, false, ErrInvalidConstructor
		}
		return ctorType.Out(0), true, nil
	default:
		return nil, false, ErrInvalidConstructor
	}
}

// assignableAsArg reports whether value can be passed as an argument of the
// given type. A nil value is accepted for nilable parameter kinds.
func assignableAsArg(value any, paramType reflect.Type) bool {
	if value == nil {
		switch paramType.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
			return true
		default:
			return false
		}
	}
	return reflect.TypeOf(value).AssignableTo(paramType)
}
