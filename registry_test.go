package cradle_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cradlekit/cradle"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := cradle.NewRegistry()

	err := r.Register(func() *tConfig { return &tConfig{DSN: "memory"} }, cradle.Singleton)
	require.NoError(t, err)

	reg, err := r.Lookup(reflect.TypeOf(&tConfig{}))
	require.NoError(t, err)
	require.Equal(t, cradle.Singleton, reg.Lifetime)
	require.Equal(t, reflect.TypeOf(&tConfig{}), reg.Type)
}

func TestRegistryLookupUnregistered(t *testing.T) {
	r := cradle.NewRegistry()

	_, err := r.Lookup(reflect.TypeOf(&tConfig{}))
	require.ErrorIs(t, err, cradle.ErrServiceNotFound)

	var resErr *cradle.ResolutionError
	require.ErrorAs(t, err, &resErr)
	require.Equal(t, reflect.TypeOf(&tConfig{}), resErr.ServiceType)
}

func TestRegistryLastWriteWins(t *testing.T) {
	r := cradle.NewRegistry()

	require.NoError(t, r.Register(func() *tConfig { return &tConfig{DSN: "first"} }, cradle.Transient))
	require.NoError(t, r.Register(func() *tConfig { return &tConfig{DSN: "second"} }, cradle.Singleton))

	reg, err := r.Lookup(reflect.TypeOf(&tConfig{}))
	require.NoError(t, err)
	require.Equal(t, cradle.Singleton, reg.Lifetime)
}

func TestRegistryInvalidProducers(t *testing.T) {
	r := cradle.NewRegistry()

	t.Run("nil producer", func(t *testing.T) {
		err := r.Register(nil, cradle.Transient)
		require.ErrorIs(t, err, cradle.ErrConstructorNil)
	})

	t.Run("no return value", func(t *testing.T) {
		err := r.Register(func() {}, cradle.Transient)
		require.ErrorIs(t, err, cradle.ErrInvalidConstructor)
	})

	t.Run("error-only return", func(t *testing.T) {
		err := r.Register(func() error { return nil }, cradle.Transient)
		require.ErrorIs(t, err, cradle.ErrInvalidConstructor)
	})

	t.Run("too many returns", func(t *testing.T) {
		err := r.Register(func() (*tConfig, *tDatabase, error) { return nil, nil, nil }, cradle.Transient)
		require.ErrorIs(t, err, cradle.ErrInvalidConstructor)
	})

	t.Run("second return not error", func(t *testing.T) {
		err := r.Register(func() (*tConfig, *tDatabase) { return nil, nil }, cradle.Transient)
		require.ErrorIs(t, err, cradle.ErrInvalidConstructor)
	})

	t.Run("variadic constructor", func(t *testing.T) {
		err := r.Register(func(names ...string) *tConfig { return nil }, cradle.Transient)
		require.Error(t, err)
	})

	t.Run("invalid lifetime", func(t *testing.T) {
		err := r.Register(func() *tConfig { return nil }, cradle.Lifetime(99))
		var lifetimeErr cradle.LifetimeError
		require.ErrorAs(t, err, &lifetimeErr)
	})
}

func TestRegistryInstanceRegistration(t *testing.T) {
	t.Run("instance is singleton only", func(t *testing.T) {
		r := cradle.NewRegistry()
		err := r.Register(&tConfig{DSN: "memory"}, cradle.Scoped)
		require.Error(t, err)
	})

	t.Run("instance rejects fixed params", func(t *testing.T) {
		r := cradle.NewRegistry()
		err := r.Register(&tConfig{DSN: "memory"}, cradle.Singleton, cradle.WithParam(0, "x"))
		require.Error(t, err)
	})

	t.Run("valid instance", func(t *testing.T) {
		r := cradle.NewRegistry()
		require.NoError(t, r.Register(&tConfig{DSN: "memory"}, cradle.Singleton))

		reg, err := r.Lookup(reflect.TypeOf(&tConfig{}))
		require.NoError(t, err)
		require.True(t, reg.IsInstance)
	})
}

func TestRegistryAsOption(t *testing.T) {
	t.Run("registers under interface type", func(t *testing.T) {
		r := cradle.NewRegistry()
		err := r.Register(func() *tEnglishGreeter { return &tEnglishGreeter{} },
			cradle.Transient, cradle.As((*tGreeter)(nil)))
		require.NoError(t, err)

		_, err = r.Lookup(reflect.TypeOf((*tGreeter)(nil)).Elem())
		require.NoError(t, err)

		// The concrete type itself is not registered.
		_, err = r.Lookup(reflect.TypeOf(&tEnglishGreeter{}))
		require.ErrorIs(t, err, cradle.ErrServiceNotFound)
	})

	t.Run("rejects non-implementing type", func(t *testing.T) {
		r := cradle.NewRegistry()
		err := r.Register(func() *tConfig { return nil },
			cradle.Transient, cradle.As((*tGreeter)(nil)))
		require.Error(t, err)
	})

	t.Run("rejects non-interface argument", func(t *testing.T) {
		r := cradle.NewRegistry()
		err := r.Register(func() *tConfig { return nil },
			cradle.Transient, cradle.As(&tConfig{}))
		require.Error(t, err)
	})
}

func TestRegistryWithParamValidation(t *testing.T) {
	ctor := func(dsn string, db *tDatabase) *tRepository { return &tRepository{} }

	t.Run("position out of range", func(t *testing.T) {
		r := cradle.NewRegistry()
		err := r.Register(ctor, cradle.Transient, cradle.WithParam(2, "x"))
		require.Error(t, err)
	})

	t.Run("negative position", func(t *testing.T) {
		r := cradle.NewRegistry()
		err := r.Register(ctor, cradle.Transient, cradle.WithParam(-1, "x"))
		require.Error(t, err)
	})

	t.Run("type mismatch", func(t *testing.T) {
		r := cradle.NewRegistry()
		err := r.Register(ctor, cradle.Transient, cradle.WithParam(0, 42))
		require.Error(t, err)
	})

	t.Run("nil for pointer parameter", func(t *testing.T) {
		r := cradle.NewRegistry()
		err := r.Register(ctor, cradle.Transient, cradle.WithParam(1, nil))
		require.NoError(t, err)
	})

	t.Run("nil for value parameter", func(t *testing.T) {
		r := cradle.NewRegistry()
		err := r.Register(ctor, cradle.Transient, cradle.WithParam(0, nil))
		require.Error(t, err)
	})
}
