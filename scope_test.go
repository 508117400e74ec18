package cradle_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cradlekit/cradle"
)

func TestScopedResolution(t *testing.T) {
	t.Run("same instance within a scope", func(t *testing.T) {
		c := cradle.New()
		calls := 0
		require.NoError(t, c.RegisterScoped(func() *tConfig {
			calls++
			return &tConfig{}
		}))

		scope, err := c.EnterScope()
		require.NoError(t, err)
		defer scope.Close()

		first, err := cradle.Resolve[*tConfig](scope)
		require.NoError(t, err)
		second, err := cradle.Resolve[*tConfig](scope)
		require.NoError(t, err)

		require.Same(t, first, second)
		require.Equal(t, 1, calls)
	})

	t.Run("fresh instance in a later scope", func(t *testing.T) {
		c := cradle.New()
		require.NoError(t, c.RegisterScoped(func() *tConfig { return &tConfig{} }))

		scope1, err := c.EnterScope()
		require.NoError(t, err)
		first, err := cradle.Resolve[*tConfig](scope1)
		require.NoError(t, err)
		require.NoError(t, scope1.Close())

		scope2, err := c.EnterScope()
		require.NoError(t, err)
		defer scope2.Close()
		second, err := cradle.Resolve[*tConfig](scope2)
		require.NoError(t, err)

		require.NotSame(t, first, second)
	})

	t.Run("no active scope", func(t *testing.T) {
		c := cradle.New()
		require.NoError(t, c.RegisterScoped(func() *tConfig { return &tConfig{} }))

		_, err := cradle.Resolve[*tConfig](c)
		require.ErrorIs(t, err, cradle.ErrNoActiveScope)
	})
}

func TestNestedScopes(t *testing.T) {
	c := cradle.New()
	require.NoError(t, c.RegisterScoped(func() *tConfig { return &tConfig{} }))

	outer, err := c.EnterScope()
	require.NoError(t, err)
	defer outer.Close()

	outerInstance, err := cradle.Resolve[*tConfig](outer)
	require.NoError(t, err)

	inner, err := outer.EnterScope()
	require.NoError(t, err)
	require.Same(t, outer, inner.Parent())

	innerInstance, err := cradle.Resolve[*tConfig](inner)
	require.NoError(t, err)
	require.NotSame(t, outerInstance, innerInstance, "nested scope must start with an empty table")

	require.NoError(t, inner.Close())

	// The outer scope's cache is untouched by the inner scope's lifetime.
	again, err := cradle.Resolve[*tConfig](outer)
	require.NoError(t, err)
	require.Same(t, outerInstance, again)
}

func TestScopeIdentity(t *testing.T) {
	c := cradle.New()

	scope1, err := c.EnterScope()
	require.NoError(t, err)
	defer scope1.Close()
	scope2, err := c.EnterScope()
	require.NoError(t, err)
	defer scope2.Close()

	require.NotEmpty(t, scope1.ID())
	require.NotEqual(t, scope1.ID(), scope2.ID())
	require.Nil(t, scope1.Parent())
}

func TestScopeClose(t *testing.T) {
	t.Run("disposes scoped and transient instances in reverse order", func(t *testing.T) {
		var mu sync.Mutex
		var log []string

		type closableConn struct{ *tDisposable }

		c := cradle.New()
		require.NoError(t, c.RegisterScoped(func() *tDisposable {
			return newTDisposable("scoped", &log, &mu)
		}))
		require.NoError(t, c.RegisterTransient(func() *closableConn {
			return &closableConn{tDisposable: newTDisposable("transient", &log, &mu)}
		}))

		scope, err := c.EnterScope()
		require.NoError(t, err)

		_, err = cradle.Resolve[*tDisposable](scope)
		require.NoError(t, err)
		_, err = cradle.Resolve[*closableConn](scope)
		require.NoError(t, err)

		// The transient was constructed second, so it is released first.
		require.NoError(t, scope.Close())
		require.Equal(t, []string{"transient", "scoped"}, log)
	})

	t.Run("second close errors", func(t *testing.T) {
		c := cradle.New()
		scope, err := c.EnterScope()
		require.NoError(t, err)

		require.NoError(t, scope.Close())
		require.ErrorIs(t, scope.Close(), cradle.ErrScopeClosed)
	})

	t.Run("resolve after close", func(t *testing.T) {
		c := cradle.New()
		require.NoError(t, c.RegisterScoped(func() *tConfig { return &tConfig{} }))

		scope, err := c.EnterScope()
		require.NoError(t, err)
		require.NoError(t, scope.Close())

		_, err = cradle.Resolve[*tConfig](scope)
		require.ErrorIs(t, err, cradle.ErrScopeClosed)
	})

	t.Run("enter scope after close", func(t *testing.T) {
		c := cradle.New()
		scope, err := c.EnterScope()
		require.NoError(t, err)
		require.NoError(t, scope.Close())

		_, err = scope.EnterScope()
		require.ErrorIs(t, err, cradle.ErrScopeClosed)
	})

	t.Run("closing the scope leaves singletons alive", func(t *testing.T) {
		var mu sync.Mutex
		var log []string

		c := cradle.New()
		require.NoError(t, c.RegisterSingleton(func() *tDisposable {
			return newTDisposable("singleton", &log, &mu)
		}))

		scope, err := c.EnterScope()
		require.NoError(t, err)

		fromScope, err := cradle.Resolve[*tDisposable](scope)
		require.NoError(t, err)
		require.NoError(t, scope.Close())
		require.Empty(t, log, "singletons are owned by the container, not the scope")

		fromContainer, err := cradle.Resolve[*tDisposable](c)
		require.NoError(t, err)
		require.Same(t, fromScope, fromContainer)

		require.NoError(t, c.Close())
		require.Equal(t, []string{"singleton"}, log)
	})
}

func TestScopeDisposalOrderIsLIFO(t *testing.T) {
	var mu sync.Mutex
	var log []string

	type closableRepo struct{ *tDisposable }

	c := cradle.New()
	require.NoError(t, c.RegisterScoped(func() *tDisposable {
		return newTDisposable("dependency", &log, &mu)
	}))
	require.NoError(t, c.RegisterScoped(func(d *tDisposable) *closableRepo {
		return &closableRepo{tDisposable: newTDisposable("dependent", &log, &mu)}
	}))

	scope, err := c.EnterScope()
	require.NoError(t, err)

	_, err = cradle.Resolve[*closableRepo](scope)
	require.NoError(t, err)

	// The dependency was constructed first, so it must be disposed last.
	require.NoError(t, scope.Close())
	require.Equal(t, []string{"dependent", "dependency"}, log)
}

func TestTransientFinishedDuringCloseIsStillDisposed(t *testing.T) {
	var mu sync.Mutex
	var log []string

	c := cradle.New()
	scope, err := c.EnterScope()
	require.NoError(t, err)

	// Closing the scope mid-construction mimics a resolution still in flight
	// when Close runs: the instance is tracked after disposal already drained
	// the list.
	require.NoError(t, c.RegisterTransient(func() *tDisposable {
		require.NoError(t, scope.Close())
		return newTDisposable("late", &log, &mu)
	}))

	_, err = cradle.Resolve[*tDisposable](scope)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"late"}, log, "an instance constructed while the scope closes must not leak")
}
