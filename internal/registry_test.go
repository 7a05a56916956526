package internal_test

import (
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/argos/internal"
)

func okRoute(*internal.Request) (any, error) { return "ok", nil }

func passFilter(r *internal.Request) internal.Decision { return internal.Continue(r) }

func mustPathPattern(t *testing.T, expr string) internal.Predicate {
	t.Helper()
	p, err := internal.PathPattern(expr)
	require.NoError(t, err)
	return p
}

func TestRegistryRegisterRoute(t *testing.T) {
	t.Parallel()

	t.Run("keeps registration order", func(t *testing.T) {
		t.Parallel()
		reg := internal.NewRegistry()
		require.NoError(t, reg.RegisterRoute(http.MethodGet, "/b", internal.ModeText, okRoute))
		require.NoError(t, reg.RegisterRoute(http.MethodPost, "/a", internal.ModeJSON, okRoute))
		require.NoError(t, reg.RegisterRoute(http.MethodGet, "/a/:id", internal.ModeHTML, okRoute))

		routes := reg.Routes()
		require.Len(t, routes, 3)
		assert.Equal(t, "/b", routes[0].Pattern.String())
		assert.Equal(t, http.MethodPost, routes[1].Method)
		assert.Equal(t, internal.ModeHTML, routes[2].Mode)
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()
		reg := internal.NewRegistry()

		err := reg.RegisterRoute("get", "/", internal.ModeText, okRoute)
		require.ErrorIs(t, err, internal.ErrInvalidMethod)

		err = reg.RegisterRoute("BREW", "/", internal.ModeText, okRoute)
		require.ErrorIs(t, err, internal.ErrInvalidMethod)

		err = reg.RegisterRoute(http.MethodGet, "/", internal.Mode(0), okRoute)
		require.ErrorIs(t, err, internal.ErrUnknownMode)

		err = reg.RegisterRoute(http.MethodGet, "/", internal.ModeText, nil)
		require.ErrorIs(t, err, internal.ErrNilHandler)

		assert.Empty(t, reg.Routes())
	})

	t.Run("all supported methods", func(t *testing.T) {
		t.Parallel()
		reg := internal.NewRegistry()
		for _, m := range []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS", "PATCH", "TRACE", "CONNECT"} {
			require.NoError(t, reg.RegisterRoute(m, "/", internal.ModeText, okRoute), m)
		}
		assert.Len(t, reg.Routes(), 9)
	})
}

func TestRegistryRegisterFilter(t *testing.T) {
	t.Parallel()

	t.Run("sorted by order, stable for ties", func(t *testing.T) {
		t.Parallel()
		reg := internal.NewRegistry()
		all := mustPathPattern(t, ".*")

		for _, f := range []struct {
			name  string
			order int
		}{
			{"c", 5}, {"a", 1}, {"d", 5}, {"b", 1}, {"e", 0}, {"f", 9}, {"g", 1},
		} {
			require.NoError(t, reg.RegisterFilter(all, f.order, passFilter, internal.WithFilterName(f.name)))
		}

		var names []string
		for _, f := range reg.Filters() {
			names = append(names, f.Name)
		}
		assert.Equal(t, []string{"e", "a", "b", "g", "c", "d", "f"}, names)
	})

	t.Run("default name", func(t *testing.T) {
		t.Parallel()
		reg := internal.NewRegistry()
		require.NoError(t, reg.RegisterFilter(mustPathPattern(t, "/api/.*"), 0, passFilter))
		assert.Equal(t, "path_pattern=/api/.*", reg.Filters()[0].Name)
	})

	t.Run("blocking option", func(t *testing.T) {
		t.Parallel()
		reg := internal.NewRegistry()
		require.NoError(t, reg.RegisterFilter(mustPathPattern(t, ".*"), 0, passFilter, internal.WithBlocking()))
		assert.True(t, reg.Filters()[0].Blocking)
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()
		reg := internal.NewRegistry()
		all := mustPathPattern(t, ".*")

		require.ErrorIs(t, reg.RegisterFilter(nil, 0, passFilter), internal.ErrInvalidPredicate)
		require.ErrorIs(t, reg.RegisterFilter(all, -1, passFilter), internal.ErrInvalidOrder)
		require.ErrorIs(t, reg.RegisterFilter(all, 0, nil), internal.ErrNilHandler)
		assert.Empty(t, reg.Filters())
	})
}

func TestRegistryFreeze(t *testing.T) {
	t.Parallel()

	reg := internal.NewRegistry()
	require.NoError(t, reg.RegisterRoute(http.MethodGet, "/", internal.ModeText, okRoute))
	require.NoError(t, reg.RegisterFilter(mustPathPattern(t, ".*"), 0, passFilter))
	require.False(t, reg.Frozen())

	table := reg.Freeze()
	require.True(t, reg.Frozen())
	assert.Same(t, table, reg.Freeze())
	assert.Len(t, table.Routes(), 1)
	assert.Len(t, table.Filters(), 1)

	require.ErrorIs(t, reg.RegisterRoute(http.MethodGet, "/late", internal.ModeText, okRoute), internal.ErrRegistryFrozen)
	require.ErrorIs(t, reg.RegisterFilter(mustPathPattern(t, ".*"), 0, passFilter), internal.ErrRegistryFrozen)
	assert.Len(t, table.Routes(), 1)
}

func TestRegistryCopiesAreIndependent(t *testing.T) {
	t.Parallel()

	reg := internal.NewRegistry()
	require.NoError(t, reg.RegisterRoute(http.MethodGet, "/", internal.ModeText, okRoute))

	routes := reg.Routes()
	routes[0].Method = http.MethodPost
	assert.Equal(t, http.MethodGet, reg.Routes()[0].Method)
}

func TestRegistryConcurrentRegistration(t *testing.T) {
	t.Parallel()

	reg := internal.NewRegistry()
	all := mustPathPattern(t, ".*")

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, reg.RegisterRoute(http.MethodGet, "/r", internal.ModeText, okRoute))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, reg.RegisterFilter(all, i%5, passFilter))
			_ = reg.Filters()
		}()
	}
	wg.Wait()

	assert.Len(t, reg.Routes(), 50)
	filters := reg.Filters()
	require.Len(t, filters, 50)
	for i := 1; i < len(filters); i++ {
		assert.LessOrEqual(t, filters[i-1].Order, filters[i].Order)
	}
}

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()
	assert.Same(t, internal.DefaultRegistry(), internal.DefaultRegistry())
}
