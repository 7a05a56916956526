package internal_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/argos/internal"
)

func httptestRequest(ctx context.Context, method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil).WithContext(ctx)
}

func TestResolve(t *testing.T) {
	t.Parallel()

	reg := internal.NewRegistry()
	named := func(name string) internal.RouteHandler {
		return func(*internal.Request) (any, error) { return name, nil }
	}
	require.NoError(t, reg.RegisterRoute(http.MethodGet, "/items/:id", internal.ModeJSON, named("item")))
	require.NoError(t, reg.RegisterRoute(http.MethodGet, "/items/new", internal.ModeJSON, named("new")))
	require.NoError(t, reg.RegisterRoute(http.MethodPost, "/items/:id", internal.ModeJSON, named("post")))
	require.NoError(t, reg.RegisterRoute(http.MethodGet, "/a/:b", internal.ModeText, named("ab")))
	routes := reg.Routes()

	t.Run("first match wins", func(t *testing.T) {
		t.Parallel()
		route, params, ok := internal.Resolve(routes, http.MethodGet, "/items/new")
		require.True(t, ok)
		v, _ := route.Handler(nil)
		assert.Equal(t, "item", v, "the earlier parameter route shadows the literal route")
		assert.Equal(t, map[string]string{"id": "new"}, params)
	})

	t.Run("method is compared exactly", func(t *testing.T) {
		t.Parallel()
		route, _, ok := internal.Resolve(routes, http.MethodPost, "/items/1")
		require.True(t, ok)
		v, _ := route.Handler(nil)
		assert.Equal(t, "post", v)

		_, _, ok = internal.Resolve(routes, "get", "/items/1")
		assert.False(t, ok)
		_, _, ok = internal.Resolve(routes, http.MethodDelete, "/items/1")
		assert.False(t, ok)
	})

	t.Run("segment count must match", func(t *testing.T) {
		t.Parallel()
		_, _, ok := internal.Resolve(routes, http.MethodGet, "/a")
		assert.False(t, ok)
		_, _, ok = internal.Resolve(routes, http.MethodGet, "/a/b/c")
		assert.False(t, ok)
	})

	t.Run("empty parameter segment still binds", func(t *testing.T) {
		t.Parallel()
		_, params, ok := internal.Resolve(routes, http.MethodGet, "/a/")
		require.True(t, ok)
		assert.Equal(t, map[string]string{"b": ""}, params)
	})

	t.Run("no routes", func(t *testing.T) {
		t.Parallel()
		_, _, ok := internal.Resolve(nil, http.MethodGet, "/")
		assert.False(t, ok)
	})
}
