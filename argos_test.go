package argos_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/argos"
)

type greeting struct {
	Message string `json:"message"`
}

// The default registry is process-wide and freezes once, so everything
// touching it lives in this one sequential test.
func TestDefaultRegistryHelpers(t *testing.T) {
	argos.GET("/greet/:name", argos.ModeJSON, func(r *argos.Request) (greeting, error) {
		return greeting{Message: "hi " + r.Param("name")}, nil
	})
	argos.POST("/echo", argos.ModeText, func(r *argos.Request) (string, error) {
		return r.HeaderValue("X-Echo"), nil
	})
	argos.FilterPath("^/greet/", 0, func(r *argos.Request) argos.Decision {
		if r.Param("name") != "" {
			// Params are bound after the chain runs.
			return argos.Reject(argos.ErrInternal("unexpected"))
		}
		if r.HasHeader("X-Block") {
			return argos.Reject(argos.ErrForbidden("blocked").WithHeader("filter", "rejected"))
		}
		return argos.Continue(r)
	}, argos.WithFilterName("blocker"))

	assert.Panics(t, func() { argos.FilterPath("(", 0, func(r *argos.Request) argos.Decision { return argos.Continue(r) }) })
	assert.Panics(t, func() { argos.Route("BREW", "/pot", argos.ModeText, func(*argos.Request) (string, error) { return "", nil }) })

	srv, err := argos.NewServer()
	require.NoError(t, err)
	require.True(t, argos.DefaultRegistry().Frozen())

	h := srv.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/greet/Ada", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"hi Ada"}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/greet/Ada", nil)
	req.Header.Set("X-Block", "1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "rejected", rec.Header().Get("filter"))

	req = httptest.NewRequest(http.MethodPost, "/echo", nil)
	req.Header.Set("X-Echo", "ping")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "ping", rec.Body.String())

	assert.Panics(t, func() {
		argos.GET("/late", argos.ModeText, func(*argos.Request) (string, error) { return "", nil })
	}, "registration after the server is built")
}

func TestNewError(t *testing.T) {
	t.Parallel()

	err := argos.NewError(http.StatusConflict, map[string]string{"error": "exists"}).WithHeader("Retry-After", "5")
	te, ok := argos.AsTypedError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, te.StatusCode())
	assert.Equal(t, "5", te.ResponseHeaders().Get("Retry-After"))
}
