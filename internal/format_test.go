package internal_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/argos/internal"
)

type point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p point) String() string { return "(1,2)" }

func TestFormatterSuccess(t *testing.T) {
	t.Parallel()

	f := internal.NewFormatter()
	ctx := context.Background()

	tests := []struct {
		name        string
		mode        internal.Mode
		value       any
		body        string
		contentType string
	}{
		{name: "json struct", mode: internal.ModeJSON, value: point{1, 2}, body: `{"x":1,"y":2}`, contentType: internal.ContentTypeJSON},
		{name: "json string", mode: internal.ModeJSON, value: "hi", body: `"hi"`, contentType: internal.ContentTypeJSON},
		{name: "json nil", mode: internal.ModeJSON, value: nil, body: `null`, contentType: internal.ContentTypeJSON},
		{name: "text string", mode: internal.ModeText, value: "hello Ada", body: "hello Ada", contentType: internal.ContentTypeText},
		{name: "text stringer", mode: internal.ModeText, value: point{1, 2}, body: "(1,2)", contentType: internal.ContentTypeText},
		{name: "text number", mode: internal.ModeText, value: 42, body: "42", contentType: internal.ContentTypeText},
		{name: "text bytes", mode: internal.ModeText, value: []byte("raw"), body: "raw", contentType: internal.ContentTypeText},
		{name: "text nil", mode: internal.ModeText, value: nil, body: "", contentType: internal.ContentTypeText},
		{name: "html string", mode: internal.ModeHTML, value: "<b>hi</b>", body: "<b>hi</b>", contentType: internal.ContentTypeHTML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			resp, err := f.Success(ctx, tt.mode, tt.value)
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.Status)
			assert.Equal(t, tt.body, string(resp.Body))
			assert.Equal(t, tt.contentType, resp.Header.Get("Content-Type"))
		})
	}
}

func TestFormatterFailure(t *testing.T) {
	t.Parallel()

	f := internal.NewFormatter()
	ctx := context.Background()

	t.Run("headers copied, content type fixed by mode", func(t *testing.T) {
		t.Parallel()
		te := internal.NewError(http.StatusUnauthorized, "no token").
			WithHeader("filter", "rejected").
			WithHeader("Content-Type", "application/xml")

		resp, err := f.Failure(ctx, internal.ModeText, te)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.Status)
		assert.Equal(t, "no token", string(resp.Body))
		assert.Equal(t, "rejected", resp.Header.Get("filter"))
		assert.Equal(t, []string{internal.ContentTypeText}, resp.Header.Values("Content-Type"))
	})

	t.Run("json body", func(t *testing.T) {
		t.Parallel()
		te := internal.NewError(http.StatusBadRequest, map[string]string{"error": "bad id"})
		resp, err := f.Failure(ctx, internal.ModeJSON, te)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.Status)
		assert.JSONEq(t, `{"error":"bad id"}`, string(resp.Body))
		assert.Equal(t, internal.ContentTypeJSON, resp.Header.Get("Content-Type"))
	})

	t.Run("multi-valued headers", func(t *testing.T) {
		t.Parallel()
		te := internal.ErrTooManyRequests("slow down").WithHeader("X-Reason", "a").WithHeader("X-Reason", "b")
		resp, err := f.Failure(ctx, internal.ModeHTML, te)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, resp.Header.Values("X-Reason"))
		assert.Equal(t, internal.ContentTypeHTML, resp.Header.Get("Content-Type"))
	})

	t.Run("does not mutate the error headers", func(t *testing.T) {
		t.Parallel()
		te := internal.ErrBadRequest("x").WithHeader("A", "1")
		_, err := f.Failure(ctx, internal.ModeText, te)
		require.NoError(t, err)
		assert.Empty(t, te.ResponseHeaders().Get("Content-Type"))
	})
}

func TestFormatterIdempotent(t *testing.T) {
	t.Parallel()

	f := internal.NewFormatter()
	ctx := context.Background()
	te := internal.NewError(http.StatusConflict, map[string]any{"b": 2, "a": []int{1, 2}}).WithHeader("X-A", "1")

	for _, mode := range []internal.Mode{internal.ModeJSON, internal.ModeText, internal.ModeHTML} {
		first, err := f.Failure(ctx, mode, te)
		require.NoError(t, err)
		second, err := f.Failure(ctx, mode, te)
		require.NoError(t, err)
		assert.Equal(t, first, second, mode.String())

		first, err = f.Success(ctx, mode, map[string]int{"z": 1, "a": 2})
		require.NoError(t, err)
		second, err = f.Success(ctx, mode, map[string]int{"z": 1, "a": 2})
		require.NoError(t, err)
		assert.Equal(t, first, second, mode.String())
	}
}

func TestFormatterSerializationFault(t *testing.T) {
	t.Parallel()

	f := internal.NewFormatter()
	_, err := f.Success(context.Background(), internal.ModeJSON, make(chan int))
	require.ErrorIs(t, err, internal.ErrSerialization)

	_, err = f.Failure(context.Background(), internal.ModeJSON, internal.NewError(http.StatusBadRequest, func() {}))
	require.ErrorIs(t, err, internal.ErrSerialization)

	_, err = f.Success(context.Background(), internal.Mode(42), "x")
	require.ErrorIs(t, err, internal.ErrUnknownMode)
}

func TestFormatterTempl(t *testing.T) {
	t.Parallel()

	f := internal.NewFormatter(internal.WithHTMLSanitizer(bluemonday.StrictPolicy()))
	component := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<h1>Hi</h1>")
		return err
	})

	resp, err := f.Success(context.Background(), internal.ModeHTML, component)
	require.NoError(t, err)
	assert.Equal(t, "<h1>Hi</h1>", string(resp.Body), "components are not sanitized")

	failing := templ.ComponentFunc(func(context.Context, io.Writer) error { return errors.New("render") })
	_, err = f.Success(context.Background(), internal.ModeHTML, failing)
	require.ErrorIs(t, err, internal.ErrSerialization)
}

func TestFormatterSanitizer(t *testing.T) {
	t.Parallel()

	f := internal.NewFormatter(internal.WithHTMLSanitizer(bluemonday.UGCPolicy()))
	resp, err := f.Success(context.Background(), internal.ModeHTML, `<p onclick="x()">hi<script>alert(1)</script></p>`)
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", string(resp.Body))

	resp, err = f.Success(context.Background(), internal.ModeText, "<script>")
	require.NoError(t, err)
	assert.Equal(t, "<script>", string(resp.Body), "text mode is never sanitized")
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]internal.Mode{
		"json": internal.ModeJSON,
		"text": internal.ModeText,
		"html": internal.ModeHTML,
	} {
		got, err := internal.ParseMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, in, got.String())
	}

	_, err := internal.ParseMode("xml")
	require.ErrorIs(t, err, internal.ErrUnknownMode)
}

func TestResponseWriteTo(t *testing.T) {
	t.Parallel()

	t.Run("writes status headers and body", func(t *testing.T) {
		t.Parallel()
		resp, err := internal.NewFormatter().Failure(context.Background(), internal.ModeText,
			internal.ErrUnauthorized("no token").WithHeader("filter", "rejected"))
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		require.NoError(t, resp.WriteTo(rec))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "no token", rec.Body.String())
		assert.Equal(t, "rejected", rec.Header().Get("filter"))
		assert.Equal(t, "8", rec.Header().Get("Content-Length"))
	})

	t.Run("no content", func(t *testing.T) {
		t.Parallel()
		resp := &internal.Response{Status: http.StatusNoContent, Header: http.Header{}}
		rec := httptest.NewRecorder()
		require.NoError(t, resp.WriteTo(rec))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Header().Get("Content-Length"))
	})
}
