package internal

import (
	"bytes"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnQueue(t *testing.T) {
	t.Parallel()

	addr := &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9}
	q := newConnQueue(addr)
	assert.Equal(t, addr, q.Addr())

	client, server := net.Pipe()
	defer func() { _ = client.Close() }()

	pushed := make(chan bool, 1)
	go func() { pushed <- q.push(server) }()

	got, err := q.Accept()
	require.NoError(t, err)
	assert.Same(t, server, got)
	assert.True(t, <-pushed)

	require.NoError(t, q.Close())
	require.NoError(t, q.Close())

	_, err = q.Accept()
	require.ErrorIs(t, err, net.ErrClosed)
	assert.False(t, q.push(server), "push after close keeps ownership with the caller")
}

func TestTrackedConnClosesOnce(t *testing.T) {
	t.Parallel()

	client, server := net.Pipe()
	defer func() { _ = client.Close() }()

	var calls int
	c := &trackedConn{Conn: server, onClose: func(*trackedConn) { calls++ }}
	_ = c.Close()
	_ = c.Close()
	assert.Equal(t, 1, calls)
}

func TestNextBackoff(t *testing.T) {
	t.Parallel()

	var d time.Duration
	var seen []time.Duration
	for range 10 {
		d = nextBackoff(d)
		seen = append(seen, d)
	}
	assert.Equal(t, minAcceptBackoff, seen[0])
	assert.Equal(t, 2*minAcceptBackoff, seen[1])
	assert.Equal(t, maxAcceptBackoff, seen[len(seen)-1])
	for _, v := range seen {
		assert.LessOrEqual(t, v, maxAcceptBackoff)
	}
}

func TestAccessLog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := accessLog(l, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pot", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	out := buf.String()
	assert.Contains(t, out, `msg="request served"`)
	assert.Contains(t, out, "status=418")
	assert.Contains(t, out, "size=15")
	assert.Contains(t, out, "path=/pot")
}

func TestAccessLogDisabledAboveDebug(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	h := accessLog(l, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "ok", rec.Body.String())
	assert.Empty(t, buf.String())
}

func TestServeErrorLog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := serveErrorLog{logger: slog.New(slog.NewTextHandler(&buf, nil))}
	n, err := w.Write([]byte("http: TLS handshake error from 1.2.3.4: EOF\n"))
	require.NoError(t, err)
	assert.Equal(t, 44, n)
	assert.Contains(t, buf.String(), `msg="connection serve failed"`)
	assert.Contains(t, buf.String(), "EOF")
}
