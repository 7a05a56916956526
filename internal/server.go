package internal

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/net/http2"

	"github.com/dmitrymomot/argos/pkg/health"
	"github.com/dmitrymomot/argos/pkg/logger"
	"github.com/dmitrymomot/argos/pkg/tlsconfig"
)

const (
	defaultAddress           = ":8080"
	defaultReadTimeout       = 15 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultWriteTimeout      = 15 * time.Second
	defaultIdleTimeout       = 60 * time.Second
	defaultHandshakeTimeout  = 10 * time.Second
	defaultShutdownTimeout   = 30 * time.Second
	defaultMaxHeaderBytes    = 1 << 20

	// MetricsPath is where WithMetrics exposes the Prometheus registry.
	MetricsPath = "/metrics"

	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

// Server accepts connections, optionally terminates TLS, and serves every
// connection with one fixed protocol through a Dispatcher.
type Server struct {
	addr              string
	protocol          Protocol
	tlsFiles          *tlsconfig.Files
	tlsReload         bool
	logger            *slog.Logger
	registry          *Registry
	readTimeout       time.Duration
	readHeaderTimeout time.Duration
	writeTimeout      time.Duration
	idleTimeout       time.Duration
	handshakeTimeout  time.Duration
	shutdownTimeout   time.Duration
	shutdownHooks     []func(context.Context) error
	healthChecks      health.Checks
	healthOpts        []health.Option
	healthEnabled     bool
	metricsEnabled    bool
	promRegistry      *prometheus.Registry
	poolSize          int
	htmlPolicy        *bluemonday.Policy

	dispatcher *Dispatcher
	metrics    *Metrics
	handler    http.Handler
	certs      *tlsconfig.Provider
	tlsConfig  *tls.Config
	h1         *http.Server
	h2         *http2.Server

	mu       sync.Mutex
	ln       net.Listener
	queue    *connQueue
	conns    map[*trackedConn]struct{}
	serving  bool
	closing  bool
	loopDone chan struct{}
	wg       sync.WaitGroup
}

// NewServer builds a server and freezes its registry. Routes and filters
// must be registered before this call.
func NewServer(opts ...Option) (*Server, error) {
	s := &Server{
		addr:              defaultAddress,
		protocol:          ProtocolHTTP1,
		logger:            logger.NewNope(),
		registry:          defaultRegistry,
		readTimeout:       defaultReadTimeout,
		readHeaderTimeout: defaultReadHeaderTimeout,
		writeTimeout:      defaultWriteTimeout,
		idleTimeout:       defaultIdleTimeout,
		handshakeTimeout:  defaultHandshakeTimeout,
		shutdownTimeout:   defaultShutdownTimeout,
		conns:             make(map[*trackedConn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if !s.protocol.valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProtocol, s.protocol)
	}

	if s.healthEnabled {
		if err := registerHealthRoutes(s.registry, s.healthChecks, s.healthOpts...); err != nil {
			return nil, fmt.Errorf("argos: register health routes: %w", err)
		}
	}
	table := s.registry.Freeze()

	if s.metricsEnabled {
		s.metrics = NewMetrics(s.promRegistry)
	}

	var formatterOpts []FormatterOption
	if s.htmlPolicy != nil {
		formatterOpts = append(formatterOpts, WithHTMLSanitizer(s.htmlPolicy))
	}
	s.dispatcher = NewDispatcher(table,
		WithDispatchLogger(s.logger),
		WithDispatchPool(NewPool(s.poolSize)),
		WithDispatchFormatter(NewFormatter(formatterOpts...)),
		WithDispatchMetrics(s.metrics),
	)
	s.handler = accessLog(s.logger, s.routes())

	if s.tlsFiles != nil {
		certs, err := tlsconfig.NewProvider(*s.tlsFiles, tlsconfig.WithLogger(s.logger))
		if err != nil {
			return nil, fmt.Errorf("argos: load tls material: %w", err)
		}
		s.certs = certs
		s.tlsConfig = tlsconfig.ServerConfig(certs, s.protocol.alpn())
	}

	s.h1 = &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.readTimeout,
		ReadHeaderTimeout: s.readHeaderTimeout,
		WriteTimeout:      s.writeTimeout,
		IdleTimeout:       s.idleTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
		ErrorLog:          log.New(serveErrorLog{s.logger}, "", 0),
	}
	switch s.protocol {
	case ProtocolHTTP2:
		s.h2 = &http2.Server{IdleTimeout: s.idleTimeout}
		// Ties h2 connections to h1.Shutdown so they receive GOAWAY.
		if err := http2.ConfigureServer(s.h1, s.h2); err != nil {
			return nil, fmt.Errorf("argos: configure http2: %w", err)
		}
	default:
		// An empty map keeps net/http from upgrading handed-off TLS
		// connections to its bundled h2.
		s.h1.TLSNextProto = map[string]func(*http.Server, *tls.Conn, http.Handler){}
	}

	return s, nil
}

// routes is the outer mux. Operational endpoints live here; everything
// else falls through to the dispatcher.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	if s.metrics != nil {
		r.Method(http.MethodGet, MetricsPath, s.metrics.Handler())
	}
	r.NotFound(s.dispatcher.ServeHTTP)
	r.MethodNotAllowed(s.dispatcher.ServeHTTP)
	return r
}

// Handler returns the request handler connections are served with.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Dispatcher returns the server's dispatcher.
func (s *Server) Dispatcher() *Dispatcher {
	return s.dispatcher
}

// Listen binds the listen address. Serve calls it when needed; calling it
// first lets the caller learn the bound address (for ":0").
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listenLocked()
}

func (s *Server) listenLocked() error {
	if s.closing {
		return http.ErrServerClosed
	}
	if s.ln != nil {
		return ErrServerRunning
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("argos: listen %s: %w", s.addr, err)
	}
	s.ln = ln
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Serve runs the accept loop until ctx is done or the listener fails.
// It returns nil when stopped through ctx or Shutdown. Cancelling ctx only
// stops accepting; in-flight connections are drained by Shutdown.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return http.ErrServerClosed
	}
	if s.serving {
		s.mu.Unlock()
		return ErrServerRunning
	}
	if s.ln == nil {
		if err := s.listenLocked(); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	s.serving = true
	s.loopDone = make(chan struct{})
	ln := s.ln
	if s.protocol == ProtocolHTTP1 {
		s.queue = newConnQueue(ln.Addr())
	}
	queue := s.queue
	s.mu.Unlock()
	defer close(s.loopDone)

	// Connections outlive ctx until Shutdown drains them.
	connCtx := context.WithoutCancel(ctx)

	if queue != nil {
		s.h1.BaseContext = func(net.Listener) context.Context { return connCtx }
		go func() {
			err := s.h1.Serve(queue)
			if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, net.ErrClosed) {
				s.logger.ErrorContext(ctx, "http/1.1 server stopped", slog.Any("error", err))
			}
		}()
	}

	if s.certs != nil && s.tlsReload {
		go func() {
			if err := s.certs.Watch(ctx); err != nil {
				s.logger.WarnContext(ctx, "tls reload disabled", slog.Any("error", err))
			}
		}()
	}

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	s.logger.InfoContext(ctx, "server starting",
		slog.String("address", ln.Addr().String()),
		slog.String("protocol", s.protocol.String()),
		slog.Bool("tls", s.tlsConfig != nil),
	)

	return s.acceptLoop(ctx, connCtx, ln)
}

func (s *Server) acceptLoop(ctx, connCtx context.Context, ln net.Listener) error {
	var backoff time.Duration
	for {
		raw, err := ln.Accept()
		if err != nil {
			if s.isClosing() || ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("argos: accept: %w", err)
			}
			backoff = nextBackoff(backoff)
			s.logger.WarnContext(ctx, "accept failed",
				slog.Any("error", err),
				slog.Duration("retry_in", backoff),
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil
			}
			continue
		}
		backoff = 0

		conn := s.track(raw)
		if conn == nil {
			continue
		}
		s.wg.Add(1)
		go s.serveConn(connCtx, conn)
	}
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return minAcceptBackoff
	}
	return min(d*2, maxAcceptBackoff)
}

// serveConn owns one connection: handshake, then protocol serving.
// Nothing that happens here reaches the accept loop.
func (s *Server) serveConn(ctx context.Context, raw *trackedConn) {
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "connection serve failed",
				slog.String("remote_addr", raw.RemoteAddr().String()),
				slog.Any("panic", r),
			)
			_ = raw.Close()
		}
	}()

	var conn net.Conn = raw
	if s.tlsConfig != nil {
		tc := tls.Server(raw, s.tlsConfig)
		hctx, cancel := context.WithTimeout(ctx, s.handshakeTimeout)
		err := tc.HandshakeContext(hctx)
		cancel()
		if err != nil {
			s.metrics.observeHandshakeFailure()
			s.logger.WarnContext(ctx, "tls handshake failed",
				slog.String("remote_addr", raw.RemoteAddr().String()),
				slog.Any("error", err),
			)
			_ = raw.Close()
			return
		}
		conn = tc
	}

	if s.protocol == ProtocolHTTP2 {
		s.h2.ServeConn(conn, &http2.ServeConnOpts{
			Context:    ctx,
			BaseConfig: s.h1,
			Handler:    s.handler,
		})
		_ = conn.Close()
		return
	}

	if !s.queue.push(conn) {
		_ = conn.Close()
	}
}

func (s *Server) track(raw net.Conn) *trackedConn {
	c := &trackedConn{Conn: raw, onClose: s.untrack}
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		_ = raw.Close()
		return nil
	}
	s.conns[c] = struct{}{}
	s.mu.Unlock()
	s.metrics.connOpened()
	return c
}

func (s *Server) untrack(c *trackedConn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	s.metrics.connClosed()
}

func (s *Server) isClosing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}

// Shutdown stops accepting, asks open connections to finish (HTTP/2 peers
// receive GOAWAY) and waits until they are gone or ctx expires. On expiry
// the remaining connections are closed forcibly and ctx's error is
// returned. Calls after the first return nil.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return nil
	}
	s.closing = true
	ln, queue, loopDone := s.ln, s.queue, s.loopDone
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "shutting down server")

	var errs []error
	if ln != nil {
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs = append(errs, err)
		}
	}
	if loopDone != nil {
		<-loopDone
	}
	if queue != nil {
		_ = queue.Close()
	}
	if s.certs != nil {
		_ = s.certs.Close()
	}

	// Also starts graceful shutdown of h2 connections.
	if err := s.h1.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		if !errors.Is(errors.Join(errs...), ctx.Err()) {
			errs = append(errs, ctx.Err())
		}
	}
	if ctx.Err() != nil {
		s.closeConns()
	}

	return errors.Join(errs...)
}

func (s *Server) closeConns() {
	s.mu.Lock()
	conns := make([]*trackedConn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()
	for _, c := range conns {
		_ = c.Close()
	}
}

// serveErrorLog routes net/http and http2 connection errors into slog.
type serveErrorLog struct {
	logger *slog.Logger
}

func (w serveErrorLog) Write(p []byte) (int, error) {
	w.logger.Warn("connection serve failed", slog.String("error", strings.TrimSpace(string(p))))
	return len(p), nil
}
