package internal

import (
	"context"
	"log/slog"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/argos/pkg/health"
	"github.com/dmitrymomot/argos/pkg/tlsconfig"
)

// Option configures a Server.
type Option func(*Server)

// WithAddress sets the listen address.
// Defaults to ":8080".
func WithAddress(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithProtocol selects the protocol every connection is served with.
// Defaults to ProtocolHTTP1.
func WithProtocol(p Protocol) Option {
	return func(s *Server) {
		s.protocol = p
	}
}

// WithTLS enables TLS termination with the given key pair.
// The pair is loaded when the server is built; a bad pair fails NewServer.
func WithTLS(files tlsconfig.Files) Option {
	return func(s *Server) {
		s.tlsFiles = &files
	}
}

// WithTLSReload watches the key pair files and swaps the certificate when
// they change. Has no effect without WithTLS.
func WithTLSReload() Option {
	return func(s *Server) {
		s.tlsReload = true
	}
}

// WithLogger sets the server logger.
// If nil, logging is disabled.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRegistry serves routes and filters from reg instead of the
// process-wide default registry.
func WithRegistry(reg *Registry) Option {
	return func(s *Server) {
		if reg != nil {
			s.registry = reg
		}
	}
}

// WithReadTimeout sets the maximum duration for reading an entire request.
func WithReadTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.readTimeout = d
		}
	}
}

// WithReadHeaderTimeout sets the maximum duration for reading request headers.
func WithReadHeaderTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.readHeaderTimeout = d
		}
	}
}

// WithWriteTimeout sets the maximum duration before timing out writes of
// the response.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.writeTimeout = d
		}
	}
}

// WithIdleTimeout sets how long a keep-alive connection may stay idle.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.idleTimeout = d
		}
	}
}

// WithHandshakeTimeout bounds the TLS handshake of each connection.
// Defaults to 10 seconds.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.handshakeTimeout = d
		}
	}
}

// WithShutdownTimeout sets the graceful shutdown deadline used by Run.
// Defaults to 30 seconds.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// WithShutdownHook registers a cleanup function Run calls after the
// listener has drained. Hooks run in registration order.
func WithShutdownHook(fn func(context.Context) error) Option {
	return func(s *Server) {
		if fn != nil {
			s.shutdownHooks = append(s.shutdownHooks, fn)
		}
	}
}

// WithHealthChecks registers GET /health/live and GET /health/ready as json
// routes. Readiness runs checks on every request and answers 503 when any
// fails.
func WithHealthChecks(checks health.Checks, opts ...health.Option) Option {
	return func(s *Server) {
		if s.healthChecks == nil {
			s.healthChecks = health.Checks{}
		}
		for name, check := range checks {
			s.healthChecks[name] = check
		}
		s.healthOpts = append(s.healthOpts, opts...)
		s.healthEnabled = true
	}
}

// WithMetrics records Prometheus metrics in reg and serves them at /metrics.
// A nil reg uses a registry private to the server.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.metricsEnabled = true
		s.promRegistry = reg
	}
}

// WithBlockingPoolSize bounds how many blocking filters may run at once.
// Defaults to 4 x GOMAXPROCS.
func WithBlockingPoolSize(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.poolSize = n
		}
	}
}

// WithHTMLPolicy sanitizes display strings rendered by html routes.
// Values implementing templ.Component are not affected.
func WithHTMLPolicy(p *bluemonday.Policy) Option {
	return func(s *Server) {
		s.htmlPolicy = p
	}
}
