package filters

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/argos/internal"
	"github.com/dmitrymomot/argos/pkg/logger"
)

// RequestIDAttribute is the request attribute holding the request ID.
const RequestIDAttribute = "request_id"

type requestIDKey struct{}

// DefaultRequestIDHeaders are the headers checked (in order) for an existing request ID.
var DefaultRequestIDHeaders = []string{"X-Request-ID", "X-Correlation-ID"}

type requestIDConfig struct {
	generator func() string
	headers   []string
}

// RequestIDOption configures RequestID.
type RequestIDOption func(*requestIDConfig)

// WithRequestIDHeaders sets the headers to check for existing request IDs.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		cfg.headers = headers
	}
}

// WithRequestIDGenerator sets a custom ID generator function.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		if gen != nil {
			cfg.generator = gen
		}
	}
}

// RequestID tags each request with an ID taken from the first non-empty
// configured header, or a new UUIDv4. The ID is stored as the
// RequestIDAttribute attribute and in the request context.
func RequestID(opts ...RequestIDOption) internal.FilterHandler {
	cfg := &requestIDConfig{
		generator: uuid.NewString,
		headers:   DefaultRequestIDHeaders,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(r *internal.Request) internal.Decision {
		var id string
		for _, h := range cfg.headers {
			if v := r.HeaderValue(h); v != "" {
				id = v
				break
			}
		}
		if id == "" {
			id = cfg.generator()
		}

		r.SetAttribute(RequestIDAttribute, id)
		r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))
		return internal.Continue(r)
	}
}

// RequestIDFromContext returns the request ID, or "" if RequestID did not run.
func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// RequestIDExtractor returns a ContextExtractor that adds "request_id" to
// log entries.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v := RequestIDFromContext(ctx); v != "" {
			return slog.String("request_id", v), true
		}
		return slog.Attr{}, false
	}
}
