package internal

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/argos/pkg/logger"
)

// routeKey is the context key for the matched route pattern.
type routeKey struct{}

// RouteFromContext returns the pattern of the route serving the request, or
// "" before resolution.
func RouteFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(routeKey{}).(string); ok {
		return v
	}
	return ""
}

func withRoute(ctx context.Context, pattern string) context.Context {
	return context.WithValue(ctx, routeKey{}, pattern)
}

// RouteExtractor returns a ContextExtractor for logger.New that adds the
// matched route pattern as "route" to every log entry.
func RouteExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v := RouteFromContext(ctx); v != "" {
			return slog.String("route", v), true
		}
		return slog.Attr{}, false
	}
}
