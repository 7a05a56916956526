package internal

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/argos/pkg/health"
)

// Health route paths.
const (
	LivenessPath  = "/health/live"
	ReadinessPath = "/health/ready"
)

// registerHealthRoutes adds the probe routes to reg as json routes, so they
// pass through the filter chain like any other route.
func registerHealthRoutes(reg *Registry, checks health.Checks, opts ...health.Option) error {
	live := Handle(func(*Request) (*health.Report, error) {
		return &health.Report{Status: health.StatusHealthy}, nil
	})

	ready := Handle(func(r *Request) (*health.Report, error) {
		report := health.Run(r.Context(), checks, opts...)
		if !report.Healthy() {
			return nil, NewError(http.StatusServiceUnavailable, report).WithCause(report.Err())
		}
		return report, nil
	})

	return errors.Join(
		reg.RegisterRoute(http.MethodGet, LivenessPath, ModeJSON, live),
		reg.RegisterRoute(http.MethodGet, ReadinessPath, ModeJSON, ready),
	)
}
