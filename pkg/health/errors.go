package health

import "errors"

// Sentinel errors for the health package.
var (
	// ErrCheckFailed is returned when one or more health checks fail.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout is reported for a check that exceeds its timeout.
	ErrCheckTimeout = errors.New("health: check timeout")
)

// Err returns ErrCheckFailed for an unhealthy report and nil otherwise.
func (r *Report) Err() error {
	if r.Healthy() {
		return nil
	}
	return ErrCheckFailed
}
