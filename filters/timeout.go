package filters

import (
	"context"
	"time"

	"github.com/dmitrymomot/argos/internal"
)

// DefaultTimeout is the default request deadline.
const DefaultTimeout = 30 * time.Second

// Timeout puts a deadline on the request context. Handlers and later
// filters observe it through r.Context(); nothing is interrupted forcibly.
// A non-positive d uses DefaultTimeout.
func Timeout(d time.Duration) internal.FilterHandler {
	if d <= 0 {
		d = DefaultTimeout
	}
	return func(r *internal.Request) internal.Decision {
		parent := r.Context()
		ctx, cancel := context.WithTimeout(parent, d)
		// The request context ends with the request; release the timer then.
		context.AfterFunc(parent, cancel)
		r.WithContext(ctx)
		return internal.Continue(r)
	}
}
