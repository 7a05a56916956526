package internal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/dmitrymomot/argos/pkg/logger"
)

const filterStackSize = 4096

var errInvalidDecision = errors.New("argos: filter returned an invalid or unrenderable decision")

// ChainOutcome is the result of running the filter chain: either the final
// request (Continued) or the rejection that stopped the chain.
type ChainOutcome struct {
	Request   *Request
	Rejection TypedError
	// Filter names the filter that rejected.
	Filter string
}

// Rejected reports whether a filter rejected the request.
func (o ChainOutcome) Rejected() bool {
	return o.Rejection != nil
}

// RunChain evaluates filters in order against req. Blocking filters run
// inline; use a chain runner with a Pool to offload them.
func RunChain(filters []FilterEntry, req *Request) ChainOutcome {
	c := &chainRunner{logger: logger.NewNope()}
	return c.run(filters, req)
}

type chainRunner struct {
	pool   *Pool
	logger *slog.Logger
}

// run executes filters strictly one after another. A filter whose predicate
// does not match is skipped without seeing the request.
func (c *chainRunner) run(filters []FilterEntry, req *Request) ChainOutcome {
	for _, f := range filters {
		if !f.Predicate.Matches(req) {
			continue
		}

		var d Decision
		if f.Blocking && c.pool != nil {
			d = c.callBlocking(f, req)
		} else {
			d = c.call(req.Context(), f, req)
		}

		if te, rejected := d.Rejection(); rejected {
			return ChainOutcome{Rejection: te, Filter: f.Name}
		}
		req = d.Request()
	}
	return ChainOutcome{Request: req}
}

// call invokes a filter, turning a panic or an invalid decision into a 500
// rejection so a faulty filter never takes the connection down.
func (c *chainRunner) call(ctx context.Context, f FilterEntry, req *Request) (d Decision) {
	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, filterStackSize)
			stack = stack[:runtime.Stack(stack, false)]
			c.logger.ErrorContext(ctx, "filter panic recovered",
				slog.String("filter", f.Name),
				slog.Any("panic", r),
				slog.String("stack", string(stack)),
			)
			d = Reject(ErrInternal(http.StatusText(http.StatusInternalServerError)).WithCause(&PanicError{Value: r, Stack: stack}))
		}
	}()

	d = f.Handler(req)
	if !d.valid() {
		c.logger.ErrorContext(ctx, "filter returned invalid decision", slog.String("filter", f.Name))
		return Reject(ErrInternal(http.StatusText(http.StatusInternalServerError)).WithCause(errInvalidDecision))
	}
	return d
}

// callBlocking runs the filter on the offload pool and waits for its
// decision. The filter works on a copy of the request so an abandoned
// invocation cannot touch the pipeline's state.
func (c *chainRunner) callBlocking(f FilterEntry, req *Request) Decision {
	ctx := req.Context()
	work := req.clone()
	result := make(chan Decision, 1)

	if err := c.pool.Go(ctx, func() { result <- c.call(ctx, f, work) }); err != nil {
		return Reject(ErrServiceUnavailable(http.StatusText(http.StatusServiceUnavailable)).WithCause(err))
	}

	select {
	case d := <-result:
		return d
	case <-ctx.Done():
		c.logger.WarnContext(ctx, "blocking filter abandoned",
			slog.String("filter", f.Name),
			slog.Any("error", ctx.Err()),
		)
		return Reject(ErrServiceUnavailable(http.StatusText(http.StatusServiceUnavailable)).WithCause(ctx.Err()))
	}
}
