package internal

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/dmitrymomot/argos/pkg/logger"
)

const handlerStackSize = 8192

// Dispatcher runs the filter chain, resolves the route, invokes the handler
// and formats the outcome. It reads a frozen Table and is safe for
// concurrent use by any number of connections.
type Dispatcher struct {
	table     *Table
	chain     *chainRunner
	formatter *Formatter
	logger    *slog.Logger
	metrics   *Metrics
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatchLogger sets the logger. Defaults to a no-op logger.
func WithDispatchLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithDispatchPool sets the offload pool for blocking filters.
// Without a pool blocking filters run inline.
func WithDispatchPool(p *Pool) DispatcherOption {
	return func(d *Dispatcher) {
		d.chain.pool = p
	}
}

// WithDispatchFormatter replaces the default Formatter.
func WithDispatchFormatter(f *Formatter) DispatcherOption {
	return func(d *Dispatcher) {
		if f != nil {
			d.formatter = f
		}
	}
}

// WithDispatchMetrics records request metrics.
func WithDispatchMetrics(m *Metrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// NewDispatcher creates a dispatcher over a frozen table.
func NewDispatcher(table *Table, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		table:     table,
		chain:     &chainRunner{},
		formatter: NewFormatter(),
		logger:    logger.NewNope(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.chain.logger = d.logger
	return d
}

// Dispatch drives one request through the pipeline. Rejections, unmatched
// routes and handler errors all come back as a Response. The returned error
// is reserved for faults the dispatcher cannot render: handler panics and
// serialization failures (wrapping ErrSerialization).
func (d *Dispatcher) Dispatch(req *Request) (*Response, error) {
	resp, _, err := d.dispatch(req)
	return resp, err
}

func (d *Dispatcher) dispatch(req *Request) (*Response, string, error) {
	outcome := d.chain.run(d.table.Filters(), req)
	if outcome.Rejected() {
		d.metrics.observeRejection(outcome.Filter)
		d.logger.DebugContext(req.Context(), "request rejected",
			slog.String("filter", outcome.Filter),
			slog.Int("status", outcome.Rejection.StatusCode()),
		)
		resp, err := d.formatter.Failure(req.Context(), ModeText, outcome.Rejection)
		return resp, routeLabelRejected, err
	}
	req = outcome.Request

	route, params, ok := Resolve(d.table.Routes(), req.Method(), req.Path())
	if !ok {
		return notFoundResponse(), routeLabelUnmatched, nil
	}
	label := route.Pattern.String()
	req.setPathParams(params)
	req.WithContext(withRoute(req.Context(), label))

	value, err := d.invoke(route, req)
	if err != nil {
		if pe, isPanic := AsPanicError(err); isPanic {
			return nil, label, fmt.Errorf("route %s %s: %w", route.Method, label, pe)
		}
		te, typed := AsTypedError(err)
		if !typed || !renderable(te) {
			d.logger.ErrorContext(req.Context(), "handler failed",
				slog.Any("error", err),
				slog.Bool("typed", typed),
			)
			te = ErrInternal(http.StatusText(http.StatusInternalServerError)).WithCause(err)
		}
		resp, ferr := d.formatter.Failure(req.Context(), route.Mode, te)
		return resp, label, ferr
	}

	resp, err := d.formatter.Success(req.Context(), route.Mode, value)
	return resp, label, err
}

// invoke calls the handler, converting a panic into a *PanicError.
func (d *Dispatcher) invoke(route RouteEntry, req *Request) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, handlerStackSize)
			stack = stack[:runtime.Stack(stack, false)]
			value, err = nil, &PanicError{Value: r, Stack: stack}
		}
	}()
	return route.Handler(req)
}

// ServeHTTP adapts the dispatcher to net/http. Faults are logged and
// answered with a generic 500.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	resp, route, err := d.dispatch(NewRequest(r))
	if err != nil {
		d.metrics.observeFault()
		attrs := []any{
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		}
		if pe, ok := AsPanicError(err); ok {
			attrs = append(attrs, slog.String("stack", string(pe.Stack)))
		}
		d.logger.ErrorContext(r.Context(), "dispatch fault", attrs...)
		resp = faultResponse()
	}

	if werr := resp.WriteTo(w); werr != nil {
		d.logger.DebugContext(r.Context(), "response write failed", slog.Any("error", werr))
	}
	d.metrics.observeRequest(route, r.Method, resp.Status, time.Since(start))
}
