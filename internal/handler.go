package internal

// RouteHandler serves a resolved request. The returned value is rendered by
// the route's Mode; a returned TypedError controls the error response and any
// other error is answered with a generic 500.
type RouteHandler func(r *Request) (any, error)

// Handle adapts a typed handler function to a RouteHandler.
//
// Example:
//
//	argos.Handle(func(r *argos.Request) (Greeting, error) {
//	    return Greeting{Name: r.QueryValue("name")}, nil
//	})
func Handle[T any](fn func(r *Request) (T, error)) RouteHandler {
	if fn == nil {
		return nil
	}
	return func(r *Request) (any, error) {
		v, err := fn(r)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

// FilterHandler inspects a request and decides whether the pipeline continues.
// It must return either Continue or Reject, never both.
type FilterHandler func(r *Request) Decision

// Decision is the outcome of a single filter.
type Decision struct {
	req *Request
	err TypedError
}

// Continue hands the (possibly mutated) request back to the pipeline.
func Continue(r *Request) Decision {
	return Decision{req: r}
}

// Reject terminates the pipeline with err as the response.
func Reject(err TypedError) Decision {
	return Decision{err: err}
}

// Request returns the continued request, or nil for a rejection.
func (d Decision) Request() *Request {
	return d.req
}

// Rejection returns the rejection error and true when the filter rejected.
func (d Decision) Rejection() (TypedError, bool) {
	return d.err, d.err != nil
}

// valid reports whether exactly one of the two variants is set and a
// rejection can be rendered.
func (d Decision) valid() bool {
	if d.req != nil {
		return d.err == nil
	}
	return renderable(d.err)
}
