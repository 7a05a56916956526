package internal

import (
	"context"
	"io"
	"maps"
	"net/http"
	"strings"
)

// Request is the mutable per-request value passed through the filter chain
// and into the route handler. It is owned by a single pipeline and must not
// be shared across goroutines.
type Request struct {
	raw        *http.Request
	pathParams map[string]string
	attributes map[string]string
	query      map[string]string
}

// NewRequest wraps an inbound http.Request.
func NewRequest(r *http.Request) *Request {
	return &Request{
		raw:        r,
		pathParams: make(map[string]string),
		attributes: make(map[string]string),
	}
}

// Raw returns the underlying http.Request.
func (r *Request) Raw() *http.Request {
	return r.raw
}

// Context returns the request context.
func (r *Request) Context() context.Context {
	return r.raw.Context()
}

// WithContext replaces the request context in place.
func (r *Request) WithContext(ctx context.Context) {
	r.raw = r.raw.WithContext(ctx)
}

func (r *Request) Method() string {
	return r.raw.Method
}

// Path returns the URL path without the query string.
func (r *Request) Path() string {
	return r.raw.URL.Path
}

func (r *Request) Host() string {
	return r.raw.Host
}

func (r *Request) Header() http.Header {
	return r.raw.Header
}

// HeaderValue returns the first value of the named header.
func (r *Request) HeaderValue(name string) string {
	return r.raw.Header.Get(name)
}

// HasHeader reports whether the named header is present, even if empty.
func (r *Request) HasHeader(name string) bool {
	_, ok := r.raw.Header[http.CanonicalHeaderKey(name)]
	return ok
}

// Body returns the raw request body stream.
func (r *Request) Body() io.ReadCloser {
	return r.raw.Body
}

// Query returns the query string as a key/value map.
// Pairs are split on "&", then on the first "="; a later duplicate key
// replaces an earlier one and a pair without "=" gets an empty value.
// Values are not percent-decoded. The map is parsed once and must not be
// modified by the caller.
func (r *Request) Query() map[string]string {
	if r.query == nil {
		r.query = parseQuery(r.raw.URL.RawQuery)
	}
	return r.query
}

// QueryValue returns a single query value, or "" when absent.
func (r *Request) QueryValue(name string) string {
	return r.Query()[name]
}

// PathParams returns the parameters bound by the matched route pattern.
// It is empty while filters run.
func (r *Request) PathParams() map[string]string {
	return r.pathParams
}

// Param returns a single path parameter, or "" when absent.
func (r *Request) Param(name string) string {
	return r.pathParams[name]
}

func (r *Request) setPathParams(params map[string]string) {
	r.pathParams = params
	if r.pathParams == nil {
		r.pathParams = make(map[string]string)
	}
}

// Attributes returns the free-form attribute map set by filters.
func (r *Request) Attributes() map[string]string {
	return r.attributes
}

// Attribute returns the named attribute and whether it is set.
func (r *Request) Attribute(key string) (string, bool) {
	v, ok := r.attributes[key]
	return v, ok
}

// SetAttribute sets an attribute visible to later filters and the handler.
func (r *Request) SetAttribute(key, value string) {
	r.attributes[key] = value
}

// clone copies the mutable maps so a filter that faults mid-mutation cannot
// leak its partial changes.
func (r *Request) clone() *Request {
	return &Request{
		raw:        r.raw,
		pathParams: maps.Clone(r.pathParams),
		attributes: maps.Clone(r.attributes),
		query:      r.query,
	}
}

func parseQuery(raw string) map[string]string {
	values := make(map[string]string)
	if raw == "" {
		return values
	}
	for pair := range strings.SplitSeq(raw, "&") {
		if pair == "" {
			continue
		}
		key, rest, _ := strings.Cut(pair, "=")
		value, _, _ := strings.Cut(rest, "=")
		values[key] = value
	}
	return values
}
