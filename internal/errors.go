package internal

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for registration, dispatch and serving.
var (
	ErrRegistryFrozen   = errors.New("argos: registry is frozen")
	ErrInvalidMethod    = errors.New("argos: unsupported http method")
	ErrInvalidOrder     = errors.New("argos: filter order must be non-negative")
	ErrInvalidPredicate = errors.New("argos: invalid filter predicate")
	ErrNilHandler       = errors.New("argos: nil handler")
	ErrUnknownMode      = errors.New("argos: unknown rendering mode")
	ErrSerialization    = errors.New("argos: response serialization failed")
	ErrUnknownProtocol  = errors.New("argos: unknown protocol")
	ErrServerRunning    = errors.New("argos: server already running")
	ErrInvalidConfig    = errors.New("argos: invalid configuration")
)

// TypedError is an error that carries the data needed to render a response:
// status code, body and extra response headers. Filters reject with a
// TypedError and handlers may return one to control the error response.
type TypedError interface {
	error
	StatusCode() int
	ResponseBody() any
	ResponseHeaders() http.Header
}

// Error is the generic TypedError implementation.
// B is rendered through the active route's mode: serialized for json,
// displayed with fmt for text and html.
type Error[B any] struct {
	Body    B
	Headers http.Header
	// Err is the underlying cause. It is never rendered.
	Err  error
	Code int
}

// NewError creates an Error with the given status code and body.
func NewError[B any](code int, body B) *Error[B] {
	return &Error[B]{
		Code:    code,
		Body:    body,
		Headers: make(http.Header),
	}
}

func (e *Error[B]) Error() string {
	msg := fmt.Sprint(e.Body)
	if msg == "" {
		msg = http.StatusText(e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Code, msg, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Code, msg)
}

func (e *Error[B]) Unwrap() error {
	return e.Err
}

func (e *Error[B]) StatusCode() int {
	return e.Code
}

func (e *Error[B]) ResponseBody() any {
	return e.Body
}

func (e *Error[B]) ResponseHeaders() http.Header {
	return e.Headers
}

// WithHeader appends a response header value and returns the error for chaining.
func (e *Error[B]) WithHeader(key, value string) *Error[B] {
	if e.Headers == nil {
		e.Headers = make(http.Header)
	}
	e.Headers.Add(key, value)
	return e
}

// WithCause records the underlying error and returns the error for chaining.
func (e *Error[B]) WithCause(err error) *Error[B] {
	e.Err = err
	return e
}

// Convenience constructors for common rejections.

func ErrBadRequest(message string) *Error[string] {
	return NewError(http.StatusBadRequest, message)
}

func ErrUnauthorized(message string) *Error[string] {
	return NewError(http.StatusUnauthorized, message)
}

func ErrForbidden(message string) *Error[string] {
	return NewError(http.StatusForbidden, message)
}

func ErrNotFound(message string) *Error[string] {
	return NewError(http.StatusNotFound, message)
}

func ErrTooManyRequests(message string) *Error[string] {
	return NewError(http.StatusTooManyRequests, message)
}

func ErrInternal(message string) *Error[string] {
	return NewError(http.StatusInternalServerError, message)
}

func ErrServiceUnavailable(message string) *Error[string] {
	return NewError(http.StatusServiceUnavailable, message)
}

// AsTypedError extracts a TypedError from err, following wrapped errors.
func AsTypedError(err error) (TypedError, bool) {
	var te TypedError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// renderable reports whether te can be written as a response: it must hold
// a value and carry a status code in the 100-999 range net/http accepts.
func renderable(te TypedError) (ok bool) {
	if te == nil {
		return false
	}
	// A typed nil pointer panics in StatusCode.
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	code := te.StatusCode()
	return code >= 100 && code <= 999
}

// PanicError represents a panic recovered from a filter or handler.
type PanicError struct {
	Value any    // The panic value
	Stack []byte // Stack trace
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// AsPanicError extracts the PanicError from an error if present.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
