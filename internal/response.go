package internal

import (
	"errors"
	"net/http"
	"slices"
	"strconv"
)

// Response is a fully rendered reply, independent of the protocol it is
// written over.
type Response struct {
	Header http.Header
	Body   []byte
	Status int
}

func newResponse(status int) *Response {
	return &Response{
		Status: status,
		Header: make(http.Header),
	}
}

// notFoundResponse is returned when no route matches.
func notFoundResponse() *Response {
	resp := newResponse(http.StatusNotFound)
	resp.Header.Set("Content-Type", ContentTypeText)
	resp.Body = []byte("not found")
	return resp
}

// faultResponse is the generic reply for faults that have no typed error.
func faultResponse() *Response {
	resp := newResponse(http.StatusInternalServerError)
	resp.Header.Set("Content-Type", ContentTypeText)
	resp.Body = []byte(http.StatusText(http.StatusInternalServerError))
	return resp
}

// WriteTo writes the response to w. Bodies the protocol does not allow
// (HEAD requests, 204, 304) are dropped silently.
func (r *Response) WriteTo(w http.ResponseWriter) error {
	h := w.Header()
	for key, values := range r.Header {
		h[key] = slices.Clone(values)
	}
	if len(r.Body) > 0 && bodyAllowed(r.Status) {
		h.Set("Content-Length", strconv.Itoa(len(r.Body)))
	}
	w.WriteHeader(r.Status)
	if len(r.Body) == 0 {
		return nil
	}
	if _, err := w.Write(r.Body); err != nil && !errors.Is(err, http.ErrBodyNotAllowed) {
		return err
	}
	return nil
}

func bodyAllowed(status int) bool {
	return status >= 200 && status != http.StatusNoContent && status != http.StatusNotModified
}
