package argos

import "net/http"

// Route registers a route on the default registry. It is meant for init()
// functions and panics if the registration is invalid or the registry is
// already frozen.
//
//	func init() {
//	    argos.Route(http.MethodGet, "/items/:id", argos.ModeJSON, getItem)
//	}
func Route[T any](method, template string, mode Mode, fn func(r *Request) (T, error)) {
	must(DefaultRegistry().RegisterRoute(method, template, mode, Handle(fn)))
}

// GET registers a GET route on the default registry.
func GET[T any](template string, mode Mode, fn func(r *Request) (T, error)) {
	Route(http.MethodGet, template, mode, fn)
}

// POST registers a POST route on the default registry.
func POST[T any](template string, mode Mode, fn func(r *Request) (T, error)) {
	Route(http.MethodPost, template, mode, fn)
}

// PUT registers a PUT route on the default registry.
func PUT[T any](template string, mode Mode, fn func(r *Request) (T, error)) {
	Route(http.MethodPut, template, mode, fn)
}

// PATCH registers a PATCH route on the default registry.
func PATCH[T any](template string, mode Mode, fn func(r *Request) (T, error)) {
	Route(http.MethodPatch, template, mode, fn)
}

// DELETE registers a DELETE route on the default registry.
func DELETE[T any](template string, mode Mode, fn func(r *Request) (T, error)) {
	Route(http.MethodDelete, template, mode, fn)
}

// Filter registers a filter on the default registry. Panics like Route.
func Filter(pred Predicate, order int, h FilterHandler, opts ...FilterOption) {
	must(DefaultRegistry().RegisterFilter(pred, order, h, opts...))
}

// FilterPath registers a filter matching request paths against a regular
// expression. Panics like Route, including on an invalid expression.
func FilterPath(expr string, order int, h FilterHandler, opts ...FilterOption) {
	pred, err := PathPattern(expr)
	must(err)
	Filter(pred, order, h, opts...)
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
