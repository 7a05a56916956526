// Package pathpattern compiles and matches slash-delimited path templates.
//
// A template is made of literal segments and named parameter segments. A
// parameter segment starts with a colon and binds the corresponding segment
// of a candidate path by name:
//
//	p := pathpattern.Compile("/items/:id")
//	params, ok := p.Match("/items/42") // map[id:42], true
//
// Matching is linear, deterministic and never backtracks. The candidate must
// have exactly as many segments as the template; there are no wildcard,
// optional or variadic segments. A literal segment must match byte-for-byte.
//
// A parameter segment accepts any value, including the empty string, so the
// template "/a/:id" matches "/a/" with id bound to "".
package pathpattern
