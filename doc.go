// Package argos is an embeddable HTTP server core: connections are
// accepted, optionally TLS-terminated, and every request runs through an
// ordered chain of filters before being dispatched to exactly one route
// selected by method and path pattern.
//
// # Registration
//
// Routes and filters are registered during startup, typically from init()
// functions against the process-wide default registry:
//
//	func init() {
//	    argos.GET("/api/hello", argos.ModeText, func(r *argos.Request) (string, error) {
//	        return "hello " + r.QueryValue("name"), nil
//	    })
//
//	    argos.FilterPath("/api/.*", 1, func(r *argos.Request) argos.Decision {
//	        if !r.HasHeader("token") {
//	            return argos.Reject(argos.ErrUnauthorized("missing token").
//	                WithHeader("filter", "rejected"))
//	        }
//	        return argos.Continue(r)
//	    })
//	}
//
// A dedicated registry can be passed with [WithRegistry]. [NewServer]
// freezes the registry; later registrations fail with [ErrRegistryFrozen].
//
// # Path patterns
//
// Templates are slash-separated. Segments starting with ":" bind a path
// parameter, every other segment must match literally, and the segment
// count must be equal:
//
//	/items/:id      matches /items/42 with id=42
//	/items/:id      does not match /items or /items/42/x
//
// Routes are tried in registration order; the first match wins.
//
// # Filters
//
// Filters run in ascending order, ties in registration order. A filter's
// [Predicate] decides whether it sees the request at all. [Continue] passes
// the (possibly modified) request on; [Reject] ends the pipeline with the
// given error, rendered as text. A panicking filter is treated as a Reject
// with status 500. Filters registered [WithBlocking] run on a bounded worker
// pool so they never hold up other connections.
//
// # Rendering
//
// Each route declares a [Mode]. Success values and [TypedError] bodies are
// rendered the same way: JSON-encoded for [ModeJSON], displayed with fmt for
// [ModeText] and [ModeHTML]. In html mode a templ.Component is rendered as a
// component. Headers set on a TypedError are copied into the response.
//
//	argos.GET("/users/:id", argos.ModeJSON, func(r *argos.Request) (*User, error) {
//	    u, ok := users[r.Param("id")]
//	    if !ok {
//	        return nil, argos.NewError(http.StatusNotFound, map[string]string{"error": "no such user"})
//	    }
//	    return u, nil
//	})
//
// # Serving
//
// [Run] builds a server and serves until SIGINT or SIGTERM:
//
//	err := argos.Run(ctx,
//	    argos.WithAddress(":8443"),
//	    argos.WithProtocol(argos.ProtocolHTTP2),
//	    argos.WithTLS(tlsconfig.Files{KeyFile: "server.key", CertFile: "server.crt"}),
//	    argos.WithLogger(logger.New()),
//	)
//
// Every connection of a server is served with the same protocol. Without TLS,
// [ProtocolHTTP2] expects clients with prior knowledge (h2c).
package argos
