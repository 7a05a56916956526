// Package filters provides built-in filter handlers for argos.
//
// Each constructor returns an internal.FilterHandler to be registered with
// a predicate and an order:
//
//	all, _ := argos.PathPattern(".*")
//	argos.Filter(all, 0, filters.RequestID())
//	argos.Filter(all, 10, filters.Timeout(5*time.Second))
//	argos.Filter(all, 20, filters.RateLimit(50, 100))
//
// Filters communicate with later filters and handlers through request
// attributes and the request context. They cannot write response headers;
// rejections carry their own headers.
package filters
