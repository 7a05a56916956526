// Package internal provides the core types and implementation for argos.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/argos" instead, which re-exports the public API.
//
// # Pipeline
//
// Every request follows the same fixed path:
//
//	connection -> (TLS handshake) -> protocol serving -> Request
//	    -> filter chain (ascending order, first Reject wins)
//	    -> route resolution (first registered match)
//	    -> handler -> Formatter -> Response
//
// The Registry is written during startup only. NewServer freezes it into a
// Table that is shared by every connection without locking.
//
// # Error categories
//
// Unmatched routes produce a 404. Filter rejections and handler errors
// implementing TypedError are rendered through the Formatter; other handler
// errors become a 500. Handler panics and serialization failures are faults:
// Dispatch returns them as errors and the HTTP adapter answers a generic 500.
// Transport errors (bad requests, I/O, TLS handshakes) are confined to the
// connection they occur on.
//
// # Protocols
//
// A server speaks exactly one protocol. ProtocolHTTP1 hands accepted
// connections to a shared net/http server; ProtocolHTTP2 serves each
// connection with golang.org/x/net/http2, over TLS (ALPN "h2") or in
// cleartext with prior knowledge.
package internal
