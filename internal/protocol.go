package internal

import (
	"fmt"
	"strings"

	"golang.org/x/net/http2"
)

// Protocol is the HTTP version every connection of a server is served with.
// It is fixed when the server is built; there is no per-connection
// negotiation between versions.
type Protocol int

const (
	ProtocolHTTP1 Protocol = iota
	ProtocolHTTP2
)

// ParseProtocol parses "http1" or "http2". The ALPN names "http/1.1" and
// "h2" are accepted too.
func ParseProtocol(s string) (Protocol, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "http1", "http/1.1", "h1":
		return ProtocolHTTP1, nil
	case "http2", "h2", "h2c":
		return ProtocolHTTP2, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownProtocol, s)
	}
}

func (p Protocol) String() string {
	switch p {
	case ProtocolHTTP1:
		return "http1"
	case ProtocolHTTP2:
		return "http2"
	default:
		return fmt.Sprintf("Protocol(%d)", int(p))
	}
}

// alpn is the single protocol id advertised during the TLS handshake.
func (p Protocol) alpn() string {
	if p == ProtocolHTTP2 {
		return http2.NextProtoTLS
	}
	return "http/1.1"
}

func (p Protocol) valid() bool {
	return p == ProtocolHTTP1 || p == ProtocolHTTP2
}
