package tlsconfig

import "errors"

// Sentinel errors for TLS material handling.
var (
	ErrUnknownKeyFormat = errors.New("tlsconfig: unknown key format")
	ErrNoCertificate    = errors.New("tlsconfig: no certificate found")
	ErrInvalidKey       = errors.New("tlsconfig: invalid private key")
	ErrKeyMismatch      = errors.New("tlsconfig: private key does not match certificate")
	ErrMissingFile      = errors.New("tlsconfig: key and certificate files are required")
	ErrProviderClosed   = errors.New("tlsconfig: provider closed")
	ErrAlreadyWatching  = errors.New("tlsconfig: provider is already watching")
)
