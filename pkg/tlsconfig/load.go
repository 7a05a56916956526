package tlsconfig

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"strings"
)

// KeyFormat is the encoding of the private key file.
type KeyFormat int

const (
	PEM KeyFormat = iota
	DER
)

// ParseKeyFormat parses "PEM" or "DER" (case-insensitive). ASN1 is accepted
// as an alias of DER.
func ParseKeyFormat(s string) (KeyFormat, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "PEM":
		return PEM, nil
	case "DER", "ASN1":
		return DER, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKeyFormat, s)
	}
}

func (f KeyFormat) String() string {
	if f == DER {
		return "DER"
	}
	return "PEM"
}

// Files locates the TLS material on disk.
type Files struct {
	KeyFile   string
	CertFile  string
	KeyFormat KeyFormat
}

// Load reads and validates the key pair.
func Load(files Files) (*tls.Certificate, error) {
	if files.KeyFile == "" || files.CertFile == "" {
		return nil, ErrMissingFile
	}
	certPEM, err := os.ReadFile(files.CertFile) // #nosec G304 -- path from server configuration
	if err != nil {
		return nil, fmt.Errorf("tlsconfig: read certificate: %w", err)
	}
	keyData, err := os.ReadFile(files.KeyFile) // #nosec G304 -- path from server configuration
	if err != nil {
		return nil, fmt.Errorf("tlsconfig: read key: %w", err)
	}
	return Parse(certPEM, keyData, files.KeyFormat)
}

// Parse builds a certificate from a PEM chain and a key in the given format.
func Parse(certPEM, keyData []byte, format KeyFormat) (*tls.Certificate, error) {
	if format == PEM {
		cert, err := tls.X509KeyPair(certPEM, keyData)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
		}
		return withLeaf(&cert)
	}

	var cert tls.Certificate
	for block, rest := pem.Decode(certPEM); block != nil; block, rest = pem.Decode(rest) {
		if block.Type == "CERTIFICATE" {
			cert.Certificate = append(cert.Certificate, block.Bytes)
		}
	}
	if len(cert.Certificate) == 0 {
		return nil, ErrNoCertificate
	}

	key, err := parseDERKey(keyData)
	if err != nil {
		return nil, err
	}
	cert.PrivateKey = key

	if _, err := withLeaf(&cert); err != nil {
		return nil, err
	}
	if !publicKeysEqual(cert.Leaf.PublicKey, key) {
		return nil, ErrKeyMismatch
	}
	return &cert, nil
}

func parseDERKey(der []byte) (crypto.PrivateKey, error) {
	if key, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		return key, nil
	}
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	if key, err := x509.ParseECPrivateKey(der); err == nil {
		return key, nil
	}
	return nil, ErrInvalidKey
}

func withLeaf(cert *tls.Certificate) (*tls.Certificate, error) {
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoCertificate, err)
	}
	cert.Leaf = leaf
	return cert, nil
}

func publicKeysEqual(pub crypto.PublicKey, priv crypto.PrivateKey) bool {
	type equaler interface {
		Equal(crypto.PublicKey) bool
	}
	var derived crypto.PublicKey
	switch k := priv.(type) {
	case *rsa.PrivateKey:
		derived = &k.PublicKey
	case *ecdsa.PrivateKey:
		derived = &k.PublicKey
	case ed25519.PrivateKey:
		derived = k.Public()
	default:
		return false
	}
	eq, ok := pub.(equaler)
	return ok && eq.Equal(derived)
}

// ServerConfig returns a TLS 1.2+ server configuration that serves the
// provider's current certificate and advertises exactly the given ALPN
// protocols.
func ServerConfig(p *Provider, protocols ...string) *tls.Config {
	return &tls.Config{
		MinVersion:     tls.VersionTLS12,
		NextProtos:     protocols,
		GetCertificate: p.GetCertificate,
		CipherSuites: []uint16{
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
			tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
		},
	}
}
