// Package tlsconfig loads server TLS material and builds *tls.Config values.
//
// The certificate chain file is always PEM. The private key may be PEM or DER
// (PKCS#8, PKCS#1 or SEC1). Key and certificate are checked to belong
// together at load time.
//
//	p, err := tlsconfig.NewProvider(tlsconfig.Files{
//	    KeyFile:   "server.key",
//	    CertFile:  "server.crt",
//	    KeyFormat: tlsconfig.PEM,
//	})
//	cfg := tlsconfig.ServerConfig(p, "h2")
//
// Provider.Watch reloads the pair when either file changes, so long-running
// servers pick up renewed certificates without a restart.
package tlsconfig
