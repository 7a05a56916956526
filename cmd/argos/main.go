// Command argos runs a demo server with a handful of routes and filters.
//
//	argos --addr :8080
//	argos --config argos.yaml --protocol http2 --tls-key server.key --tls-cert server.crt
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/dmitrymomot/argos"
	"github.com/dmitrymomot/argos/filters"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "argos: %s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("argos", pflag.ContinueOnError)
	configPath := flags.StringP("config", "c", "", "path to a YAML config file")
	addr := flags.StringP("addr", "a", ":8080", "listen address")
	protocol := flags.StringP("protocol", "p", "http1", "protocol: http1 or http2")
	tlsKey := flags.String("tls-key", "", "private key file")
	tlsCert := flags.String("tls-cert", "", "certificate chain file (PEM)")
	tlsKeyFormat := flags.String("tls-key-format", "PEM", "private key encoding: PEM or DER")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg := &argos.Config{}
	if *configPath != "" {
		loaded, err := argos.LoadConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	// Flags win over the file, defaults only fill gaps.
	override := func(name string, dst *string, value string) {
		if flags.Changed(name) || *dst == "" {
			*dst = value
		}
	}
	override("addr", &cfg.Address, *addr)
	override("protocol", &cfg.Protocol, *protocol)
	if flags.Changed("tls-key") || flags.Changed("tls-cert") {
		if cfg.TLS == nil {
			cfg.TLS = &argos.TLSConfig{}
		}
		override("tls-key", &cfg.TLS.KeyFile, *tlsKey)
		override("tls-cert", &cfg.TLS.CertFile, *tlsCert)
	}
	if cfg.TLS != nil {
		override("tls-key-format", &cfg.TLS.KeyFormat, *tlsKeyFormat)
	}

	opts, err := cfg.Options(filters.RequestIDExtractor(), argos.RouteExtractor())
	if err != nil {
		return err
	}
	return argos.Run(ctx, opts...)
}
