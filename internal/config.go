package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/argos/pkg/health"
	"github.com/dmitrymomot/argos/pkg/logger"
	"github.com/dmitrymomot/argos/pkg/tlsconfig"
)

// Config is the file form of the server options.
//
//	address: ":8443"
//	protocol: http2
//	tls:
//	  key_file: /etc/argos/server.key
//	  cert_file: /etc/argos/server.crt
//	  key_format: PEM
//	  reload: true
//	timeouts:
//	  read: 15s
//	  handshake: 5s
//	log:
//	  level: debug
//	  format: text
//	metrics:
//	  enabled: true
type Config struct {
	Address          string         `yaml:"address"`
	Protocol         string         `yaml:"protocol"`
	TLS              *TLSConfig     `yaml:"tls"`
	Timeouts         TimeoutsConfig `yaml:"timeouts"`
	Log              LogConfig      `yaml:"log"`
	Health           HealthConfig   `yaml:"health"`
	Metrics          MetricsConfig  `yaml:"metrics"`
	BlockingPoolSize int            `yaml:"blocking_pool_size"`
}

// TLSConfig locates the key pair.
type TLSConfig struct {
	KeyFile   string `yaml:"key_file"`
	CertFile  string `yaml:"cert_file"`
	KeyFormat string `yaml:"key_format"`
	Reload    bool   `yaml:"reload"`
}

// TimeoutsConfig holds connection timeouts. Zero keeps the default.
type TimeoutsConfig struct {
	Read       time.Duration `yaml:"read"`
	ReadHeader time.Duration `yaml:"read_header"`
	Write      time.Duration `yaml:"write"`
	Idle       time.Duration `yaml:"idle"`
	Handshake  time.Duration `yaml:"handshake"`
	Shutdown   time.Duration `yaml:"shutdown"`
}

// LogConfig configures the server logger.
type LogConfig struct {
	Level  string              `yaml:"level"`
	Format string              `yaml:"format"`
	Sentry logger.SentryConfig `yaml:"sentry"`
}

// HealthConfig enables the probe routes.
type HealthConfig struct {
	Enabled bool          `yaml:"enabled"`
	Timeout time.Duration `yaml:"timeout"`
}

// MetricsConfig enables /metrics.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LoadConfig reads a YAML config file. Unknown keys are an error.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path) // #nosec G304 -- operator-supplied config path
	if err != nil {
		return nil, fmt.Errorf("argos: open config: %w", err)
	}
	defer func() { _ = f.Close() }()

	var cfg Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	return &cfg, nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if _, err := ParseProtocol(c.Protocol); err != nil {
		errs = append(errs, err)
	}
	if c.TLS != nil {
		if c.TLS.KeyFile == "" {
			errs = append(errs, errors.New("tls.key_file is required"))
		}
		if c.TLS.CertFile == "" {
			errs = append(errs, errors.New("tls.cert_file is required"))
		}
		if _, err := tlsconfig.ParseKeyFormat(c.TLS.KeyFormat); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := c.Log.level(); err != nil {
		errs = append(errs, err)
	}
	if c.BlockingPoolSize < 0 {
		errs = append(errs, errors.New("blocking_pool_size must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Options converts the config into server options, including a logger
// built from the log section.
func (c *Config) Options(extractors ...logger.ContextExtractor) ([]Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	proto, _ := ParseProtocol(c.Protocol)
	level, _ := c.Log.level()

	logOpts := []logger.Option{
		logger.WithLevel(level),
		logger.WithFormat(c.Log.Format),
		logger.WithExtractors(extractors...),
	}
	if c.Log.Sentry.DSN != "" {
		logOpts = append(logOpts, logger.WithSentry(c.Log.Sentry))
	}

	opts := []Option{
		WithAddress(c.Address),
		WithProtocol(proto),
		WithLogger(logger.New(logOpts...)),
		WithReadTimeout(c.Timeouts.Read),
		WithReadHeaderTimeout(c.Timeouts.ReadHeader),
		WithWriteTimeout(c.Timeouts.Write),
		WithIdleTimeout(c.Timeouts.Idle),
		WithHandshakeTimeout(c.Timeouts.Handshake),
		WithShutdownTimeout(c.Timeouts.Shutdown),
		WithBlockingPoolSize(c.BlockingPoolSize),
	}
	if c.TLS != nil {
		format, _ := tlsconfig.ParseKeyFormat(c.TLS.KeyFormat)
		opts = append(opts, WithTLS(tlsconfig.Files{
			KeyFile:   c.TLS.KeyFile,
			CertFile:  c.TLS.CertFile,
			KeyFormat: format,
		}))
		if c.TLS.Reload {
			opts = append(opts, WithTLSReload())
		}
	}
	if c.Health.Enabled {
		var healthOpts []health.Option
		if c.Health.Timeout > 0 {
			healthOpts = append(healthOpts, health.WithTimeout(c.Health.Timeout))
		}
		opts = append(opts, WithHealthChecks(nil, healthOpts...))
	}
	if c.Metrics.Enabled {
		opts = append(opts, WithMetrics(nil))
	}
	return opts, nil
}

func (l LogConfig) level() (slog.Level, error) {
	var level slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
