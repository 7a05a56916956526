package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

type config struct {
	output     io.Writer
	sentry     *SentryConfig
	format     string
	extractors []ContextExtractor
	level      slog.Level
}

// Option configures a logger built by New.
type Option func(*config)

// WithLevel sets the minimum level. Defaults to slog.LevelInfo.
func WithLevel(level slog.Level) Option {
	return func(c *config) {
		c.level = level
	}
}

// WithFormat selects "json" (default) or "text" output.
func WithFormat(format string) Option {
	return func(c *config) {
		if f := strings.ToLower(format); f == FormatJSON || f == FormatText {
			c.format = f
		}
	}
}

// WithOutput sets the destination. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.output = w
		}
	}
}

// WithExtractors adds context extractors.
func WithExtractors(extractors ...ContextExtractor) Option {
	return func(c *config) {
		c.extractors = append(c.extractors, extractors...)
	}
}

// WithSentry also forwards warnings and errors to Sentry.
func WithSentry(cfg SentryConfig) Option {
	return func(c *config) {
		c.sentry = &cfg
	}
}

// New creates a logger.
func New(opts ...Option) *slog.Logger {
	cfg := &config{
		output: os.Stdout,
		format: FormatJSON,
		level:  slog.LevelInfo,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	handlerOpts := &slog.HandlerOptions{Level: cfg.level}
	var h slog.Handler
	if cfg.format == FormatText {
		h = slog.NewTextHandler(cfg.output, handlerOpts)
	} else {
		h = slog.NewJSONHandler(cfg.output, handlerOpts)
	}

	if cfg.sentry != nil {
		if sh, err := newSentryHandler(*cfg.sentry); err != nil {
			slog.New(h).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		} else if sh != nil {
			h = fanout{h, sh}
		}
	}

	return slog.New(withExtractors(h, cfg.extractors))
}

// NewNope creates a logger that discards everything.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
