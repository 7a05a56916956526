package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/argos/pkg/logger"
)

type ctxKey struct{}

func tenantExtractor(ctx context.Context) (slog.Attr, bool) {
	if v, ok := ctx.Value(ctxKey{}).(string); ok {
		return slog.String("tenant", v), true
	}
	return slog.Attr{}, false
}

func TestNewJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithExtractors(tenantExtractor, nil),
	)

	ctx := context.WithValue(context.Background(), ctxKey{}, "acme")
	log.InfoContext(ctx, "order created", slog.Int("items", 3))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "order created", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "acme", entry["tenant"])
	assert.InDelta(t, 3, entry["items"], 0)
}

func TestNewExtractorSkipsMissingValues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithExtractors(tenantExtractor))
	log.InfoContext(context.Background(), "no tenant")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry, "tenant")
}

func TestNewExtractorsSurviveWith(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithExtractors(tenantExtractor)).
		With(slog.String("component", "dispatch")).
		WithGroup("req")

	ctx := context.WithValue(context.Background(), ctxKey{}, "acme")
	log.InfoContext(ctx, "hello", slog.String("path", "/"))
	assert.Contains(t, buf.String(), `"component":"dispatch"`)
	assert.Contains(t, buf.String(), `"tenant":"acme"`)
}

func TestNewTextAndLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithFormat("TEXT"),
		logger.WithLevel(slog.LevelWarn),
	)

	log.Info("dropped")
	log.Warn("kept", slog.String("k", "v"))

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "msg=kept")
	assert.Contains(t, out, "k=v")
}

func TestWithFormatIgnoresUnknown(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger.New(logger.WithOutput(&buf), logger.WithFormat("xml")).Info("still json")
	assert.True(t, json.Valid(buf.Bytes()))
}

func TestWithSentryEmptyDSN(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithSentry(logger.SentryConfig{}))
	log.Error("local only")

	assert.Contains(t, buf.String(), "local only")
	assert.NotContains(t, buf.String(), "Sentry")
}

func TestNewNope(t *testing.T) {
	t.Parallel()

	log := logger.NewNope()
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
	log.Error("nothing happens")
}
