// Package logger_test contains tests for the logger package
package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/vocab-api/internal/config"
	"github.com/phrazzld/vocab-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSetup is a basic test that ensures the Setup function returns a usable logger
// and installs it as the default.
func TestSetup(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	l, err := logger.Setup(config.ServerConfig{LogLevel: "warn", Port: 8080})
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Same(t, l, slog.Default())
	assert.False(t, l.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, l.Enabled(context.Background(), slog.LevelWarn))
}

// TestSetupInvalidLevel verifies that an unknown level falls back to info.
func TestSetupInvalidLevel(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	l, err := logger.Setup(config.ServerConfig{LogLevel: "invalid_level", Port: 8080})
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.True(t, l.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, l.Enabled(context.Background(), slog.LevelDebug))
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		name     string
		logLevel string
		want     slog.Level
		ok       bool
	}{
		{"debug level", "debug", slog.LevelDebug, true},
		{"info level", "info", slog.LevelInfo, true},
		{"warn level", "warn", slog.LevelWarn, true},
		{"error level", "error", slog.LevelError, true},
		{"case insensitive - DEBUG", "DEBUG", slog.LevelDebug, true},
		{"case insensitive - Info", "Info", slog.LevelInfo, true},
		{"unknown", "verbose", slog.LevelInfo, false},
		{"empty", "", slog.LevelInfo, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := logger.ParseLevel(tc.logLevel)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.ok, ok)
		})
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	buf := &logger.TestLogBuffer{}
	l := logger.New(buf, slog.LevelInfo)

	l.Debug("debug test message")
	l.Info("info test message", "component", "test")
	l.Error("error test message")

	assert.NotContains(t, buf.String(), "debug test message")
	logger.AssertLogContains(t, buf, "info test message")
	logger.AssertLogContains(t, buf, "error test message")

	entry := logger.FindLogEntry(t, buf, "info test message")
	require.NotNil(t, entry)
	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestContextLogger(t *testing.T) {
	l, buf := logger.GetTestLogger(t)
	fallback, fallbackBuf := logger.GetTestLogger(t)

	// No logger in the context: the fallback is used
	logger.FromContextOrDefault(context.Background(), fallback).Info("to fallback")
	logger.AssertLogContains(t, fallbackBuf, "to fallback")

	// A logger in the context wins over the fallback
	ctx := logger.WithLogger(context.Background(), l.With("trace_id", "abc"))
	logger.FromContextOrDefault(ctx, fallback).Info("to context")
	entry := logger.FindLogEntry(t, buf, "to context")
	require.NotNil(t, entry)
	assert.Equal(t, "abc", entry["trace_id"])
	assert.Empty(t, logger.FindLogEntry(t, fallbackBuf, "to context"))

	assert.NotNil(t, logger.FromContext(context.Background()))
	assert.NotNil(t, logger.FromContextOrDefault(context.Background(), nil))
}
