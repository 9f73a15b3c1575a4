package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/rota-api/internal/config"
	"github.com/phrazzld/rota-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
		ok    bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"Error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := logger.ParseLevel(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestSetup(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	l, err := logger.Setup(config.ServerConfig{LogLevel: "debug"})
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.True(t, l.Enabled(context.Background(), slog.LevelDebug))
	assert.Same(t, l, slog.Default())

	l, err = logger.Setup(config.ServerConfig{LogLevel: "nonsense"})
	require.NoError(t, err)
	assert.False(t, l.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, l.Enabled(context.Background(), slog.LevelInfo))
}

func TestContextLogger(t *testing.T) {
	l, buf := logger.NewTestLogger()
	fallback, _ := logger.NewTestLogger()

	ctx := context.Background()
	assert.Same(t, slog.Default(), logger.FromContext(ctx))
	assert.Same(t, fallback, logger.FromContextOrDefault(ctx, fallback))

	ctx = logger.WithLogger(ctx, l.With("trace_id", "abc"))
	logger.FromContextOrDefault(ctx, fallback).Info("tick finished", "materialized", 2)

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "tick finished", entries[0]["msg"])
	assert.Equal(t, "abc", entries[0]["trace_id"])
	assert.EqualValues(t, 2, entries[0]["materialized"])

	assert.Equal(t, ctx, logger.WithLogger(ctx, nil), "nil logger leaves context untouched")
}
