package logger

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}

	for input, expected := range tests {
		assert.Equal(t, expected, ParseLevel(input), input)
	}
}

func TestLogDefaultsBeforeSetup(t *testing.T) {
	assert.NotNil(t, Log)
	assert.NotPanics(t, func() { Info("before setup", "k", "v") })
}
