package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetupLogger(t *testing.T) {
	testCases := []struct {
		env     string
		enabled slog.Level
		muted   slog.Level
	}{
		{env: envLocal, enabled: slog.LevelDebug, muted: slog.LevelDebug - 1},
		{env: envDev, enabled: slog.LevelInfo, muted: slog.LevelDebug},
		{env: envProd, enabled: slog.LevelWarn, muted: slog.LevelInfo},
		{env: "unknown", enabled: slog.LevelError, muted: slog.LevelWarn},
	}

	for _, tc := range testCases {
		t.Run(tc.env, func(t *testing.T) {
			logger := setupLogger(tc.env)

			assert.True(t, logger.Enabled(t.Context(), tc.enabled))
			assert.False(t, logger.Enabled(t.Context(), tc.muted))
		})
	}
}

func TestDropTime(t *testing.T) {
	assert.True(t, dropTime(nil, slog.String(slog.TimeKey, "now")).Equal(slog.Attr{}))
	assert.True(t, dropTime(nil, slog.String("msg", "x")).Equal(slog.String("msg", "x")))
}
