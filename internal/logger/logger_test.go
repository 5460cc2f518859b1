package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"DEBUG":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew(t *testing.T) {
	for _, cfg := range []Config{
		{Level: "debug"},
		{Level: "info", Color: true},
		{Level: "warn", JSON: true},
	} {
		l, err := New(cfg)
		require.NoError(t, err)
		assert.Equal(t, cfg.Level == "debug", l.Core().Enabled(zapcore.DebugLevel))
		assert.Equal(t, cfg.Level != "warn", l.Core().Enabled(zapcore.InfoLevel))
	}
}
