package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"development", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"production", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), tt.in)
	}
}

func TestGet_BeforeInitIsNoop(t *testing.T) {
	l := Get()
	assert.NotNil(t, l)
	l.Info("dropped")
}

func TestInit(t *testing.T) {
	err := Init(&Config{Level: "debug", ServiceName: "ledger-test", Development: true})
	assert.NoError(t, err)
	assert.NotNil(t, Get().Logger)
	Get().With().Debug("initialized")
}
