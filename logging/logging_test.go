package logging

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), "level %q", tt.in)
	}
}

func TestNewDefaults(t *testing.T) {
	logger := New(nil)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestNewWithLevel(t *testing.T) {
	logger := New(&Config{Level: "debug", Output: "discard"})
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}
