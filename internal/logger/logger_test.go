package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		level    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"unknown", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseLevel(tc.level))
		})
	}
}

func TestNewWithOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput(Config{Level: "info"}, &buf)

	l.Info().Str("fund", "012345").Msg("test message")

	out := buf.String()
	assert.Contains(t, out, `"message":"test message"`)
	assert.Contains(t, out, `"fund":"012345"`)
}

func TestNewWithOutput_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput(Config{Level: "warn"}, &buf)

	l.Info().Msg("hidden")
	l.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	l := Component(NewWithOutput(Config{Level: "debug"}, &buf), "quote")

	l.Debug().Msg("batch fetched")

	assert.Contains(t, buf.String(), `"component":"quote"`)
}
