package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, Warn)

	logger.Debug("hidden %d", 1)
	logger.Info("hidden %d", 2)
	logger.Warn("shown %d", 3)
	logger.Error("shown %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN  shown 3")
	assert.Contains(t, out, "ERROR shown 4")
}

func TestLoggerNamed(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, Debug).Named("session").Named("walk")

	logger.Info("hello")
	assert.Contains(t, buf.String(), "[session/walk] hello")
}

func TestLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, Debug)
	logger.JSON = true
	logger.Name = "vcat"

	logger.Warn("no match for '%s'", "/zone/x*")

	var entry map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "vcat", entry["service"])
	assert.Equal(t, "no match for '/zone/x*'", entry["message"])
}

func TestNilLoggerIsSilent(t *testing.T) {
	var logger *Logger
	assert.NotPanics(t, func() {
		logger.Warn("nothing")
		assert.Nil(t, logger.Named("child"))
	})
}

func TestParse(t *testing.T) {
	level, err := Parse("debug")
	require.NoError(t, err)
	assert.Equal(t, Debug, level)

	level, err = Parse("warning")
	require.NoError(t, err)
	assert.Equal(t, Warn, level)

	_, err = Parse("loud")
	assert.ErrorIs(t, err, ErrInvalidLevel)
}
