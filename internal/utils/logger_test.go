package utils

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("warn", &buf)
	assert.Equal(t, log.WarnLevel, logger.GetLevel())

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shuffle indicator", "indicator", "long_pause")
	assert.Contains(t, buf.String(), "shuffle indicator")
	assert.Contains(t, buf.String(), "long_pause")
}

func TestNewLoggerUnknownLevel(t *testing.T) {
	assert.Equal(t, log.InfoLevel, NewLogger("loud", &bytes.Buffer{}).GetLevel())
}
