package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected log.Level
	}{
		{"debug", log.DebugLevel},
		{"INFO", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"fatal", log.FatalLevel},
		{"", log.InfoLevel},
		{"verbose", log.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestConfigure_FlagBeatsEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")

	_, err := Configure("debug", "")
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, Logger.GetLevel())
}

func TestConfigure_EnvFallback(t *testing.T) {
	t.Setenv(EnvLogLevel, "WARN")

	_, err := Configure("", "")
	require.NoError(t, err)
	assert.Equal(t, log.WarnLevel, Logger.GetLevel())
}

func TestConfigure_LogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.log")

	closer, err := Configure("info", path)
	require.NoError(t, err)
	Info("hello from test", "key", "value")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")
	assert.Contains(t, string(data), "key=value")
}

func TestConfigure_CloseReleasesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.log")

	closer, err := Configure("info", path)
	require.NoError(t, err)
	require.NoError(t, closer.Close())

	// Logging after close goes back to stderr and leaves the file alone.
	Info("after close")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "after close")

	assert.Error(t, closer.Close(), "file is already closed")
}

func TestConfigure_BadLogFile(t *testing.T) {
	closer, err := Configure("info", filepath.Join(t.TempDir(), "missing", "chat.log"))
	assert.Error(t, err)
	assert.Nil(t, closer)
}

func TestSetOutputKeepsLevel(t *testing.T) {
	closer, err := Configure("warn", "")
	require.NoError(t, err)
	require.NoError(t, closer.Close())

	var buf bytes.Buffer
	SetOutput(&buf)
	Info("suppressed")
	Warn("visible")

	assert.NotContains(t, buf.String(), "suppressed")
	assert.Contains(t, buf.String(), "visible")
}
