package logging

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nibzard/taskman/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  log.Level
	}{
		{"debug", "debug", log.DebugLevel},
		{"info", "info", log.InfoLevel},
		{"warn", "warn", log.WarnLevel},
		{"warning", "warning", log.WarnLevel},
		{"error", "error", log.ErrorLevel},
		{"fatal", "fatal", log.FatalLevel},
		{"mixed case", " DEBUG ", log.DebugLevel},
		{"unknown defaults to info", "unknown", log.InfoLevel},
		{"empty defaults to info", "", log.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.level))
		})
	}
}

func TestParseFormatter(t *testing.T) {
	tests := []struct {
		name   string
		format string
		want   log.Formatter
	}{
		{"json", "json", log.JSONFormatter},
		{"logfmt", "logfmt", log.LogfmtFormatter},
		{"text", "text", log.TextFormatter},
		{"unknown defaults to text", "unknown", log.TextFormatter},
		{"empty defaults to text", "", log.TextFormatter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFormatter(tt.format))
		})
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, log.InfoLevel, opts.Level)
	assert.Equal(t, log.TextFormatter, opts.Formatter)
	assert.False(t, opts.ReportTimestamp)
	assert.False(t, opts.ReportCaller)
	assert.Equal(t, DefaultPrefix, opts.Prefix)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{
		LogLevel:      "debug",
		LogFormat:     "json",
		LogTimestamps: true,
		LogCaller:     true,
	}
	opts := OptionsFromConfig(cfg)
	assert.Equal(t, log.DebugLevel, opts.Level)
	assert.Equal(t, log.JSONFormatter, opts.Formatter)
	assert.True(t, opts.ReportTimestamp)
	assert.True(t, opts.ReportCaller)
	assert.Equal(t, DefaultPrefix, opts.Prefix)

	assert.Equal(t, DefaultOptions(), OptionsFromConfig(nil))
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Level = log.WarnLevel
	logger := New(&buf, opts)

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown", "path", "tasks.json")
	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "tasks.json")
	assert.Contains(t, out, DefaultPrefix)
}

func TestValidLevelAndFormat(t *testing.T) {
	assert.True(t, ValidLevel("warning"))
	assert.False(t, ValidLevel("verbose"))
	assert.True(t, ValidFormat("logfmt"))
	assert.False(t, ValidFormat("xml"))
}
