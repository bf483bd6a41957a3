// ABOUTME: Tests for logger setup from the logging config
// ABOUTME: Checks level filtering and both output formats

package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/faq-widget/internal/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, parseLevel("info"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestSetupLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	logger.With("component", "answer").Warn("service slow", "ms", 1500)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "service slow", entry["msg"])
	assert.Equal(t, "answer", entry["component"])
}

func TestSetupLogger_Text(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	logger := setupLogger(config.LoggingConfig{Level: "debug", Format: "text"}, &buf)

	logger.With("component", "webwidget").Debug("submit accepted", "status", 202)
	logger.WithGroup("req").Info("served", "path", "/api/state")

	out := buf.String()
	assert.Contains(t, out, "DBG submit accepted component=webwidget status=202")
	assert.Contains(t, out, "INF served req.path=/api/state")
}

func TestSetupLogger_TextGroupedAttrs(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	logger := setupLogger(config.LoggingConfig{Level: "info", Format: "text"}, &buf)

	logger.With("component", "webwidget").
		WithGroup("req").With("id", "abc").
		WithGroup("body").Info("decoded", "bytes", 12)

	assert.Contains(t, buf.String(), "INF decoded component=webwidget req.id=abc req.body.bytes=12")
}
