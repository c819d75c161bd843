package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "debug", Format: "text", Output: &buf})

	log.Debug("dbg", "a", 1)
	log.Info("inf", "b", 2)
	log.Warn("wrn", "c", 3)
	log.Error("err", "d", 4)

	out := buf.String()
	for _, want := range []string{"level=DEBUG", "msg=inf", "c=3", "level=ERROR"} {
		assert.Contains(t, out, want)
	}
}

func TestSlogLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "warn", Format: "text", Output: &buf})

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestSlogLogger_NamedJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf}).Named("auth")

	log.Info("signin", "user_id", "42")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "auth", entry["logger"])
	assert.Equal(t, "42", entry["user_id"])
	assert.Equal(t, "signin", entry["msg"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewProvider(t *testing.T) {
	var buf bytes.Buffer
	provider := NewProvider(New(Options{Output: &buf}))

	provider.GetLogger("articles").Warn("denied", "id", "x")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "articles", entry["logger"])
	assert.Equal(t, "WARN", entry["level"])
}
