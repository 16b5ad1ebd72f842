package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONWithAppAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "Mi FastAPI App", "1.0.0", false)

	logger.Info("Application started in production mode")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "Application started in production mode", record["msg"])
	assert.Equal(t, "Mi FastAPI App", record["app"])
	assert.Equal(t, "1.0.0", record["version"])
	assert.NotContains(t, record, "source")
}

func TestNewLevelFollowsDebug(t *testing.T) {
	var quiet bytes.Buffer
	New(&quiet, "app", "v", false).Debug("hidden")
	assert.Zero(t, quiet.Len())

	var verbose bytes.Buffer
	logger := New(&verbose, "app", "v", true)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
	logger.Debug("shown")
	assert.Contains(t, verbose.String(), `"source"`)
}

func TestSetDefault(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	logger := SetDefault(&buf, "app", "v", false)
	assert.Same(t, logger, slog.Default())
}
