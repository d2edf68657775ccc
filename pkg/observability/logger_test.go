package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/qemacs/qemacs-sub000/pkg/config"
)

func TestConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LoggingConfig{Level: "debug", Format: "console", Name: "qhtml"}, zapcore.AddSync(&buf))
	logger.Named("layout").Info("layout done", zap.Int("lines", 3))
	require.NoError(t, logger.Sync())

	out := buf.String()
	assert.Contains(t, out, colorGreen+"INFO"+colorReset)
	assert.Contains(t, out, "qhtml.layout.")
	assert.Contains(t, out, "layout done")
	assert.Contains(t, out, `"lines": 3`)
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LoggingConfig{Level: "info", Format: "json", Name: "qhtml"}, zapcore.AddSync(&buf))
	logger.Debug("hidden")
	logger.Warn("bad entity", zap.String("file", "a.html"))
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "one JSON line expected, got %q", buf.String())
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "qhtml", entry["logger"])
	assert.Equal(t, "bad entity", entry["msg"])
	assert.Equal(t, "a.html", entry["file"])
}

func TestLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qhtml.log")
	var console bytes.Buffer
	logger := New(config.LoggingConfig{Level: "info", Format: "console", File: path, MaxSize: 1}, zapcore.AddSync(&console))
	logger.Error("to both")
	require.NoError(t, logger.Sync())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"msg":"to both"`)
	assert.Contains(t, console.String(), "to both")
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LoggingConfig{Level: "loud", Format: "json"}, zapcore.AddSync(&buf))
	logger.Debug("dropped")
	logger.Info("kept")
	require.NoError(t, logger.Sync())
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestInitializeOnce(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)
	assert.Equal(t, zapcore.InvalidLevel, zapcore.LevelOf(GetLogger().Core()), "no-op logger before initialization")

	var first, second bytes.Buffer
	Initialize(config.LoggingConfig{Level: "info", Format: "json", Name: "first"}, zapcore.AddSync(&first))
	Initialize(config.LoggingConfig{Level: "info", Format: "json", Name: "second"}, zapcore.AddSync(&second))
	GetLogger().Info("hello")
	Sync()

	assert.Contains(t, first.String(), `"logger":"first"`)
	assert.Empty(t, second.String())
}
