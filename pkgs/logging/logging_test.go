package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("writes json to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "debug.log")
		console := &bytes.Buffer{}
		logger, err := newLogger(zapcore.AddSync(console), "info", "capital", "console", &LogFileOptions{FileName: path})
		require.NoError(t, err)

		logger.Debug("hidden")
		logger.Info("verified", zap.String(FieldTarget, "0x01"))
		require.NoError(t, logger.Sync())
		require.Contains(t, console.String(), "INFO")
		require.Contains(t, console.String(), "verified")
		require.NotContains(t, console.String(), "hidden")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		require.Len(t, lines, 1)

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
		require.Equal(t, "INFO", entry["level"])
		require.Equal(t, "verified", entry["msg"])
		require.Equal(t, "0x01", entry[FieldTarget])
	})

	t.Run("stdout", func(t *testing.T) {
		logger, err := New("info", "capital", "json", nil)
		require.NoError(t, err)
		require.True(t, logger.Core().Enabled(zap.InfoLevel))
		require.False(t, logger.Core().Enabled(zap.DebugLevel))
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := New("loud", "capital", "json", nil)
		require.Error(t, err)
	})

	t.Run("invalid level format", func(t *testing.T) {
		_, err := New("debug", "rainbow", "json", nil)
		require.Error(t, err)
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := New("debug", "capital", "xml", nil)
		require.Error(t, err)
	})
}

func TestSetGlobalLogger(t *testing.T) {
	prev := zap.L()
	defer zap.ReplaceGlobals(prev)

	require.NoError(t, SetGlobalLogger("warn", "lowercase", "json", nil))
	require.False(t, zap.L().Core().Enabled(zap.InfoLevel))
	require.True(t, zap.L().Core().Enabled(zap.WarnLevel))
}
