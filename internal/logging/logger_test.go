package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("world", &buf, WARN)

	logger.Info("не должно попасть %d", 1)
	logger.Warn("чанк %s выгружен", "(1,0,2)")

	out := buf.String()
	assert.NotContains(t, out, "не должно попасть")
	assert.Contains(t, out, "[WARN] [world] чанк (1,0,2) выгружен")
	assert.True(t, logger.Enabled(ERROR))
	assert.False(t, logger.Enabled(DEBUG))
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, DEBUG, level)

	level, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, INFO, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestFileLogger(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewFileLogger("storage", dir, OFF, DEBUG)
	require.NoError(t, err)

	logger.Debug("сохранение %s", "save:1")
	require.NoError(t, logger.Close())

	files, err := filepath.Glob(filepath.Join(dir, "storage_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "[DEBUG] [storage] сохранение save:1")
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	assert.NotPanics(t, func() { logger.Error("ничего") })
}

func TestManagerCreatesFileLoggersOnce(t *testing.T) {
	dir := t.TempDir()
	lm := &LoggerManager{loggers: make(map[string]*Logger)}
	lm.Configure(dir, OFF, DEBUG)

	first, err := lm.GetLogger("world")
	require.NoError(t, err)
	second, err := lm.GetLogger("world")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.ElementsMatch(t, []string{"world"}, lm.ListComponents())

	first.Info("чанк загружен")
	require.NoError(t, lm.CloseAll())
	assert.Empty(t, lm.ListComponents())

	files, err := filepath.Glob(filepath.Join(dir, "world_*.log"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}
