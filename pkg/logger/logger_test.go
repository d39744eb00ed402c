package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestInitLogger(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "app.log")

	cfg := &Config{
		Level:      "DEBUG",
		Filename:   logFile,
		MaxSize:    1,
		MaxBackups: 1,
		MaxAge:     1,
	}

	err := InitLogger(cfg)
	assert.NoError(t, err)
	assert.NotNil(t, Log)

	Log.Info("prompt rendered",
		zap.Uint("prompt_id", 42),
		zap.Int("variables", 2),
	)
	Sync()

	data, err := os.ReadFile(logFile)
	assert.NoError(t, err)
	content := string(data)
	assert.True(t, strings.Contains(content, "prompt rendered"))
	assert.True(t, strings.Contains(content, `"prompt_id":42`))
}

func TestInitLoggerLevelFiltering(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "app.log")

	cfg := &Config{
		Level:    "WARN",
		Filename: logFile,
	}
	assert.NoError(t, InitLogger(cfg))

	Log.Debug("should be filtered out")
	Log.Warn("should be written")
	Sync()

	data, err := os.ReadFile(logFile)
	assert.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "filtered out"))
	assert.True(t, strings.Contains(string(data), "should be written"))
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(&Config{
		Level:    "LOUD",
		Filename: filepath.Join(t.TempDir(), "app.log"),
	})
	assert.Error(t, err)
}
