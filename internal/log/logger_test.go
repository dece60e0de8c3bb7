package log

import (
	"os"
	"path/filepath"
	"testing"

	"bastion/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestNewLoggerWritesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bastion.log")
	conf := &config.Configuration{}
	conf.Log.Level = "warn"
	conf.Log.File = file

	logger, err := NewLogger(conf)
	require.NoError(t, err)
	logger.Info("dropped")
	logger.Warn("kept")
	_ = logger.Sync()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"message":"kept"`)
	assert.NotContains(t, string(b), "dropped")
}
