package logger

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/certifiedcode/memberguard/cli/pkg/config"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerFunctions_BeforeInit(t *testing.T) {
	logger = log.New(io.Discard)
	assert.NotPanics(t, func() {
		Debug("test debug", "key", "value")
		Info("test info", "key", "value")
		Warn("test warn", "key", "value")
		Error("test error", "key", "value")
	})
}

func TestInitWritesToLogFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, config.Init(filepath.Join(dir, "config.toml")))

	Init(true)
	require.NotNil(t, GetLogger())
	assert.Equal(t, log.DebugLevel, GetLogger().GetLevel())

	Debug("HTTP Request", "method", "GET", "url", "/api/health")

	data, err := os.ReadFile(filepath.Join(dir, "memberguard-cli.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "HTTP Request")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, log.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, log.WarnLevel, parseLevel("warning"))
	assert.Equal(t, log.ErrorLevel, parseLevel("error"))
	assert.Equal(t, log.InfoLevel, parseLevel("nonsense"))
	assert.Equal(t, log.InfoLevel, parseLevel(""))
}

func TestInitCreatesLogDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, config.Init(filepath.Join(dir, "config.toml")))
	config.Set("log.file", filepath.Join(dir, "nested", "cli.log"))
	config.Set("log.level", "error")

	Init(false)
	assert.Equal(t, log.ErrorLevel, GetLogger().GetLevel())
	Error("boom")

	data, err := os.ReadFile(filepath.Join(dir, "nested", "cli.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "boom")
}
