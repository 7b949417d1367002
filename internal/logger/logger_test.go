package logger_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nikbrunner/smartmark/internal/logger"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "smartmark.log")

	log, err := logger.New(logger.Options{Level: "debug", OutputPath: path})
	require.NoError(t, err)

	log.Info("mounted", logger.String("session", "s1"))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"session":"s1"`)
	assert.Contains(t, string(data), "mounted")
}

func TestNew_LevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smartmark.log")

	log, err := logger.New(logger.Options{Level: "warn", OutputPath: path})
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "hidden"))
	assert.Contains(t, string(data), "shown")
}

func TestWith_CarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.FromZap(zap.New(core)).With(logger.String("owner", "alice"))

	log.Debug("event applied", logger.Bool("changed", true))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "alice", fields["owner"])
	assert.Equal(t, true, fields["changed"])
}

func TestValidLevel(t *testing.T) {
	assert.True(t, logger.ValidLevel("INFO"))
	assert.True(t, logger.ValidLevel("warning"))
	assert.False(t, logger.ValidLevel("verbose"))
}
