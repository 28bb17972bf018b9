package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tickscope.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, validate(cfg))
	assert.Equal(t, 1000, cfg.Viewer.IntervalMs)
	assert.Equal(t, "random", cfg.Viewer.Series)
	assert.Equal(t, 200, cfg.Viewer.WindowSize)
	assert.Equal(t, time.Second, cfg.Viewer.RetryDelay())
	assert.Equal(t, 10*time.Second, cfg.Viewer.HeartbeatInterval())
	assert.Zero(t, cfg.Viewer.PongTimeout())
}

func TestLoadLayersOverDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
bind = "127.0.0.1:9000"

[viewer]
series = "cpu"
pong_timeout_ms = 5000
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Bind)
	assert.Equal(t, 1000, cfg.Server.IntervalMs, "untouched default")
	assert.Equal(t, "cpu", cfg.Viewer.Series)
	assert.Equal(t, 5*time.Second, cfg.Viewer.PongTimeout())
	assert.Equal(t, "http://127.0.0.1:8080", cfg.Viewer.Host)
}

func TestLoadTrimsSeriesNames(t *testing.T) {
	path := writeConfig(t, "[server]\nseries = \" sine \"\n\n[viewer]\nseries = \"cpu  \"\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sine", cfg.Server.Series)
	assert.Equal(t, "cpu", cfg.Viewer.Series)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"interval too small": "[viewer]\ninterval_ms = 10\n",
		"interval too large": "[server]\ninterval_ms = 20000\n",
		"empty series":       "[viewer]\nseries = \"  \"\n",
		"zero window":        "[viewer]\nwindow_size = 0\n",
		"negative pong":      "[viewer]\npong_timeout_ms = -1\n",
		"empty bind":         "[server]\nbind = \"\"\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadReportsParseAndReadErrors(t *testing.T) {
	_, err := Load(writeConfig(t, "[viewer\n"))
	assert.ErrorContains(t, err, "parse")

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadOptional(t *testing.T) {
	cfg, err := LoadOptional("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
