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
	path := filepath.Join(t.TempDir(), "rinsight.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadWithoutPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "2025-04-13", cfg.DateRange().Start)
	assert.Equal(t, "router", cfg.Server.Engine)
	assert.Equal(t, 30*time.Minute, cfg.Dashboard.SessionTTL)
	assert.Equal(t, 1000, cfg.Dashboard.MaxSessions)
}

func TestLoadOverlaysFile(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
  engine: http
backend:
  base_url: http://localhost:5000
  timeout: 3s
dashboard:
  default_category: all
  chart_cache_ttl: 1m
  session_ttl: 10m
  max_sessions: 50
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "/rinsight", cfg.Server.BasePath)
	assert.Equal(t, "http", cfg.Server.Engine)
	assert.Equal(t, "http://localhost:5000", cfg.Backend.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 600, cfg.Backend.RPM)
	assert.Equal(t, "all", cfg.Dashboard.DefaultCategory)
	assert.Equal(t, time.Minute, cfg.Dashboard.ChartCacheTTL)
	assert.Equal(t, 10*time.Minute, cfg.Dashboard.SessionTTL)
	assert.Equal(t, time.Minute, cfg.Dashboard.SessionSweep)
	assert.Equal(t, 50, cfg.Dashboard.MaxSessions)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadReportsEveryInvalidField(t *testing.T) {
	path := writeConfig(t, `
server:
  engine: grpc
backend:
  base_url: localhost
dashboard:
  default_category: weather
  start_date: "2025-04-20"
  end_date: "2025-04-13"
  max_sessions: -1
`)
	_, err := Load(path)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "server.engine")
	assert.Contains(t, msg, "backend.base_url")
	assert.Contains(t, msg, "default_category")
	assert.Contains(t, msg, "dashboard dates")
	assert.Contains(t, msg, "session limits")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
