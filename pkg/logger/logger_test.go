package logger

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatterLayout(t *testing.T) {
	entry := &logrus.Entry{
		Time:    time.Date(2025, 4, 13, 9, 30, 0, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "dashboard: stale response",
		Data:    logrus.Fields{"token": 2, "category": "academic"},
		Caller:  &runtime.Frame{File: "/src/controller.go", Line: 42},
	}
	entry.Logger = logrus.New()
	entry.Logger.SetReportCaller(true)

	out, err := (&Formatter{}).Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "[2025-04-13 09:30:00] [WARN] [controller.go:42] dashboard: stale response category=academic token=2\n", string(out))
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "rinsight.log")
	log, err := New("debug", path)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.Debug("hello")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "[DEBU]"))
	assert.True(t, strings.Contains(string(data), "hello"))
}

func TestNewDefaultsToInfo(t *testing.T) {
	log, err := New("loud", "")
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}
