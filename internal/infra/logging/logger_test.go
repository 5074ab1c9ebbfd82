package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/opus/internal/domain"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo}, // default
		{"", slog.LevelInfo},        // default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestLogger_Info(t *testing.T) {
	dataDir := t.TempDir()
	logger := New(dataDir, slog.LevelInfo)
	defer func() { _ = logger.Close() }()

	logger.Info(1, "sync", "task synced")

	content, err := os.ReadFile(domain.GlobalLogPath(dataDir))
	require.NoError(t, err)
	assert.Contains(t, string(content), "[INFO]")
	assert.Contains(t, string(content), "[task-1]")
	assert.Contains(t, string(content), "[sync]")
	assert.Contains(t, string(content), "task synced")

	taskContent, err := os.ReadFile(domain.TaskLogPath(dataDir, 1))
	require.NoError(t, err)
	assert.Contains(t, string(taskContent), "task synced")
}

func TestLogger_GlobalLogOnly(t *testing.T) {
	dataDir := t.TempDir()
	logger := New(dataDir, slog.LevelInfo)
	defer func() { _ = logger.Close() }()

	logger.Info(0, "persist", "global message")

	content, err := os.ReadFile(domain.GlobalLogPath(dataDir))
	require.NoError(t, err)
	assert.Contains(t, string(content), "[global]")

	// Verify no task-0 log file was created
	_, err = os.Stat(domain.TaskLogPath(dataDir, 0))
	assert.True(t, os.IsNotExist(err))
}

func TestLogger_LevelFiltering(t *testing.T) {
	dataDir := t.TempDir()
	logger := New(dataDir, slog.LevelWarn) // Only warn and above
	defer func() { _ = logger.Close() }()

	logger.Debug(1, "task", "debug message")
	logger.Info(1, "task", "info message")
	logger.Warn(1, "task", "warn message")
	logger.Error(1, "task", "error message")

	content, err := os.ReadFile(domain.GlobalLogPath(dataDir))
	require.NoError(t, err)
	assert.NotContains(t, string(content), "debug message")
	assert.NotContains(t, string(content), "info message")
	assert.Contains(t, string(content), "warn message")
	assert.Contains(t, string(content), "error message")
}

func TestLogger_DisabledWhenEmptyDataDir(t *testing.T) {
	logger := New("", slog.LevelInfo)
	defer func() { _ = logger.Close() }()

	// Should not panic
	logger.Info(1, "task", "test message")
	logger.Error(1, "task", "error message")
}

func TestLogger_LogFormat(t *testing.T) {
	dataDir := t.TempDir()
	logger := New(dataDir, slog.LevelInfo)
	logger.now = func() time.Time { return time.Date(2025, 12, 30, 9, 32, 51, 0, time.Local) }
	defer func() { _ = logger.Close() }()

	logger.Info(42, "usecase", `task created: "my task"`)

	content, err := os.ReadFile(domain.GlobalLogPath(dataDir))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 1)
	assert.Equal(t, `[2025-12-30 09:32:51] [INFO] [task-42] [usecase] task created: "my task"`, lines[0])
}

func TestLogger_MultipleTaskFiles(t *testing.T) {
	dataDir := t.TempDir()
	logger := New(dataDir, slog.LevelInfo)
	defer func() { _ = logger.Close() }()

	logger.Info(1, "task", "message for task 1")
	logger.Info(2, "task", "message for task 2")
	logger.Info(1, "task", "another message for task 1")

	task1Content, err := os.ReadFile(domain.TaskLogPath(dataDir, 1))
	require.NoError(t, err)
	assert.Contains(t, string(task1Content), "another message for task 1")
	assert.NotContains(t, string(task1Content), "message for task 2")

	task2Content, err := os.ReadFile(domain.TaskLogPath(dataDir, 2))
	require.NoError(t, err)
	assert.NotContains(t, string(task2Content), "message for task 1")
}

func TestLogger_Mirror(t *testing.T) {
	var buf bytes.Buffer
	mirror := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	logger := New("", slog.LevelDebug).WithMirror(mirror)

	logger.Info(7, "sync", "quiet")
	logger.Warn(7, "sync", "sync failed")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "sync failed")
	assert.Contains(t, out, "category=sync")
	assert.Contains(t, out, "task=7")
}

func TestLogger_CreateLogsDir(t *testing.T) {
	dataDir := t.TempDir()
	logsDir := filepath.Join(dataDir, "logs")

	_, err := os.Stat(logsDir)
	assert.True(t, os.IsNotExist(err))

	logger := New(dataDir, slog.LevelInfo)
	defer func() { _ = logger.Close() }()
	logger.Info(1, "task", "test message")

	stat, err := os.Stat(logsDir)
	require.NoError(t, err)
	assert.True(t, stat.IsDir())
}
