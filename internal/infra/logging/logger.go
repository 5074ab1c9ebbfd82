// Package logging provides file-based logging for opus.
// It outputs logs to both a global log file (<data dir>/logs/opus.log)
// and task-specific log files (<data dir>/logs/task-N.log).
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/runoshun/opus/internal/domain"
)

// Ensure Logger implements domain.Logger interface.
var _ domain.Logger = (*Logger)(nil)

// Logger writes categorized lines to log files and optionally mirrors
// them to a slog.Logger.
// Fields are ordered to minimize memory padding.
type Logger struct {
	globalFile *os.File
	mirror     *slog.Logger
	taskFiles  map[domain.TaskID]*os.File
	now        func() time.Time
	dataDir    string
	mu         sync.Mutex
	level      slog.Level
}

// New creates a new Logger that writes under dataDir/logs.
// If dataDir is empty, file output is disabled.
func New(dataDir string, level slog.Level) *Logger {
	return &Logger{
		dataDir:   dataDir,
		level:     level,
		taskFiles: make(map[domain.TaskID]*os.File),
		now:       time.Now,
	}
}

// WithMirror sends every accepted line to m as well. The mirror applies
// its own handler level on top of the logger's level.
func (l *Logger) WithMirror(m *slog.Logger) *Logger {
	l.mirror = m
	return l
}

// ParseLevel parses a log level string into slog.Level.
func ParseLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ensureGlobalFile opens or returns the global log file.
// Must be called with l.mu held.
func (l *Logger) ensureGlobalFile() (*os.File, error) {
	if l.globalFile != nil {
		return l.globalFile, nil
	}

	if err := os.MkdirAll(domain.LogsDir(l.dataDir), 0o750); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}

	f, err := os.OpenFile(domain.GlobalLogPath(l.dataDir), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open global log file: %w", err)
	}
	l.globalFile = f
	return f, nil
}

// ensureTaskFile opens or returns the task log file.
// Must be called with l.mu held.
func (l *Logger) ensureTaskFile(taskID domain.TaskID) (*os.File, error) {
	if f, ok := l.taskFiles[taskID]; ok {
		return f, nil
	}

	if err := os.MkdirAll(domain.LogsDir(l.dataDir), 0o750); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}

	f, err := os.OpenFile(domain.TaskLogPath(l.dataDir, taskID), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open task log file: %w", err)
	}
	l.taskFiles[taskID] = f
	return f, nil
}

// Close closes all open log files.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var lastErr error
	if l.globalFile != nil {
		if err := l.globalFile.Close(); err != nil {
			lastErr = err
		}
		l.globalFile = nil
	}
	for id, f := range l.taskFiles {
		if err := f.Close(); err != nil {
			lastErr = err
		}
		delete(l.taskFiles, id)
	}
	return lastErr
}

// formatLog formats a log entry in the specified format.
// Format: [2025-12-30 09:32:51] [INFO] [task-1] [category] message
func formatLog(t time.Time, level slog.Level, taskID domain.TaskID, category, msg string) string {
	taskStr := "global"
	if taskID > 0 {
		taskStr = fmt.Sprintf("task-%d", taskID)
	}
	return fmt.Sprintf("[%s] [%s] [%s] [%s] %s\n",
		t.Format("2006-01-02 15:04:05"),
		levelToString(level),
		taskStr,
		category,
		msg,
	)
}

func levelToString(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelInfo:
		return "INFO"
	case slog.LevelWarn:
		return "WARN"
	case slog.LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// log writes a log entry to appropriate files based on taskID.
// If taskID is 0, logs only to global log.
// If taskID > 0, logs to both global and task-specific log.
func (l *Logger) log(level slog.Level, taskID domain.TaskID, category, msg string) {
	if level < l.level {
		return // Skip if below minimum level
	}

	if l.mirror != nil {
		attrs := []any{"category", category}
		if taskID > 0 {
			attrs = append(attrs, "task", int64(taskID))
		}
		l.mirror.Log(context.Background(), level, msg, attrs...)
	}

	if l.dataDir == "" {
		return // File logging disabled
	}

	entry := formatLog(l.now(), level, taskID, category, msg)

	l.mu.Lock()
	defer l.mu.Unlock()

	if gf, err := l.ensureGlobalFile(); err == nil {
		_, _ = io.WriteString(gf, entry)
	}

	if taskID > 0 {
		if tf, err := l.ensureTaskFile(taskID); err == nil {
			_, _ = io.WriteString(tf, entry)
		}
	}
}

// Info logs an info message.
func (l *Logger) Info(taskID domain.TaskID, category, msg string) {
	l.log(slog.LevelInfo, taskID, category, msg)
}

// Debug logs a debug message.
func (l *Logger) Debug(taskID domain.TaskID, category, msg string) {
	l.log(slog.LevelDebug, taskID, category, msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(taskID domain.TaskID, category, msg string) {
	l.log(slog.LevelWarn, taskID, category, msg)
}

// Error logs an error message.
func (l *Logger) Error(taskID domain.TaskID, category, msg string) {
	l.log(slog.LevelError, taskID, category, msg)
}
