package mcp

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// MaxDiagnosticLogs is how many mcp-*.log files a log directory keeps
const MaxDiagnosticLogs = 10

// DiagnosticLogger handles all diagnostic output for MCP server.
// All output goes to a file, never to stdout: the MCP client owns stdio.
type DiagnosticLogger struct {
	mu       sync.Mutex
	file     *os.File
	logger   *log.Logger
	filePath string
}

// NewDiagnosticLogger creates a file logger under the temp directory, or
// under ~/.mapperlink-mcp-logs when the temp directory is not writable.
// Logging is disabled rather than failing when neither works.
func NewDiagnosticLogger() *DiagnosticLogger {
	dir := filepath.Join(os.TempDir(), "mapperlink-mcp-logs")
	if err := os.MkdirAll(dir, 0755); err != nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = "."
		}
		dir = filepath.Join(homeDir, ".mapperlink-mcp-logs")
	}
	dl, err := NewDiagnosticLoggerIn(dir)
	if err != nil {
		return &DiagnosticLogger{logger: log.New(io.Discard, "", 0)}
	}
	return dl
}

// NewDiagnosticLoggerIn opens a timestamped log file in dir and prunes the
// oldest files beyond MaxDiagnosticLogs
func NewDiagnosticLoggerIn(dir string) (*DiagnosticLogger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	timestamp := time.Now().Format("2006-01-02T150405")
	logPath := filepath.Join(dir, fmt.Sprintf("mcp-%s-%d.log", timestamp, os.Getpid()))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	pruneDiagnosticLogs(dir, logPath, MaxDiagnosticLogs)

	return &DiagnosticLogger{
		file:     file,
		filePath: logPath,
		logger:   log.New(file, "[MCP] ", log.LstdFlags|log.Lmicroseconds),
	}, nil
}

// pruneDiagnosticLogs removes the oldest mcp-*.log files so at most keep
// remain. current is never removed. Names sort by their timestamp.
func pruneDiagnosticLogs(dir, current string, keep int) {
	matches, err := filepath.Glob(filepath.Join(dir, "mcp-*.log"))
	if err != nil || len(matches) <= keep {
		return
	}
	sort.Strings(matches)
	for _, path := range matches[:len(matches)-keep] {
		if path == current {
			continue
		}
		_ = os.Remove(path)
	}
}

// Printf logs a diagnostic message
func (dl *DiagnosticLogger) Printf(format string, v ...interface{}) {
	if dl == nil || dl.logger == nil {
		return
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()
	dl.logger.Printf(format, v...)
}

// Errorf logs an error
func (dl *DiagnosticLogger) Errorf(format string, v ...interface{}) {
	if dl == nil || dl.logger == nil {
		return
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()
	dl.logger.Printf("ERROR: "+format, v...)
}

// Writer exposes the log destination, for redirecting the standard logger
func (dl *DiagnosticLogger) Writer() io.Writer {
	if dl == nil || dl.logger == nil {
		return io.Discard
	}
	return lockedWriter{dl}
}

// lockedWriter serializes standard-logger writes with Printf
type lockedWriter struct{ dl *DiagnosticLogger }

func (w lockedWriter) Write(p []byte) (int, error) {
	w.dl.mu.Lock()
	defer w.dl.mu.Unlock()
	return w.dl.logger.Writer().Write(p)
}

// Close closes the log file if it's open.
func (dl *DiagnosticLogger) Close() error {
	if dl == nil {
		return nil
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()
	if dl.file != nil {
		err := dl.file.Close()
		dl.file = nil
		return err
	}
	return nil
}

// GetLogPath returns the path to the diagnostic log file
func (dl *DiagnosticLogger) GetLogPath() string {
	if dl == nil {
		return ""
	}
	return dl.filePath
}

// NoOpLogger is used to suppress all logging
var NoOpLogger = &DiagnosticLogger{
	logger: log.New(io.Discard, "", 0),
}
