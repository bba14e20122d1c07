// Package debug is the component logger for mapperlink internals. Output is
// off unless enabled by build flag or the MAPPERLINK_DEBUG / DEBUG
// environment variables, and always off in MCP mode where stdio carries the
// protocol.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Build flag for debug mode - can be overridden at build time
// go build -ldflags "-X github.com/standardbeagle/mapperlink/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// MCPMode tracks if we're running as an MCP server (set by main)
var MCPMode = false

// Component names a subsystem in log prefixes and in MAPPERLINK_DEBUG
type Component string

const (
	ComponentIndex Component = "INDEX"
	ComponentParse Component = "PARSE"
	ComponentWatch Component = "WATCH"
	ComponentMCP   Component = "MCP"
	ComponentCLI   Component = "CLI"
)

var (
	debugMutex  sync.Mutex
	debugOutput io.Writer // nil means no output
	debugFile   *os.File
	timestamps  bool
)

// SetMCPMode enables MCP mode which suppresses all debug output to stdio
func SetMCPMode(enabled bool) {
	MCPMode = enabled
}

// SetDebugOutput sets a custom writer for debug output.
// Pass nil to disable debug output entirely.
func SetDebugOutput(w io.Writer) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	debugOutput = w
}

// SetTimestamps prefixes every line with a wall-clock time
func SetTimestamps(enabled bool) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	timestamps = enabled
}

// InitDebugLogFile opens a log file in dir (the temp directory when dir is
// empty) and routes debug output to it. Call CloseDebugLog when done.
func InitDebugLogFile(dir string) (string, error) {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	if dir == "" {
		dir = filepath.Join(os.TempDir(), "mapperlink-debug-logs")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create debug log directory: %w", err)
	}

	logPath := filepath.Join(dir, fmt.Sprintf("debug-%s-%d.log", time.Now().Format("2006-01-02T150405"), os.Getpid()))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create debug log file: %w", err)
	}

	if debugFile != nil {
		debugFile.Close()
	}
	debugFile = file
	debugOutput = file
	return logPath, nil
}

// CloseDebugLog closes the debug log file if one is open.
func CloseDebugLog() error {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	if debugFile == nil {
		return nil
	}
	err := debugFile.Close()
	debugFile = nil
	debugOutput = nil
	return err
}

// Requested reports whether debug output was asked for by build flag or
// environment, regardless of where it could go
func Requested() bool {
	if EnableDebug == "true" {
		return true
	}
	switch os.Getenv("DEBUG") {
	case "1", "true":
		return true
	}
	return os.Getenv("MAPPERLINK_DEBUG") != ""
}

// IsDebugEnabled returns true if debug mode is enabled. In MCP mode only a
// log file may receive output.
func IsDebugEnabled() bool {
	if MCPMode && !logFileOpen() {
		return false
	}
	return Requested()
}

func logFileOpen() bool {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	return debugFile != nil
}

// ComponentEnabled reports whether c should log. MAPPERLINK_DEBUG takes a
// comma-separated component list ("index,watch"); "1", "true" and "all"
// select every component, as do the build flag and DEBUG.
func ComponentEnabled(c Component) bool {
	if !IsDebugEnabled() {
		return false
	}
	spec := strings.TrimSpace(os.Getenv("MAPPERLINK_DEBUG"))
	switch strings.ToLower(spec) {
	case "", "1", "true", "all":
		return true
	}
	for _, name := range strings.Split(spec, ",") {
		if strings.EqualFold(strings.TrimSpace(name), string(c)) {
			return true
		}
	}
	return false
}

// write serializes output so concurrent callers never interleave a line
func write(prefix, format string, args ...interface{}) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	if debugOutput == nil {
		return
	}
	if timestamps {
		prefix += " " + time.Now().Format("15:04:05.000")
	}
	fmt.Fprintf(debugOutput, prefix+" "+format, args...)
}

// Printf prints debug information only when debug mode is enabled and output is configured
func Printf(format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	write("[DEBUG]", format, args...)
}

// Log provides debug logging for one component
func Log(c Component, format string, args ...interface{}) {
	if !ComponentEnabled(c) {
		return
	}
	write("[DEBUG:"+string(c)+"]", format, args...)
}

// LogIndexing provides debug logging for scans and index mutation
func LogIndexing(format string, args ...interface{}) {
	Log(ComponentIndex, format, args...)
}

// LogParse provides debug logging for extractor decisions
func LogParse(format string, args ...interface{}) {
	Log(ComponentParse, format, args...)
}

// LogWatch provides debug logging for the file change feed
func LogWatch(format string, args ...interface{}) {
	Log(ComponentWatch, format, args...)
}

// LogMCP provides debug logging specifically for MCP operations
func LogMCP(format string, args ...interface{}) {
	Log(ComponentMCP, format, args...)
}

// LogCLI provides debug logging for command setup
func LogCLI(format string, args ...interface{}) {
	Log(ComponentCLI, format, args...)
}
