package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const defaultLogFile = "runstrip.log"

var (
	mu           sync.Mutex
	traceEnabled bool
	logPath      = defaultLogFile

	// logger carries the human-readable session lines; tracer carries the
	// JSON trace entries. Both go through the same appendWriter.
	logger = newLogger(log.TextFormatter, log.InfoLevel)
	tracer = newLogger(log.JSONFormatter, log.DebugLevel)
)

func newLogger(f log.Formatter, level log.Level) *log.Logger {
	return log.NewWithOptions(appendWriter{}, log.Options{
		Prefix:          "runstrip",
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339Nano,
		Formatter:       f,
		Level:           level,
	})
}

// appendWriter opens the shared log file for every write so that the file
// can be rotated or removed while the launcher is running.
type appendWriter struct{}

func (appendWriter) Write(p []byte) (int, error) {
	f, err := os.OpenFile(Path(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging failed: %v\n", err)
		return 0, err
	}
	defer f.Close()
	return f.Write(p)
}

// Path returns the current log destination.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}

// Error writes err to the session log.
func Error(err error) {
	if err == nil {
		return
	}
	logger.Error(err.Error())
}

// Warn writes a formatted warning to the session log.
func Warn(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

// Info writes a formatted informational line to the session log.
func Info(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

// SetTraceEnabled toggles trace entries and debug-level session lines.
func SetTraceEnabled(enabled bool) {
	mu.Lock()
	traceEnabled = enabled
	mu.Unlock()
	if enabled {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}
}

func tracing() bool {
	mu.Lock()
	defer mu.Unlock()
	return traceEnabled
}

// Trace appends one JSON entry for event. Nothing is written unless tracing
// is enabled.
func Trace(event string, payload interface{}) {
	if !tracing() {
		return
	}
	if payload == nil {
		tracer.Debug("trace", "event", event)
		return
	}
	tracer.Debug("trace", "event", event, "payload", payload)
}

// Configure sets the log destination, creating its directory. A blank path,
// or one whose directory cannot be created, selects runstrip.log in the
// working directory.
func Configure(path string) {
	resolved := resolvePath(path)
	mu.Lock()
	logPath = resolved
	mu.Unlock()
}

func resolvePath(path string) string {
	if strings.TrimSpace(path) == "" {
		return defaultLogFile
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "unable to create log directory: %v\n", err)
		return defaultLogFile
	}
	return path
}
