package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// Level represents a log severity level
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var (
	mu      sync.RWMutex
	current = LevelInfo
	std     = log.New(os.Stderr, "", log.LstdFlags)
)

// ParseLevel parses a level name ("trace", "debug", "info", "warn", "error", "fatal")
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "fatal", "panic":
		return LevelFatal, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level: %q", s)
}

// SetLevel sets the global minimum level
func SetLevel(l Level) {
	mu.Lock()
	current = l
	mu.Unlock()
}

// SetOutput redirects log output (used by tests)
func SetOutput(l *log.Logger) {
	mu.Lock()
	std = l
	mu.Unlock()
}

func logAt(l Level, tag, format string, args ...any) {
	mu.RLock()
	min := current
	out := std
	mu.RUnlock()
	if l < min {
		return
	}
	out.Printf("["+tag+"] "+format, args...)
}

// Trace logs at trace level
func Trace(format string, args ...any) { logAt(LevelTrace, "TRACE", format, args...) }

// Debug logs at debug level
func Debug(format string, args ...any) { logAt(LevelDebug, "DEBUG", format, args...) }

// Info logs at info level
func Info(format string, args ...any) { logAt(LevelInfo, "INFO", format, args...) }

// Warn logs at warn level
func Warn(format string, args ...any) { logAt(LevelWarn, "WARN", format, args...) }

// Error logs at error level
func Error(format string, args ...any) { logAt(LevelError, "ERROR", format, args...) }

// Fatal logs at fatal level and exits
func Fatal(format string, args ...any) {
	logAt(LevelFatal, "FATAL", format, args...)
	os.Exit(1)
}
