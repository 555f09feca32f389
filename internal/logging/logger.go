// Package logging provides the leveled, colored logger shared by the service,
// sync coordinator, and CLI.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Level controls which messages a Logger emits.
type Level string

// Log levels in increasing verbosity.
const (
	ERROR Level = "ERROR"
	WARN  Level = "WARN"
	INFO  Level = "INFO"
	DEBUG Level = "DEBUG"
)

var levelRank = map[Level]int{ERROR: 0, WARN: 1, INFO: 2, DEBUG: 3}

// Logger writes timestamped, level-tagged lines.
type Logger struct {
	mu    sync.Mutex
	level Level
	out   *log.Logger
}

// New initializes a Logger writing to stdout at the given level.
func New(level Level) *Logger {
	return NewWithWriter(level, os.Stdout)
}

// NewWithWriter initializes a Logger writing to w at the given level.
func NewWithWriter(level Level, w io.Writer) *Logger {
	if _, ok := levelRank[level]; !ok {
		level = INFO
	}
	return &Logger{level: level, out: log.New(w, "", 0)}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return NewWithWriter(ERROR, io.Discard)
}

func (l *Logger) logMessage(level Level, message string) {
	if levelRank[level] > levelRank[l.level] {
		return
	}
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Printf("[%s] [%s] %s", timestamp, coloredLevel(level), message)
}

func coloredLevel(level Level) string {
	switch level {
	case INFO:
		return color.New(color.FgBlue).Sprint(string(INFO))
	case ERROR:
		return color.New(color.FgRed).Sprint(string(ERROR))
	case DEBUG:
		return color.New(color.FgCyan).Sprint(string(DEBUG))
	case WARN:
		return color.New(color.FgYellow).Sprint(string(WARN))
	default:
		return string(level)
	}
}

// Info logs an informational message.
func (l *Logger) Info(msg string) { l.logMessage(INFO, msg) }

// Infof logs a formatted informational message.
func (l *Logger) Infof(format string, args ...any) { l.logMessage(INFO, fmt.Sprintf(format, args...)) }

// Warn logs a warning.
func (l *Logger) Warn(msg string) { l.logMessage(WARN, msg) }

// Warnf logs a formatted warning.
func (l *Logger) Warnf(format string, args ...any) { l.logMessage(WARN, fmt.Sprintf(format, args...)) }

// Error logs an error message.
func (l *Logger) Error(msg string) { l.logMessage(ERROR, msg) }

// Errorf logs a formatted error message.
func (l *Logger) Errorf(format string, args ...any) {
	l.logMessage(ERROR, fmt.Sprintf(format, args...))
}

// Debug logs a debug message when the level allows it.
func (l *Logger) Debug(msg string) { l.logMessage(DEBUG, msg) }

// Debugf logs a formatted debug message when the level allows it.
func (l *Logger) Debugf(format string, args ...any) {
	l.logMessage(DEBUG, fmt.Sprintf(format, args...))
}

// Fatalf logs a fatal error message and exits the process.
func (l *Logger) Fatalf(format string, args ...any) {
	l.logMessage(ERROR, fmt.Sprintf(format, args...))
	os.Exit(1)
}
