// Package logger provides centralized logging for chat.
// It wraps a charmbracelet/log logger that writes to stderr so stdout stays reserved for replies.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// EnvLogLevel is consulted when no level is given on the command line.
const EnvLogLevel = "CHATGPT_LOG_LEVEL"

// Logger is the global logger instance used throughout chat.
var Logger *log.Logger

func init() {
	Logger = newLogger(os.Stderr, log.InfoLevel)
}

// Configure sets up the logger from CLI flags and the environment.
// Level precedence: flag > CHATGPT_LOG_LEVEL > info.
// The returned closer releases the log file, if any, and points the logger back at stderr.
func Configure(logLevel string, logFile string) (io.Closer, error) {
	level := logLevel
	if level == "" {
		level = strings.ToLower(os.Getenv(EnvLogLevel))
	}

	if logFile == "" {
		Logger = newLogger(os.Stderr, ParseLevel(level))
		return nopCloser{}, nil
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, err
	}
	Logger = newLogger(file, ParseLevel(level))
	return &fileCloser{file: file}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type fileCloser struct {
	file *os.File
}

func (c *fileCloser) Close() error {
	Logger = newLogger(os.Stderr, Logger.GetLevel())
	return c.file.Close()
}

// SetOutput replaces the global logger with one writing to w at the current level.
func SetOutput(w io.Writer) {
	Logger = newLogger(w, Logger.GetLevel())
}

// With attaches key-value pairs to every subsequent log line.
func With(keyvals ...interface{}) {
	Logger = Logger.With(keyvals...)
}

func newLogger(w io.Writer, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		Prefix: "chat",
	})
	l.SetTimeFormat("")
	l.SetLevel(level)
	l.SetStyles(styles())
	return l
}

// ParseLevel converts a level name to a log level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

func styles() *log.Styles {
	s := log.DefaultStyles()
	s.Keys["error"] = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	s.Values["error"] = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	s.Keys["path"] = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	s.Keys["url"] = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	s.Keys["op"] = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	return s
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg interface{}, keyvals ...interface{}) {
	Logger.Debug(msg, keyvals...)
}

// Info logs an info message with optional key-value pairs.
func Info(msg interface{}, keyvals ...interface{}) {
	Logger.Info(msg, keyvals...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(msg interface{}, keyvals ...interface{}) {
	Logger.Warn(msg, keyvals...)
}

// StoreOperation logs persistent store activity for debugging.
func StoreOperation(operation string, path string, details ...interface{}) {
	Debug("Store operation", append([]interface{}{"op", operation, "path", path}, details...)...)
}
