// Package logger provides centralized logging for AliadoDoc.
// It wraps charmbracelet/log with package-level helpers and component loggers.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Logger is the global logger instance used throughout AliadoDoc.
var Logger *log.Logger

// output is where component loggers write; it follows Configure.
var output io.Writer = os.Stderr

func init() {
	Logger = log.New(os.Stderr)
	Logger.SetTimeFormat("")
	Logger.SetLevel(log.WarnLevel)
}

// Configure sets up the logger from CLI flags and the environment.
// CLI flags take precedence over ALIADODOC_LOG_LEVEL.
func Configure(logLevel string, logFile string, testMode bool) error {
	level := logLevel
	if level == "" {
		level = strings.ToLower(os.Getenv("ALIADODOC_LOG_LEVEL"))
	}
	if level == "" {
		level = "warn"
	}

	var out io.Writer = os.Stderr
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return err
		}
		out = file
	}

	output = out
	Logger = log.New(out)
	Logger.SetTimeFormat("")
	Logger.SetLevel(ParseLevel(level))

	if testMode {
		// Deterministic output: no timestamps, no caller info.
		Logger.SetReportTimestamp(false)
		Logger.SetReportCaller(false)
	} else if logFile != "" {
		Logger.SetReportTimestamp(true)
		Logger.SetTimeFormat("2006-01-02 15:04:05")
	}

	return nil
}

// SetOutput redirects the global logger, keeping its level. Tests use it to capture logs.
func SetOutput(w io.Writer) {
	level := Logger.GetLevel()
	output = w
	Logger = log.New(w)
	Logger.SetTimeFormat("")
	Logger.SetLevel(level)
}

// ParseLevel converts a level name to a log level. Unknown names map to warn.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.WarnLevel
	}
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

// Error logs an error message with optional key-value pairs.
func Error(msg interface{}, keyvals ...interface{}) {
	Logger.Error(msg, keyvals...)
}

// Fatal logs a fatal message with optional key-value pairs and exits.
func Fatal(msg interface{}, keyvals ...interface{}) {
	Logger.Fatal(msg, keyvals...)
}

// ServiceOperation logs service operation details for debugging.
func ServiceOperation(service string, operation string, details ...interface{}) {
	Debug("Service operation", "service", service, "operation", operation, "details", details)
}

// TurnEvent logs a step of the turn state machine.
func TurnEvent(step string, keyvals ...interface{}) {
	Debug("Turn", append([]interface{}{"step", step}, keyvals...)...)
}

// NewStyledLogger creates a component logger with level badges and a prefix
// (e.g. "Files", "Stream").
func NewStyledLogger(prefix string) *log.Logger {
	styles := log.DefaultStyles()

	badge := func(label, bg string) lipgloss.Style {
		return lipgloss.NewStyle().
			SetString(label).
			Padding(0, 1, 0, 1).
			Background(lipgloss.Color(bg)).
			Foreground(lipgloss.Color("15"))
	}
	styles.Levels[log.DebugLevel] = badge("DEBUG", "240")
	styles.Levels[log.InfoLevel] = badge("INFO", "33")
	styles.Levels[log.WarnLevel] = badge("WARN", "214")
	styles.Levels[log.ErrorLevel] = badge("ERROR", "196")
	styles.Levels[log.FatalLevel] = badge("FATAL", "88")

	styles.Keys["error"] = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styles.Keys["file"] = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	styles.Keys["model"] = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	styles.Values["error"] = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	componentLogger := log.NewWithOptions(output, log.Options{
		Prefix: prefix + " ",
	})
	componentLogger.SetStyles(styles)
	componentLogger.SetLevel(Logger.GetLevel())

	return componentLogger
}
