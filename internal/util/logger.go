// Package util provides the shared logger and HTTP clients used across anirelay.
package util

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// IsDebug enables verbose logging across the process.
var IsDebug = false

// Logger is the process-wide structured logger.
var Logger *log.Logger

// SetDebugMode toggles debug logging before InitLogger runs.
func SetDebugMode(enabled bool) {
	IsDebug = enabled
}

func coloredPrefix() string {
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#F25D94")).
		Bold(true).
		Padding(0, 1).
		MarginRight(1)
	return style.Render("anirelay")
}

// InitLogger builds the charmbracelet logger. Timestamps are always on for a
// server process; caller reporting only in debug mode.
func InitLogger() {
	Logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    IsDebug,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          coloredPrefix(),
	})
	Logger.SetColorProfile(termenv.TrueColor)
	if IsDebug {
		Logger.SetLevel(log.DebugLevel)
		Logger.Debug("debug logging enabled")
	} else {
		Logger.SetLevel(log.InfoLevel)
	}
}

// Debug logs a debug message with optional keyvals.
func Debug(msg string, keyvals ...interface{}) {
	if IsDebug && Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

// Info logs an info message with optional keyvals.
func Info(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

// Warn logs a warning message with optional keyvals.
func Warn(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

// Error logs an error message with optional keyvals.
func Error(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}

// Fatal logs a fatal message and exits.
func Fatal(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Fatal(msg, keyvals...)
	} else {
		os.Exit(1)
	}
}
