package logger

import (
	"fmt"
	"io"
	"log"
	"strings"
)

// Level orders the log labels; messages below the current level are dropped.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

const (
	fatalLabel = "[FATAL] "
	errorLabel = "[ERROR] "
	warnLabel  = "[WARN ] "
	infoLabel  = "[INFO ] "
	debugLabel = "[DEBUG] "
)

var minLevel = LevelInfo

// SetLevel sets the lowest level that is printed.
func SetLevel(l Level) {
	minLevel = l
}

// SetOutput redirects the standard logger, which writes to stderr by default.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// ParseLevel maps a level name from config or flags to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %q", s)
	}
}

// mylog prepends the level string to log.Printf when level is enabled.
// Arguments are handled in the manner of [fmt.Printf].
func mylog(level Level, label string, format string, args ...interface{}) {
	if level < minLevel {
		return
	}
	log.Printf(label+format, args...)
}

// Fatal calls [log.Fatalf], adding a fatal label.
// Arguments are handled in the manner of [fmt.Printf].
func Fatal(format string, args ...interface{}) {
	log.Fatalf(fatalLabel+format, args...)
}

// Error prints to the standard logger, adding an error label.
// Arguments are handled in the manner of [fmt.Printf].
func Error(format string, args ...interface{}) {
	mylog(LevelError, errorLabel, format, args...)
}

// Warn prints to the standard logger, adding a warn label.
// Arguments are handled in the manner of [fmt.Printf].
func Warn(format string, args ...interface{}) {
	mylog(LevelWarn, warnLabel, format, args...)
}

// Info prints to the standard logger, adding an info label.
// Arguments are handled in the manner of [fmt.Printf].
func Info(format string, args ...interface{}) {
	mylog(LevelInfo, infoLabel, format, args...)
}

// Debug prints to the standard logger, adding a debug label.
// Arguments are handled in the manner of [fmt.Printf].
func Debug(format string, args ...interface{}) {
	mylog(LevelDebug, debugLabel, format, args...)
}
