package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// DefaultLevel is the level used when neither --verbose nor --log-level is given.
const DefaultLevel = 1

var (
	level       = DefaultLevel
	infoLogger  *log.Logger
	debugLogger *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
)

func init() {
	SetOutput(os.Stdout, os.Stderr)
}

// SetOutput redirects the loggers. Info and debug go to out, warnings and errors to errOut.
func SetOutput(out, errOut io.Writer) {
	infoLogger = log.New(out, "", 0)
	debugLogger = log.New(out, "", 0)
	warnLogger = log.New(errOut, "WARNING: ", 0)
	errorLogger = log.New(errOut, "ERROR: ", 0)
}

// SetLevel sets the logging verbosity. Levels above DefaultLevel enable debug output.
func SetLevel(l int) {
	level = l
}

// Level returns the current logging verbosity.
func Level() int {
	return level
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(verbose bool) {
	if verbose {
		if level <= DefaultLevel {
			level = DefaultLevel + 1
		}
		return
	}
	level = DefaultLevel
}

// IsVerbose returns true if the level is above the default.
func IsVerbose() bool {
	return level > DefaultLevel
}

func getTimestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

// Debugf logs a formatted debug message if verbose mode is enabled.
// Includes a timestamp.
func Debugf(format string, v ...interface{}) {
	if IsVerbose() {
		debugLogger.Printf("[%s] DEBUG: %s", getTimestamp(), fmt.Sprintf(format, v...))
	}
}

// Infof logs a formatted informational message.
func Infof(format string, v ...interface{}) {
	infoLogger.Printf(format, v...)
}

// Warnf logs a formatted warning.
func Warnf(format string, v ...interface{}) {
	warnLogger.Printf(format, v...)
}

// Errorf logs a formatted error message.
func Errorf(format string, v ...interface{}) {
	errorLogger.Printf(format, v...)
}
