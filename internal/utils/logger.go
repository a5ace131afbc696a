package utils

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/fatih/color"
)

// Logger provides leveled logging on the diagnostic stream.
// Stdout is reserved for the release document, so nothing here writes to it.
type Logger struct {
	info    *log.Logger
	warn    *log.Logger
	error   *log.Logger
	success *log.Logger
	out     io.Writer
	verbose bool
}

// NewLogger creates a new logger writing to stderr
func NewLogger(verbose bool) *Logger {
	return NewLoggerTo(os.Stderr, verbose)
}

// NewLoggerTo creates a logger writing to w
func NewLoggerTo(w io.Writer, verbose bool) *Logger {
	return &Logger{
		info:    log.New(w, color.New(color.FgCyan).Sprint("INFO: "), log.LstdFlags),
		warn:    log.New(w, color.New(color.FgYellow, color.Bold).Sprint("WARN: "), log.LstdFlags),
		error:   log.New(w, color.New(color.FgRed, color.Bold).Sprint("ERROR: "), log.LstdFlags),
		success: log.New(w, color.New(color.FgGreen).Sprint("SUCCESS: "), log.LstdFlags),
		out:     w,
		verbose: verbose,
	}
}

// Info logs informational messages
func (l *Logger) Info(format string, v ...any) {
	if l.verbose {
		l.info.Printf(format, v...)
	}
}

// Warn logs warning messages
func (l *Logger) Warn(format string, v ...any) {
	l.warn.Printf(format, v...)
}

// Error logs error messages
func (l *Logger) Error(format string, v ...any) {
	l.error.Printf(format, v...)
}

// Success logs success messages
func (l *Logger) Success(format string, v ...any) {
	if l.verbose {
		l.success.Printf(format, v...)
	}
}

// Print outputs a message without any prefix
func (l *Logger) Print(format string, v ...any) {
	fmt.Fprintf(l.out, format+"\n", v...)
}
