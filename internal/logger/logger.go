// Package logger prints pipeline progress to stderr. Debug, Info and
// Section are gated on the --verbose flag; Warn always prints, so
// degraded answers and skipped work are never silent.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"unicode/utf8"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects log output. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debug prints a verbose-only diagnostic line.
func Debug(format string, args ...any) {
	write(true, "debug: ", format, args)
}

// Info prints a verbose-only progress line.
func Info(format string, args ...any) {
	write(true, "info: ", format, args)
}

// Warn prints a warning. Warnings are not gated on verbose: fallbacks
// and inconsistencies should be visible on every run.
func Warn(format string, args ...any) {
	write(false, "warning: ", format, args)
}

// Section prints an underlined verbose-only heading.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if !verbose {
		return
	}
	fmt.Fprintf(output, "\n%s\n%s\n", name, strings.Repeat("-", utf8.RuneCountInString(name)))
}

func write(gated bool, prefix, format string, args []any) {
	mu.RLock()
	defer mu.RUnlock()
	if gated && !verbose {
		return
	}
	fmt.Fprintf(output, prefix+format+"\n", args...)
}
