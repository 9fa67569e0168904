package util

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
)

var (
	logOutput io.Writer = os.Stderr
	debugMode atomic.Bool
)

// SetDebug toggles debug output
func SetDebug(enabled bool) {
	debugMode.Store(enabled)
}

// DebugEnabled reports whether debug output is on
func DebugEnabled() bool {
	return debugMode.Load()
}

// SetLogOutput redirects diagnostic output and returns the previous writer
func SetLogOutput(w io.Writer) io.Writer {
	prev := logOutput
	logOutput = w
	return prev
}

// Warning prints a non-fatal problem to stderr
func Warning(format string, args ...any) {
	fmt.Fprintf(logOutput, "Warning: "+format+"\n", args...)
}

// Info prints a progress message to stderr
func Info(format string, args ...any) {
	fmt.Fprintf(logOutput, format+"\n", args...)
}

// Debug prints only when debug output is enabled
func Debug(format string, args ...any) {
	if !debugMode.Load() {
		return
	}
	fmt.Fprintf(logOutput, "[debug] "+format+"\n", args...)
}
