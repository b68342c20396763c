// Package logger prints seedaudit diagnostics to stderr. Debug, Info and
// Section lines need --verbose. Warnings about the input are always shown.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
)

var (
	mu      sync.Mutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose turns the verbose-only lines on or off
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns whether verbose lines are printed
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

// SetOutput redirects all lines to w
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func Debug(format string, args ...any) { logf(levelDebug, format, args...) }

func Info(format string, args ...any) { logf(levelInfo, format, args...) }

// Warn is printed even without --verbose
func Warn(format string, args ...any) { logf(levelWarn, format, args...) }

// Section prints a "=== name ===" header in verbose mode
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if !verbose {
		return
	}
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Fprintf(output, "\n%s\n", cyan("=== "+name+" ==="))
}

func logf(l level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if l < levelWarn && !verbose {
		return
	}

	msg := fmt.Sprintf(format, args...)
	switch l {
	case levelDebug:
		faint := color.New(color.Faint).SprintFunc()
		fmt.Fprintln(output, faint("[DEBUG] "+msg))
	case levelInfo:
		fmt.Fprintln(output, "[INFO] "+msg)
	default:
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Fprintln(output, yellow("[WARN] "+msg))
	}
}
