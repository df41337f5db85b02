// Package console writes the user-facing log lines. All output goes
// to stderr so stdout stays clean for machine-readable use.
package console

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	debugStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var debugEnabled bool

// SetDebug toggles debug output.
func SetDebug(on bool) { debugEnabled = on }

// Infof prints an informational line.
func Infof(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", infoStyle.Render("[INFO]"), fmt.Sprintf(format, args...))
}

// Warnf prints a warning line.
func Warnf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", warnStyle.Render("[WARN]"), fmt.Sprintf(format, args...))
}

// Errorf prints an error line. It does not exit.
func Errorf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("[ERROR]"), fmt.Sprintf(format, args...))
}

// Debugf prints a line only when debug output is enabled.
func Debugf(format string, args ...interface{}) {
	if !debugEnabled {
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", debugStyle.Render("[DEBUG]"), fmt.Sprintf(format, args...))
}

// Printf writes directly to stderr without a prefix, for listings.
func Printf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
}
