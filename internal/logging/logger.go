// =============================================================================
// Contact Converter - Logging
// =============================================================================
//
// All diagnostics go to standard error so they never mix with the converted
// document, which may itself be written to standard output.
//
// VERBOSITY LEVELS:
//   0  : errors only
//   1  : warnings and info (data loss while flattening, output generation)
//   2  : per-stage debug trace (opening files, parsing collections, element ids)
//   3+ : trace (full record dumps)
//
// =============================================================================

package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"
	"github.com/mattn/go-isatty"
)

// Verbosity thresholds.
const (
	LevelInfo  = 1
	LevelDebug = 2
	LevelTrace = 3
)

// Logger is the logging interface used by the conversion pipeline.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// Trace writes a deep dump of value at the highest verbosity.
	Trace(label string, value interface{})
}

// =============================================================================
// STDERR LOGGER
// =============================================================================

// prefixStyles colors the line prefixes for one renderer.
type prefixStyles struct {
	info lipgloss.Style
	warn lipgloss.Style
	err  lipgloss.Style
}

func newPrefixStyles(r *lipgloss.Renderer) *prefixStyles {
	return &prefixStyles{
		info: r.NewStyle().Foreground(lipgloss.Color("12")),
		warn: r.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		err:  r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
}

type severity int

const (
	sevInfo severity = iota
	sevWarn
	sevError
)

// VerboseLogger writes lines to an io.Writer when the configured verbosity
// reaches the level of the message.
type VerboseLogger struct {
	out       io.Writer
	verbosity int

	// styles is nil for unstyled output.
	styles *prefixStyles
}

// New returns a logger writing to standard error. Prefixes are colored only
// when standard error is a terminal, with the color profile of standard error.
func New(verbosity int) *VerboseLogger {
	l := &VerboseLogger{out: os.Stderr, verbosity: verbosity}
	fd := os.Stderr.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		l.styles = newPrefixStyles(lipgloss.NewRenderer(os.Stderr))
	}
	return l
}

// NewWriter returns an unstyled logger writing to w.
func NewWriter(w io.Writer, verbosity int) *VerboseLogger {
	return &VerboseLogger{out: w, verbosity: verbosity}
}

func (l *VerboseLogger) Debug(msg string, args ...interface{}) {
	l.print(LevelDebug, sevInfo, msg, args...)
}

func (l *VerboseLogger) Info(msg string, args ...interface{}) {
	l.print(LevelInfo, sevInfo, msg, args...)
}

func (l *VerboseLogger) Warn(msg string, args ...interface{}) {
	l.print(LevelInfo, sevWarn, msg, args...)
}

// Error prints regardless of verbosity.
func (l *VerboseLogger) Error(msg string, args ...interface{}) {
	l.print(0, sevError, msg, args...)
}

func (l *VerboseLogger) Trace(label string, value interface{}) {
	if l == nil || l.verbosity < LevelTrace {
		return
	}
	dump := strings.TrimRight(spew.Sdump(value), "\n")
	l.print(LevelTrace, sevInfo, "%s\n%s", label, dump)
}

func (l *VerboseLogger) prefix(sev severity) string {
	prefix := "[i]"
	if sev != sevInfo {
		prefix = "[!]"
	}
	if l.styles == nil {
		return prefix
	}

	switch sev {
	case sevWarn:
		return l.styles.warn.Render(prefix)
	case sevError:
		return l.styles.err.Render(prefix)
	}
	return l.styles.info.Render(prefix)
}

func (l *VerboseLogger) print(level int, sev severity, msg string, args ...interface{}) {
	if l == nil || l.out == nil || l.verbosity < level {
		return
	}
	prefix := l.prefix(sev)
	line := strings.TrimRight(fmt.Sprintf(msg, args...), "\n")
	fmt.Fprintf(l.out, "%s %s\n", prefix, line)
}

// =============================================================================
// DISCARD LOGGER
// =============================================================================

// Discard drops every message.
var Discard Logger = discard{}

type discard struct{}

func (discard) Debug(string, ...interface{}) {}
func (discard) Info(string, ...interface{})  {}
func (discard) Warn(string, ...interface{})  {}
func (discard) Error(string, ...interface{}) {}
func (discard) Trace(string, interface{})    {}
