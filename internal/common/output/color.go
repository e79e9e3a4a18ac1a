package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	// Count colors
	Pending  = color.New(color.FgYellow, color.Bold)
	UpToDate = color.New(color.FgGreen)
	Failed   = color.New(color.FgRed)

	// Message colors
	Success = color.New(color.FgGreen)
	Warning = color.New(color.FgYellow)
	Error   = color.New(color.FgRed)
	Info    = color.New(color.FgCyan)
	Dim     = color.New(color.Faint)

	// Structural colors
	Header = color.New(color.FgWhite, color.Bold)
	Source = color.New(color.FgBlue, color.Bold)
)

// NoColor disables color output
func NoColor() {
	color.NoColor = true
}

// ForceColor enables color output even when not a TTY
func ForceColor() {
	color.NoColor = false
}

// IsTerminal reports whether w is a terminal. Writers without a file
// descriptor (buffers, pipes wrapped by tests) are not.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// CountColor returns the color for a pending-update count.
// A failed check is red even though it reports zero.
func CountColor(count int, failed bool) *color.Color {
	switch {
	case failed:
		return Failed
	case count > 0:
		return Pending
	default:
		return UpToDate
	}
}

// FormatCount formats a pending-update count with the matching color
func FormatCount(count int, failed bool) string {
	return CountColor(count, failed).Sprintf("%d", count)
}

// FormatSource formats a source label with color
func FormatSource(glyph, label string) string {
	if glyph != "" {
		return Source.Sprintf("%s %s", glyph, label)
	}
	return Source.Sprint(label)
}

// PrintSuccess prints a success message to w
func PrintSuccess(w io.Writer, format string, args ...interface{}) {
	Success.Fprintf(w, "✓ "+format+"\n", args...)
}

// PrintError prints an error message to w
func PrintError(w io.Writer, format string, args ...interface{}) {
	Error.Fprintf(w, "✗ "+format+"\n", args...)
}

// Sprintf returns a colored string without printing
func Sprintf(c *color.Color, format string, args ...interface{}) string {
	return c.Sprintf(format, args...)
}

// Sprint returns a colored string without printing
func Sprint(c *color.Color, a ...interface{}) string {
	return c.Sprint(a...)
}

// Box prints a boxed block of lines to w
func Box(w io.Writer, title string, lines ...string) {
	fmt.Fprintln(w)
	Header.Fprintln(w, "┌─ "+title+" ─")
	fmt.Fprintln(w, "│")
	for _, line := range lines {
		fmt.Fprintln(w, "│  "+line)
	}
	fmt.Fprintln(w, "│")
	Header.Fprintln(w, "└────────────────")
	fmt.Fprintln(w)
}
