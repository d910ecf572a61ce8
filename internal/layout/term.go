package layout

import (
	"os"
	"strconv"

	"golang.org/x/term"
)

// TerminalWidth returns the column count of f, falling back to $COLUMNS and
// then DefaultTermWidth when f is not a terminal (pipes, CI).
func TerminalWidth(f *os.File) int {
	if f != nil && term.IsTerminal(int(f.Fd())) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	if w, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && w > 0 {
		return w
	}
	return DefaultTermWidth
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}
