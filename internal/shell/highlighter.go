package shell

import (
	"regexp"

	"aliadodoc/internal/output"

	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"
	"github.com/muesli/termenv"
)

const (
	ansiBrightBlue  = "\033[94m"
	ansiBrightGreen = "\033[92m"
	ansiReset       = "\033[0m"
)

// commandPattern matches a backslash command and the rest of the line.
var commandPattern = regexp.MustCompile(`^(\\[a-zA-Z][a-zA-Z0-9-]*)(\s+.*)?$`)

// CommandHighlighter implements readline.Painter to highlight backslash commands.
type CommandHighlighter struct {
	enabled bool
}

// NewCommandHighlighter returns a painter that is a no-op when printer output is plain
// or the terminal has no color support.
func NewCommandHighlighter(printer *output.Printer) readline.Painter {
	return &CommandHighlighter{
		enabled: printer.IsStylable() && lipgloss.ColorProfile() != termenv.Ascii,
	}
}

// Paint implements readline.Painter.
func (h *CommandHighlighter) Paint(line []rune, _ int) []rune {
	if !h.enabled {
		return line
	}
	return []rune(highlightCommand(string(line)))
}

// highlightCommand colors the command name and its argument separately.
func highlightCommand(input string) string {
	matches := commandPattern.FindStringSubmatch(input)
	if matches == nil {
		return input
	}

	result := ansiBrightBlue + matches[1] + ansiReset
	if matches[2] != "" {
		result += ansiBrightGreen + matches[2] + ansiReset
	}
	return result
}
