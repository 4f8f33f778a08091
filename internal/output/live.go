package output

import (
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// DefaultWidth is used when the terminal width cannot be read.
const DefaultWidth = 80

// MarkdownRenderer turns a finished reply into terminal text.
type MarkdownRenderer interface {
	Render(markdown string) (string, error)
}

// LiveView redraws a streamed reply in place. On a terminal each partial
// replaces the previous one; elsewhere only the final text is written.
type LiveView struct {
	printer     *Printer
	term        *termenv.Output
	markdown    MarkdownRenderer
	interactive bool
	width       int

	mu    sync.Mutex
	drawn int
}

// NewLiveView creates a live view writing through printer. markdown may be nil,
// in which case the final text is written as is.
func NewLiveView(printer *Printer, markdown MarkdownRenderer, interactive bool) *LiveView {
	return &LiveView{
		printer:     printer,
		term:        termenv.NewOutput(printer, termenv.WithProfile(termenv.Ascii)),
		markdown:    markdown,
		interactive: interactive,
		width:       terminalWidth(),
	}
}

// IsInteractive reports whether stdout is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultWidth
	}
	return width
}

// SetWidth overrides the detected terminal width.
func (v *LiveView) SetWidth(width int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if width > 0 {
		v.width = width
	}
}

// Partial redraws the reply so far.
func (v *LiveView) Partial(accumulated string) {
	if !v.interactive {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	v.clear()
	_, _ = v.term.WriteString(accumulated)
	v.drawn = countRows(accumulated, v.width)
}

// Final replaces any partial output with the rendered reply.
func (v *LiveView) Final(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.clear()
	rendered := text
	if v.markdown != nil {
		if out, err := v.markdown.Render(text); err == nil {
			rendered = out
		}
	}
	if !strings.HasSuffix(rendered, "\n") {
		rendered += "\n"
	}
	_, _ = v.term.WriteString(rendered)
}

// Fail removes partial output and reports err.
func (v *LiveView) Fail(err error) {
	v.mu.Lock()
	v.clear()
	v.mu.Unlock()
	v.printer.Error(err.Error())
}

// clear erases the rows drawn by the last partial. Callers hold mu.
func (v *LiveView) clear() {
	if v.drawn == 0 {
		return
	}
	v.term.ClearLines(v.drawn - 1)
	_, _ = v.term.WriteString("\r")
	v.drawn = 0
}

// countRows returns how many terminal rows text occupies at width.
func countRows(text string, width int) int {
	if width <= 0 {
		width = DefaultWidth
	}
	rows := 0
	for _, line := range strings.Split(text, "\n") {
		w := ansi.StringWidth(line)
		if w == 0 {
			rows++
			continue
		}
		rows += (w + width - 1) / width
	}
	return rows
}
