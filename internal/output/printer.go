package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Printer writes semantic output, styled through a StyleProvider when one is
// available and with plain prefixes otherwise.
type Printer struct {
	styleProvider StyleProvider
	writer        io.Writer
	plain         bool

	mu sync.Mutex
}

// Option configures a Printer.
type Option func(*Printer)

// WithStyles sets the style provider. Nil or unavailable providers are ignored.
func WithStyles(provider StyleProvider) Option {
	return func(p *Printer) {
		if provider != nil && provider.IsAvailable() {
			p.styleProvider = provider
		}
	}
}

// WithWriter sets the destination. The default is os.Stdout.
func WithWriter(writer io.Writer) Option {
	return func(p *Printer) {
		if writer != nil {
			p.writer = writer
		}
	}
}

// PlainText disables styling even when a provider is set (--no-color).
func PlainText() Option {
	return func(p *Printer) {
		p.plain = true
	}
}

// TestMode gives deterministic output for --test-mode runs: plain prefixes and
// no styles.
func TestMode() Option {
	return func(p *Printer) {
		p.plain = true
		p.styleProvider = nil
	}
}

// NewPrinter creates a Printer writing to os.Stdout unless configured otherwise.
func NewPrinter(options ...Option) *Printer {
	p := &Printer{writer: os.Stdout}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Print outputs text without any semantic styling.
func (p *Printer) Print(text string) {
	p.output(SemanticPlain, text, false)
}

// Printf outputs formatted text without any semantic styling.
func (p *Printer) Printf(format string, args ...interface{}) {
	p.output(SemanticPlain, fmt.Sprintf(format, args...), false)
}

// Println outputs text with a newline without any semantic styling.
func (p *Printer) Println(text string) {
	p.output(SemanticPlain, text, true)
}

// Info outputs informational text with info styling.
func (p *Printer) Info(text string) {
	p.output(SemanticInfo, text, true)
}

// Success outputs success text with success styling.
func (p *Printer) Success(text string) {
	p.output(SemanticSuccess, text, true)
}

// Warning outputs warning text with warning styling.
func (p *Printer) Warning(text string) {
	p.output(SemanticWarning, text, true)
}

// Error outputs error text with error styling.
func (p *Printer) Error(text string) {
	p.output(SemanticError, text, true)
}

// Muted outputs secondary text such as hints.
func (p *Printer) Muted(text string) {
	p.output(SemanticMuted, text, true)
}

// Styled returns text rendered for semantic without writing it.
// It lets callers compose lines from several styled pieces.
func (p *Printer) Styled(semantic SemanticType, text string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.render(semantic, text)
}

// Write implements io.Writer so the live view can draw through the printer.
func (p *Printer) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writer.Write(b)
}

func (p *Printer) output(semantic SemanticType, text string, addNewline bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	line := p.render(semantic, text)
	if addNewline && !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	_, _ = io.WriteString(p.writer, line)
}

// render applies the style for semantic, or its plain prefix.
func (p *Printer) render(semantic SemanticType, text string) string {
	if semantic == SemanticPlain {
		return text
	}
	if p.IsStylable() {
		return p.styleProvider.GetStyle(string(semantic)).Render(text)
	}
	return plainProvider.GetStyle(string(semantic)).Render(text)
}

// IsStylable returns true if the printer can apply styles.
func (p *Printer) IsStylable() bool {
	return !p.plain && p.styleProvider != nil && p.styleProvider.IsAvailable()
}
