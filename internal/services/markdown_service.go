package services

import (
	"fmt"
	"strings"

	"aliadodoc/internal/logger"

	"github.com/charmbracelet/glamour"
)

// DefaultWordWrap is the wrap width used when none is configured.
const DefaultWordWrap = 80

// MarkdownService renders assistant replies to ANSI terminal output using Glamour.
type MarkdownService struct {
	initialized bool
	style       string
	wordWrap    int
	renderer    *glamour.TermRenderer
}

// NewMarkdownService creates a new MarkdownService. An empty style means
// auto-detection; "notty" disables colors.
func NewMarkdownService(style string, wordWrap int) *MarkdownService {
	if wordWrap <= 0 {
		wordWrap = DefaultWordWrap
	}
	return &MarkdownService{
		style:    mapStyleName(style),
		wordWrap: wordWrap,
	}
}

// Name returns the service name "markdown" for registration.
func (m *MarkdownService) Name() string {
	return "markdown"
}

// Initialize builds the renderer.
func (m *MarkdownService) Initialize() error {
	renderer, err := m.newRenderer(m.style, m.wordWrap)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	m.renderer = renderer
	m.initialized = true

	logger.Debug("MarkdownService initialized", "style", m.style, "word_wrap", m.wordWrap)
	return nil
}

// Render renders markdown content to ANSI terminal output.
func (m *MarkdownService) Render(markdown string) (string, error) {
	if !m.initialized {
		return "", fmt.Errorf("markdown service not initialized")
	}

	if strings.TrimSpace(markdown) == "" {
		return "", fmt.Errorf("markdown content cannot be empty")
	}

	rendered, err := m.renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	return rendered, nil
}

// RenderWithStyle renders markdown content with a specific Glamour style.
// Unknown styles fall back to the configured renderer.
func (m *MarkdownService) RenderWithStyle(markdown string, style string) (string, error) {
	if !m.initialized {
		return "", fmt.Errorf("markdown service not initialized")
	}

	if strings.TrimSpace(markdown) == "" {
		return "", fmt.Errorf("markdown content cannot be empty")
	}

	renderer, err := m.newRenderer(mapStyleName(style), m.wordWrap)
	if err != nil {
		logger.Debug("Failed to create renderer with style, falling back to default", "style", style, "error", err)
		return m.Render(markdown)
	}

	rendered, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown with style '%s': %w", style, err)
	}

	return rendered, nil
}

// SetWordWrap sets the word wrap width for markdown rendering.
func (m *MarkdownService) SetWordWrap(width int) error {
	if !m.initialized {
		return fmt.Errorf("markdown service not initialized")
	}

	if width <= 0 {
		return fmt.Errorf("word wrap width must be positive, got %d", width)
	}

	renderer, err := m.newRenderer(m.style, width)
	if err != nil {
		return fmt.Errorf("failed to create renderer with word wrap %d: %w", width, err)
	}

	m.renderer = renderer
	m.wordWrap = width
	logger.Debug("MarkdownService word wrap updated", "width", width)
	return nil
}

// WordWrap returns the current wrap width.
func (m *MarkdownService) WordWrap() int {
	return m.wordWrap
}

func (m *MarkdownService) newRenderer(style string, width int) (*glamour.TermRenderer, error) {
	styleOption := glamour.WithAutoStyle()
	if style != "auto" {
		styleOption = glamour.WithStylePath(style)
	}
	return glamour.NewTermRenderer(styleOption, glamour.WithWordWrap(width))
}

// mapStyleName maps configuration names to Glamour styles.
func mapStyleName(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "dark":
		return "dark"
	case "light":
		return "light"
	case "plain", "notty", "none":
		return "notty"
	case "ascii":
		return "ascii"
	case "", "auto", "default":
		return "auto"
	default:
		return name
	}
}

// GetAvailableStyles returns a list of available Glamour styles.
func (m *MarkdownService) GetAvailableStyles() []string {
	return []string{"auto", "dark", "light", "notty", "ascii"}
}
