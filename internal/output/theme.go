package output

import (
	"fmt"

	"aliadodoc/internal/data/embedded"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// ThemeFile is the YAML layout of a theme.
type ThemeFile struct {
	Name   string                 `yaml:"name"`
	Styles map[string]StyleConfig `yaml:"styles"`
}

// StyleConfig describes one semantic style. Foreground and Background accept a
// color string or a map with light and dark keys.
type StyleConfig struct {
	Foreground interface{} `yaml:"foreground"`
	Background interface{} `yaml:"background"`
	Bold       bool        `yaml:"bold"`
	Italic     bool        `yaml:"italic"`
	Underline  bool        `yaml:"underline"`
}

// Theme implements StyleProvider with lipgloss styles.
type Theme struct {
	Name   string
	styles map[string]lipgloss.Style
}

// DefaultTheme loads the embedded default theme.
func DefaultTheme() (*Theme, error) {
	return LoadTheme(embedded.DefaultThemeData)
}

// LoadTheme parses a theme from YAML.
func LoadTheme(data []byte) (*Theme, error) {
	var file ThemeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse theme file: %w", err)
	}

	theme := &Theme{Name: file.Name, styles: make(map[string]lipgloss.Style, len(file.Styles))}
	for semantic, config := range file.Styles {
		theme.styles[semantic] = createStyle(config)
	}
	return theme, nil
}

// GetStyle implements StyleProvider. Unknown semantics render unstyled.
func (t *Theme) GetStyle(semantic string) TextStyle {
	if style, ok := t.styles[semantic]; ok {
		return style
	}
	return lipgloss.NewStyle()
}

// IsAvailable implements StyleProvider.
func (t *Theme) IsAvailable() bool {
	return t != nil && len(t.styles) > 0
}

// createStyle converts a StyleConfig to a lipgloss.Style.
func createStyle(config StyleConfig) lipgloss.Style {
	style := lipgloss.NewStyle()

	if color := parseColor(config.Foreground); color != nil {
		style = style.Foreground(color)
	}
	if color := parseColor(config.Background); color != nil {
		style = style.Background(color)
	}

	return style.Bold(config.Bold).Italic(config.Italic).Underline(config.Underline)
}

// parseColor parses a color value that can be a string or an adaptive light/dark map.
func parseColor(colorValue interface{}) lipgloss.TerminalColor {
	switch v := colorValue.(type) {
	case string:
		return lipgloss.Color(v)
	case map[string]interface{}:
		light, hasLight := v["light"].(string)
		dark, hasDark := v["dark"].(string)
		if hasLight && hasDark {
			return lipgloss.AdaptiveColor{Light: light, Dark: dark}
		}
		return nil
	default:
		return nil
	}
}
