package output

import "strings"

// plainPrefixes mark semantic lines when styling is off.
var plainPrefixes = map[SemanticType]string{
	SemanticSuccess: "✓ ",
	SemanticWarning: "⚠ ",
	SemanticError:   "✗ ",
	SemanticInfo:    "ℹ ",
}

// plainProvider is the fallback used whenever styling is unavailable.
var plainProvider StyleProvider = plainStyles{}

type prefixStyle string

func (p prefixStyle) Render(strs ...string) string {
	return string(p) + strings.Join(strs, " ")
}

type plainStyles struct{}

func (plainStyles) GetStyle(semantic string) TextStyle {
	return prefixStyle(plainPrefixes[SemanticType(semantic)])
}

func (plainStyles) IsAvailable() bool { return true }
