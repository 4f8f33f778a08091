// Package output provides console output for AliadoDoc: a semantic printer
// with optional styling and the live view that renders streamed replies.
package output

// StyleProvider supplies styles for semantic output types.
// The printer falls back to plain text when no provider is available.
type StyleProvider interface {
	// GetStyle returns a TextStyle for the given semantic type.
	GetStyle(semantic string) TextStyle

	// IsAvailable returns true if the style provider is ready to provide styles.
	IsAvailable() bool
}

// TextStyle represents the capability to render text with styling.
// lipgloss.Style satisfies it.
type TextStyle interface {
	Render(strs ...string) string
}

// SemanticType defines the semantic meaning of output for consistent styling.
type SemanticType string

const (
	// SemanticPlain represents plain text without any semantic meaning.
	SemanticPlain SemanticType = "plain"
	// SemanticInfo represents informational text.
	SemanticInfo SemanticType = "info"
	// SemanticSuccess represents success or completion text.
	SemanticSuccess SemanticType = "success"
	// SemanticWarning represents warning text.
	SemanticWarning SemanticType = "warning"
	// SemanticError represents error text.
	SemanticError SemanticType = "error"
	// SemanticCommand represents shell command names.
	SemanticCommand SemanticType = "command"
	// SemanticHighlight represents highlighted or emphasized text.
	SemanticHighlight SemanticType = "highlight"
	// SemanticBold represents bold text styling.
	SemanticBold SemanticType = "bold"
	// SemanticCode represents inline code text.
	SemanticCode SemanticType = "code"
	// SemanticUser labels user turns in the transcript.
	SemanticUser SemanticType = "user"
	// SemanticAssistant labels assistant turns in the transcript.
	SemanticAssistant SemanticType = "assistant"
	// SemanticMuted represents secondary text such as hints.
	SemanticMuted SemanticType = "muted"
)
