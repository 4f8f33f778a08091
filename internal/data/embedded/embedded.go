// Package embedded provides access to data files compiled into the AliadoDoc binary.
package embedded

import (
	_ "embed"
)

// ModelCatalogData contains the Gemini model catalog.
//
//go:embed models/gemini.yaml
var ModelCatalogData []byte

// FormatsTemplateData contains the essential project-management formats offered for download.
//
//go:embed templates/formats.md
var FormatsTemplateData []byte

// GreetingData contains the assistant greeting that seeds every session.
//
//go:embed prompts/greeting.md
var GreetingData []byte

// QuickPromptData contains the programmatic prompt issued by the quick-advice action.
//
//go:embed prompts/quick.md
var QuickPromptData []byte

// DefaultThemeData contains the semantic styles used by the shell printer.
//
//go:embed themes/default.yaml
var DefaultThemeData []byte
