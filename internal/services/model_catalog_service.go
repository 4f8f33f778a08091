package services

import (
	"fmt"
	"sort"
	"strings"

	"aliadodoc/internal/data/embedded"
	"aliadodoc/pkg/doctypes"

	"gopkg.in/yaml.v3"
)

// ModelCatalogService provides the catalog of Gemini models loaded from
// embedded YAML. It validates model selection and proposes cheaper models
// when a quota is exhausted.
type ModelCatalogService struct {
	initialized bool
	data        []byte
	models      []doctypes.ModelCatalogEntry
}

// NewModelCatalogService creates a new ModelCatalogService over the embedded catalog.
func NewModelCatalogService() *ModelCatalogService {
	return NewModelCatalogServiceFromData(embedded.ModelCatalogData)
}

// NewModelCatalogServiceFromData creates a catalog over arbitrary YAML data.
func NewModelCatalogServiceFromData(data []byte) *ModelCatalogService {
	return &ModelCatalogService{data: data}
}

// Name returns the service name "model_catalog" for registration.
func (m *ModelCatalogService) Name() string {
	return "model_catalog"
}

// Initialize parses and validates the catalog.
func (m *ModelCatalogService) Initialize() error {
	var file doctypes.ModelCatalogFile
	if err := yaml.Unmarshal(m.data, &file); err != nil {
		return fmt.Errorf("failed to parse model catalog: %w", err)
	}

	if err := m.validateUniqueIDs(file.Models); err != nil {
		return fmt.Errorf("model catalog validation failed: %w", err)
	}

	m.models = file.Models
	m.initialized = true
	return nil
}

// GetModelCatalog returns every catalog entry in file order.
func (m *ModelCatalogService) GetModelCatalog() ([]doctypes.ModelCatalogEntry, error) {
	if !m.initialized {
		return nil, fmt.Errorf("model catalog service not initialized")
	}
	out := make([]doctypes.ModelCatalogEntry, len(m.models))
	copy(out, m.models)
	return out, nil
}

// GetModelByID returns a model by its ID (case-insensitive lookup).
func (m *ModelCatalogService) GetModelByID(id string) (doctypes.ModelCatalogEntry, error) {
	if !m.initialized {
		return doctypes.ModelCatalogEntry{}, fmt.Errorf("model catalog service not initialized")
	}

	normalizedID := m.normalizeID(id)
	for _, model := range m.models {
		if m.normalizeID(model.ID) == normalizedID {
			return model, nil
		}
	}

	return doctypes.ModelCatalogEntry{}, fmt.Errorf("model with ID '%s' not found in catalog", id)
}

// CheaperAlternative returns the most capable model priced below modelID.
// Unknown models get the cheapest catalog entry.
func (m *ModelCatalogService) CheaperAlternative(modelID string) (string, bool) {
	if !m.initialized || len(m.models) == 0 {
		return "", false
	}

	ranked := make([]doctypes.ModelCatalogEntry, len(m.models))
	copy(ranked, m.models)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Tier > ranked[j].Tier })

	current, err := m.GetModelByID(modelID)
	if err != nil {
		cheapest := ranked[len(ranked)-1]
		return cheapest.ID, m.normalizeID(cheapest.ID) != m.normalizeID(modelID)
	}

	for _, model := range ranked {
		if model.Tier < current.Tier {
			return model.ID, true
		}
	}
	return "", false
}

// validateUniqueIDs checks for empty and duplicate model IDs (case-insensitive).
func (m *ModelCatalogService) validateUniqueIDs(models []doctypes.ModelCatalogEntry) error {
	seenIDs := make(map[string]string)

	for _, model := range models {
		if model.ID == "" {
			return fmt.Errorf("model '%s' has empty ID field", model.Name)
		}

		normalizedID := m.normalizeID(model.ID)
		if existingID, exists := seenIDs[normalizedID]; exists {
			return fmt.Errorf("duplicate model ID found: '%s' and '%s' (case insensitive)", existingID, model.ID)
		}
		seenIDs[normalizedID] = model.ID
	}

	return nil
}

// normalizeID converts an ID to uppercase for case-insensitive comparison.
func (m *ModelCatalogService) normalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
