package doctypes

// ModelCatalogEntry describes one selectable Gemini model.
// Tier orders models by price: lower is cheaper.
type ModelCatalogEntry struct {
	ID            string   `yaml:"id"`
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description"`
	Tier          int      `yaml:"tier"`
	ContextWindow int      `yaml:"context_window"`
	Modalities    []string `yaml:"modalities"`
}

// ModelCatalogFile is the root of the embedded model catalog.
type ModelCatalogFile struct {
	Models []ModelCatalogEntry `yaml:"models"`
}
