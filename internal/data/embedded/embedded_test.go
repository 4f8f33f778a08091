package embedded

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func TestEmbeddedData_NotEmpty(t *testing.T) {
	assert.NotEmpty(t, DefaultThemeData)
	assert.NotEmpty(t, ModelCatalogData)
	assert.NotEmpty(t, FormatsTemplateData)
	assert.NotEmpty(t, GreetingData)
	assert.NotEmpty(t, QuickPromptData)
}

func TestModelCatalogData_IsValidYAML(t *testing.T) {
	var doc struct {
		Models []map[string]interface{} `yaml:"models"`
	}
	assert.NoError(t, yaml.Unmarshal(ModelCatalogData, &doc))
	assert.NotEmpty(t, doc.Models)
}

func TestFormatsTemplate_ContainsSections(t *testing.T) {
	content := string(FormatsTemplateData)
	for _, section := range []string{"Project Charter", "Risk Management Plan", "Stakeholder Register"} {
		assert.Contains(t, content, section)
	}
}
