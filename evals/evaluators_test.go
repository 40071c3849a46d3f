package evals

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogCoversAllEvaluators(t *testing.T) {
	assert.Len(t, AllEvaluators, 12)
	for _, name := range AllEvaluators {
		ev, ok := Catalog[name]
		require.True(t, ok, "evaluator %s missing from catalog", name)
		assert.Equal(t, name, ev.Name)
		assert.NotEmpty(t, ev.DataMapping, "evaluator %s has no data mapping", name)
	}
}

func TestDataMappingsReferenceItemFields(t *testing.T) {
	for name, ev := range Catalog {
		for field, ref := range ev.DataMapping {
			assert.Equal(t, "{{item."+field+"}}", ref, "evaluator %s field %s", name, field)
		}
	}
}

// The unified schema must be a superset of every evaluator's standalone
// schema: same fields available, and no per-evaluator required field
// beyond the unified required set.
func TestUnifiedSchemaIsSupersetOfEveryEvaluator(t *testing.T) {
	unified := UnifiedDataSourceConfig()
	props, ok := unified.ItemSchema["properties"].(map[string]any)
	require.True(t, ok)
	unifiedRequired, ok := unified.ItemSchema["required"].([]string)
	require.True(t, ok)

	for name, ev := range Catalog {
		for field := range ev.Properties {
			assert.Contains(t, props, field, "evaluator %s needs field %s in unified schema", name, field)
		}
		for _, req := range ev.Required {
			assert.Contains(t, props, req, "evaluator %s required field %s missing", name, req)
		}
	}
	assert.Subset(t, []string{"query", "tool_definitions"}, unifiedRequired)
}

func TestBuildTestingCriteria(t *testing.T) {
	criteria := BuildTestingCriteria([]string{"fluency", "groundedness"}, "gpt-4.1", zerolog.Nop())
	require.Len(t, criteria, 2)

	assert.Equal(t, "azure_ai_evaluator", criteria[0].Type)
	assert.Equal(t, "fluency", criteria[0].Name)
	assert.Equal(t, "builtin.fluency", criteria[0].EvaluatorName)
	assert.Equal(t, map[string]any{"deployment_name": "gpt-4.1"}, criteria[0].InitializationParameters)
	assert.Equal(t, "{{item.response}}", criteria[0].DataMapping["response"])

	assert.Equal(t, "builtin.groundedness", criteria[1].EvaluatorName)
	assert.Equal(t, "{{item.context}}", criteria[1].DataMapping["context"])
}

func TestBuildTestingCriteriaSkipsUnknownNames(t *testing.T) {
	criteria := BuildTestingCriteria([]string{"fluency", "nonsense"}, "gpt-4.1", zerolog.Nop())
	require.Len(t, criteria, 1)
	assert.Equal(t, "fluency", criteria[0].Name)
}

func TestBuildTestingCriteriaDefaultsToFullCatalog(t *testing.T) {
	criteria := BuildTestingCriteria(nil, "gpt-4.1", zerolog.Nop())
	assert.Len(t, criteria, len(AllEvaluators))
}

func TestDataSourceConfigShape(t *testing.T) {
	cfg := Catalog["tool_call_accuracy"].DataSourceConfig()
	assert.Equal(t, "custom", cfg.Type)
	assert.True(t, cfg.IncludeSampleSchema)
	assert.Equal(t, []string{"query", "tool_definitions"}, cfg.ItemSchema["required"])
}
