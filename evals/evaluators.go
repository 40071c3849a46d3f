// Package evals assembles and runs managed evaluations: it declares the
// builtin evaluator catalog, builds testing criteria and data source
// configs, and drives runs to completion with aggregated scores.
package evals

import (
	"github.com/rs/zerolog"

	"github.com/PreiyaaKedia/agent-evaluation-v2/foundry"
)

func stringField() map[string]any {
	return map[string]any{"type": "string"}
}

// stringOrTurns admits either a plain string or an array of transcript
// turn objects, the two shapes dataset fields take.
func stringOrTurns() map[string]any {
	return map[string]any{"anyOf": []any{
		map[string]any{"type": "string"},
		map[string]any{"type": "array", "items": map[string]any{"type": "object"}},
	}}
}

func objectOrList() map[string]any {
	return map[string]any{"anyOf": []any{
		map[string]any{"type": "object"},
		map[string]any{"type": "array", "items": map[string]any{"type": "object"}},
	}}
}

// Evaluator describes one builtin evaluator: the dataset fields it reads
// and the schema those fields must satisfy when it runs standalone.
type Evaluator struct {
	Name       string
	Properties map[string]any
	Required   []string
	// DataMapping selects dataset fields for the evaluator via
	// {{item.<field>}} references.
	DataMapping map[string]string
}

func mapping(fields ...string) map[string]string {
	m := make(map[string]string, len(fields))
	for _, f := range fields {
		m[f] = "{{item." + f + "}}"
	}
	return m
}

// Catalog is the supported builtin evaluator set, keyed by name.
var Catalog = map[string]Evaluator{
	"tool_call_accuracy": {
		Name: "tool_call_accuracy",
		Properties: map[string]any{
			"query":            stringOrTurns(),
			"tool_definitions": objectOrList(),
			"tool_calls":       objectOrList(),
			"response":         stringOrTurns(),
		},
		Required:    []string{"query", "tool_definitions"},
		DataMapping: mapping("query", "tool_definitions", "tool_calls", "response"),
	},
	"tool_selection": {
		Name: "tool_selection",
		Properties: map[string]any{
			"query":            stringOrTurns(),
			"response":         stringOrTurns(),
			"tool_calls":       objectOrList(),
			"tool_definitions": objectOrList(),
		},
		Required:    []string{"query", "response", "tool_definitions"},
		DataMapping: mapping("query", "response", "tool_calls", "tool_definitions"),
	},
	"tool_input_accuracy": {
		Name: "tool_input_accuracy",
		Properties: map[string]any{
			"query":            stringOrTurns(),
			"response":         stringOrTurns(),
			"tool_definitions": objectOrList(),
		},
		Required:    []string{"query", "response", "tool_definitions"},
		DataMapping: mapping("query", "response", "tool_definitions"),
	},
	"tool_output_utilization": {
		Name: "tool_output_utilization",
		Properties: map[string]any{
			"query":            stringOrTurns(),
			"response":         stringOrTurns(),
			"tool_definitions": objectOrList(),
		},
		Required:    []string{"query", "response"},
		DataMapping: mapping("query", "response", "tool_definitions"),
	},
	"tool_call_success": {
		Name: "tool_call_success",
		Properties: map[string]any{
			"tool_definitions": objectOrList(),
			"response":         stringOrTurns(),
		},
		Required:    []string{"response"},
		DataMapping: mapping("tool_definitions", "response"),
	},
	"task_completion": {
		Name: "task_completion",
		Properties: map[string]any{
			"query":            stringOrTurns(),
			"response":         stringOrTurns(),
			"tool_definitions": objectOrList(),
		},
		Required:    []string{"query", "response"},
		DataMapping: mapping("query", "response", "tool_definitions"),
	},
	"task_adherence": {
		Name: "task_adherence",
		Properties: map[string]any{
			"query":            stringOrTurns(),
			"response":         stringOrTurns(),
			"tool_definitions": objectOrList(),
		},
		Required:    []string{"query", "response"},
		DataMapping: mapping("query", "response", "tool_definitions"),
	},
	"coherence": {
		Name: "coherence",
		Properties: map[string]any{
			"query":    stringField(),
			"response": stringField(),
		},
		Required:    []string{"query", "response"},
		DataMapping: mapping("query", "response"),
	},
	"fluency": {
		Name: "fluency",
		Properties: map[string]any{
			"query":    stringField(),
			"response": stringField(),
		},
		Required:    []string{"response"},
		DataMapping: mapping("query", "response"),
	},
	"relevance": {
		Name: "relevance",
		Properties: map[string]any{
			"query":    stringField(),
			"response": stringField(),
		},
		Required:    []string{"query", "response"},
		DataMapping: mapping("query", "response"),
	},
	"groundedness": {
		Name: "groundedness",
		Properties: map[string]any{
			"context":  stringField(),
			"query":    stringOrTurns(),
			"response": stringOrTurns(),
			"tool_definitions": map[string]any{"anyOf": []any{
				map[string]any{"type": "string"},
				map[string]any{"type": "object"},
				map[string]any{"type": "array", "items": map[string]any{"type": "object"}},
			}},
		},
		Required:    []string{"response"},
		DataMapping: mapping("context", "query", "response", "tool_definitions"),
	},
	"intent_resolution": {
		Name: "intent_resolution",
		Properties: map[string]any{
			"query":            stringOrTurns(),
			"response":         stringOrTurns(),
			"tool_definitions": objectOrList(),
		},
		Required:    []string{"query", "response"},
		DataMapping: mapping("query", "response", "tool_definitions"),
	},
}

// AllEvaluators lists every catalog entry in the order runs report them.
var AllEvaluators = []string{
	"tool_call_accuracy",
	"tool_selection",
	"tool_input_accuracy",
	"tool_output_utilization",
	"tool_call_success",
	"task_completion",
	"task_adherence",
	"coherence",
	"fluency",
	"relevance",
	"groundedness",
	"intent_resolution",
}

// DataSourceConfig builds the standalone data source config for one
// evaluator.
func (e Evaluator) DataSourceConfig() foundry.DataSourceConfig {
	return foundry.DataSourceConfig{
		Type: "custom",
		ItemSchema: map[string]any{
			"type":       "object",
			"properties": e.Properties,
			"required":   e.Required,
		},
		IncludeSampleSchema: true,
	}
}

// UnifiedDataSourceConfig is the superset schema that satisfies every
// catalog evaluator, so one dataset serves all of them in a single run.
func UnifiedDataSourceConfig() foundry.DataSourceConfig {
	return foundry.DataSourceConfig{
		Type: "custom",
		ItemSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query":            stringOrTurns(),
				"response":         stringOrTurns(),
				"context":          stringField(),
				"ground_truth":     stringField(),
				"tool_definitions": objectOrList(),
				"tool_calls":       objectOrList(),
			},
			"required": []string{"query", "tool_definitions"},
		},
		IncludeSampleSchema: true,
	}
}

// BuildTestingCriteria builds azure_ai_evaluator criteria for the named
// evaluators. Names missing from the catalog are logged and skipped.
func BuildTestingCriteria(names []string, modelDeployment string, logger zerolog.Logger) []foundry.TestingCriterion {
	if len(names) == 0 {
		names = AllEvaluators
	}
	criteria := make([]foundry.TestingCriterion, 0, len(names))
	for _, name := range names {
		ev, ok := Catalog[name]
		if !ok {
			logger.Warn().Str("evaluator", name).Msg("unknown evaluator, skipping")
			continue
		}
		criteria = append(criteria, foundry.TestingCriterion{
			Type:                     "azure_ai_evaluator",
			Name:                     ev.Name,
			EvaluatorName:            "builtin." + ev.Name,
			DataMapping:              ev.DataMapping,
			InitializationParameters: map[string]any{"deployment_name": modelDeployment},
		})
	}
	return criteria
}
