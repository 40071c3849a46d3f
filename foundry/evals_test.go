package foundry

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEvalsClient(t *testing.T, handler http.Handler) *EvalsClient {
	t.Helper()
	return NewEvalsClient(newTestOpenAIClient(t, handler), zerolog.Nop())
}

func TestCreateEvalSendsCriteriaAndDecodesResult(t *testing.T) {
	var gotBody map[string]any
	client := newTestEvalsClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/openai/v1/evals", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "eval_1", "name": "contoso-eval", "created_at": 1756300000}`))
	}))

	config := DataSourceConfig{
		Type:       "custom",
		ItemSchema: map[string]any{"type": "object"},
	}
	criteria := []TestingCriterion{{
		Type:          "azure_ai_evaluator",
		Name:          "coherence",
		EvaluatorName: "builtin.coherence",
		DataMapping:   map[string]string{"query": "{{item.query}}", "response": "{{item.response}}"},
	}}

	eval, err := client.CreateEval(context.Background(), "contoso-eval", config, criteria)
	require.NoError(t, err)
	assert.Equal(t, "eval_1", eval.ID)
	assert.Equal(t, "contoso-eval", eval.Name)
	assert.Equal(t, int64(1756300000), eval.CreatedAt)

	assert.Equal(t, "contoso-eval", gotBody["name"])
	cfg, ok := gotBody["data_source_config"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "custom", cfg["type"])
	sent, ok := gotBody["testing_criteria"].([]any)
	require.True(t, ok)
	require.Len(t, sent, 1)
	criterion := sent[0].(map[string]any)
	assert.Equal(t, "azure_ai_evaluator", criterion["type"])
	assert.Equal(t, "builtin.coherence", criterion["evaluator_name"])
}

func TestRetrieveEvalDecodesResult(t *testing.T) {
	client := newTestEvalsClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/openai/v1/evals/eval_1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "eval_1", "name": "contoso-eval"}`))
	}))

	eval, err := client.RetrieveEval(context.Background(), "eval_1")
	require.NoError(t, err)
	assert.Equal(t, "contoso-eval", eval.Name)
}

func TestCreateRunAndGetRun(t *testing.T) {
	mux := http.NewServeMux()
	var gotBody map[string]any
	mux.HandleFunc("POST /openai/v1/evals/eval_1/runs", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "run_1", "name": "nightly", "status": "queued"}`))
	})
	mux.HandleFunc("GET /openai/v1/evals/eval_1/runs/run_1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "run_1", "name": "nightly", "status": "completed", "report_url": "https://example.test/report"}`))
	})
	client := newTestEvalsClient(t, mux)

	run, err := client.CreateRun(context.Background(), "eval_1", "nightly",
		NewJSONLRunDataSource("file_1"), map[string]string{"team": "contoso"})
	require.NoError(t, err)
	assert.Equal(t, "run_1", run.ID)
	assert.Equal(t, "queued", run.Status)
	assert.False(t, run.Finished())

	assert.Equal(t, "nightly", gotBody["name"])
	assert.Equal(t, map[string]any{"team": "contoso"}, gotBody["metadata"])
	source, err := json.Marshal(gotBody["data_source"])
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"jsonl","source":{"type":"file_id","id":"file_1"}}`, string(source))

	run, err = client.GetRun(context.Background(), "eval_1", "run_1")
	require.NoError(t, err)
	assert.Equal(t, "completed", run.Status)
	assert.Equal(t, "https://example.test/report", run.ReportURL)
	assert.True(t, run.Finished())
}

func TestListOutputItemsFollowsPagination(t *testing.T) {
	client := newTestEvalsClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/v1/evals/eval_1/runs/run_1/output_items", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("after") {
		case "":
			w.Write([]byte(`{
				"data": [{"id": "item_1", "status": "completed", "scores": [{"name": "coherence", "score": 4.0, "passed": true}]}],
				"has_more": true,
				"last_id": "item_1"
			}`))
		case "item_1":
			w.Write([]byte(`{
				"data": [{"id": "item_2", "status": "completed", "results": [{"name": "fluency", "score": 3.0}]}],
				"has_more": false
			}`))
		default:
			t.Errorf("unexpected after cursor %q", r.URL.Query().Get("after"))
		}
	}))

	items, err := client.ListOutputItems(context.Background(), "eval_1", "run_1")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "item_1", items[0].ID)
	require.Len(t, items[0].Scores, 1)
	assert.Equal(t, "coherence", items[0].Scores[0].Name)
	require.NotNil(t, items[0].Scores[0].Score)
	assert.Equal(t, 4.0, *items[0].Scores[0].Score)

	assert.Equal(t, "item_2", items[1].ID)
	require.Len(t, items[1].Scores, 1)
	assert.Equal(t, "fluency", items[1].Scores[0].Name)
}

func TestRunDataSourceWireShapes(t *testing.T) {
	fromFile, err := json.Marshal(NewJSONLRunDataSource("file_9"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"jsonl","source":{"type":"file_id","id":"file_9"}}`, string(fromFile))

	inline, err := json.Marshal(NewInlineRunDataSource([]map[string]any{
		{"query": "Where is my order?", "response": "In transit."},
	}))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "jsonl",
		"source": {
			"type": "file_content",
			"content": [{"item": {"query": "Where is my order?", "response": "In transit."}}]
		}
	}`, string(inline))
}
