package foundry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/openai/openai-go/v3"
	"github.com/rs/zerolog"
)

// DataSourceConfig declares the shape of dataset rows an evaluation accepts.
type DataSourceConfig struct {
	Type                string         `json:"type"`
	ItemSchema          map[string]any `json:"item_schema"`
	IncludeSampleSchema bool           `json:"include_sample_schema"`
}

// TestingCriterion is one grader attached to an evaluation. The
// azure_ai_evaluator type runs a service-hosted builtin evaluator against
// fields selected by the data mapping.
type TestingCriterion struct {
	Type                     string            `json:"type"`
	Name                     string            `json:"name"`
	EvaluatorName            string            `json:"evaluator_name"`
	DataMapping              map[string]string `json:"data_mapping"`
	InitializationParameters map[string]any    `json:"initialization_parameters,omitempty"`
}

// Eval is a created evaluation definition.
type Eval struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
}

// RunDataSource points an evaluation run at its dataset rows.
type RunDataSource struct {
	Type   string    `json:"type"`
	Source RunSource `json:"source"`
}

// RunSource is the dataset reference: an uploaded dataset file ID, or the
// rows inlined into the request.
type RunSource struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Content []RunSourceItem `json:"content,omitempty"`
}

// RunSourceItem wraps one inlined dataset row.
type RunSourceItem struct {
	Item map[string]any `json:"item"`
}

// NewJSONLRunDataSource builds a jsonl data source over a dataset file ID.
func NewJSONLRunDataSource(fileID string) RunDataSource {
	return RunDataSource{Type: "jsonl", Source: RunSource{Type: "file_id", ID: fileID}}
}

// NewInlineRunDataSource builds a jsonl data source carrying the rows
// inline, skipping the dataset upload step entirely.
func NewInlineRunDataSource(items []map[string]any) RunDataSource {
	content := make([]RunSourceItem, 0, len(items))
	for _, item := range items {
		content = append(content, RunSourceItem{Item: item})
	}
	return RunDataSource{Type: "jsonl", Source: RunSource{Type: "file_content", Content: content}}
}

// EvalRun is one execution of an evaluation over a data source.
type EvalRun struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Status    string          `json:"status"`
	ReportURL string          `json:"report_url"`
	Error     json.RawMessage `json:"error,omitempty"`
}

// Finished reports whether the run reached a terminal status.
func (r *EvalRun) Finished() bool {
	return r.Status == "completed" || r.Status == "failed" || r.Status == "canceled"
}

// Score is one evaluator's verdict on one output item.
type Score struct {
	Name   string   `json:"name"`
	Score  *float64 `json:"score"`
	Passed *bool    `json:"passed,omitempty"`
	Reason string   `json:"reason,omitempty"`
}

// OutputItem is one dataset row's evaluation outcome. The service reports
// per-criterion verdicts under "scores" on this surface and "results" on
// the stock OpenAI one; both are accepted.
type OutputItem struct {
	ID             string          `json:"id"`
	Status         string          `json:"status"`
	Scores         []Score         `json:"scores"`
	DatasourceItem json.RawMessage `json:"datasource_item,omitempty"`
	Sample         json.RawMessage `json:"sample,omitempty"`
}

func (o *OutputItem) UnmarshalJSON(data []byte) error {
	type alias OutputItem
	aux := struct {
		*alias
		Results []Score `json:"results"`
	}{alias: (*alias)(o)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if o.Scores == nil {
		o.Scores = aux.Results
	}
	return nil
}

// EvalsClient wraps the project's evals endpoints. The azure_ai_evaluator
// criterion type is a service extension, so requests and responses travel
// as plain JSON rather than the SDK's typed params.
type EvalsClient struct {
	client openai.Client
	logger zerolog.Logger
}

// NewEvalsClient builds an evals client over the OpenAI data-plane client.
func NewEvalsClient(client openai.Client, logger zerolog.Logger) *EvalsClient {
	return &EvalsClient{client: client, logger: logger}
}

func (c *EvalsClient) post(ctx context.Context, path string, body, out any) error {
	if err := c.client.Post(ctx, path, body, out); err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	return nil
}

func (c *EvalsClient) get(ctx context.Context, path string, out any) error {
	if err := c.client.Get(ctx, path, nil, out); err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	return nil
}

// CreateEval creates an evaluation definition.
func (c *EvalsClient) CreateEval(ctx context.Context, name string, config DataSourceConfig, criteria []TestingCriterion) (*Eval, error) {
	body := map[string]any{
		"name":               name,
		"data_source_config": config,
		"testing_criteria":   criteria,
	}
	var out Eval
	if err := c.post(ctx, "evals", body, &out); err != nil {
		return nil, err
	}
	c.logger.Info().Str("eval_id", out.ID).Str("name", out.Name).Msg("evaluation created")
	return &out, nil
}

// RetrieveEval fetches an existing evaluation by ID.
func (c *EvalsClient) RetrieveEval(ctx context.Context, evalID string) (*Eval, error) {
	var out Eval
	if err := c.get(ctx, "evals/"+url.PathEscape(evalID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateRun starts an evaluation run over the given data source.
func (c *EvalsClient) CreateRun(ctx context.Context, evalID, name string, source RunDataSource, metadata map[string]string) (*EvalRun, error) {
	body := map[string]any{
		"name":        name,
		"data_source": source,
	}
	if len(metadata) > 0 {
		body["metadata"] = metadata
	}
	var out EvalRun
	if err := c.post(ctx, fmt.Sprintf("evals/%s/runs", url.PathEscape(evalID)), body, &out); err != nil {
		return nil, err
	}
	c.logger.Info().Str("run_id", out.ID).Str("status", out.Status).Msg("evaluation run created")
	return &out, nil
}

// GetRun fetches the current state of an evaluation run.
func (c *EvalsClient) GetRun(ctx context.Context, evalID, runID string) (*EvalRun, error) {
	var out EvalRun
	path := fmt.Sprintf("evals/%s/runs/%s", url.PathEscape(evalID), url.PathEscape(runID))
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type outputItemPage struct {
	Data    []OutputItem `json:"data"`
	HasMore bool         `json:"has_more"`
	LastID  string       `json:"last_id"`
}

// ListOutputItems fetches every output item of a run, following pagination.
func (c *EvalsClient) ListOutputItems(ctx context.Context, evalID, runID string) ([]OutputItem, error) {
	base := fmt.Sprintf("evals/%s/runs/%s/output_items", url.PathEscape(evalID), url.PathEscape(runID))

	var items []OutputItem
	after := ""
	for {
		path := base + "?limit=100"
		if after != "" {
			path += "&after=" + url.QueryEscape(after)
		}
		var page outputItemPage
		if err := c.get(ctx, path, &page); err != nil {
			return nil, err
		}
		items = append(items, page.Data...)
		if !page.HasMore || page.LastID == "" {
			return items, nil
		}
		after = page.LastID
	}
}
