package foundry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const apiVersion = "2025-05-15-preview"

// ProjectClient is the control-plane client for an AI Foundry project:
// agent versions, dataset uploads, and insight generation.
type ProjectClient struct {
	endpoint   string
	tokens     *TokenSource
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewProjectClient builds a control-plane client for the given project
// endpoint, e.g. https://myproject.services.ai.azure.com/api/projects/myproject.
func NewProjectClient(endpoint string, tokens *TokenSource, logger zerolog.Logger) *ProjectClient {
	return &ProjectClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
}

// apiError is the service's error envelope.
type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *ProjectClient) do(ctx context.Context, method, path string, body, out any) error {
	u := fmt.Sprintf("%s/%s?api-version=%s", c.endpoint, strings.TrimLeft(path, "/"), url.QueryEscape(apiVersion))

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("x-ms-client-request-id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug().Str("method", method).Str("path", path).Msg("project api request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("%s %s: %s (%s)", method, path, apiErr.Error.Message, apiErr.Error.Code)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// AgentDefinition describes a prompt agent version: the model it runs on,
// its instructions, and the tools it may call.
type AgentDefinition struct {
	Kind         string           `json:"kind"`
	Model        string           `json:"model"`
	Instructions string           `json:"instructions"`
	Tools        []map[string]any `json:"tools,omitempty"`
}

// AgentVersion is a created version of a named agent.
type AgentVersion struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// CreateAgentVersion creates a new version of the named agent.
func (c *ProjectClient) CreateAgentVersion(ctx context.Context, name string, def AgentDefinition) (*AgentVersion, error) {
	if def.Kind == "" {
		def.Kind = "prompt"
	}
	var out AgentVersion
	path := fmt.Sprintf("agents/%s/versions", url.PathEscape(name))
	if err := c.do(ctx, http.MethodPost, path, map[string]any{"definition": def}, &out); err != nil {
		return nil, err
	}
	if out.Name == "" {
		out.Name = name
	}
	c.logger.Info().Str("agent", out.Name).Str("version", out.Version).Msg("agent version created")
	return &out, nil
}

// DeleteAgentVersion deletes one version of the named agent.
func (c *ProjectClient) DeleteAgentVersion(ctx context.Context, name, version string) error {
	path := fmt.Sprintf("agents/%s/versions/%s", url.PathEscape(name), url.PathEscape(version))
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// Dataset is a registered dataset version.
type Dataset struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version"`
	DataURI string `json:"dataUri"`
	Type    string `json:"type"`
}

type pendingUpload struct {
	BlobReference struct {
		BlobURI string `json:"blobUri"`
	} `json:"blobReference"`
	PendingUploadID string `json:"pendingUploadId"`
}

// UploadDataset uploads a local file as a dataset version. The service
// issues a SAS-scoped blob URI; the file content is PUT there and the
// version is then registered against the blob.
func (c *ProjectClient) UploadDataset(ctx context.Context, name, version, filePath string) (*Dataset, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read dataset file: %w", err)
	}

	base := fmt.Sprintf("datasets/%s/versions/%s", url.PathEscape(name), url.PathEscape(version))

	var pending pendingUpload
	body := map[string]any{"pendingUploadType": "BlobReference"}
	if err := c.do(ctx, http.MethodPost, base+"/startPendingUpload", body, &pending); err != nil {
		return nil, err
	}
	if pending.BlobReference.BlobURI == "" {
		return nil, fmt.Errorf("pending upload returned no blob uri")
	}

	if err := c.putBlob(ctx, pending.BlobReference.BlobURI, content); err != nil {
		return nil, err
	}

	dataURI := pending.BlobReference.BlobURI
	if i := strings.Index(dataURI, "?"); i >= 0 {
		dataURI = dataURI[:i]
	}
	var out Dataset
	create := map[string]any{
		"type":            "uri_file",
		"dataUri":         dataURI,
		"pendingUploadId": pending.PendingUploadID,
	}
	if err := c.do(ctx, http.MethodPut, base, create, &out); err != nil {
		return nil, err
	}
	c.logger.Info().Str("dataset", out.Name).Str("version", out.Version).Str("id", out.ID).Msg("dataset uploaded")
	return &out, nil
}

func (c *ProjectClient) putBlob(ctx context.Context, blobURI string, content []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, blobURI, bytes.NewReader(content))
	if err != nil {
		return fmt.Errorf("build blob request: %w", err)
	}
	req.Header.Set("x-ms-blob-type", "BlockBlob")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload blob: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("upload blob: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// OperationState is the lifecycle state of a long-running insight operation.
type OperationState string

const (
	StateNotStarted OperationState = "notStarted"
	StateRunning    OperationState = "running"
	StateSucceeded  OperationState = "succeeded"
	StateFailed     OperationState = "failed"
)

// Terminal reports whether the state will not change again.
func (s OperationState) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// InsightRequest asks for cluster insights over completed evaluation runs.
type InsightRequest struct {
	DisplayName         string
	EvalID              string
	RunIDs              []string
	ModelDeploymentName string
}

// Insight is a cluster-insight generation operation and, once succeeded,
// its result payload.
type Insight struct {
	ID          string          `json:"id"`
	DisplayName string          `json:"displayName"`
	State       OperationState  `json:"state"`
	Error       string          `json:"error,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// GenerateInsight starts cluster-insight generation over evaluation runs.
func (c *ProjectClient) GenerateInsight(ctx context.Context, req InsightRequest) (*Insight, error) {
	body := map[string]any{
		"displayName": req.DisplayName,
		"request": map[string]any{
			"type":   "EvaluationRunClusterInsights",
			"evalId": req.EvalID,
			"runIds": req.RunIDs,
			"modelConfiguration": map[string]any{
				"modelDeploymentName": req.ModelDeploymentName,
			},
		},
	}
	var out Insight
	if err := c.do(ctx, http.MethodPost, "insights", body, &out); err != nil {
		return nil, err
	}
	c.logger.Info().Str("insight", out.ID).Msg("insight generation started")
	return &out, nil
}

// GetInsight fetches the current state of an insight operation.
func (c *ProjectClient) GetInsight(ctx context.Context, id string) (*Insight, error) {
	var out Insight
	if err := c.do(ctx, http.MethodGet, "insights/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WaitForInsight polls the insight every interval until it reaches a
// terminal state or the context is canceled.
func (c *ProjectClient) WaitForInsight(ctx context.Context, id string, interval time.Duration) (*Insight, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		insight, err := c.GetInsight(ctx, id)
		if err != nil {
			return nil, err
		}
		if insight.State.Terminal() {
			return insight, nil
		}
		c.logger.Info().Str("state", string(insight.State)).Msg("waiting for insight generation")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
