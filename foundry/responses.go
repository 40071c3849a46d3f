package foundry

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/rs/zerolog"

	agenteval "github.com/PreiyaaKedia/agent-evaluation-v2"
)

// NewOpenAIClient builds an OpenAI client against the project's
// OpenAI-compatible surface, authenticated with the token source.
func NewOpenAIClient(endpoint string, tokens *TokenSource) openai.Client {
	return openai.NewClient(
		option.WithBaseURL(strings.TrimRight(endpoint, "/")+"/openai/v1/"),
		option.WithMiddleware(bearerAuth(tokens)),
	)
}

func bearerAuth(tokens *TokenSource) option.Middleware {
	return func(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		token, err := tokens.Token(req.Context())
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return next(req)
	}
}

// ResponsesClient drives hosted agents through the responses endpoint,
// addressing the agent by reference rather than by inline definition.
type ResponsesClient struct {
	client openai.Client
	logger zerolog.Logger
}

// NewResponsesClient wraps an OpenAI client for agent-reference calls.
func NewResponsesClient(client openai.Client, logger zerolog.Logger) *ResponsesClient {
	return &ResponsesClient{client: client, logger: logger}
}

var _ agenteval.ResponseClient = (*ResponsesClient)(nil)

// CreateResponse sends one turn to the agent. The first turn carries the
// query text; follow-up turns carry function call outputs chained to the
// previous response.
func (c *ResponsesClient) CreateResponse(ctx context.Context, req agenteval.ResponseRequest) (*agenteval.Response, error) {
	body := map[string]any{
		"agent": map[string]any{
			"name": req.AgentName,
			"type": "agent_reference",
		},
	}
	if req.ConversationID != "" {
		body["conversation"] = req.ConversationID
	}
	if req.PreviousResponseID != "" {
		body["previous_response_id"] = req.PreviousResponseID
		body["input"] = req.Outputs
	} else {
		body["input"] = req.Query
	}

	var resp agenteval.Response
	if err := c.client.Post(ctx, "responses", body, &resp); err != nil {
		return nil, fmt.Errorf("responses create: %w", err)
	}
	c.logger.Debug().Str("response_id", resp.ID).Str("status", resp.Status).Int("items", len(resp.Output)).Msg("response received")
	return &resp, nil
}

// CreateVectorStore creates an empty vector store and uploads the given
// files into it, waiting for each to finish processing.
func CreateVectorStore(ctx context.Context, client openai.Client, name string, paths []string, logger zerolog.Logger) (string, error) {
	store, err := client.VectorStores.New(ctx, openai.VectorStoreNewParams{
		Name: openai.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("create vector store: %w", err)
	}
	logger.Info().Str("vector_store", store.ID).Str("name", name).Msg("vector store created")

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return store.ID, fmt.Errorf("open document %s: %w", path, err)
		}
		vsFile, err := client.VectorStores.Files.UploadAndPoll(ctx, store.ID, openai.FileNewParams{
			File:    f,
			Purpose: openai.FilePurposeAssistants,
		}, 1000)
		f.Close()
		if err != nil {
			return store.ID, fmt.Errorf("upload document %s: %w", path, err)
		}
		logger.Info().Str("file", path).Str("status", string(vsFile.Status)).Msg("document indexed")
	}
	return store.ID, nil
}

// DeleteVectorStore removes a vector store. Failures are logged, not
// returned; cleanup is best effort.
func DeleteVectorStore(ctx context.Context, client openai.Client, id string, logger zerolog.Logger) {
	if id == "" {
		return
	}
	if _, err := client.VectorStores.Delete(ctx, id); err != nil {
		logger.Warn().Err(err).Str("vector_store", id).Msg("vector store cleanup failed")
		return
	}
	logger.Info().Str("vector_store", id).Msg("vector store deleted")
}
