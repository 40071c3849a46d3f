package agenteval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// DefaultMaxIterations bounds the request/execute/respond loop.
const DefaultMaxIterations = 5

var (
	ErrNoClient   = errors.New("agenteval: response client is required")
	ErrNoRegistry = errors.New("agenteval: tool registry is required")
)

// Driver runs the bounded round-trip loop against the remote agent endpoint:
// send a turn, execute requested tool calls locally, feed the results back,
// and repeat until the agent stops requesting calls or the iteration ceiling
// is reached. A failing tool never aborts the loop; a failing remote call
// always does.
type Driver struct {
	Client   ResponseClient
	Registry *Registry

	// MaxIterations caps follow-up turns; zero means DefaultMaxIterations.
	MaxIterations int
	Logger        zerolog.Logger
}

// RunInput identifies one query to drive through the agent.
type RunInput struct {
	AgentName      string
	Query          string
	ConversationID string
}

// RunResult is everything captured from one driven query.
type RunResult struct {
	Query        string
	ResponseText string
	Messages     []Message
	ToolCalls    []ToolCall
	Context      string
}

// Record shapes the result into a dataset record. GroundTruth is left empty
// for later annotation.
func (r *RunResult) Record(defs []ToolDefinition) Record {
	return Record{
		Query:           r.Query,
		Response:        ResponseField{Messages: r.Messages},
		Context:         r.Context,
		ToolDefinitions: defs,
		ToolCalls:       r.ToolCalls,
	}
}

// Run drives a single query through the agent with full tool support.
func (d *Driver) Run(ctx context.Context, in RunInput) (*RunResult, error) {
	if d.Client == nil {
		return nil, ErrNoClient
	}
	if d.Registry == nil {
		return nil, ErrNoRegistry
	}
	maxIters := d.MaxIterations
	if maxIters <= 0 {
		maxIters = DefaultMaxIterations
	}

	runID := fmt.Sprintf("run_%d", time.Now().Unix())
	res := &RunResult{Query: in.Query}

	d.Logger.Info().Str("agent", in.AgentName).Str("query", in.Query).Msg("executing agent query")

	resp, err := d.Client.CreateResponse(ctx, ResponseRequest{
		AgentName:      in.AgentName,
		ConversationID: in.ConversationID,
		Query:          in.Query,
	})
	if err != nil {
		return nil, fmt.Errorf("create response: %w", err)
	}

	res.Context = ExtractContext(resp)
	outputs := d.processOutput(ctx, resp, runID, res)

	iteration := 0
	for len(outputs) > 0 && iteration < maxIters {
		iteration++
		next, err := d.Client.CreateResponse(ctx, ResponseRequest{
			AgentName:          in.AgentName,
			ConversationID:     in.ConversationID,
			Outputs:            outputs,
			PreviousResponseID: resp.ID,
		})
		if err != nil {
			return nil, fmt.Errorf("create response (iteration %d): %w", iteration, err)
		}
		resp = next

		if extra := ExtractContext(resp); extra != "" {
			if res.Context == "" {
				res.Context = extra
			} else {
				res.Context = res.Context + " " + extra
			}
		}
		outputs = d.processOutput(ctx, resp, runID, res)
	}

	text := resp.OutputText()
	if text == "" {
		d.Logger.Warn().Int("iterations", iteration).Msg("no response text generated")
	} else {
		res.Messages = append(res.Messages, NewMessage(RoleAssistant, runID, TextContent{Text: text}))
	}
	res.ResponseText = text
	return res, nil
}

// processOutput scans one response: it records every requested invocation,
// executes registry-backed function calls, appends the assistant and tool
// turns to the transcript, and returns the call outputs to feed back. Every
// function call gets exactly one correlated result; a name missing from the
// registry yields an error result rather than a dangling call.
func (d *Driver) processOutput(ctx context.Context, resp *Response, runID string, res *RunResult) []FunctionCallOutput {
	var outputs []FunctionCallOutput
	var assistant []ContentPart
	results := make(map[string]map[string]any)

	for _, item := range resp.Output {
		switch it := item.(type) {
		case FileSearchCallItem:
			d.Logger.Info().Strs("queries", it.Queries).Msg("file search call")
			res.ToolCalls = append(res.ToolCalls, ToolCall{
				Type:       ToolCallFileSearch,
				ToolCallID: it.CallID,
				Queries:    it.Queries,
			})
			// Built-in tool: the service resolves it, no result to feed back.

		case AzureSearchCallItem:
			query := gjson.Get(it.Arguments, "query").String()
			d.Logger.Info().Str("query", query).Msg("azure ai search call")
			var args map[string]any
			_ = json.Unmarshal([]byte(it.Arguments), &args)
			res.ToolCalls = append(res.ToolCalls, ToolCall{
				Type:       ToolCallAzureSearch,
				ToolCallID: it.CallID,
				Query:      query,
				Arguments:  args,
			})

		case FunctionCallItem:
			d.Logger.Info().Str("name", it.Name).RawJSON("arguments", jsonOrNull(it.Arguments)).Msg("function call")

			var args map[string]any
			if err := json.Unmarshal([]byte(it.Arguments), &args); err != nil {
				args = nil
			}
			res.ToolCalls = append(res.ToolCalls, ToolCall{
				Type:       ToolCallFunction,
				ToolCallID: it.CallID,
				Name:       it.Name,
				Arguments:  args,
			})
			assistant = append(assistant, ToolCallContent{
				ToolCallID: it.CallID,
				Name:       it.Name,
				Arguments:  args,
			})

			result := d.executeFunction(ctx, it)
			results[it.CallID] = result
			encoded, err := json.Marshal(result)
			if err != nil {
				encoded = []byte(`{"error":"unencodable tool result"}`)
			}
			outputs = append(outputs, NewFunctionCallOutput(it.CallID, string(encoded)))
		}
	}

	if len(assistant) == 0 {
		return outputs
	}

	res.Messages = append(res.Messages, NewMessage(RoleAssistant, runID, assistant...))
	for _, part := range assistant {
		call, ok := part.(ToolCallContent)
		if !ok {
			continue
		}
		result, ok := results[call.ToolCallID]
		if !ok {
			continue
		}
		msg := NewMessage(RoleTool, runID, ToolResultContent{ToolResult: result})
		msg.ToolCallID = call.ToolCallID
		res.Messages = append(res.Messages, msg)
	}
	return outputs
}

func (d *Driver) executeFunction(ctx context.Context, call FunctionCallItem) map[string]any {
	tool, ok := d.Registry.Lookup(call.Name)
	if !ok {
		d.Logger.Warn().Str("name", call.Name).Msg("unknown tool requested")
		return map[string]any{"error": fmt.Sprintf("unknown tool: %s", call.Name)}
	}

	result, err := tool.Execute(ctx, json.RawMessage(call.Arguments))
	if err != nil {
		d.Logger.Warn().Err(err).Str("name", call.Name).Msg("tool execution failed")
		return map[string]any{"error": err.Error()}
	}
	d.Logger.Debug().Str("name", call.Name).Interface("result", result).Msg("tool executed")
	return result
}

func jsonOrNull(s string) []byte {
	if json.Valid([]byte(s)) {
		return []byte(s)
	}
	return []byte("null")
}
