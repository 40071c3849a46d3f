package agenteval

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// OutputItemType identifies the kind of a response output item. The remote
// endpoint returns a closed set of kinds; anything else is skipped at decode
// time rather than probed dynamically.
type OutputItemType string

const (
	OutputMessage         OutputItemType = "message"
	OutputFunctionCall    OutputItemType = "function_call"
	OutputFileSearchCall  OutputItemType = "file_search_call"
	OutputAzureSearchCall OutputItemType = "azure_ai_search_call"
)

// OutputItem is one typed item of a response's output list.
type OutputItem interface {
	outputItemType() OutputItemType
}

// FunctionCallItem is a request to execute a named local tool.
type FunctionCallItem struct {
	ID        string `json:"id,omitempty"`
	CallID    string `json:"call_id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

func (FunctionCallItem) outputItemType() OutputItemType { return OutputFunctionCall }

func (i FunctionCallItem) MarshalJSON() ([]byte, error) {
	type alias FunctionCallItem
	return json.Marshal(struct {
		Type OutputItemType `json:"type"`
		alias
	}{OutputFunctionCall, alias(i)})
}

// FileSearchCallItem is a service-resolved file search invocation.
type FileSearchCallItem struct {
	ID      string   `json:"id,omitempty"`
	CallID  string   `json:"call_id,omitempty"`
	Queries []string `json:"queries,omitempty"`
	Status  string   `json:"status,omitempty"`
}

func (FileSearchCallItem) outputItemType() OutputItemType { return OutputFileSearchCall }

func (i FileSearchCallItem) MarshalJSON() ([]byte, error) {
	type alias FileSearchCallItem
	return json.Marshal(struct {
		Type OutputItemType `json:"type"`
		alias
	}{OutputFileSearchCall, alias(i)})
}

// AzureSearchCallItem is a service-resolved index search invocation.
// Arguments is the raw JSON argument string supplied by the service.
type AzureSearchCallItem struct {
	ID        string `json:"id,omitempty"`
	CallID    string `json:"call_id,omitempty"`
	Arguments string `json:"arguments,omitempty"`
	Status    string `json:"status,omitempty"`
}

func (AzureSearchCallItem) outputItemType() OutputItemType { return OutputAzureSearchCall }

func (i AzureSearchCallItem) MarshalJSON() ([]byte, error) {
	type alias AzureSearchCallItem
	return json.Marshal(struct {
		Type OutputItemType `json:"type"`
		alias
	}{OutputAzureSearchCall, alias(i)})
}

// FileRef points at a file referenced by a file_path annotation.
type FileRef struct {
	FileID string `json:"file_id"`
}

// Annotation is a citation attached to assistant output text. Optional
// fields are empty rather than absent-at-runtime.
type Annotation struct {
	Type     string   `json:"type"`
	FileID   string   `json:"file_id,omitempty"`
	Filename string   `json:"filename,omitempty"`
	Text     string   `json:"text,omitempty"`
	Title    string   `json:"title,omitempty"`
	URL      string   `json:"url,omitempty"`
	FilePath *FileRef `json:"file_path,omitempty"`
}

// OutputText is one content fragment of a message item.
type OutputText struct {
	Type        string       `json:"type"`
	Text        string       `json:"text"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// MessageItem is an assistant message in the response output.
type MessageItem struct {
	ID      string       `json:"id,omitempty"`
	Role    string       `json:"role,omitempty"`
	Status  string       `json:"status,omitempty"`
	Content []OutputText `json:"content"`
}

func (MessageItem) outputItemType() OutputItemType { return OutputMessage }

func (i MessageItem) MarshalJSON() ([]byte, error) {
	type alias MessageItem
	return json.Marshal(struct {
		Type OutputItemType `json:"type"`
		alias
	}{OutputMessage, alias(i)})
}

// UnmarshalOutputItem decodes a JSON object into a concrete OutputItem.
// Unrecognized kinds return (nil, nil) so new service-side item types do not
// break decoding.
func UnmarshalOutputItem(data []byte) (OutputItem, error) {
	var raw struct {
		Type OutputItemType `json:"type"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	switch raw.Type {
	case OutputMessage:
		var i MessageItem
		if err := json.Unmarshal(data, &i); err != nil {
			return nil, err
		}
		return i, nil
	case OutputFunctionCall:
		var i FunctionCallItem
		if err := json.Unmarshal(data, &i); err != nil {
			return nil, err
		}
		return i, nil
	case OutputFileSearchCall:
		var i FileSearchCallItem
		if err := json.Unmarshal(data, &i); err != nil {
			return nil, err
		}
		return i, nil
	case OutputAzureSearchCall:
		var i AzureSearchCallItem
		if err := json.Unmarshal(data, &i); err != nil {
			return nil, err
		}
		return i, nil
	default:
		return nil, nil
	}
}

// Response is the typed reply from the remote agent endpoint.
type Response struct {
	ID        string
	Status    string
	CreatedAt int64
	Output    []OutputItem
}

func (r *Response) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID        string            `json:"id"`
		Status    string            `json:"status"`
		CreatedAt int64             `json:"created_at"`
		Output    []json.RawMessage `json:"output"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.ID = aux.ID
	r.Status = aux.Status
	r.CreatedAt = aux.CreatedAt
	r.Output = r.Output[:0]
	for idx, raw := range aux.Output {
		item, err := UnmarshalOutputItem(raw)
		if err != nil {
			return fmt.Errorf("output item %d: %w", idx, err)
		}
		if item == nil {
			continue
		}
		r.Output = append(r.Output, item)
	}
	return nil
}

// OutputText concatenates the text of every message item in output order.
func (r *Response) OutputText() string {
	var sb strings.Builder
	for _, item := range r.Output {
		msg, ok := item.(MessageItem)
		if !ok {
			continue
		}
		for _, c := range msg.Content {
			if c.Type == "output_text" {
				sb.WriteString(c.Text)
			}
		}
	}
	return sb.String()
}

// FunctionCallOutput feeds a tool result back to the agent.
type FunctionCallOutput struct {
	Type   string `json:"type"`
	CallID string `json:"call_id"`
	Output string `json:"output"`
}

// NewFunctionCallOutput wraps an encoded tool result for the follow-up turn.
func NewFunctionCallOutput(callID, output string) FunctionCallOutput {
	return FunctionCallOutput{Type: "function_call_output", CallID: callID, Output: output}
}

// ResponseRequest is one turn sent to the remote agent. Exactly one of Query
// and Outputs is set: Outputs chains a follow-up turn onto
// PreviousResponseID.
type ResponseRequest struct {
	AgentName          string
	ConversationID     string
	Query              string
	Outputs            []FunctionCallOutput
	PreviousResponseID string
}

// ResponseClient creates responses on the remote agent endpoint.
type ResponseClient interface {
	CreateResponse(ctx context.Context, req ResponseRequest) (*Response, error)
}
