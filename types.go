// Package agenteval captures agent round-trips against a hosted
// conversational-agent endpoint and shapes them into evaluation records.
package agenteval

import (
	"encoding/json"
	"fmt"
	"time"
)

// Role is the owner of a conversation turn.
type Role string

const (
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ContentType describes the kind of content in a turn.
type ContentType string

const (
	ContentText       ContentType = "text"
	ContentToolCall   ContentType = "tool_call"
	ContentToolResult ContentType = "tool_result"
)

// ContentPart is a structured fragment of a conversation turn.
type ContentPart interface {
	contentType() ContentType
}

// TextContent is plain assistant text.
type TextContent struct {
	Text string `json:"text"`
}

func (TextContent) contentType() ContentType { return ContentText }

func (c TextContent) MarshalJSON() ([]byte, error) {
	type alias TextContent
	return json.Marshal(struct {
		Type ContentType `json:"type"`
		alias
	}{ContentText, alias(c)})
}

// ToolCallContent records a tool invocation requested by the agent.
type ToolCallContent struct {
	ToolCallID string         `json:"tool_call_id"`
	Name       string         `json:"name"`
	Arguments  map[string]any `json:"arguments"`
}

func (ToolCallContent) contentType() ContentType { return ContentToolCall }

func (c ToolCallContent) MarshalJSON() ([]byte, error) {
	type alias ToolCallContent
	return json.Marshal(struct {
		Type ContentType `json:"type"`
		alias
	}{ContentToolCall, alias(c)})
}

// ToolResultContent carries the value a local tool returned.
type ToolResultContent struct {
	ToolResult map[string]any `json:"tool_result"`
}

func (ToolResultContent) contentType() ContentType { return ContentToolResult }

func (c ToolResultContent) MarshalJSON() ([]byte, error) {
	type alias ToolResultContent
	return json.Marshal(struct {
		Type ContentType `json:"type"`
		alias
	}{ContentToolResult, alias(c)})
}

// UnmarshalContentPart decodes a JSON object into a concrete ContentPart.
func UnmarshalContentPart(data []byte) (ContentPart, error) {
	var raw struct {
		Type ContentType `json:"type"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	switch raw.Type {
	case ContentText:
		var c TextContent
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return c, nil
	case ContentToolCall:
		var c ToolCallContent
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return c, nil
	case ContentToolResult:
		var c ToolResultContent
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown content type: %s", raw.Type)
	}
}

// Message is one turn of a captured transcript, in the shape evaluators
// expect. Ordering within a transcript is significant.
type Message struct {
	CreatedAt  string        `json:"createdAt"`
	RunID      string        `json:"run_id"`
	Role       Role          `json:"role"`
	Content    []ContentPart `json:"content"`
	ToolCallID string        `json:"tool_call_id,omitempty"`
}

func (m *Message) UnmarshalJSON(data []byte) error {
	type alias Message
	aux := &struct {
		Content []json.RawMessage `json:"content"`
		*alias
	}{alias: (*alias)(m)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	parts := make([]ContentPart, 0, len(aux.Content))
	for _, raw := range aux.Content {
		p, err := UnmarshalContentPart(raw)
		if err != nil {
			return err
		}
		parts = append(parts, p)
	}
	m.Content = parts
	return nil
}

// NewMessage builds a transcript turn stamped with the current time.
func NewMessage(role Role, runID string, content ...ContentPart) Message {
	return Message{
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		RunID:     runID,
		Role:      role,
		Content:   content,
	}
}
