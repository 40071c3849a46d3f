package agenteval

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ResponseField is the record's response, which evaluators accept either as
// a plain string or as an ordered array of transcript turns.
type ResponseField struct {
	Text     string
	Messages []Message
}

func (f ResponseField) MarshalJSON() ([]byte, error) {
	if f.Messages != nil {
		return json.Marshal(f.Messages)
	}
	return json.Marshal(f.Text)
}

func (f *ResponseField) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty response field")
	}
	switch data[0] {
	case '[':
		f.Text = ""
		return json.Unmarshal(data, &f.Messages)
	case '"':
		f.Messages = nil
		return json.Unmarshal(data, &f.Text)
	case 'n': // null
		*f = ResponseField{}
		return nil
	default:
		return fmt.Errorf("response field is neither string nor array")
	}
}

// Record is one test query's full captured interaction, the unit handed to
// evaluators. GroundTruth is always serialized so annotators can fill it in.
type Record struct {
	Query           string           `json:"query"`
	Response        ResponseField    `json:"response"`
	Context         string           `json:"context,omitempty"`
	ToolDefinitions []ToolDefinition `json:"tool_definitions,omitempty"`
	ToolCalls       []ToolCall       `json:"tool_calls,omitempty"`
	GroundTruth     string           `json:"ground_truth"`
}

// WriteRecords writes records as newline-delimited JSON, one per line.
func WriteRecords(path string, records []Record) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open dataset file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode record %d: %w", i, err)
		}
	}
	return nil
}

// ReadRecords reads a newline-delimited JSON dataset file.
func ReadRecords(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset file: %w", err)
	}
	defer f.Close()

	var records []Record
	dec := json.NewDecoder(f)
	for {
		var rec Record
		if err := dec.Decode(&rec); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("decode record %d: %w", len(records), err)
		}
		records = append(records, rec)
	}
	return records, nil
}
