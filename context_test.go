package agenteval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractContextJoinsAllSources(t *testing.T) {
	resp := &Response{
		Output: []OutputItem{
			FileSearchCallItem{Queries: []string{"return policy", "warranty"}},
			AzureSearchCallItem{Arguments: `{"query":"Sony WH-1000XM5 features"}`},
			MessageItem{Content: []OutputText{{
				Type: "output_text",
				Text: "Per the policy you have 30 days.",
				Annotations: []Annotation{
					{Type: "file_citation", FileID: "file_1", Filename: "Contoso_Return_Policy.md", Text: "30 days"},
					{Type: "url_citation", Title: "Contoso Support", URL: "https://contoso.example/support"},
					{Type: "file_path", FilePath: &FileRef{FileID: "file_2"}},
				},
			}}},
		},
	}

	got := ExtractContext(resp)
	assert.Contains(t, got, "File search queries: return policy, warranty")
	assert.Contains(t, got, "Azure AI Search query: Sony WH-1000XM5 features")
	assert.Contains(t, got, "[File: file_1 (Contoso_Return_Policy.md) - 30 days]")
	assert.Contains(t, got, "[Source: Contoso Support - https://contoso.example/support]")
	assert.Contains(t, got, "[Referenced file: file_2]")
	assert.Contains(t, got, "Per the policy you have 30 days.")
}

func TestExtractContextEmptyResponse(t *testing.T) {
	assert.Empty(t, ExtractContext(&Response{}))
}

func TestExtractContextSkipsNonTextContent(t *testing.T) {
	resp := &Response{
		Output: []OutputItem{
			MessageItem{Content: []OutputText{{Type: "refusal", Text: "nope"}}},
			AzureSearchCallItem{Arguments: `not json`},
		},
	}
	assert.Empty(t, ExtractContext(resp))
}

func TestFormatAnnotationUnknownURLTitle(t *testing.T) {
	got := formatAnnotation(Annotation{Type: "url_citation", URL: "https://contoso.example"})
	assert.Equal(t, "[Source: Unknown - https://contoso.example]", got)
}
