package agenteval

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ExtractContext assembles the free-text context string used for
// groundedness evaluation: search queries, citation annotations, and message
// text, concatenated in output order.
func ExtractContext(resp *Response) string {
	var parts []string

	for _, item := range resp.Output {
		switch it := item.(type) {
		case FileSearchCallItem:
			if len(it.Queries) > 0 {
				parts = append(parts, fmt.Sprintf("File search queries: %s", strings.Join(it.Queries, ", ")))
			}
		case AzureSearchCallItem:
			if q := gjson.Get(it.Arguments, "query"); q.Exists() {
				parts = append(parts, fmt.Sprintf("Azure AI Search query: %s", q.String()))
			}
		case MessageItem:
			for _, c := range it.Content {
				if c.Type != "output_text" {
					continue
				}
				for _, ann := range c.Annotations {
					if s := formatAnnotation(ann); s != "" {
						parts = append(parts, s)
					}
				}
				if c.Text != "" {
					parts = append(parts, c.Text)
				}
			}
		}
	}

	return strings.Join(parts, " ")
}

func formatAnnotation(ann Annotation) string {
	switch ann.Type {
	case "file_citation":
		var sb strings.Builder
		sb.WriteString("[File: ")
		sb.WriteString(ann.FileID)
		if ann.Filename != "" {
			fmt.Fprintf(&sb, " (%s)", ann.Filename)
		}
		if ann.Text != "" {
			fmt.Fprintf(&sb, " - %s", ann.Text)
		}
		sb.WriteString("]")
		return sb.String()
	case "url_citation":
		title := ann.Title
		if title == "" {
			title = "Unknown"
		}
		if ann.URL != "" {
			return fmt.Sprintf("[Source: %s - %s]", title, ann.URL)
		}
		return fmt.Sprintf("[Source: %s]", title)
	case "file_path":
		if ann.FilePath != nil {
			return fmt.Sprintf("[Referenced file: %s]", ann.FilePath.FileID)
		}
	}
	return ""
}
