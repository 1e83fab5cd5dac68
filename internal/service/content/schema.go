package content

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/chynybekuuludastan/content_studio/internal/service/llm"
)

const schemaSystemPrompt = "You are an expert in structured data who writes valid schema.org JSON-LD."

// SchemaRequest describes the entity to mark up
type SchemaRequest struct {
	// Type is the schema.org type, e.g. Article, Product, FAQPage, LocalBusiness
	Type    string            `json:"type"`
	Content string            `json:"content"`
	URL     string            `json:"url,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// SchemaOutput adds a validity flag to Output
type SchemaOutput struct {
	Output
	// ValidJSON reports whether the cleaned content parses as JSON
	ValidJSON bool `json:"valid_json"`
}

// SchemaMarkup generates JSON-LD for req
func (s *Service) SchemaMarkup(ctx context.Context, cfg llm.CallConfig, req SchemaRequest, opts llm.GenerationOptions) (SchemaOutput, error) {
	if err := required("type", req.Type); err != nil {
		return SchemaOutput{}, err
	}
	if err := required("content", req.Content); err != nil {
		return SchemaOutput{}, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate schema.org JSON-LD of type \"%s\" for the following content.\n\n", req.Type)
	if req.URL != "" {
		fmt.Fprintf(&sb, "Page URL: %s\n", req.URL)
	}
	if len(req.Fields) > 0 {
		sb.WriteString("Known properties:\n")
		for _, key := range sortedKeys(req.Fields) {
			fmt.Fprintf(&sb, "- %s: %s\n", key, req.Fields[key])
		}
	}
	sb.WriteString("\nContent:\n")
	sb.WriteString(req.Content)
	sb.WriteString("\n\nInclude \"@context\": \"https://schema.org\". Only use properties supported by the type.\n")
	sb.WriteString("Return only the JSON-LD object without any explanations or markdown formatting. Do not include backticks or <script> tags.")

	out := SchemaOutput{Output: s.run(ctx, cfg, schemaSystemPrompt, sb.String(), opts)}
	if out.Result.Success {
		out.Result.Content = CleanCodeBlocks(out.Result.Content)
		out.ValidJSON = json.Valid([]byte(out.Result.Content))
	}
	return out, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
