package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/chynybekuuludastan/content_studio/internal/service/llm"
)

const metadataSystemPrompt = "You are an expert in writing effective page titles and meta descriptions that improve click-through rates."

// MetadataRequest describes the page whose metadata should be written.
// Either URL or Content must be set.
type MetadataRequest struct {
	URL      string `json:"url,omitempty"`
	Content  string `json:"content,omitempty"`
	Keyword  string `json:"keyword,omitempty"`
	Audience string `json:"audience,omitempty"`
	Language string `json:"language,omitempty"`
}

// Metadata is the parsed model answer
type Metadata struct {
	Title           string `json:"title"`
	MetaDescription string `json:"meta_description"`
}

// MetadataOutput adds the parsed fields to Output. Parsed is nil when the
// model did not answer with the requested JSON.
type MetadataOutput struct {
	Output
	Parsed *Metadata `json:"parsed,omitempty"`
}

// Metadata generates an SEO title and meta description
func (s *Service) Metadata(ctx context.Context, cfg llm.CallConfig, req MetadataRequest, opts llm.GenerationOptions) (MetadataOutput, error) {
	if strings.TrimSpace(req.URL) == "" && strings.TrimSpace(req.Content) == "" {
		return MetadataOutput{}, required("url or content", "")
	}

	page, pageErr := s.fetchPage(ctx, req.URL)

	var sb strings.Builder
	sb.WriteString("Write an optimized title tag and meta description for the following page.\n\n")
	if page != nil {
		sb.WriteString(page.Summary())
		sb.WriteString("\n\n")
	} else if req.URL != "" {
		fmt.Fprintf(&sb, "URL: %s\n\n", req.URL)
	}
	if req.Content != "" {
		excerpt := req.Content
		if runes := []rune(excerpt); len(runes) > 1500 {
			excerpt = string(runes[:1500]) + "..."
		}
		fmt.Fprintf(&sb, "Content excerpt: \"%s\"\n\n", excerpt)
	}
	if req.Keyword != "" {
		fmt.Fprintf(&sb, "Primary keyword: %s\n", req.Keyword)
	}
	if req.Audience != "" {
		fmt.Fprintf(&sb, "Target Audience: %s\n", req.Audience)
	}

	sb.WriteString("\nThe title must be under 60 characters. The meta description must be between 140-160 characters, ")
	sb.WriteString("summarize the page accurately and include a clear value proposition.\n")
	if req.Language != "" && req.Language != "en" {
		fmt.Fprintf(&sb, "Please provide your response in %s language.\n", req.Language)
	}
	sb.WriteString("Response format: JSON with fields 'title' and 'meta_description'.\n")
	sb.WriteString("Do not include any explanations, just return the JSON object.")

	out := MetadataOutput{Output: s.run(ctx, cfg, metadataSystemPrompt, sb.String(), opts)}
	out.Page, out.PageError = page, pageErr
	if out.Result.Success {
		out.Result.Content = CleanCodeBlocks(out.Result.Content)
		out.Parsed = parseMetadata(out.Result.Content)
	}
	return out, nil
}

func parseMetadata(content string) *Metadata {
	if !gjson.Valid(content) {
		return nil
	}
	parsed := gjson.Parse(content)
	md := &Metadata{
		Title:           parsed.Get("title").String(),
		MetaDescription: parsed.Get("meta_description").String(),
	}
	if md.Title == "" && md.MetaDescription == "" {
		return nil
	}
	return md
}
