package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/chynybekuuludastan/content_studio/internal/service/llm"
)

const outlineSystemPrompt = "You are an expert content strategist who plans well-structured, search-friendly articles."

// OutlineRequest describes the article to plan
type OutlineRequest struct {
	Keyword  string   `json:"keyword"`
	Title    string   `json:"title,omitempty"`
	Audience string   `json:"audience,omitempty"`
	Tone     string   `json:"tone,omitempty"`
	Sections int      `json:"sections,omitempty"`
	Language string   `json:"language,omitempty"`
	Notes    []string `json:"notes,omitempty"`
	// URL of an existing page to build on
	URL string `json:"url,omitempty"`
}

// DefaultOutlineSections is used when a request leaves Sections unset
const DefaultOutlineSections = 6

// Outline generates a markdown article outline
func (s *Service) Outline(ctx context.Context, cfg llm.CallConfig, req OutlineRequest, opts llm.GenerationOptions) (Output, error) {
	if err := required("keyword", req.Keyword); err != nil {
		return Output{}, err
	}

	page, pageErr := s.fetchPage(ctx, req.URL)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Create a detailed outline for an article targeting the keyword \"%s\".\n\n", req.Keyword)
	if req.Title != "" {
		fmt.Fprintf(&sb, "Working title: \"%s\"\n", req.Title)
	}
	if req.Audience != "" {
		fmt.Fprintf(&sb, "Target Audience: %s\n", req.Audience)
	}
	if req.Tone != "" {
		fmt.Fprintf(&sb, "Tone: %s\n", req.Tone)
	}
	if page != nil {
		sb.WriteString("\nThe article should improve on this existing page:\n")
		sb.WriteString(page.Summary())
		sb.WriteString("\n")
	} else if req.URL != "" {
		fmt.Fprintf(&sb, "Existing page: %s\n", req.URL)
	}
	if len(req.Notes) > 0 {
		sb.WriteString("\nMake sure to cover:\n")
		for _, note := range req.Notes {
			fmt.Fprintf(&sb, "- %s\n", note)
		}
	}

	sections := req.Sections
	if sections <= 0 {
		sections = DefaultOutlineSections
	}
	fmt.Fprintf(&sb, "\nThe outline should have about %d main sections (H2), each with 2-4 subsections (H3) and one line describing what to write.\n", sections)
	sb.WriteString("Start with a suggested H1 and finish with a short FAQ section.\n")
	if req.Language != "" && req.Language != "en" {
		fmt.Fprintf(&sb, "Please provide your response in %s language.\n", req.Language)
	}
	sb.WriteString("Response format: markdown headings only, no explanations before or after the outline.")

	out := s.run(ctx, cfg, outlineSystemPrompt, sb.String(), opts)
	out.Page, out.PageError = page, pageErr
	if out.Result.Success {
		out.Result.Content = CleanCodeBlocks(out.Result.Content)
	}
	return out, nil
}
