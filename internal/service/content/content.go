// Package content builds task-specific prompts (article outlines, page
// metadata, schema markup) and runs them through the provider client.
package content

import (
	"context"
	"errors"
	"strings"

	"github.com/chynybekuuludastan/content_studio/internal/service/llm"
	"github.com/chynybekuuludastan/content_studio/internal/service/parser"
)

// ErrInvalidRequest is returned when a request misses a required field
var ErrInvalidRequest = errors.New("invalid content request")

// Generator is the part of llm.Client the services use
type Generator interface {
	GenerateContent(ctx context.Context, cfg llm.CallConfig, prompt string, opts llm.GenerationOptions) llm.CallResult
}

// PageFetcher loads the page a metadata or outline request refers to
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*parser.PageContext, error)
}

// Output is a finished generation and the prompts that produced it
type Output struct {
	Result       llm.CallResult      `json:"result"`
	Prompt       string              `json:"prompt"`
	SystemPrompt string              `json:"system_prompt"`
	Page         *parser.PageContext `json:"page,omitempty"`
	// PageError is set when the referenced page could not be fetched; generation still ran without it
	PageError string `json:"page_error,omitempty"`
}

// Service runs the content generators
type Service struct {
	generator Generator
	fetcher   PageFetcher
	logger    llm.Logger
}

// NewService creates a content service. fetcher may be nil, in which case
// page URLs are passed to the model as plain text.
func NewService(generator Generator, fetcher PageFetcher, logger llm.Logger) *Service {
	if logger == nil {
		logger = llm.NewZapLogger(nil)
	}
	return &Service{generator: generator, fetcher: fetcher, logger: logger}
}

// run uses system as the system prompt unless opts already carries one
func (s *Service) run(ctx context.Context, cfg llm.CallConfig, system, prompt string, opts llm.GenerationOptions) Output {
	if opts.SystemPrompt != nil {
		system = *opts.SystemPrompt
	}
	opts.SystemPrompt = llm.String(system)
	result := s.generator.GenerateContent(ctx, cfg, prompt, opts)
	return Output{Result: result, Prompt: prompt, SystemPrompt: system}
}

func (s *Service) fetchPage(ctx context.Context, url string) (*parser.PageContext, string) {
	if url == "" || s.fetcher == nil {
		return nil, ""
	}
	page, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		s.logger.Error("Page fetch failed, generating without page context", "url", url, "error", err.Error())
		return nil, err.Error()
	}
	return page, ""
}

// CleanCodeBlocks strips a surrounding markdown code fence such as ```json ... ```
func CleanCodeBlocks(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		// drop the language tag line
		if tag := strings.TrimSpace(s[:i]); !strings.ContainsAny(tag, "{}<[") {
			s = s[i+1:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.Join(ErrInvalidRequest, errors.New(field+" is required"))
	}
	return nil
}
