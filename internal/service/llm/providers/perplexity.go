package providers

import (
	"context"

	"github.com/chynybekuuludastan/content_studio/internal/service/llm"
)

const perplexityCompletionsURL = "https://api.perplexity.ai/chat/completions"

// PerplexityProvider talks to the Perplexity chat completions API
type PerplexityProvider struct {
	URL    string
	client HTTPClientFunc
}

// NewPerplexityProvider creates a new Perplexity adapter
func NewPerplexityProvider(client HTTPClientFunc) *PerplexityProvider {
	return &PerplexityProvider{URL: perplexityCompletionsURL, client: client}
}

// Name returns the provider name
func (p *PerplexityProvider) Name() llm.Provider {
	return llm.ProviderPerplexity
}

// TestConnection implements llm.Adapter
func (p *PerplexityProvider) TestConnection(ctx context.Context, cfg llm.CallConfig) llm.CallResult {
	if result, ok := validateConfig(cfg, false); !ok {
		return result
	}
	return testConnection(ctx, p.client(true), apiRequest{
		URL:     p.URL,
		Headers: bearer(cfg.APIKey),
		Body:    openAITestBody(cfg.ModelOr(llm.DefaultPerplexityModel)),
	}, handleHTTPError)
}

// GenerateContent implements llm.Adapter
func (p *PerplexityProvider) GenerateContent(ctx context.Context, cfg llm.CallConfig, prompt string, opts llm.GenerationOptions) llm.CallResult {
	if result, ok := validateConfig(cfg, false); !ok {
		return result
	}
	return generate(ctx, p.client(true), apiRequest{
		URL:     p.URL,
		Headers: bearer(cfg.APIKey),
		Body:    openAIChatBody(cfg.ModelOr(llm.DefaultPerplexityModel), prompt, opts),
	}, p.ParseResponse, handleHTTPError)
}

// ParseResponse reads choices[0].message.content, then choices[0].text
func (p *PerplexityProvider) ParseResponse(body []byte) string {
	return parseChoices(body, true)
}
