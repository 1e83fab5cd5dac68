package providers

import (
	"context"

	"github.com/chynybekuuludastan/content_studio/internal/service/llm"
)

const openAICompletionsURL = "https://api.openai.com/v1/chat/completions"

// OpenAIProvider talks to the OpenAI chat completions API
type OpenAIProvider struct {
	URL    string
	client HTTPClientFunc
}

// NewOpenAIProvider creates a new OpenAI adapter
func NewOpenAIProvider(client HTTPClientFunc) *OpenAIProvider {
	return &OpenAIProvider{URL: openAICompletionsURL, client: client}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() llm.Provider {
	return llm.ProviderOpenAI
}

// TestConnection implements llm.Adapter
func (p *OpenAIProvider) TestConnection(ctx context.Context, cfg llm.CallConfig) llm.CallResult {
	if result, ok := validateConfig(cfg, false); !ok {
		return result
	}
	return testConnection(ctx, p.client(true), apiRequest{
		URL:     p.URL,
		Headers: bearer(cfg.APIKey),
		Body:    openAITestBody(cfg.ModelOr(llm.DefaultOpenAIModel)),
	}, handleHTTPError)
}

// GenerateContent implements llm.Adapter
func (p *OpenAIProvider) GenerateContent(ctx context.Context, cfg llm.CallConfig, prompt string, opts llm.GenerationOptions) llm.CallResult {
	if result, ok := validateConfig(cfg, false); !ok {
		return result
	}
	return generate(ctx, p.client(true), apiRequest{
		URL:     p.URL,
		Headers: bearer(cfg.APIKey),
		Body:    openAIChatBody(cfg.ModelOr(llm.DefaultOpenAIModel), prompt, opts),
	}, p.ParseResponse, handleHTTPError)
}

// ParseResponse reads choices[0].message.content
func (p *OpenAIProvider) ParseResponse(body []byte) string {
	return parseChoices(body, false)
}
