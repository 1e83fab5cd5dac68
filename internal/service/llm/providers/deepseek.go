package providers

import (
	"context"

	"github.com/chynybekuuludastan/content_studio/internal/service/llm"
)

const deepSeekCompletionsURL = "https://api.deepseek.com/v1/chat/completions"

// DeepSeekProvider talks to the DeepSeek chat completions API
type DeepSeekProvider struct {
	URL    string
	client HTTPClientFunc
}

// NewDeepSeekProvider creates a new DeepSeek adapter
func NewDeepSeekProvider(client HTTPClientFunc) *DeepSeekProvider {
	return &DeepSeekProvider{URL: deepSeekCompletionsURL, client: client}
}

func (p *DeepSeekProvider) Name() llm.Provider {
	return llm.ProviderDeepSeek
}

func (p *DeepSeekProvider) TestConnection(ctx context.Context, cfg llm.CallConfig) llm.CallResult {
	if result, ok := validateConfig(cfg, false); !ok {
		return result
	}
	return testConnection(ctx, p.client(true), apiRequest{
		URL:     p.URL,
		Headers: bearer(cfg.APIKey),
		Body:    openAITestBody(cfg.ModelOr(llm.DefaultDeepSeekModel)),
	}, handleHTTPError)
}

func (p *DeepSeekProvider) GenerateContent(ctx context.Context, cfg llm.CallConfig, prompt string, opts llm.GenerationOptions) llm.CallResult {
	if result, ok := validateConfig(cfg, false); !ok {
		return result
	}
	return generate(ctx, p.client(true), apiRequest{
		URL:     p.URL,
		Headers: bearer(cfg.APIKey),
		Body:    openAIChatBody(cfg.ModelOr(llm.DefaultDeepSeekModel), prompt, opts),
	}, p.ParseResponse, handleHTTPError)
}

func (p *DeepSeekProvider) ParseResponse(body []byte) string {
	return parseChoices(body, false)
}
