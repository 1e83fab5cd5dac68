package providers

import (
	"context"

	"github.com/chynybekuuludastan/content_studio/internal/service/llm"
)

const (
	claudeMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion  = "2023-06-01"
)

// ClaudeProvider talks to the Anthropic messages API
type ClaudeProvider struct {
	URL    string
	client HTTPClientFunc
}

// claudeRequest is the messages API body. The system prompt travels as an
// ordinary message in the list, it is not lifted into a top level field.
type claudeRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

// NewClaudeProvider creates a new Claude adapter
func NewClaudeProvider(client HTTPClientFunc) *ClaudeProvider {
	return &ClaudeProvider{URL: claudeMessagesURL, client: client}
}

// Name returns the provider name
func (p *ClaudeProvider) Name() llm.Provider {
	return llm.ProviderClaude
}

// TestConnection implements llm.Adapter
func (p *ClaudeProvider) TestConnection(ctx context.Context, cfg llm.CallConfig) llm.CallResult {
	if result, ok := validateConfig(cfg, false); !ok {
		return result
	}
	return testConnection(ctx, p.client(true), apiRequest{
		URL:     p.URL,
		Headers: claudeHeaders(cfg.APIKey),
		Body: claudeRequest{
			Model:     cfg.ModelOr(llm.DefaultClaudeModel),
			Messages:  toChatMessages(llm.FormatMessages(nil, testPrompt)),
			MaxTokens: testMaxTokens,
		},
	}, handleHTTPError)
}

// GenerateContent implements llm.Adapter
func (p *ClaudeProvider) GenerateContent(ctx context.Context, cfg llm.CallConfig, prompt string, opts llm.GenerationOptions) llm.CallResult {
	if result, ok := validateConfig(cfg, false); !ok {
		return result
	}
	return generate(ctx, p.client(true), apiRequest{
		URL:     p.URL,
		Headers: claudeHeaders(cfg.APIKey),
		Body: claudeRequest{
			Model:     cfg.ModelOr(llm.DefaultClaudeModel),
			Messages:  toChatMessages(llm.FormatMessages(opts.SystemPrompt, prompt)),
			MaxTokens: opts.MaxTokensOrDefault(),
		},
	}, p.ParseResponse, handleHTTPError)
}

// ParseResponse reads content[0].text
func (p *ClaudeProvider) ParseResponse(body []byte) string {
	text, _ := firstString(body, "content.0.text")
	return text
}

func claudeHeaders(apiKey string) map[string]string {
	return map[string]string{
		"x-api-key":         apiKey,
		"anthropic-version": anthropicVersion,
	}
}
