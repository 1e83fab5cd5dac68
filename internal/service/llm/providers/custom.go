package providers

import (
	"context"
	"net/url"
	"strings"

	"github.com/chynybekuuludastan/content_studio/internal/service/llm"
)

const chatCompletionsPath = "/chat/completions"

// openAICompatibleMarkers select the chat completions wire format for a custom
// endpoint. This is a substring heuristic on the URL, not capability detection:
// a proxy whose path merely contains "completion" is treated as OpenAI compatible.
var openAICompatibleMarkers = []string{"openai", "together.xyz", "completion"}

// genericResponsePaths are tried in order on non OpenAI responses
var genericResponsePaths = []string{
	"choices.0.text",
	"choices.0.message.content",
	"response",
	"output",
	"result",
	"content",
	"text",
}

// CustomProvider talks to a user supplied endpoint
type CustomProvider struct {
	client HTTPClientFunc
}

// customRequest is the body sent to endpoints that are not OpenAI compatible
type customRequest struct {
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Model       string  `json:"model,omitempty"`
}

// NewCustomProvider creates a new custom endpoint adapter
func NewCustomProvider(client HTTPClientFunc) *CustomProvider {
	return &CustomProvider{client: client}
}

// Name returns the provider name
func (p *CustomProvider) Name() llm.Provider {
	return llm.ProviderCustom
}

// IsOpenAICompatible reports whether endpoint looks like a chat completions API
func IsOpenAICompatible(endpoint string) bool {
	lower := strings.ToLower(endpoint)
	for _, marker := range openAICompatibleMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// NormalizeEndpoint appends /chat/completions to OpenAI compatible endpoints
// that lack it. Other endpoints are returned verbatim.
func NormalizeEndpoint(endpoint string) string {
	if !IsOpenAICompatible(endpoint) {
		return endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return appendChatCompletions(endpoint)
	}
	u.Path = appendChatCompletions(u.Path)
	u.RawPath = ""
	return u.String()
}

func appendChatCompletions(path string) string {
	trimmed := strings.TrimRight(path, "/")
	if strings.HasSuffix(strings.ToLower(trimmed), chatCompletionsPath) {
		return trimmed
	}
	return trimmed + chatCompletionsPath
}

// TestConnection implements llm.Adapter
func (p *CustomProvider) TestConnection(ctx context.Context, cfg llm.CallConfig) llm.CallResult {
	if result, ok := validateConfig(cfg, true); !ok {
		return result
	}

	var body interface{}
	if IsOpenAICompatible(cfg.Endpoint) {
		body = openAITestBody(cfg.Model)
	} else {
		body = customRequest{
			Prompt:      testPrompt,
			Temperature: llm.DefaultTemperature,
			MaxTokens:   testMaxTokens,
			Model:       cfg.Model,
		}
	}

	return testConnection(ctx, p.client(cfg.ShouldVerifyTLS()), apiRequest{
		URL:     NormalizeEndpoint(cfg.Endpoint),
		Headers: bearer(cfg.APIKey),
		Body:    body,
	}, handleHTTPError)
}

// GenerateContent implements llm.Adapter
func (p *CustomProvider) GenerateContent(ctx context.Context, cfg llm.CallConfig, prompt string, opts llm.GenerationOptions) llm.CallResult {
	if result, ok := validateConfig(cfg, true); !ok {
		return result
	}

	request := apiRequest{
		URL:     NormalizeEndpoint(cfg.Endpoint),
		Headers: bearer(cfg.APIKey),
	}

	parse := p.parseGeneric
	if IsOpenAICompatible(cfg.Endpoint) {
		request.Body = openAIChatBody(cfg.Model, prompt, opts)
		parse = p.parseOpenAICompatible
	} else {
		request.Body = customRequest{
			Prompt:      flattenPrompt(opts.SystemPrompt, prompt),
			Temperature: opts.TemperatureOrDefault(),
			MaxTokens:   opts.MaxTokensOrDefault(),
			Model:       cfg.Model,
		}
	}

	return generate(ctx, p.client(cfg.ShouldVerifyTLS()), request, parse, handleHTTPError)
}

// ParseResponse tries the chat completions fields first, then the generic cascade
func (p *CustomProvider) ParseResponse(body []byte) string {
	return p.parseOpenAICompatible(body)
}

func (p *CustomProvider) parseOpenAICompatible(body []byte) string {
	if text, ok := firstString(body, "choices.0.message.content", "choices.0.text"); ok {
		return text
	}
	return p.parseGeneric(body)
}

// parseGeneric returns the first known field present, else the raw JSON text
func (p *CustomProvider) parseGeneric(body []byte) string {
	if text, ok := firstString(body, genericResponsePaths...); ok {
		return text
	}
	return strings.TrimSpace(string(body))
}

// flattenPrompt joins the system prompt into the single prompt string
func flattenPrompt(systemPrompt *string, prompt string) string {
	if systemPrompt == nil || *systemPrompt == "" {
		return prompt
	}
	return *systemPrompt + "\n\n" + prompt
}
