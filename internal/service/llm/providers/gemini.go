package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/chynybekuuludastan/content_studio/internal/service/llm"
)

const geminiModelsURL = "https://generativelanguage.googleapis.com/v1beta/models"

// GeminiProvider talks to the Gemini generateContent REST API. The API key is
// sent as a query parameter and the model is part of the path.
type GeminiProvider struct {
	BaseURL string
	client  HTTPClientFunc
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

// NewGeminiProvider creates a new Gemini adapter
func NewGeminiProvider(client HTTPClientFunc) *GeminiProvider {
	return &GeminiProvider{BaseURL: geminiModelsURL, client: client}
}

// Name returns the provider name
func (p *GeminiProvider) Name() llm.Provider {
	return llm.ProviderGemini
}

// TestConnection implements llm.Adapter
func (p *GeminiProvider) TestConnection(ctx context.Context, cfg llm.CallConfig) llm.CallResult {
	if result, ok := validateConfig(cfg, false); !ok {
		return result
	}
	return testConnection(ctx, p.client(true), apiRequest{
		URL: p.endpoint(cfg),
		Body: geminiRequest{
			Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: testPrompt}}}},
			GenerationConfig: geminiGenerationConfig{
				Temperature:     llm.DefaultTemperature,
				MaxOutputTokens: testMaxTokens,
			},
		},
	}, geminiError)
}

// GenerateContent implements llm.Adapter
func (p *GeminiProvider) GenerateContent(ctx context.Context, cfg llm.CallConfig, prompt string, opts llm.GenerationOptions) llm.CallResult {
	if result, ok := validateConfig(cfg, false); !ok {
		return result
	}

	body := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     opts.TemperatureOrDefault(),
			MaxOutputTokens: opts.MaxTokensOrDefault(),
		},
	}
	if opts.SystemPrompt != nil {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: *opts.SystemPrompt}}}
	}

	return generate(ctx, p.client(true), apiRequest{
		URL:  p.endpoint(cfg),
		Body: body,
	}, p.ParseResponse, geminiError)
}

// ParseResponse concatenates the text of every part of the first candidate
func (p *GeminiProvider) ParseResponse(body []byte) string {
	var sb strings.Builder
	for _, part := range gjson.GetBytes(body, "candidates.0.content.parts").Array() {
		sb.WriteString(part.Get("text").String())
	}
	return sb.String()
}

func (p *GeminiProvider) endpoint(cfg llm.CallConfig) string {
	// model ids are accepted with or without the "models/" resource prefix
	model := strings.TrimPrefix(cfg.ModelOr(llm.DefaultGeminiModel), "models/")
	query := url.Values{"key": []string{cfg.APIKey}}
	return fmt.Sprintf("%s/%s:generateContent?%s", strings.TrimRight(p.BaseURL, "/"), url.PathEscape(model), query.Encode())
}

// geminiError embeds the vendor's error message when the body carries one
func geminiError(resp *apiResponse) string {
	message := gjson.GetBytes(resp.Body, "error.message").String()
	if message == "" {
		return handleHTTPError(resp)
	}
	return fmt.Sprintf("%s - %s", handleHTTPError(resp), message)
}
