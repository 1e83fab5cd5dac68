package llm

import (
	"encoding/json"
	"strings"
)

// Provider identifies an LLM vendor the application can talk to
type Provider string

const (
	ProviderPerplexity Provider = "perplexity"
	ProviderOpenAI     Provider = "openai"
	ProviderClaude     Provider = "claude"
	ProviderDeepSeek   Provider = "deepseek"
	ProviderGemini     Provider = "gemini"
	ProviderCustom     Provider = "custom"
)

// Providers lists every supported provider in display order
var Providers = []Provider{
	ProviderPerplexity,
	ProviderOpenAI,
	ProviderClaude,
	ProviderDeepSeek,
	ProviderGemini,
	ProviderCustom,
}

// Valid reports whether p is one of the supported providers
func (p Provider) Valid() bool {
	switch p {
	case ProviderPerplexity, ProviderOpenAI, ProviderClaude, ProviderDeepSeek, ProviderGemini, ProviderCustom:
		return true
	}
	return false
}

func (p Provider) String() string {
	return string(p)
}

// ParseProvider converts a user supplied name into a Provider
func ParseProvider(name string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(name)))
	if !p.Valid() {
		return "", &UnknownProviderError{Provider: name}
	}
	return p, nil
}

// CallConfig carries the credentials and routing for a single call
type CallConfig struct {
	Provider  Provider `json:"provider"`
	APIKey    string   `json:"api_key"`
	Model     string   `json:"model,omitempty"`
	Endpoint  string   `json:"endpoint,omitempty"`
	VerifyTLS *bool    `json:"verify_tls,omitempty"`
}

// ShouldVerifyTLS returns the TLS verification flag, true when unset
func (c CallConfig) ShouldVerifyTLS() bool {
	if c.VerifyTLS == nil {
		return true
	}
	return *c.VerifyTLS
}

// ModelOr returns the configured model or fallback when none is set
func (c CallConfig) ModelOr(fallback string) string {
	if c.Model == "" {
		return fallback
	}
	return c.Model
}

// Role is the author of a message in a conversation
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single role tagged chat message
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is the ordered list of messages sent to a vendor
type Conversation []Message

const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 4000
)

// GenerationOptions tunes a single generation call
type GenerationOptions struct {
	SystemPrompt *string  `json:"system_prompt,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
	MaxTokens    *int     `json:"max_tokens,omitempty"`
}

// TemperatureOrDefault returns the requested temperature or DefaultTemperature
func (o GenerationOptions) TemperatureOrDefault() float64 {
	if o.Temperature == nil {
		return DefaultTemperature
	}
	return *o.Temperature
}

// MaxTokensOrDefault returns the requested token budget or DefaultMaxTokens
func (o GenerationOptions) MaxTokensOrDefault() int {
	if o.MaxTokens == nil || *o.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return *o.MaxTokens
}

// CallResult is the normalized outcome of every provider operation.
// Failures are values: Success is false and Error holds a readable message.
type CallResult struct {
	Success bool            `json:"success"`
	Content string          `json:"content,omitempty"`
	Raw     json.RawMessage `json:"raw,omitempty" swaggertype:"object"`
	Error   string          `json:"error,omitempty"`
}

// Succeeded builds a successful result
func Succeeded(content string, raw json.RawMessage) CallResult {
	return CallResult{Success: true, Content: content, Raw: raw}
}

// Failed builds a failed result
func Failed(message string) CallResult {
	return CallResult{Success: false, Error: message}
}

// String returns a pointer to s, handy for optional fields
func String(s string) *string { return &s }

// Float returns a pointer to f
func Float(f float64) *float64 { return &f }

// Int returns a pointer to i
func Int(i int) *int { return &i }

// Bool returns a pointer to b
func Bool(b bool) *bool { return &b }
