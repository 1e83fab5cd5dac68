package providers

import (
	"github.com/chynybekuuludastan/content_studio/internal/service/llm"
)

// Factory maps provider identifiers to adapters. Adapters hold no per-call
// state, so a single instance of each is shared by all calls.
type Factory struct {
	Perplexity *PerplexityProvider
	OpenAI     *OpenAIProvider
	Claude     *ClaudeProvider
	DeepSeek   *DeepSeekProvider
	Gemini     *GeminiProvider
	Custom     *CustomProvider
}

// NewFactory builds every adapter on top of the given transport
func NewFactory(client HTTPClientFunc) *Factory {
	if client == nil {
		client = DefaultHTTPClients(0)
	}
	return &Factory{
		Perplexity: NewPerplexityProvider(client),
		OpenAI:     NewOpenAIProvider(client),
		Claude:     NewClaudeProvider(client),
		DeepSeek:   NewDeepSeekProvider(client),
		Gemini:     NewGeminiProvider(client),
		Custom:     NewCustomProvider(client),
	}
}

// Resolve implements llm.Dispatcher
func (f *Factory) Resolve(p llm.Provider) (llm.Adapter, error) {
	switch p {
	case llm.ProviderPerplexity:
		return f.Perplexity, nil
	case llm.ProviderOpenAI:
		return f.OpenAI, nil
	case llm.ProviderClaude:
		return f.Claude, nil
	case llm.ProviderDeepSeek:
		return f.DeepSeek, nil
	case llm.ProviderGemini:
		return f.Gemini, nil
	case llm.ProviderCustom:
		return f.Custom, nil
	default:
		return nil, &llm.UnknownProviderError{Provider: string(p)}
	}
}
