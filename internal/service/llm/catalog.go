package llm

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default models used when neither the call nor the stored settings name one.
// The custom provider has no default.
const (
	DefaultPerplexityModel = "llama-3.1-sonar-large-128k-online"
	DefaultOpenAIModel     = "gpt-4o"
	DefaultClaudeModel     = "claude-3-5-sonnet-20241022"
	DefaultDeepSeekModel   = "deepseek-chat"
	DefaultGeminiModel     = "gemini-1.5-pro"
)

// DefaultModel returns the built-in model for p, or "" for custom and unknown providers
func DefaultModel(p Provider) string {
	switch p {
	case ProviderPerplexity:
		return DefaultPerplexityModel
	case ProviderOpenAI:
		return DefaultOpenAIModel
	case ProviderClaude:
		return DefaultClaudeModel
	case ProviderDeepSeek:
		return DefaultDeepSeekModel
	case ProviderGemini:
		return DefaultGeminiModel
	}
	return ""
}

// ModelCatalogEntry describes a model offered in the UI pickers
type ModelCatalogEntry struct {
	Label    string   `json:"label" yaml:"label"`
	Value    string   `json:"value" yaml:"value"`
	Provider Provider `json:"provider" yaml:"provider"`
}

// ProviderOption is a provider with its display label
type ProviderOption struct {
	Value Provider `json:"value"`
	Label string   `json:"label"`
}

var providerLabels = map[Provider]string{
	ProviderPerplexity: "Perplexity",
	ProviderOpenAI:     "OpenAI",
	ProviderClaude:     "Anthropic Claude",
	ProviderDeepSeek:   "DeepSeek",
	ProviderGemini:     "Google Gemini",
	ProviderCustom:     "Custom API",
}

// ListProviders returns the six supported providers with their labels
func ListProviders() []ProviderOption {
	options := make([]ProviderOption, 0, len(Providers))
	for _, p := range Providers {
		options = append(options, ProviderOption{Value: p, Label: providerLabels[p]})
	}
	return options
}

var defaultModels = []ModelCatalogEntry{
	{Label: "Sonar Large (Online)", Value: "llama-3.1-sonar-large-128k-online", Provider: ProviderPerplexity},
	{Label: "Sonar Small (Online)", Value: "llama-3.1-sonar-small-128k-online", Provider: ProviderPerplexity},
	{Label: "Sonar Huge (Online)", Value: "llama-3.1-sonar-huge-128k-online", Provider: ProviderPerplexity},
	{Label: "GPT-4o", Value: "gpt-4o", Provider: ProviderOpenAI},
	{Label: "GPT-4o mini", Value: "gpt-4o-mini", Provider: ProviderOpenAI},
	{Label: "GPT-4 Turbo", Value: "gpt-4-turbo", Provider: ProviderOpenAI},
	{Label: "GPT-3.5 Turbo", Value: "gpt-3.5-turbo", Provider: ProviderOpenAI},
	{Label: "Claude 3.5 Sonnet", Value: "claude-3-5-sonnet-20241022", Provider: ProviderClaude},
	{Label: "Claude 3.5 Haiku", Value: "claude-3-5-haiku-20241022", Provider: ProviderClaude},
	{Label: "Claude 3 Opus", Value: "claude-3-opus-20240229", Provider: ProviderClaude},
	{Label: "DeepSeek Chat", Value: "deepseek-chat", Provider: ProviderDeepSeek},
	{Label: "DeepSeek Reasoner", Value: "deepseek-reasoner", Provider: ProviderDeepSeek},
	{Label: "Gemini 1.5 Pro", Value: "gemini-1.5-pro", Provider: ProviderGemini},
	{Label: "Gemini 1.5 Flash", Value: "gemini-1.5-flash", Provider: ProviderGemini},
	{Label: "Gemini 2.0 Flash", Value: "gemini-2.0-flash", Provider: ProviderGemini},
}

// Catalog is read-only reference data for model pickers
type Catalog struct {
	entries []ModelCatalogEntry
}

// DefaultCatalog returns the built-in catalog
func DefaultCatalog() *Catalog {
	entries := make([]ModelCatalogEntry, len(defaultModels))
	copy(entries, defaultModels)
	return &Catalog{entries: entries}
}

// Entries returns a copy of every entry
func (c *Catalog) Entries() []ModelCatalogEntry {
	out := make([]ModelCatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// ModelsFor returns the entries belonging to provider p
func (c *Catalog) ModelsFor(p Provider) []ModelCatalogEntry {
	models := []ModelCatalogEntry{}
	for _, entry := range c.entries {
		if entry.Provider == p {
			models = append(models, entry)
		}
	}
	return models
}

type catalogFile struct {
	Models []ModelCatalogEntry `yaml:"models"`
}

// LoadCatalogFile returns the default catalog extended with the models listed in
// a YAML file. Entries whose provider and value already exist replace the label.
func LoadCatalogFile(path string) (*Catalog, error) {
	catalog := DefaultCatalog()
	if path == "" {
		return catalog, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file %q: %w", path, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog file %q: %w", path, err)
	}

	for i, entry := range file.Models {
		if !entry.Provider.Valid() {
			return nil, fmt.Errorf("catalog entry %d: %w", i, &UnknownProviderError{Provider: string(entry.Provider)})
		}
		if entry.Value == "" {
			return nil, fmt.Errorf("catalog entry %d: model value is required", i)
		}
		if entry.Label == "" {
			entry.Label = entry.Value
		}
		catalog.upsert(entry)
	}

	return catalog, nil
}

func (c *Catalog) upsert(entry ModelCatalogEntry) {
	for i := range c.entries {
		if c.entries[i].Provider == entry.Provider && c.entries[i].Value == entry.Value {
			c.entries[i].Label = entry.Label
			return
		}
	}
	c.entries = append(c.entries, entry)
}
