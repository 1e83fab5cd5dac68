package llm

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListProviders(t *testing.T) {
	options := ListProviders()
	require.Len(t, options, 6)

	values := make([]Provider, 0, len(options))
	for _, o := range options {
		assert.NotEmpty(t, o.Label)
		values = append(values, o.Value)
	}
	assert.Equal(t, Providers, values)
}

func TestDefaultModel(t *testing.T) {
	assert.Equal(t, DefaultClaudeModel, DefaultModel(ProviderClaude))
	assert.Equal(t, DefaultGeminiModel, DefaultModel(ProviderGemini))
	assert.Empty(t, DefaultModel(ProviderCustom))
	assert.Empty(t, DefaultModel(Provider("nope")))
}

func TestCatalog_ModelsFor(t *testing.T) {
	catalog := DefaultCatalog()

	for _, p := range Providers {
		for _, entry := range catalog.ModelsFor(p) {
			assert.Equal(t, p, entry.Provider)
		}
	}

	claude := catalog.ModelsFor(ProviderClaude)
	require.NotEmpty(t, claude)
	assert.Contains(t, claude, ModelCatalogEntry{Label: "Claude 3.5 Sonnet", Value: DefaultClaudeModel, Provider: ProviderClaude})

	assert.Empty(t, catalog.ModelsFor(ProviderCustom))
	assert.NotNil(t, catalog.ModelsFor(ProviderCustom))
}

func TestCatalog_EntriesIsACopy(t *testing.T) {
	catalog := DefaultCatalog()
	entries := catalog.Entries()
	entries[0].Label = "changed"
	assert.NotEqual(t, "changed", catalog.Entries()[0].Label)
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	content := `models:
  - label: Llama 3 70B
    value: llama3-70b
    provider: custom
  - label: GPT-4o (2024-08)
    value: gpt-4o
    provider: openai
  - value: deepseek-coder
    provider: deepseek
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	catalog, err := LoadCatalogFile(path)
	require.NoError(t, err)

	assert.Equal(t, []ModelCatalogEntry{{Label: "Llama 3 70B", Value: "llama3-70b", Provider: ProviderCustom}}, catalog.ModelsFor(ProviderCustom))
	assert.Contains(t, catalog.ModelsFor(ProviderOpenAI), ModelCatalogEntry{Label: "GPT-4o (2024-08)", Value: "gpt-4o", Provider: ProviderOpenAI})
	assert.Contains(t, catalog.ModelsFor(ProviderDeepSeek), ModelCatalogEntry{Label: "deepseek-coder", Value: "deepseek-coder", Provider: ProviderDeepSeek})
	assert.Len(t, catalog.Entries(), len(DefaultCatalog().Entries())+2)
}

func TestLoadCatalogFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadCatalogFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("models:\n  - value: x\n    provider: mistral\n"), 0o600))
	_, err = LoadCatalogFile(bad)
	assert.True(t, errors.Is(err, ErrUnknownProvider))

	empty := filepath.Join(dir, "empty-value.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("models:\n  - label: x\n    provider: openai\n"), 0o600))
	_, err = LoadCatalogFile(empty)
	assert.Error(t, err)
}

func TestLoadCatalogFile_EmptyPath(t *testing.T) {
	catalog, err := LoadCatalogFile("")
	require.NoError(t, err)
	assert.Equal(t, DefaultCatalog().Entries(), catalog.Entries())
}

func TestParseProvider(t *testing.T) {
	p, err := ParseProvider(" Claude ")
	require.NoError(t, err)
	assert.Equal(t, ProviderClaude, p)

	_, err = ParseProvider("mistral")
	assert.True(t, errors.Is(err, ErrUnknownProvider))
}
