package settings

import (
	"context"
	"fmt"

	"github.com/chynybekuuludastan/content_studio/internal/service/llm"
)

// Resolver derives a CallConfig from stored settings for call sites that do
// not carry an explicit configuration.
type Resolver struct {
	repo *Repository
}

// NewResolver creates a resolver over repo
func NewResolver(repo *Repository) *Resolver {
	return &Resolver{repo: repo}
}

// ResolveConfig builds the config for provider, or for the preferred provider
// when provider is empty. Missing API keys resolve to "" and are rejected later
// by the client. Missing models fall back to the provider default.
func (r *Resolver) ResolveConfig(ctx context.Context, provider llm.Provider) (llm.CallConfig, error) {
	if provider == "" {
		preferred, err := r.repo.PreferredProvider(ctx)
		if err != nil {
			return llm.CallConfig{}, err
		}
		provider = preferred
	}
	if !provider.Valid() {
		return llm.CallConfig{}, fmt.Errorf("%w: %q", ErrInvalidProvider, provider)
	}

	if provider == llm.ProviderCustom {
		custom, err := r.repo.CustomAPI(ctx)
		if err != nil {
			return llm.CallConfig{}, err
		}
		return llm.CallConfig{
			Provider:  provider,
			APIKey:    custom.APIKey,
			Model:     custom.Model,
			Endpoint:  custom.Endpoint,
			VerifyTLS: llm.Bool(custom.VerifyTLS),
		}, nil
	}

	credential, err := r.repo.ProviderCredential(ctx, provider)
	if err != nil {
		return llm.CallConfig{}, err
	}

	model := credential.Model
	if model == "" {
		model = llm.DefaultModel(provider)
	}

	return llm.CallConfig{
		Provider: provider,
		APIKey:   credential.APIKey,
		Model:    model,
	}, nil
}
