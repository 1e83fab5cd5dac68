package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/chynybekuuludastan/content_studio/internal/service/llm"
)

// Setting keys
const (
	KeyPreferredProvider = "preferred_provider"
	// KeyLegacyAPIKey is the single global key slot older clients read
	KeyLegacyAPIKey = "api_key"

	KeyCustomEndpoint = "custom_api_endpoint"
	KeyCustomAPIKey   = "custom_api_key"
	KeyCustomModel    = "custom_api_model"
	KeyCustomVerify   = "custom_api_verify"
)

// DefaultPreferredProvider applies when no preference was ever stored
const DefaultPreferredProvider = llm.ProviderPerplexity

// ErrInvalidProvider is returned when a stored or requested provider is not supported
var ErrInvalidProvider = errors.New("invalid provider")

// APIKeyKey returns the key holding the API key of p
func APIKeyKey(p llm.Provider) string {
	if p == llm.ProviderCustom {
		return KeyCustomAPIKey
	}
	return string(p) + "_api_key"
}

// ModelKey returns the key holding the model of p
func ModelKey(p llm.Provider) string {
	if p == llm.ProviderCustom {
		return KeyCustomModel
	}
	return string(p) + "_model"
}

// Credential is the stored API key and model of a provider. Empty fields were never set.
type Credential struct {
	APIKey string `json:"api_key"`
	Model  string `json:"model"`
}

// CustomAPI is the stored configuration of the custom provider
type CustomAPI struct {
	Endpoint  string `json:"endpoint"`
	APIKey    string `json:"api_key"`
	Model     string `json:"model"`
	VerifyTLS bool   `json:"verify_tls"`
}

// Repository exposes typed accessors over a Store
type Repository struct {
	store    Store
	fallback llm.Provider
}

// NewRepository creates a settings repository backed by store
func NewRepository(store Store) *Repository {
	return &Repository{store: store, fallback: DefaultPreferredProvider}
}

// WithDefaultProvider makes p the preference reported when none is stored.
// Invalid providers are ignored.
func (r *Repository) WithDefaultProvider(p llm.Provider) *Repository {
	if p.Valid() {
		r.fallback = p
	}
	return r
}

func (r *Repository) get(ctx context.Context, key string) (string, error) {
	value, _, err := r.store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("read setting %q: %w", key, err)
	}
	return value, nil
}

func (r *Repository) set(ctx context.Context, key, value string) error {
	if err := r.store.Set(ctx, key, value); err != nil {
		return fmt.Errorf("write setting %q: %w", key, err)
	}
	return nil
}

// PreferredProvider returns the stored preference, or the default provider when
// unset. An unsupported stored value is reported as ErrInvalidProvider.
func (r *Repository) PreferredProvider(ctx context.Context) (llm.Provider, error) {
	value, err := r.get(ctx, KeyPreferredProvider)
	if err != nil {
		return "", err
	}
	if value == "" {
		return r.fallback, nil
	}
	p := llm.Provider(value)
	if !p.Valid() {
		return "", fmt.Errorf("%w: stored preference %q", ErrInvalidProvider, value)
	}
	return p, nil
}

// SetPreferredProvider stores the preferred provider
func (r *Repository) SetPreferredProvider(ctx context.Context, p llm.Provider) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidProvider, p)
	}
	return r.set(ctx, KeyPreferredProvider, string(p))
}

// ProviderCredential returns the stored API key and model of p
func (r *Repository) ProviderCredential(ctx context.Context, p llm.Provider) (Credential, error) {
	if !p.Valid() {
		return Credential{}, fmt.Errorf("%w: %q", ErrInvalidProvider, p)
	}
	apiKey, err := r.get(ctx, APIKeyKey(p))
	if err != nil {
		return Credential{}, err
	}
	model, err := r.get(ctx, ModelKey(p))
	if err != nil {
		return Credential{}, err
	}
	return Credential{APIKey: apiKey, Model: model}, nil
}

// SetAPIKey stores the API key of p. When p is the preferred provider the key
// is also written to KeyLegacyAPIKey so older persisted state keeps working.
func (r *Repository) SetAPIKey(ctx context.Context, p llm.Provider, apiKey string) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidProvider, p)
	}
	if err := r.set(ctx, APIKeyKey(p), apiKey); err != nil {
		return err
	}

	preferred, err := r.PreferredProvider(ctx)
	if err != nil && !errors.Is(err, ErrInvalidProvider) {
		return err
	}
	if preferred == p {
		return r.set(ctx, KeyLegacyAPIKey, apiKey)
	}
	return nil
}

// SetModel stores the model of p
func (r *Repository) SetModel(ctx context.Context, p llm.Provider, model string) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidProvider, p)
	}
	return r.set(ctx, ModelKey(p), model)
}

// LegacyAPIKey returns the global key slot
func (r *Repository) LegacyAPIKey(ctx context.Context) (string, error) {
	return r.get(ctx, KeyLegacyAPIKey)
}

// CustomAPI returns the custom provider settings. VerifyTLS defaults to true.
func (r *Repository) CustomAPI(ctx context.Context) (CustomAPI, error) {
	var custom CustomAPI
	var err error

	if custom.Endpoint, err = r.get(ctx, KeyCustomEndpoint); err != nil {
		return CustomAPI{}, err
	}
	if custom.APIKey, err = r.get(ctx, KeyCustomAPIKey); err != nil {
		return CustomAPI{}, err
	}
	if custom.Model, err = r.get(ctx, KeyCustomModel); err != nil {
		return CustomAPI{}, err
	}

	verify, err := r.get(ctx, KeyCustomVerify)
	if err != nil {
		return CustomAPI{}, err
	}
	custom.VerifyTLS = true
	if parsed, parseErr := strconv.ParseBool(verify); parseErr == nil {
		custom.VerifyTLS = parsed
	}

	return custom, nil
}

// SetCustomAPI stores every custom provider setting
func (r *Repository) SetCustomAPI(ctx context.Context, custom CustomAPI) error {
	if err := r.set(ctx, KeyCustomEndpoint, custom.Endpoint); err != nil {
		return err
	}
	if err := r.SetAPIKey(ctx, llm.ProviderCustom, custom.APIKey); err != nil {
		return err
	}
	if err := r.set(ctx, KeyCustomModel, custom.Model); err != nil {
		return err
	}
	return r.set(ctx, KeyCustomVerify, strconv.FormatBool(custom.VerifyTLS))
}
