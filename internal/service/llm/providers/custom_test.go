package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chynybekuuludastan/content_studio/internal/service/llm"
)

func TestIsOpenAICompatible(t *testing.T) {
	tests := []struct {
		endpoint string
		want     bool
	}{
		{"https://api.openai.com/v1", true},
		{"https://my-proxy.example.com/OpenAI/v1", true},
		{"https://api.together.xyz/v1", true},
		{"https://API.TOGETHER.XYZ", true},
		{"http://localhost:8000/v1/completions", true},
		{"http://localhost:8000/v1/Completion", true},
		{"http://localhost:11434/api/generate", false},
		{"https://llm.internal/v1/infer", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOpenAICompatible(tt.endpoint))
		})
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		want     string
	}{
		{"https://api.openai.com/v1", "https://api.openai.com/v1/chat/completions"},
		{"https://api.openai.com/v1/", "https://api.openai.com/v1/chat/completions"},
		{"https://api.openai.com/v1/chat/completions", "https://api.openai.com/v1/chat/completions"},
		{"https://api.openai.com/v1/chat/completions/", "https://api.openai.com/v1/chat/completions"},
		{"https://api.together.xyz/v1", "https://api.together.xyz/v1/chat/completions"},
		{
			"https://res.openai.azure.com/openai/deployments/d/chat/completions?api-version=2024-02-01",
			"https://res.openai.azure.com/openai/deployments/d/chat/completions?api-version=2024-02-01",
		},
		{
			"https://res.openai.azure.com/openai/deployments/d?api-version=2024-02-01",
			"https://res.openai.azure.com/openai/deployments/d/chat/completions?api-version=2024-02-01",
		},
		{"https://api.openai.com/v1/?trace=1", "https://api.openai.com/v1/chat/completions?trace=1"},
		{"http://localhost:11434/api/generate", "http://localhost:11434/api/generate"},
		{"http://localhost:11434/api/generate/", "http://localhost:11434/api/generate/"},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeEndpoint(tt.endpoint))
		})
	}
}

func TestCustom_OpenAICompatibleRequest(t *testing.T) {
	server, captured := fakeVendor(t, http.StatusOK, `{"choices":[{"message":{"content":"compat"}}]}`)
	custom := NewCustomProvider(StaticClient(server.Client()))

	cfg := llm.CallConfig{Provider: llm.ProviderCustom, APIKey: "key", Model: "mixtral", Endpoint: server.URL + "/openai/v1"}
	result := custom.GenerateContent(context.Background(), cfg, "prompt", llm.GenerationOptions{SystemPrompt: llm.String("sys")})
	require.True(t, result.Success, result.Error)
	assert.Equal(t, "compat", result.Content)

	req := (*captured)[0]
	assert.Equal(t, "/openai/v1/chat/completions", req.Path)
	assert.Equal(t, "Bearer key", req.Headers.Get("Authorization"))
	assert.Equal(t, "mixtral", req.Body["model"])
	assert.Len(t, req.Body["messages"], 2)
	assert.NotContains(t, req.Body, "prompt")
}

func TestCustom_EndpointQueryIsKept(t *testing.T) {
	server, captured := fakeVendor(t, http.StatusOK, `{"choices":[{"message":{"content":"azure"}}]}`)
	custom := NewCustomProvider(StaticClient(server.Client()))

	cfg := llm.CallConfig{
		Provider: llm.ProviderCustom,
		APIKey:   "key",
		Endpoint: server.URL + "/openai/deployments/d/chat/completions?api-version=1",
	}
	result := custom.GenerateContent(context.Background(), cfg, "prompt", llm.GenerationOptions{})
	require.True(t, result.Success, result.Error)

	req := (*captured)[0]
	assert.Equal(t, "/openai/deployments/d/chat/completions", req.Path)
	assert.Equal(t, "api-version=1", req.Query)
}

func TestCustom_GenericRequest(t *testing.T) {
	server, captured := fakeVendor(t, http.StatusOK, `{"output":"generic"}`)
	custom := NewCustomProvider(StaticClient(server.Client()))

	cfg := llm.CallConfig{Provider: llm.ProviderCustom, APIKey: "key", Model: "llama3", Endpoint: server.URL + "/api/generate"}
	opts := llm.GenerationOptions{SystemPrompt: llm.String("sys"), Temperature: llm.Float(0.5), MaxTokens: llm.Int(50)}
	result := custom.GenerateContent(context.Background(), cfg, "prompt", opts)
	require.True(t, result.Success, result.Error)
	assert.Equal(t, "generic", result.Content)

	req := (*captured)[0]
	assert.Equal(t, "/api/generate", req.Path)
	assert.Equal(t, map[string]interface{}{
		"prompt":      "sys\n\nprompt",
		"temperature": 0.5,
		"max_tokens":  float64(50),
		"model":       "llama3",
	}, req.Body)
}

func TestCustom_ParseGenericCascade(t *testing.T) {
	p := NewCustomProvider(nil)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"choices text", `{"choices":[{"text":"a"}],"response":"b"}`, "a"},
		{"choices message", `{"choices":[{"message":{"content":"a"}}],"response":"b"}`, "a"},
		{"response", `{"response":"r","output":"o"}`, "r"},
		{"output", `{"output":"o","result":"x"}`, "o"},
		{"result", `{"result":"x","content":"c"}`, "x"},
		{"content", `{"content":"c","text":"t"}`, "c"},
		{"text", `{"text":"t"}`, "t"},
		{"null field skipped", `{"response":null,"text":"t"}`, "t"},
		{"raw json fallback", `{"data":{"value":1}}`, `{"data":{"value":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.parseGeneric([]byte(tt.body)))
		})
	}
}

func TestCustom_ParseOpenAICompatible(t *testing.T) {
	p := NewCustomProvider(nil)
	assert.Equal(t, "m", p.ParseResponse([]byte(`{"choices":[{"message":{"content":"m"},"text":"t"}]}`)))
	assert.Equal(t, "t", p.ParseResponse([]byte(`{"choices":[{"text":"t"}]}`)))
	assert.Equal(t, "r", p.ParseResponse([]byte(`{"response":"r"}`)))
}

func TestCustom_TLSVerificationSelectsTransport(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text":"secure"}`))
	}))
	defer server.Close()

	var requested []bool
	clients := func(verifyTLS bool) Doer {
		requested = append(requested, verifyTLS)
		return server.Client()
	}
	custom := NewCustomProvider(clients)

	cfg := llm.CallConfig{Provider: llm.ProviderCustom, APIKey: "key", Endpoint: server.URL + "/gen"}
	result := custom.GenerateContent(context.Background(), cfg, "prompt", llm.GenerationOptions{})
	require.True(t, result.Success, result.Error)

	cfg.VerifyTLS = llm.Bool(false)
	custom.TestConnection(context.Background(), cfg)

	assert.Equal(t, []bool{true, false}, requested)
}

func TestDefaultHTTPClients_SkipVerifyOnlyWhenAsked(t *testing.T) {
	clients := DefaultHTTPClients(0)

	secure, ok := clients(true).(*http.Client)
	require.True(t, ok)
	insecure, ok := clients(false).(*http.Client)
	require.True(t, ok)

	assert.False(t, secure.Transport.(*http.Transport).TLSClientConfig.InsecureSkipVerify)
	assert.True(t, insecure.Transport.(*http.Transport).TLSClientConfig.InsecureSkipVerify)
	assert.Equal(t, defaultHTTPTimeout, secure.Timeout)
}

func TestCustom_SelfSignedEndpoint(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text":"ok"}`))
	}))
	defer server.Close()

	custom := NewCustomProvider(DefaultHTTPClients(0))
	cfg := llm.CallConfig{Provider: llm.ProviderCustom, APIKey: "key", Endpoint: server.URL + "/gen"}

	result := custom.GenerateContent(context.Background(), cfg, "prompt", llm.GenerationOptions{})
	assert.False(t, result.Success)

	cfg.VerifyTLS = llm.Bool(false)
	result = custom.GenerateContent(context.Background(), cfg, "prompt", llm.GenerationOptions{})
	require.True(t, result.Success, result.Error)
	assert.Equal(t, "ok", result.Content)
}
