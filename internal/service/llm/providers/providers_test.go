package providers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chynybekuuludastan/content_studio/internal/service/llm"
)

// capturedRequest is what a fake vendor saw
type capturedRequest struct {
	Path    string
	Query   string
	Headers http.Header
	Body    map[string]interface{}
}

// fakeVendor starts a server answering every request with status and body
func fakeVendor(t *testing.T, status int, body string) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var captured []capturedRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &decoded))

		captured = append(captured, capturedRequest{
			Path:    r.URL.Path,
			Query:   r.URL.RawQuery,
			Headers: r.Header.Clone(),
			Body:    decoded,
		})

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server, &captured
}

// factoryFor points every built-in adapter at server
func factoryFor(server *httptest.Server) *Factory {
	f := NewFactory(StaticClient(server.Client()))
	f.Perplexity.URL = server.URL + "/chat/completions"
	f.OpenAI.URL = server.URL + "/v1/chat/completions"
	f.Claude.URL = server.URL + "/v1/messages"
	f.DeepSeek.URL = server.URL + "/v1/chat/completions"
	f.Gemini.BaseURL = server.URL + "/v1beta/models"
	return f
}

func TestAdapters_GenerateContent_ExtractsText(t *testing.T) {
	tests := []struct {
		provider llm.Provider
		endpoint string
		body     string
		want     string
	}{
		{provider: llm.ProviderPerplexity, body: `{"choices":[{"message":{"content":"perplexity says"}}]}`, want: "perplexity says"},
		{provider: llm.ProviderOpenAI, body: `{"choices":[{"message":{"role":"assistant","content":"openai says"}}]}`, want: "openai says"},
		{provider: llm.ProviderClaude, body: `{"content":[{"text":"hello"}]}`, want: "hello"},
		{provider: llm.ProviderDeepSeek, body: `{"choices":[{"message":{"content":"deepseek says"}}]}`, want: "deepseek says"},
		{provider: llm.ProviderGemini, body: `{"candidates":[{"content":{"parts":[{"text":"a"},{"text":"b"}]}}]}`, want: "ab"},
		{provider: llm.ProviderCustom, endpoint: "/api/generate", body: `{"response":"custom says"}`, want: "custom says"},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			server, _ := fakeVendor(t, http.StatusOK, tt.body)
			adapter, err := factoryFor(server).Resolve(tt.provider)
			require.NoError(t, err)
			assert.Equal(t, tt.provider, adapter.Name())

			cfg := llm.CallConfig{Provider: tt.provider, APIKey: "key"}
			if tt.endpoint != "" {
				cfg.Endpoint = server.URL + tt.endpoint
			}

			result := adapter.GenerateContent(context.Background(), cfg, "Write a title", llm.GenerationOptions{})
			require.True(t, result.Success, result.Error)
			assert.Equal(t, tt.want, result.Content)
		})
	}
}

func TestAdapters_StatusFailure(t *testing.T) {
	for _, p := range llm.Providers {
		t.Run(string(p), func(t *testing.T) {
			server, _ := fakeVendor(t, http.StatusInternalServerError, `{}`)
			adapter, err := factoryFor(server).Resolve(p)
			require.NoError(t, err)

			cfg := llm.CallConfig{Provider: p, APIKey: "key", Endpoint: server.URL + "/generate"}

			result := adapter.GenerateContent(context.Background(), cfg, "prompt", llm.GenerationOptions{})
			assert.False(t, result.Success)
			assert.Contains(t, result.Error, "500")
			assert.Contains(t, result.Error, "Internal Server Error")

			result = adapter.TestConnection(context.Background(), cfg)
			assert.False(t, result.Success)
			assert.Contains(t, result.Error, "500")
			assert.Contains(t, result.Error, "Internal Server Error")
		})
	}
}

func TestAdapters_UnrecognizedBodyIsEmptySuccess(t *testing.T) {
	builtIn := []llm.Provider{llm.ProviderPerplexity, llm.ProviderOpenAI, llm.ProviderClaude, llm.ProviderDeepSeek, llm.ProviderGemini}

	for _, p := range builtIn {
		t.Run(string(p), func(t *testing.T) {
			server, _ := fakeVendor(t, http.StatusOK, `{"unexpected":{"shape":true}}`)
			adapter, err := factoryFor(server).Resolve(p)
			require.NoError(t, err)

			result := adapter.GenerateContent(context.Background(), llm.CallConfig{Provider: p, APIKey: "key"}, "prompt", llm.GenerationOptions{})
			assert.True(t, result.Success)
			assert.Equal(t, "", result.Content)
		})
	}
}

func TestAdapters_TestConnection(t *testing.T) {
	for _, p := range llm.Providers {
		t.Run(string(p), func(t *testing.T) {
			server, captured := fakeVendor(t, http.StatusOK, `{"id":"x"}`)
			adapter, err := factoryFor(server).Resolve(p)
			require.NoError(t, err)

			result := adapter.TestConnection(context.Background(), llm.CallConfig{Provider: p, APIKey: "key", Endpoint: server.URL + "/v1"})
			require.True(t, result.Success, result.Error)
			assert.Empty(t, result.Content)

			require.Len(t, *captured, 1)
			body := (*captured)[0].Body
			switch p {
			case llm.ProviderGemini:
				assert.EqualValues(t, testMaxTokens, body["generationConfig"].(map[string]interface{})["maxOutputTokens"])
			default:
				assert.EqualValues(t, testMaxTokens, body["max_tokens"])
			}
		})
	}
}

func TestAdapters_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	f := factoryFor(server)
	server.Close()

	result := f.OpenAI.GenerateContent(context.Background(), llm.CallConfig{Provider: llm.ProviderOpenAI, APIKey: "key"}, "prompt", llm.GenerationOptions{})
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestAdapters_InvalidJSONIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	result := factoryFor(server).DeepSeek.GenerateContent(context.Background(), llm.CallConfig{Provider: llm.ProviderDeepSeek, APIKey: "key"}, "prompt", llm.GenerationOptions{})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "invalid JSON")
}

func TestAdapters_ValidateConfig(t *testing.T) {
	f := NewFactory(StaticClient(http.DefaultClient))

	for _, p := range llm.Providers {
		adapter, err := f.Resolve(p)
		require.NoError(t, err)

		result := adapter.GenerateContent(context.Background(), llm.CallConfig{Provider: p}, "prompt", llm.GenerationOptions{})
		assert.Equal(t, llm.Failed(llm.MsgAPIKeyRequired), result)
	}

	result := f.Custom.TestConnection(context.Background(), llm.CallConfig{Provider: llm.ProviderCustom, APIKey: "key"})
	assert.Equal(t, llm.Failed(llm.MsgEndpointRequired), result)
}

func TestOpenAIStyle_RequestShape(t *testing.T) {
	server, captured := fakeVendor(t, http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`)
	f := factoryFor(server)

	opts := llm.GenerationOptions{
		SystemPrompt: llm.String("You are an SEO expert"),
		Temperature:  llm.Float(0.2),
		MaxTokens:    llm.Int(512),
	}
	result := f.OpenAI.GenerateContent(context.Background(), llm.CallConfig{Provider: llm.ProviderOpenAI, APIKey: "sk-test", Model: "gpt-4o-mini"}, "Write a title", opts)
	require.True(t, result.Success)

	require.Len(t, *captured, 1)
	req := (*captured)[0]
	assert.Equal(t, "/v1/chat/completions", req.Path)
	assert.Equal(t, "Bearer sk-test", req.Headers.Get("Authorization"))
	assert.Equal(t, "gpt-4o-mini", req.Body["model"])
	assert.EqualValues(t, 0.2, req.Body["temperature"])
	assert.EqualValues(t, 512, req.Body["max_tokens"])
	assert.Equal(t, []interface{}{
		map[string]interface{}{"role": "system", "content": "You are an SEO expert"},
		map[string]interface{}{"role": "user", "content": "Write a title"},
	}, req.Body["messages"])
}

func TestOpenAIStyle_Defaults(t *testing.T) {
	server, captured := fakeVendor(t, http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`)
	f := factoryFor(server)

	result := f.DeepSeek.GenerateContent(context.Background(), llm.CallConfig{Provider: llm.ProviderDeepSeek, APIKey: "key"}, "prompt", llm.GenerationOptions{})
	require.True(t, result.Success)

	body := (*captured)[0].Body
	assert.Equal(t, llm.DefaultDeepSeekModel, body["model"])
	assert.EqualValues(t, llm.DefaultTemperature, body["temperature"])
	assert.EqualValues(t, llm.DefaultMaxTokens, body["max_tokens"])
}

func TestPerplexity_ParseResponse(t *testing.T) {
	p := NewPerplexityProvider(nil)
	assert.Equal(t, "msg", p.ParseResponse([]byte(`{"choices":[{"message":{"content":"msg"}}]}`)))
	assert.Equal(t, "txt", p.ParseResponse([]byte(`{"choices":[{"text":"txt"}]}`)))
	assert.Equal(t, "", p.ParseResponse([]byte(`{"choices":[]}`)))
	assert.Equal(t, "", p.ParseResponse([]byte(`not json`)))
}

func TestOpenAI_ParseResponseIgnoresText(t *testing.T) {
	p := NewOpenAIProvider(nil)
	assert.Equal(t, "", p.ParseResponse([]byte(`{"choices":[{"text":"txt"}]}`)))
}

func TestClaude_RequestShape(t *testing.T) {
	server, captured := fakeVendor(t, http.StatusOK, `{"content":[{"text":"hello"}]}`)
	f := factoryFor(server)

	opts := llm.GenerationOptions{SystemPrompt: llm.String("system"), Temperature: llm.Float(0.1), MaxTokens: llm.Int(100)}
	result := f.Claude.GenerateContent(context.Background(), llm.CallConfig{Provider: llm.ProviderClaude, APIKey: "anthropic-key"}, "prompt", opts)
	require.True(t, result.Success)

	req := (*captured)[0]
	assert.Equal(t, "/v1/messages", req.Path)
	assert.Equal(t, "anthropic-key", req.Headers.Get("x-api-key"))
	assert.Equal(t, anthropicVersion, req.Headers.Get("anthropic-version"))
	assert.Empty(t, req.Headers.Get("Authorization"))
	assert.Equal(t, llm.DefaultClaudeModel, req.Body["model"])
	assert.EqualValues(t, 100, req.Body["max_tokens"])
	assert.NotContains(t, req.Body, "temperature")
	assert.NotContains(t, req.Body, "system")
	assert.Len(t, req.Body["messages"], 2)
}

func TestGemini_RequestShape(t *testing.T) {
	server, captured := fakeVendor(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`)
	f := factoryFor(server)

	opts := llm.GenerationOptions{SystemPrompt: llm.String("be brief"), Temperature: llm.Float(0.3), MaxTokens: llm.Int(256)}
	result := f.Gemini.GenerateContent(context.Background(), llm.CallConfig{Provider: llm.ProviderGemini, APIKey: "g-key", Model: "gemini-1.5-flash"}, "prompt", opts)
	require.True(t, result.Success)

	req := (*captured)[0]
	assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", req.Path)
	assert.Equal(t, "key=g-key", req.Query)
	assert.Empty(t, req.Headers.Get("Authorization"))

	assert.Equal(t, []interface{}{
		map[string]interface{}{"role": "user", "parts": []interface{}{map[string]interface{}{"text": "prompt"}}},
	}, req.Body["contents"])
	assert.Equal(t, map[string]interface{}{"parts": []interface{}{map[string]interface{}{"text": "be brief"}}}, req.Body["systemInstruction"])
	assert.Equal(t, map[string]interface{}{"temperature": 0.3, "maxOutputTokens": float64(256)}, req.Body["generationConfig"])
}

func TestGemini_ResourceStyleModelID(t *testing.T) {
	server, captured := fakeVendor(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`)
	f := factoryFor(server)

	cfg := llm.CallConfig{Provider: llm.ProviderGemini, APIKey: "g-key", Model: "models/gemini-1.5-pro"}
	result := f.Gemini.GenerateContent(context.Background(), cfg, "prompt", llm.GenerationOptions{})
	require.True(t, result.Success, result.Error)

	assert.Equal(t, "/v1beta/models/gemini-1.5-pro:generateContent", (*captured)[0].Path)
}

func TestGemini_NoSystemInstruction(t *testing.T) {
	server, captured := fakeVendor(t, http.StatusOK, `{}`)
	f := factoryFor(server)

	f.Gemini.GenerateContent(context.Background(), llm.CallConfig{Provider: llm.ProviderGemini, APIKey: "k"}, "prompt", llm.GenerationOptions{})
	assert.NotContains(t, (*captured)[0].Body, "systemInstruction")
	assert.Equal(t, "/v1beta/models/"+llm.DefaultGeminiModel+":generateContent", (*captured)[0].Path)
}

func TestGemini_ErrorBodyIsEmbedded(t *testing.T) {
	server, _ := fakeVendor(t, http.StatusBadRequest, `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`)
	f := factoryFor(server)

	result := f.Gemini.GenerateContent(context.Background(), llm.CallConfig{Provider: llm.ProviderGemini, APIKey: "bad"}, "prompt", llm.GenerationOptions{})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "400")
	assert.Contains(t, result.Error, "Bad Request")
	assert.Contains(t, result.Error, "API key not valid")
}

func TestGemini_ParseResponse(t *testing.T) {
	p := NewGeminiProvider(nil)
	assert.Equal(t, "", p.ParseResponse([]byte(`{"candidates":[]}`)))
	assert.Equal(t, "first", p.ParseResponse([]byte(`{"candidates":[{"content":{"parts":[{"text":"first"}]}},{"content":{"parts":[{"text":"second"}]}}]}`)))
}

func TestFactory_UnknownProvider(t *testing.T) {
	_, err := NewFactory(nil).Resolve(llm.Provider("mistral"))
	require.Error(t, err)

	var unknown *llm.UnknownProviderError
	assert.ErrorAs(t, err, &unknown)
	assert.ErrorIs(t, err, llm.ErrUnknownProvider)
	assert.Equal(t, "mistral", unknown.Provider)
}

func TestFactory_ResolvesEveryProvider(t *testing.T) {
	f := NewFactory(nil)
	for _, p := range llm.Providers {
		adapter, err := f.Resolve(p)
		require.NoError(t, err)
		assert.Equal(t, p, adapter.Name())
	}
}
