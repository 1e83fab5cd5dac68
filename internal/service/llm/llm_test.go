package llm_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chynybekuuludastan/content_studio/internal/service/llm"
	"github.com/chynybekuuludastan/content_studio/internal/service/llm/providers"
)

// spyTransport records every request and answers with a fixed response
type spyTransport struct {
	calls  atomic.Int32
	status int
	body   string
}

func (s *spyTransport) Do(req *http.Request) (*http.Response, error) {
	s.calls.Add(1)
	return &http.Response{
		StatusCode: s.status,
		Status:     http.StatusText(s.status),
		Body:       io.NopCloser(strings.NewReader(s.body)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func newClient(t *testing.T, spy *spyTransport) *llm.Client {
	t.Helper()
	return llm.NewClient(llm.ClientOptions{
		Dispatcher: providers.NewFactory(providers.StaticClient(spy)),
	})
}

func TestClient_RequiresAPIKey(t *testing.T) {
	ctx := context.Background()

	for _, p := range llm.Providers {
		t.Run(string(p), func(t *testing.T) {
			spy := &spyTransport{status: http.StatusOK, body: `{}`}
			client := newClient(t, spy)
			cfg := llm.CallConfig{Provider: p, Endpoint: "https://example.com/v1"}

			result := client.TestConnection(ctx, cfg)
			assert.False(t, result.Success)
			assert.Equal(t, "API key is required", result.Error)

			result = client.GenerateContent(ctx, cfg, "prompt", llm.GenerationOptions{})
			assert.False(t, result.Success)
			assert.Equal(t, "API key is required", result.Error)

			assert.Zero(t, spy.calls.Load())
		})
	}
}

func TestClient_CustomRequiresEndpoint(t *testing.T) {
	spy := &spyTransport{status: http.StatusOK, body: `{}`}
	client := newClient(t, spy)
	cfg := llm.CallConfig{Provider: llm.ProviderCustom, APIKey: "key"}

	result := client.TestConnection(context.Background(), cfg)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "endpoint")

	result = client.GenerateContent(context.Background(), cfg, "prompt", llm.GenerationOptions{})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "endpoint")

	assert.Zero(t, spy.calls.Load())
}

func TestClient_UnknownProvider(t *testing.T) {
	spy := &spyTransport{status: http.StatusOK, body: `{}`}
	client := newClient(t, spy)
	cfg := llm.CallConfig{Provider: llm.Provider("mistral"), APIKey: "key"}

	var result llm.CallResult
	require.NotPanics(t, func() {
		result = client.GenerateContent(context.Background(), cfg, "prompt", llm.GenerationOptions{})
	})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "unknown provider")

	result = client.TestConnection(context.Background(), cfg)
	assert.False(t, result.Success)
	assert.Zero(t, spy.calls.Load())
}

func TestClient_DelegatesToAdapter(t *testing.T) {
	spy := &spyTransport{status: http.StatusOK, body: `{"content":[{"type":"text","text":"hello"}]}`}
	client := newClient(t, spy)

	result := client.GenerateContent(context.Background(), llm.CallConfig{Provider: llm.ProviderClaude, APIKey: "key"}, "hi", llm.GenerationOptions{})
	require.True(t, result.Success, result.Error)
	assert.Equal(t, "hello", result.Content)
	assert.JSONEq(t, spy.body, string(result.Raw))
	assert.EqualValues(t, 1, spy.calls.Load())
}

type panickingAdapter struct {
	value interface{}
}

func (a panickingAdapter) Name() llm.Provider { return llm.ProviderOpenAI }

func (a panickingAdapter) TestConnection(context.Context, llm.CallConfig) llm.CallResult {
	panic(a.value)
}

func (a panickingAdapter) GenerateContent(context.Context, llm.CallConfig, string, llm.GenerationOptions) llm.CallResult {
	panic(a.value)
}

func (a panickingAdapter) ParseResponse([]byte) string { return "" }

type dispatcherFunc func(llm.Provider) (llm.Adapter, error)

func (f dispatcherFunc) Resolve(p llm.Provider) (llm.Adapter, error) { return f(p) }

func TestClient_RecoversAdapterPanics(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{name: "error value", value: errors.New("boom"), want: "boom"},
		{name: "string value", value: "kaboom", want: "kaboom"},
		{name: "empty message", value: "", want: llm.MsgUnknownError},
		{name: "other value", value: 42, want: "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := llm.NewClient(llm.ClientOptions{
				Dispatcher: dispatcherFunc(func(llm.Provider) (llm.Adapter, error) {
					return panickingAdapter{value: tt.value}, nil
				}),
			})
			cfg := llm.CallConfig{Provider: llm.ProviderOpenAI, APIKey: "key"}

			result := client.GenerateContent(context.Background(), cfg, "prompt", llm.GenerationOptions{})
			assert.Equal(t, llm.Failed(tt.want), result)

			result = client.TestConnection(context.Background(), cfg)
			assert.Equal(t, llm.Failed(tt.want), result)
		})
	}
}

func TestClient_DispatcherErrorWithoutMessage(t *testing.T) {
	client := llm.NewClient(llm.ClientOptions{
		Dispatcher: dispatcherFunc(func(llm.Provider) (llm.Adapter, error) {
			return nil, errors.New("")
		}),
	})

	result := client.TestConnection(context.Background(), llm.CallConfig{Provider: llm.ProviderOpenAI, APIKey: "key"})
	assert.Equal(t, llm.Failed(llm.MsgUnknownError), result)
}

type deadlineAdapter struct {
	panickingAdapter
	deadline chan time.Duration
}

func (a deadlineAdapter) TestConnection(ctx context.Context, _ llm.CallConfig) llm.CallResult {
	deadline, ok := ctx.Deadline()
	if !ok {
		return llm.Failed("no deadline")
	}
	a.deadline <- time.Until(deadline)
	return llm.Succeeded("", nil)
}

func TestClient_AppliesRequestTimeout(t *testing.T) {
	adapter := deadlineAdapter{deadline: make(chan time.Duration, 1)}
	client := llm.NewClient(llm.ClientOptions{
		RequestTimeout: 2 * time.Second,
		Dispatcher: dispatcherFunc(func(llm.Provider) (llm.Adapter, error) {
			return adapter, nil
		}),
	})

	result := client.TestConnection(context.Background(), llm.CallConfig{Provider: llm.ProviderOpenAI, APIKey: "key"})
	require.True(t, result.Success, result.Error)

	remaining := <-adapter.deadline
	assert.LessOrEqual(t, remaining, 2*time.Second)
	assert.Greater(t, remaining, time.Duration(0))
}

type recordingObserver struct {
	calls []string
}

func (o *recordingObserver) ObserveCall(p llm.Provider, operation string, success bool, _ time.Duration) {
	status := "failure"
	if success {
		status = "success"
	}
	o.calls = append(o.calls, string(p)+":"+operation+":"+status)
}

func TestClient_ReportsToObserver(t *testing.T) {
	observer := &recordingObserver{}
	spy := &spyTransport{status: http.StatusInternalServerError, body: `{}`}
	client := llm.NewClient(llm.ClientOptions{
		Dispatcher: providers.NewFactory(providers.StaticClient(spy)),
		Observer:   observer,
	})

	client.TestConnection(context.Background(), llm.CallConfig{Provider: llm.ProviderOpenAI, APIKey: "key"})
	client.GenerateContent(context.Background(), llm.CallConfig{Provider: llm.ProviderOpenAI}, "prompt", llm.GenerationOptions{})
	client.GenerateContent(context.Background(), llm.CallConfig{Provider: llm.ProviderCustom, APIKey: "key"}, "prompt", llm.GenerationOptions{})

	assert.Equal(t, []string{
		"openai:test_connection:failure",
		"openai:generate_content:failure",
		"custom:generate_content:failure",
	}, observer.calls)
	assert.Equal(t, int32(1), spy.calls.Load())
}
