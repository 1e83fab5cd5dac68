package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chynybekuuludastan/content_studio/internal/service/llm"
)

var _ llm.Observer = (*Metrics)(nil)

func TestObserveCall(t *testing.T) {
	m := New()
	m.ObserveCall(llm.ProviderOpenAI, llm.OperationGenerateContent, true, 120*time.Millisecond)
	m.ObserveCall(llm.ProviderOpenAI, llm.OperationGenerateContent, false, time.Second)
	m.ObserveCall(llm.ProviderOpenAI, llm.OperationGenerateContent, true, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.callsTotal.WithLabelValues("openai", "generate_content", StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.callsTotal.WithLabelValues("openai", "generate_content", StatusFailure)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.callDuration))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveCall(llm.ProviderClaude, llm.OperationTestConnection, true, time.Millisecond)
	m.ObserveRequest("GET", "/api/health", 200)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `content_studio_llm_calls_total{operation="test_connection",provider="claude",status="success"} 1`)
	assert.Contains(t, string(body), `content_studio_http_requests_total{code="200",method="GET",route="/api/health"} 1`)
	assert.Contains(t, string(body), "content_studio_llm_call_duration_seconds_bucket")
}
