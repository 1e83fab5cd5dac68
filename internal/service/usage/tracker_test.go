package usage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chynybekuuludastan/content_studio/internal/service/llm"
)

func newTracker(t *testing.T) (*Tracker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tracker := NewTracker(client, time.Hour)
	tracker.now = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }
	return tracker, mr
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("hi"))
	assert.Equal(t, 2, EstimateTokens("12345678"))
	assert.Equal(t, 2, EstimateTokens("héllo"))
}

func TestTracker_RecordAndDaily(t *testing.T) {
	ctx := context.Background()
	tracker, mr := newTracker(t)
	userID := uuid.New()

	require.NoError(t, tracker.Record(ctx, userID, llm.ProviderOpenAI, "12345678", llm.Succeeded("1234", nil)))
	require.NoError(t, tracker.Record(ctx, userID, llm.ProviderClaude, "1234", llm.Failed("boom")))

	summary, err := tracker.Today(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-14", summary.Day)
	assert.Equal(t, int64(2), summary.Calls)
	assert.Equal(t, int64(1), summary.Failures)
	assert.Equal(t, int64(3), summary.PromptTokens)
	assert.Equal(t, int64(1), summary.CompletionTokens)
	assert.Equal(t, map[string]int64{"openai": 1, "claude": 1}, summary.ByProvider)

	key := Key(userID, tracker.now())
	assert.Equal(t, time.Hour, mr.TTL(key))
}

func TestTracker_EmptyDay(t *testing.T) {
	tracker, _ := newTracker(t)

	summary, err := tracker.Daily(context.Background(), uuid.New(), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2026-01-01", summary.Day)
	assert.Zero(t, summary.Calls)
	assert.Empty(t, summary.ByProvider)
}

func TestTracker_NilClientIsNoop(t *testing.T) {
	ctx := context.Background()
	tracker := NewTracker(nil, 0)

	require.NoError(t, tracker.Record(ctx, uuid.New(), llm.ProviderGemini, "p", llm.Succeeded("c", nil)))
	summary, err := tracker.Today(ctx, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, summary.Calls)

	var missing *Tracker
	require.NoError(t, missing.Record(ctx, uuid.New(), llm.ProviderGemini, "p", llm.Succeeded("c", nil)))
}
