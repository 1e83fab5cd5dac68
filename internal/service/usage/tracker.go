// Package usage keeps per-user daily counters of provider calls and
// estimated token volume in Redis.
package usage

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/chynybekuuludastan/content_studio/internal/service/llm"
)

const (
	keyPrefix = "usage:"
	dayLayout = "2006-01-02"

	// DefaultRetention is how long daily counters are kept
	DefaultRetention = 31 * 24 * time.Hour

	fieldCalls            = "calls"
	fieldFailures         = "failures"
	fieldPromptTokens     = "prompt_tokens"
	fieldCompletionTokens = "completion_tokens"
	providerFieldPrefix   = "provider:"
)

// Summary is one user's usage for one day
type Summary struct {
	Day              string           `json:"day"`
	Calls            int64            `json:"calls"`
	Failures         int64            `json:"failures"`
	PromptTokens     int64            `json:"prompt_tokens"`
	CompletionTokens int64            `json:"completion_tokens"`
	ByProvider       map[string]int64 `json:"by_provider"`
}

// Tracker records usage. A Tracker with a nil client records nothing.
type Tracker struct {
	client    *redis.Client
	retention time.Duration
	now       func() time.Time
}

// NewTracker creates a tracker; retention <= 0 uses DefaultRetention
func NewTracker(client *redis.Client, retention time.Duration) *Tracker {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Tracker{client: client, retention: retention, now: time.Now}
}

// Key returns the hash holding userID's counters for day
func Key(userID uuid.UUID, day time.Time) string {
	return keyPrefix + userID.String() + ":" + day.UTC().Format(dayLayout)
}

// EstimateTokens approximates the token count of text at four characters per token
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}

// Record counts one call made by userID
func (t *Tracker) Record(ctx context.Context, userID uuid.UUID, provider llm.Provider, prompt string, result llm.CallResult) error {
	if t == nil || t.client == nil {
		return nil
	}

	key := Key(userID, t.now())
	failures := int64(0)
	if !result.Success {
		failures = 1
	}

	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, key, fieldCalls, 1)
		pipe.HIncrBy(ctx, key, fieldFailures, failures)
		pipe.HIncrBy(ctx, key, fieldPromptTokens, int64(EstimateTokens(prompt)))
		pipe.HIncrBy(ctx, key, fieldCompletionTokens, int64(EstimateTokens(result.Content)))
		pipe.HIncrBy(ctx, key, providerFieldPrefix+string(provider), 1)
		pipe.Expire(ctx, key, t.retention)
		return nil
	})
	return err
}

// Daily returns userID's usage on day. Days without calls yield a zero Summary.
func (t *Tracker) Daily(ctx context.Context, userID uuid.UUID, day time.Time) (Summary, error) {
	summary := Summary{Day: day.UTC().Format(dayLayout), ByProvider: map[string]int64{}}
	if t == nil || t.client == nil {
		return summary, nil
	}

	fields, err := t.client.HGetAll(ctx, Key(userID, day)).Result()
	if err != nil {
		return summary, err
	}

	for field, raw := range fields {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		switch {
		case field == fieldCalls:
			summary.Calls = n
		case field == fieldFailures:
			summary.Failures = n
		case field == fieldPromptTokens:
			summary.PromptTokens = n
		case field == fieldCompletionTokens:
			summary.CompletionTokens = n
		case strings.HasPrefix(field, providerFieldPrefix):
			summary.ByProvider[strings.TrimPrefix(field, providerFieldPrefix)] = n
		}
	}
	return summary, nil
}

// Today returns userID's usage for the current UTC day
func (t *Tracker) Today(ctx context.Context, userID uuid.UUID) (Summary, error) {
	now := time.Now
	if t != nil {
		now = t.now
	}
	return t.Daily(ctx, userID, now())
}
