package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"reddit_archiver/internal/domain"
	"reddit_archiver/internal/reddit"
)

const keyPrefix = "reddit_archiver:"

// CallLog keeps a capped list of recent API calls and the latest rate limit state per
// subject, for observability only.
type CallLog struct {
	client *redis.Client
	maxLen int64
}

func NewCallLog(client *redis.Client, maxLen int64) *CallLog {
	if maxLen <= 0 {
		maxLen = 1000
	}
	return &CallLog{client: client, maxLen: maxLen}
}

func callsKey(subject string) string {
	return keyPrefix + "calls:" + subject
}

func stateKey(subject string) string {
	return keyPrefix + "rate_limit:" + subject
}

// Record implements reddit.CallRecorder.
func (l *CallLog) Record(ctx context.Context, event reddit.CallEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal call event: %w", err)
	}

	state := event.RateLimit
	if state.Subject == "" {
		state.Subject = event.Subject
	}

	pipe := l.client.TxPipeline()
	pipe.LPush(ctx, callsKey(event.Subject), body)
	pipe.LTrim(ctx, callsKey(event.Subject), 0, l.maxLen-1)
	pipe.HSet(ctx, stateKey(state.Subject),
		"remaining", state.Remaining,
		"limit", state.Limit,
		"retry_after", state.RetryAfter.UTC().Format(time.RFC3339Nano),
		"updated_at", event.At.UTC().Format(time.RFC3339Nano),
	)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record call event: %w", err)
	}
	return nil
}

// Recent returns up to n of the newest events for subject.
func (l *CallLog) Recent(ctx context.Context, subject string, n int64) ([]reddit.CallEvent, error) {
	raw, err := l.client.LRange(ctx, callsKey(subject), 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read call events: %w", err)
	}

	events := make([]reddit.CallEvent, 0, len(raw))
	for _, r := range raw {
		var ev reddit.CallEvent
		if err := json.Unmarshal([]byte(r), &ev); err != nil {
			return nil, fmt.Errorf("decode call event: %w", err)
		}
		events = append(events, ev)
	}
	return events, nil
}

// State returns the last recorded rate limit state for subject.
func (l *CallLog) State(ctx context.Context, subject string) (*domain.RateLimitState, error) {
	fields, err := l.client.HGetAll(ctx, stateKey(subject)).Result()
	if errors.Is(err, redis.Nil) || (err == nil && len(fields) == 0) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read rate limit state: %w", err)
	}

	state := &domain.RateLimitState{Subject: subject}
	if _, err := fmt.Sscan(fields["remaining"], &state.Remaining); err != nil {
		return nil, fmt.Errorf("decode remaining: %w", err)
	}
	if _, err := fmt.Sscan(fields["limit"], &state.Limit); err != nil {
		return nil, fmt.Errorf("decode limit: %w", err)
	}
	if state.RetryAfter, err = time.Parse(time.RFC3339Nano, fields["retry_after"]); err != nil {
		return nil, fmt.Errorf("decode retry_after: %w", err)
	}
	return state, nil
}
