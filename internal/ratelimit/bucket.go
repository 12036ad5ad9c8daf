package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"reddit_archiver/internal/domain"
)

// Config holds token bucket settings for one subject.
type Config struct {
	Subject string
	// RequestsPerMinute paces calls locally. Zero or less disables pacing.
	RequestsPerMinute int
	Burst             int
	// InitialTokens is the allowance assumed before the first upstream report.
	InitialTokens int
	WaitTimeout   time.Duration
}

// Bucket tracks the upstream allowance for one account and blocks callers while it is
// exhausted. It is safe for concurrent use.
type Bucket struct {
	mu        sync.Mutex
	subject   string
	remaining int
	limit     int
	resetAt   time.Time
	wake      chan struct{}

	pace    *rate.Limiter
	timeout time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

func NewBucket(cfg Config, logger *slog.Logger) *Bucket {
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(cfg.RequestsPerMinute) / 60.0)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Bucket{
		subject:   cfg.Subject,
		remaining: cfg.InitialTokens,
		limit:     cfg.InitialTokens,
		wake:      make(chan struct{}),
		pace:      rate.NewLimiter(limit, burst),
		timeout:   cfg.WaitTimeout,
		now:       time.Now,
		logger:    logger.With("component", "rate_limit", "subject", cfg.Subject),
	}
}

// Acquire takes one token, waiting for the upstream window to reset when none remain.
// It fails with domain.ErrRateLimitExceeded when the wait timeout elapses first.
func (b *Bucket) Acquire(ctx context.Context) error {
	deadline := b.now().Add(b.timeout)

	for {
		b.mu.Lock()
		now := b.now()
		if b.remaining <= 0 && !now.Before(b.resetAt) {
			// Window rolled over without a fresh report; assume a full allowance.
			b.remaining = b.limit
			if b.remaining <= 0 {
				b.remaining = 1
			}
		}

		if b.remaining > 0 {
			b.remaining--
			b.mu.Unlock()
			return b.waitPace(ctx, deadline)
		}

		wait := b.resetAt.Sub(now)
		wake := b.wake
		b.mu.Unlock()

		left := deadline.Sub(now)
		if b.timeout > 0 && left <= 0 {
			return fmt.Errorf("%w: no tokens for %s until %s", domain.ErrRateLimitExceeded, b.subject, b.resetAt.Format(time.RFC3339))
		}
		if b.timeout > 0 && left < wait {
			wait = left
		}

		b.logger.Debug("waiting for rate limit reset", "wait", wait)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-wake:
			timer.Stop()
		case <-timer.C:
		}
	}
}

func (b *Bucket) waitPace(ctx context.Context, deadline time.Time) error {
	if b.timeout <= 0 {
		return b.pace.Wait(ctx)
	}

	paceCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	if err := b.pace.Wait(paceCtx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Join(domain.ErrRateLimitExceeded, err)
	}
	return nil
}

// Update replaces the counters with what the upstream reported and wakes waiters.
func (b *Bucket) Update(state domain.RateLimitState) {
	b.mu.Lock()
	b.remaining = state.Remaining
	if state.Limit > 0 {
		b.limit = state.Limit
	}
	b.resetAt = state.RetryAfter
	close(b.wake)
	b.wake = make(chan struct{})
	b.mu.Unlock()
}

// State returns a snapshot of the counters.
func (b *Bucket) State() domain.RateLimitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	return domain.RateLimitState{
		Subject:    b.subject,
		Remaining:  b.remaining,
		Limit:      b.limit,
		RetryAfter: b.resetAt,
	}
}

func (b *Bucket) Subject() string {
	return b.subject
}
