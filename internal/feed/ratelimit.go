package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrDailyLimitReached is returned when the daily feed call limit has been
// exhausted.
var ErrDailyLimitReached = errors.New("daily feed limit reached")

const quotaWindow = 24 * time.Hour

// dailyQuota tracks calls against a rolling 24-hour window. The window
// starts at the first tracked call and resets when it expires.
type dailyQuota struct {
	mu      sync.Mutex
	used    int64
	max     int64
	resetAt time.Time
	nowFunc func() time.Time
}

// reserve consumes one call from the quota, rolling the window over first
// if it has expired. It reports whether the call fit within the limit.
func (q *dailyQuota) reserve() (used int64, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.nowFunc()
	if now.After(q.resetAt) {
		q.used = 0
		q.resetAt = now.Add(quotaWindow)
	}

	if q.used >= q.max {
		return q.used, false
	}
	q.used++
	return q.used, true
}

func (q *dailyQuota) snapshot() (used int64, resetAt time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.used, q.resetAt
}

// RateLimiter controls feed call rate and daily usage limits: a token
// bucket for per-second smoothing plus a rolling 24-hour quota.
type RateLimiter struct {
	limiter *rate.Limiter
	quota   dailyQuota
}

// RateLimiterOption configures the RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithRateLimiterNowFunc overrides the time function for testing.
func WithRateLimiterNowFunc(f func() time.Time) RateLimiterOption {
	return func(r *RateLimiter) {
		r.quota.nowFunc = f
	}
}

// NewRateLimiter creates a rate limiter with the given per-second rate,
// burst size, and daily limit.
func NewRateLimiter(
	perSecond float64,
	burst int,
	maxDaily int64,
	opts ...RateLimiterOption,
) *RateLimiter {
	r := &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		quota: dailyQuota{
			max:     maxDaily,
			nowFunc: time.Now,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.quota.resetAt = r.quota.nowFunc().Add(quotaWindow)
	return r
}

// Wait blocks until the rate limiter allows the call, or the context is
// canceled. Returns ErrDailyLimitReached when the daily quota is exhausted.
// The quota is consumed before the token-bucket wait, so a canceled wait
// still counts against the window.
func (r *RateLimiter) Wait(ctx context.Context) error {
	used, ok := r.quota.reserve()
	if !ok {
		return fmt.Errorf("%w (%d/%d)", ErrDailyLimitReached, used, r.quota.max)
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	return nil
}

// DailyCount returns the number of calls made in the current window.
func (r *RateLimiter) DailyCount() int64 {
	used, _ := r.quota.snapshot()
	return used
}

// Remaining returns the number of calls left in the current window.
func (r *RateLimiter) Remaining() int64 {
	used, _ := r.quota.snapshot()
	if used >= r.quota.max {
		return 0
	}
	return r.quota.max - used
}

// ResetAt returns the time when the current window expires and the daily
// counter resets.
func (r *RateLimiter) ResetAt() time.Time {
	_, resetAt := r.quota.snapshot()
	return resetAt
}
