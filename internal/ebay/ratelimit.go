package ebay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrDailyLimitReached is returned when the daily upstream call quota has
// been exhausted.
var ErrDailyLimitReached = errors.New("daily eBay API quota reached")

// QuotaLimiter gates upstream eBay calls with a per-second token bucket and
// a rolling 24-hour quota. eBay meters application keys per day, so the
// resolver shares one limiter across both upstream tiers.
type QuotaLimiter struct {
	bucket   *rate.Limiter
	maxDaily int64

	mu      sync.Mutex
	used    int64
	resetAt time.Time
	nowFunc func() time.Time
}

// QuotaOption configures the QuotaLimiter.
type QuotaOption func(*QuotaLimiter)

// WithQuotaNowFunc overrides the time function for testing.
func WithQuotaNowFunc(f func() time.Time) QuotaOption {
	return func(q *QuotaLimiter) {
		q.nowFunc = f
	}
}

// NewQuotaLimiter creates a limiter with the given per-second rate, burst
// size, and daily quota. The daily window resets 24 hours after it opens.
func NewQuotaLimiter(perSecond float64, burst int, maxDaily int64, opts ...QuotaOption) *QuotaLimiter {
	q := &QuotaLimiter{
		bucket:   rate.NewLimiter(rate.Limit(perSecond), burst),
		maxDaily: maxDaily,
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.resetAt = q.nowFunc().Add(24 * time.Hour)
	return q
}

// Wait blocks until the limiter admits the call or the context is canceled.
// Returns ErrDailyLimitReached when the daily quota is exhausted.
func (q *QuotaLimiter) Wait(ctx context.Context) error {
	if err := q.takeDaily(); err != nil {
		return err
	}
	if err := q.bucket.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}
	return nil
}

// Remaining returns the calls left in the current 24-hour window.
func (q *QuotaLimiter) Remaining() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	if rem := q.maxDaily - q.used; rem > 0 {
		return rem
	}
	return 0
}

// ResetAt returns when the current 24-hour window expires.
func (q *QuotaLimiter) ResetAt() time.Time {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.resetAt
}

// Used returns the calls consumed in the current window.
func (q *QuotaLimiter) Used() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.used
}

func (q *QuotaLimiter) takeDaily() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.nowFunc()
	if now.After(q.resetAt) {
		q.used = 0
		q.resetAt = now.Add(24 * time.Hour)
	}

	if q.used >= q.maxDaily {
		return fmt.Errorf("%w (%d/%d)", ErrDailyLimitReached, q.used, q.maxDaily)
	}

	q.used++
	return nil
}
