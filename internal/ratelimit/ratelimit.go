// Package ratelimit throttles outbound platform API calls.
package ratelimit

import (
	"context"
	"time"

	"github.com/staya/staya-chatbot-go/internal/metrics"
	"golang.org/x/time/rate"
)

// Limiter is a token bucket shared by every outbound send of the process.
// It is safe for concurrent use.
type Limiter struct {
	limiter *rate.Limiter
	metrics *metrics.Metrics
}

// New creates a limiter allowing rps sends per second with a burst of
// one second's worth of tokens. rps <= 0 disables limiting.
func New(rps float64, m *metrics.Metrics) *Limiter {
	if rps <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 0), metrics: m}
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		metrics: m,
	}
}

// Wait blocks until a send is allowed for platform or ctx is done.
// The time spent waiting is recorded per platform.
func (l *Limiter) Wait(ctx context.Context, platform string) error {
	start := time.Now()
	err := l.limiter.Wait(ctx)
	l.metrics.RecordRateLimiterWait(platform, time.Since(start).Seconds())
	return err
}
