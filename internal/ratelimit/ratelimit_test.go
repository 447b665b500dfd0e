package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/staya/staya-chatbot-go/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitBriefly reports whether a token is available within a few milliseconds.
func waitBriefly(l *Limiter) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	return l.Wait(ctx, "messenger") == nil
}

func TestNew_Burst(t *testing.T) {
	t.Parallel()

	l := New(3, nil)
	for i := range 3 {
		assert.True(t, waitBriefly(l), "attempt %d", i+1)
	}
	assert.False(t, waitBriefly(l))
}

func TestNew_FractionalRateKeepsBurstOfOne(t *testing.T) {
	t.Parallel()

	l := New(0.5, nil)
	assert.True(t, waitBriefly(l))
	assert.False(t, waitBriefly(l))
}

func TestNew_Disabled(t *testing.T) {
	t.Parallel()

	l := New(0, nil)
	for range 1000 {
		require.True(t, waitBriefly(l))
	}
}

func TestWait_RecordsMetric(t *testing.T) {
	t.Parallel()

	m := metrics.New(prometheus.NewRegistry())
	l := New(100, m)

	require.NoError(t, l.Wait(context.Background(), "messenger"))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RateLimiterWaitDuration))
}

func TestWait_ContextCanceled(t *testing.T) {
	t.Parallel()

	l := New(1, nil)
	require.True(t, waitBriefly(l))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.Error(t, l.Wait(ctx, "line"))
}
