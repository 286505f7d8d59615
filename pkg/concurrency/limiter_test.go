package concurrency

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterAcquireRelease(t *testing.T) {
	limiter := NewLimiter(2)
	ctx := context.Background()

	require.NoError(t, limiter.Acquire(ctx))
	require.NoError(t, limiter.Acquire(ctx))
	assert.Equal(t, int64(2), limiter.CurrentActive())

	limiter.Release()
	limiter.Release()
	assert.Equal(t, int64(0), limiter.CurrentActive())

	metrics := limiter.GetMetrics()
	assert.Equal(t, int64(2), metrics.TotalAcquired)
	assert.Equal(t, int64(2), metrics.TotalReleased)
	assert.Equal(t, int64(2), metrics.PeakConcurrent)
}

func TestLimiterBlocksAtCapacity(t *testing.T) {
	limiter := NewLimiter(1)
	require.NoError(t, limiter.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := limiter.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	limiter.Release()
	require.NoError(t, limiter.Acquire(context.Background()))
	limiter.Release()
}

func TestLimiterCancelledContext(t *testing.T) {
	limiter := NewLimiter(1)
	require.NoError(t, limiter.Acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := limiter.Acquire(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	limiter.Release()
}

func TestLimiterPeakUnderContention(t *testing.T) {
	const maxSlots = 3
	limiter := NewLimiter(maxSlots)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Acquire(context.Background()); err != nil {
				return
			}
			time.Sleep(10 * time.Millisecond)
			limiter.Release()
		}()
	}
	wg.Wait()

	metrics := limiter.GetMetrics()
	assert.Equal(t, int64(10), metrics.TotalAcquired)
	assert.Equal(t, int64(10), metrics.TotalReleased)
	assert.LessOrEqual(t, metrics.PeakConcurrent, int64(maxSlots))
	assert.Equal(t, int64(0), limiter.CurrentActive())
}

func TestLimiterZeroCapacityDefaultsToOne(t *testing.T) {
	limiter := NewLimiter(0)
	require.NoError(t, limiter.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, limiter.Acquire(ctx))
	limiter.Release()
}

func TestLoadConfigDefault(t *testing.T) {
	t.Setenv("TALARIA_MAX_CONCURRENT", "")

	config := LoadConfig()
	assert.Equal(t, 0, config.MaxConcurrent)
	assert.Equal(t, ConfigSourceDefault, config.Source)
	assert.Greater(t, config.EffectiveCPUs, 0)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("TALARIA_MAX_CONCURRENT", "8")

	config := LoadConfig()
	assert.Equal(t, 8, config.MaxConcurrent)
	assert.Equal(t, ConfigSourceEnvVar, config.Source)
}

func TestLoadConfigIgnoresGarbageEnv(t *testing.T) {
	t.Setenv("TALARIA_MAX_CONCURRENT", "not-a-number")

	config := LoadConfig()
	assert.Equal(t, 0, config.MaxConcurrent)
	assert.Equal(t, ConfigSourceDefault, config.Source)
}
