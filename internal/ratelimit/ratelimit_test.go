package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/storefront/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingBucket struct {
	keys []string
}

func (b *countingBucket) Allow(_ context.Context, key string, _ float64, burst int) (*Result, error) {
	b.keys = append(b.keys, key)
	return &Result{Allowed: len(b.keys) <= burst, Limit: burst}, nil
}

func TestDisabledLimiterAllows(t *testing.T) {
	limiter, err := NewLoginLimiter(config.Config{})
	require.NoError(t, err)
	assert.Nil(t, limiter)
	assert.False(t, limiter.Enabled())

	result, err := limiter.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestNewLimiterValidates(t *testing.T) {
	_, err := NewLimiter(nil, 1, 1)
	assert.Error(t, err)
	_, err = NewLimiter(&countingBucket{}, 0, 1)
	assert.Error(t, err)
	_, err = NewLimiter(&countingBucket{}, 1, 0)
	assert.Error(t, err)
}

func TestLimiterKeysByClient(t *testing.T) {
	bucket := &countingBucket{}
	limiter, err := NewLimiter(bucket, 1, 2)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		result, err := limiter.Allow(ctx, " 10.0.0.1 ")
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}
	result, err := limiter.Allow(ctx, "")
	require.NoError(t, err)
	assert.False(t, result.Allowed)

	assert.Equal(t, []string{"storefront:login:10.0.0.1", "storefront:login:10.0.0.1", "storefront:login:unknown"}, bucket.keys)
}

func TestNewResultRetryAfter(t *testing.T) {
	result := newResult(false, 0.25, 0.5, 5)
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)
	assert.Equal(t, 1500*time.Millisecond, result.RetryAfter)

	result = newResult(true, 3.7, 0.5, 5)
	assert.Equal(t, 3, result.Remaining)
	assert.Zero(t, result.RetryAfter)
}

func TestBucketTTL(t *testing.T) {
	assert.Equal(t, 20*time.Second, bucketTTL(0.5, 5))
	assert.Equal(t, time.Second, bucketTTL(100, 1))
	assert.Equal(t, time.Second, bucketTTL(0, 1))
}

func TestCasts(t *testing.T) {
	assert.EqualValues(t, 1, castToInt(int64(1)))
	assert.EqualValues(t, 7, castToInt("7"))
	assert.InDelta(t, 2.5, castToFloat("2.5"), 1e-9)
	assert.InDelta(t, 3, castToFloat(int64(3)), 1e-9)
}
