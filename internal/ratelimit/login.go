package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/storefront/internal/config"
)

const keyLogin = "storefront:login:%s"

// LoginLimiter throttles credential endpoints per client address. A nil limiter allows
// everything.
type LoginLimiter struct {
	bucket Bucket
	rate   float64
	burst  int
}

// NewLoginLimiter returns nil when rate limiting is disabled.
func NewLoginLimiter(cfg config.Config) (*LoginLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})
	return NewLimiter(NewTokenBucket(client), limitCfg.LoginRate, limitCfg.LoginBurst)
}

func NewLimiter(bucket Bucket, rate float64, burst int) (*LoginLimiter, error) {
	if bucket == nil {
		return nil, errors.New("rate limit bucket is required")
	}
	if rate <= 0 || burst <= 0 {
		return nil, errors.New("login rate limit must be positive")
	}
	return &LoginLimiter{bucket: bucket, rate: rate, burst: burst}, nil
}

func (l *LoginLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *LoginLimiter) Allow(ctx context.Context, client string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	client = strings.TrimSpace(client)
	if client == "" {
		client = "unknown"
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyLogin, client), l.rate, l.burst)
}
