package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrTooManyAttempts = errors.New("too many attempts, please try again later")

// RateLimiter tracks per-email auth attempts in Redis. The Fiber IP limiter
// in main.go covers the unauthenticated surface; this one survives IP
// rotation on a single account.
type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redis *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redis}
}

func (r *RateLimiter) CheckLogin(ctx context.Context, email string) error {
	return r.check(ctx, fmt.Sprintf("login_attempts:%s", email), 5, 15*time.Minute)
}

func (r *RateLimiter) CheckSignup(ctx context.Context, email string) error {
	return r.check(ctx, fmt.Sprintf("signup_attempts:%s", email), 3, time.Hour)
}

func (r *RateLimiter) check(ctx context.Context, key string, max int64, window time.Duration) error {
	count, err := r.redis.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		r.redis.Expire(ctx, key, window)
	}
	if count > max {
		return ErrTooManyAttempts
	}
	return nil
}

func (r *RateLimiter) ResetLogin(ctx context.Context, email string) error {
	return r.redis.Del(ctx, fmt.Sprintf("login_attempts:%s", email)).Err()
}
