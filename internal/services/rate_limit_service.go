package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	otpResendLimit  = 5
	otpResendWindow = 10 * time.Minute
)

// OTPRateLimiter caps how often a single email address can request a new
// verification code. The counter lives in Redis so the cap holds across
// instances; the window starts at the first request and resets when the
// key expires.
type OTPRateLimiter struct {
	rdb    *redis.Client
	limit  int64
	window time.Duration
}

func NewOTPRateLimiter(rdb *redis.Client) *OTPRateLimiter {
	return &OTPRateLimiter{
		rdb:    rdb,
		limit:  otpResendLimit,
		window: otpResendWindow,
	}
}

// Allow reports whether the address may request another code right now.
func (l *OTPRateLimiter) Allow(ctx context.Context, email string) (bool, error) {
	key := "otp_requests:" + strings.ToLower(email)

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("incrementing otp request counter: %w", err)
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			return false, fmt.Errorf("setting otp request window: %w", err)
		}
	}

	return count <= l.limit, nil
}
