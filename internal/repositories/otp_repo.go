package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"rolodex/internal/models"
)

// OTPRepository keeps pending verification codes in Redis. Writing a code
// overwrites any previous one for the same email, so at most one code is
// live per address, and the key TTL retires codes that are never used.
type OTPRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewOTPRepository(rdb *redis.Client, ttl time.Duration) *OTPRepository {
	return &OTPRepository{rdb: rdb, ttl: ttl}
}

func otpKey(email string) string {
	return "otp:" + strings.ToLower(email)
}

func (r *OTPRepository) Put(ctx context.Context, email, code string) error {
	if err := r.rdb.Set(ctx, otpKey(email), code, r.ttl).Err(); err != nil {
		return fmt.Errorf("storing verification code: %w", err)
	}
	return nil
}

func (r *OTPRepository) Get(ctx context.Context, email string) (string, error) {
	code, err := r.rdb.Get(ctx, otpKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", models.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading verification code: %w", err)
	}
	return code, nil
}

func (r *OTPRepository) Delete(ctx context.Context, email string) error {
	if err := r.rdb.Del(ctx, otpKey(email)).Err(); err != nil {
		return fmt.Errorf("deleting verification code: %w", err)
	}
	return nil
}
