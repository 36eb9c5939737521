package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const oauthStateTTL = 10 * time.Minute

// OAuthStateRepository tracks one-time state nonces for the federated login
// redirect. A nonce is valid for a single callback within the TTL window.
type OAuthStateRepository struct {
	rdb *redis.Client
}

func NewOAuthStateRepository(rdb *redis.Client) *OAuthStateRepository {
	return &OAuthStateRepository{rdb: rdb}
}

func stateKey(state string) string {
	return "oauth_state:" + state
}

func (r *OAuthStateRepository) Put(ctx context.Context, state string) error {
	if err := r.rdb.Set(ctx, stateKey(state), "1", oauthStateTTL).Err(); err != nil {
		return fmt.Errorf("storing oauth state: %w", err)
	}
	return nil
}

// Consume checks the nonce and burns it in the same call. It returns false
// for unknown, expired, or already-used nonces.
func (r *OAuthStateRepository) Consume(ctx context.Context, state string) (bool, error) {
	n, err := r.rdb.Del(ctx, stateKey(state)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("consuming oauth state: %w", err)
	}
	return n > 0, nil
}
