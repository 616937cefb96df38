package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/docvault/document-system/internal/core/ports"
)

const revokedPrefix = "revoked:"

var _ ports.TokenRevocations = (*RevocationList)(nil)

// kv is the subset of the go-redis client the revocation list needs.
type kv interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// RevocationList records logged-out token ids until they would have expired.
// Key format: revoked:<jti>
type RevocationList struct {
	client kv
}

func NewRevocationList(client kv) *RevocationList {
	return &RevocationList{client: client}
}

// Revoke stores tokenID for ttl. A non-positive ttl means the token is
// already expired and nothing is written.
func (r *RevocationList) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, revokedPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *RevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	n, err := r.client.Exists(ctx, revokedPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}
