package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRevocationUnavailable means the revocation store could not be reached.
// Callers must treat this as a hard failure, never as "not revoked".
var ErrRevocationUnavailable = errors.New("revocation store unavailable")

// RevocationStore keeps the jti of every invalidated token until the token
// would have expired on its own. A key present in the store overrides any
// otherwise valid signature and expiry.
type RevocationStore struct {
	client *redis.Client
}

func NewRevocationStore(client *redis.Client) *RevocationStore {
	return &RevocationStore{client: client}
}

func revocationKey(jti string) string {
	return fmt.Sprintf("revoked:%s", jti)
}

// Revoke records jti for ttl. A non-positive ttl means the token is already
// past its expiry and nothing needs to be stored.
func (s *RevocationStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, revocationKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
	}
	return nil
}

func (s *RevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, revocationKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
	}
	return n > 0, nil
}
