// internal/pkg/session/redis_store.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	xerrors "polisure-service/internal/pkg/errors"
)

// RedisStore keeps the session table in redis so multiple process
// instances behind a load balancer see the same sessions. The absolute
// TTL is delegated to redis key expiry; the inactivity bound is still
// evaluated by the Manager's predicate on every Touch.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) key(token string) string {
	return fmt.Sprintf("session:%s", token)
}

func (s *RedisStore) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, s.key(sess.Token), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session in redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Touch(ctx context.Context, token string, now time.Time, valid ValidFunc) (*Session, error) {
	data, err := s.client.Get(ctx, s.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session from redis: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	sess.Token = token

	if !valid(&sess, now) {
		s.client.Del(ctx, s.key(token))
		return nil, xerrors.ErrNotFound
	}

	sess.LastActivityAt = now

	updated, err := json.Marshal(&sess)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	// KEEPTTL preserves the absolute expiry set at login.
	if err := s.client.Set(ctx, s.key(token), updated, redis.KeepTTL).Err(); err != nil {
		return nil, fmt.Errorf("failed to refresh session in redis: %w", err)
	}

	return &sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete session from redis: %w", err)
	}
	return nil
}

// Sweep is a no-op: redis enforces the absolute TTL via key expiry and
// idle sessions are evicted lazily on Touch.
func (s *RedisStore) Sweep(context.Context, time.Time, ValidFunc) (int, error) {
	return 0, nil
}
