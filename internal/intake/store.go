package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "intake:session:"

// DefaultSessionTTL bounds how long an untouched intake session lives.
const DefaultSessionTTL = 30 * time.Minute

// Session is the ephemeral state of one intake flow.
type Session struct {
	ID        string            `json:"id"`
	UserID    uint64            `json:"user_id"`
	Answers   map[string]string `json:"answers"`
	StartedAt int64             `json:"started_at"`
	UpdatedAt int64             `json:"updated_at"`
}

// SessionCache is the TTL-aware key-value collaborator sessions live in.
// cache.RedisCache satisfies it; expiry is the cache's job, there is no
// in-process cleanup sweep.
type SessionCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Store persists sessions in the cache with a sliding TTL.
type Store struct {
	cache SessionCache
	ttl   time.Duration
}

// NewStore creates a session store. ttl <= 0 uses DefaultSessionTTL.
func NewStore(cache SessionCache, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Store{cache: cache, ttl: ttl}
}

// Save writes the session and refreshes its TTL.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal intake session: %w", err)
	}
	return s.cache.Set(ctx, sessionKeyPrefix+sess.ID, string(payload), s.ttl)
}

// Load fetches a session, nil when missing or expired.
func (s *Store) Load(ctx context.Context, sessionID string) (*Session, error) {
	raw, err := s.cache.Get(ctx, sessionKeyPrefix+sessionID)
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		// Corrupt payloads are treated as expired; the flow restarts.
		return nil, nil
	}
	return &sess, nil
}

// Delete drops a session.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	return s.cache.Del(ctx, sessionKeyPrefix+sessionID)
}
