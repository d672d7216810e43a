package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists the credential in Redis so that multiple client
// processes (a circulation desk running the catalog, kiosk, and reports
// apps side by side) share one sign-in. The stored value carries its own
// TTL so an abandoned desk session ages out server-side.
type RedisStore struct {
	client *redis.Client
	key    string
	window time.Duration
	now    func() time.Time
}

// NewRedisStore creates a store writing under the given key (for example
// "shelfgate:cred:desk-3"). refreshWindow behaves as in NewMemoryStore.
func NewRedisStore(client *redis.Client, key string, refreshWindow time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	if key == "" {
		return nil, errors.New("credential key required")
	}

	return &RedisStore{
		client: client,
		key:    key,
		window: refreshWindow,
		now:    time.Now,
	}, nil
}

func (s *RedisStore) Load(ctx context.Context) (*Credential, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoCredential
	}
	if err != nil {
		return nil, fmt.Errorf("load credential: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal(raw, &cred); err != nil {
		// A corrupt blob is an integrity failure: drop it rather than
		// let a half-decoded credential masquerade as a session.
		_ = s.client.Del(ctx, s.key).Err()
		return nil, ErrNoCredential
	}
	return &cred, nil
}

func (s *RedisStore) Save(ctx context.Context, cred Credential) error {
	raw, err := json.Marshal(cred)
	if err != nil {
		return err
	}

	var ttl time.Duration
	if !cred.ExpiresAt.IsZero() {
		ttl = time.Until(cred.ExpiresAt)
		if ttl <= 0 {
			return errors.New("credential already expired")
		}
	}

	if err := s.client.Set(ctx, s.key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (s *RedisStore) ClearAuthentication(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

func (s *RedisStore) IsAuthenticated(ctx context.Context) bool {
	cred, err := s.Load(ctx)
	if err != nil {
		return false
	}
	return cred.Valid(s.now())
}

func (s *RedisStore) NeedsRefresh(ctx context.Context) bool {
	if s.window <= 0 {
		return false
	}
	cred, err := s.Load(ctx)
	if err != nil {
		return false
	}
	return cred.expiresWithin(s.now(), s.window)
}
