package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Policy is the single cache policy applied to every cached read: entries
// older than TTL are re-loaded, entries older than GCAfter leave Redis.
type Policy struct {
	TTL     time.Duration
	GCAfter time.Duration
}

// DefaultPolicy mirrors the staleness windows used by read-heavy listings.
func DefaultPolicy() Policy {
	return Policy{TTL: 5 * time.Minute, GCAfter: 30 * time.Minute}
}

type envelope struct {
	StoredAt time.Time       `json:"stored_at"`
	Payload  json.RawMessage `json:"payload"`
}

// Store wraps Redis with the policy and collapses concurrent loads of the
// same key through singleflight.
type Store struct {
	client *redis.Client
	policy Policy
	group  singleflight.Group
}

// NewStore instantiates the cache store.
func NewStore(client *redis.Client, policy Policy) *Store {
	if policy.TTL <= 0 {
		policy.TTL = DefaultPolicy().TTL
	}
	if policy.GCAfter < policy.TTL {
		policy.GCAfter = policy.TTL
	}
	return &Store{client: client, policy: policy}
}

// FetchJSON loads a cached value or populates it using the loader.
func (s *Store) FetchJSON(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if s == nil || s.client == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}

	payload, err := s.client.Get(ctx, key).Bytes()
	if err == nil {
		var env envelope
		if jsonErr := json.Unmarshal(payload, &env); jsonErr == nil {
			if time.Since(env.StoredAt) < s.policy.TTL {
				return json.Unmarshal(env.Payload, dest)
			}
		}
	} else if err != redis.Nil {
		return err
	}

	raw, err, _ := s.group.Do(key, func() (interface{}, error) {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		inner, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		env, err := json.Marshal(envelope{StoredAt: time.Now().UTC(), Payload: inner})
		if err != nil {
			return nil, err
		}
		if err := s.client.Set(ctx, key, env, s.policy.GCAfter).Err(); err != nil {
			return nil, err
		}
		return inner, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(raw.([]byte), dest)
}

// Invalidate drops a key so the next read re-loads.
func (s *Store) Invalidate(ctx context.Context, keys ...string) error {
	if s == nil || s.client == nil || len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}
