// Package redis implements a ContextStore over Redis so conversation state
// survives process restarts and can be shared between replicas.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/clarionhq/clarion/core"
	"github.com/go-redis/redis/v8"
)

// Store keeps one JSON document per session under a namespaced key with a
// sliding TTL.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// Options tune the store.
type Options struct {
	TTL    time.Duration
	Prefix string
}

// NewStore wraps an existing Redis client. The default TTL of 30 minutes
// matches how long an emergency conversation stays actionable.
func NewStore(client *redis.Client, optFns ...func(o *Options)) *Store {
	opts := Options{TTL: 30 * time.Minute, Prefix: "clarion:session:"}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{client: client, ttl: opts.TTL, prefix: opts.Prefix}
}

// Dial connects to a Redis address and returns a store over the connection.
func Dial(ctx context.Context, addr string, optFns ...func(o *Options)) (*Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return NewStore(client, optFns...), nil
}

func (s *Store) key(sessionID string) string { return s.prefix + sessionID }

// Get loads a session's context, creating a fresh one when the key is
// missing or expired.
func (s *Store) Get(sessionID string) (*core.ConversationContext, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err == redis.Nil {
		return core.NewConversationContext(sessionID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session %s: %w", sessionID, err)
	}
	var cc core.ConversationContext
	if err := json.Unmarshal(raw, &cc); err != nil {
		// A corrupt document should not strand the session.
		return core.NewConversationContext(sessionID), nil
	}
	return &cc, nil
}

// Save writes the context back, refreshing the TTL.
func (s *Store) Save(cc *core.ConversationContext) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	raw, err := json.Marshal(cc)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", cc.SessionID, err)
	}
	if err := s.client.Set(ctx, s.key(cc.SessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session %s: %w", cc.SessionID, err)
	}
	return nil
}

// Delete removes a session's context.
func (s *Store) Delete(sessionID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis del session %s: %w", sessionID, err)
	}
	return nil
}

// Close releases the underlying client.
func (s *Store) Close() error { return s.client.Close() }
