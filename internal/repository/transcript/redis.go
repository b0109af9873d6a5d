// Package transcript keeps per-session conversation history for conversational mode.
package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kailas-cloud/qacache/internal/domain"
	"github.com/kailas-cloud/qacache/internal/domain/message"
)

// listClient is the subset of *redis.Client used for transcripts.
type listClient interface {
	RPush(ctx context.Context, key string, values ...any) *redis.IntCmd
	LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

// RedisStore stores each session as a Redis list of JSON-encoded messages.
type RedisStore struct {
	client      listClient
	maxMessages int
	ttl         time.Duration
}

// NewRedisStore creates a transcript store. maxMessages <= 0 keeps everything; ttl <= 0 never expires.
func NewRedisStore(client listClient, maxMessages int, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, maxMessages: maxMessages, ttl: ttl}
}

// NewRedisClient opens a go-redis client and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("connect transcript redis: %w", err)
	}
	return c, nil
}

// Load returns the session history, oldest first. Unknown sessions have no history.
func (s *RedisStore) Load(ctx context.Context, sessionID string) ([]message.Message, error) {
	items, err := s.client.LRange(ctx, sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: lrange: %w", domain.ErrStoreUnavailable, err)
	}

	msgs := make([]message.Message, 0, len(items))
	for _, item := range items {
		var m message.Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// Append adds messages to the end of the session history, trims it and refreshes the TTL.
func (s *RedisStore) Append(ctx context.Context, sessionID string, msgs ...message.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	values := make([]any, 0, len(msgs))
	for _, m := range msgs {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("marshal message: %w", err)
		}
		values = append(values, data)
	}

	key := sessionKey(sessionID)
	if err := s.client.RPush(ctx, key, values...).Err(); err != nil {
		return fmt.Errorf("%w: rpush: %w", domain.ErrStoreUnavailable, err)
	}
	if s.maxMessages > 0 {
		if err := s.client.LTrim(ctx, key, int64(-s.maxMessages), -1).Err(); err != nil {
			return fmt.Errorf("%w: ltrim: %w", domain.ErrStoreUnavailable, err)
		}
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			return fmt.Errorf("%w: expire: %w", domain.ErrStoreUnavailable, err)
		}
	}
	return nil
}

func sessionKey(sessionID string) string {
	return domain.KeyPrefix + "session:" + sessionID + ":history"
}
