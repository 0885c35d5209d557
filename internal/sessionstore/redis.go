package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"swipe-quiz/internal/quiz"
)

const defaultKeyPrefix = "swipe-quiz:session:"

type RedisOptions struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

// RedisStore shares sessions between service instances. Records are stored
// as JSON and expire after TTL, refreshed on every save.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(options RedisOptions) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     options.Address,
		Password: options.Password,
		DB:       options.DB,
	})
	return newRedisStore(client, options)
}

func newRedisStore(client *redis.Client, options RedisOptions) *RedisStore {
	prefix := options.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	ttl := options.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) SaveSession(ctx context.Context, record quiz.SessionRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", record.SessionID, err)
	}
	return r.client.Set(ctx, r.key(record.SessionID), payload, r.ttl).Err()
}

func (r *RedisStore) GetSession(ctx context.Context, sessionID string) (quiz.SessionRecord, error) {
	payload, err := r.client.Get(ctx, r.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return quiz.SessionRecord{}, quiz.ErrSessionNotFound
		}
		return quiz.SessionRecord{}, err
	}

	var record quiz.SessionRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return quiz.SessionRecord{}, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return record, nil
}

func (r *RedisStore) DeleteSession(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.key(sessionID)).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) key(sessionID string) string {
	return r.prefix + sessionID
}
