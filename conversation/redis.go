package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Ankitchan/sast-ai-agent/types"
)

// RedisConfig configures the Redis-backed store.
type RedisConfig struct {
	Addr     string        `yaml:"addr" json:"addr"`
	Password string        `yaml:"password" json:"password"`
	DB       int           `yaml:"db" json:"db"`
	TTL      time.Duration `yaml:"ttl" json:"ttl"`
	PoolSize int           `yaml:"pool_size" json:"pool_size"`
}

// DefaultRedisConfig returns the default Redis store configuration.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:     "localhost:6379",
		DB:       0,
		TTL:      24 * time.Hour,
		PoolSize: 10,
	}
}

// RedisStore persists session histories as Redis lists, one JSON-encoded
// message per element. Each append refreshes the session TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(config RedisConfig, logger *zap.Logger) (*RedisStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
		PoolSize: config.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("conversation store connected",
		zap.String("addr", config.Addr),
		zap.Duration("ttl", config.TTL),
	)
	return &RedisStore{
		client: client,
		ttl:    config.TTL,
		logger: logger.With(zap.String("component", "conversation_store")),
	}, nil
}

func sessionKey(sessionID string) string {
	return "conversation:" + sessionID
}

// Append implements Store.
func (s *RedisStore) Append(ctx context.Context, sessionID string, messages ...types.Message) error {
	if len(messages) == 0 {
		return nil
	}

	values := make([]interface{}, len(messages))
	for i, msg := range messages {
		data, err := json.Marshal(msg)
		if err != nil {
			return types.NewError(types.ErrStoreFailure, "failed to encode message").WithCause(err)
		}
		values[i] = data
	}

	key := sessionKey(sessionID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Error("history append failed", zap.String("session", sessionID), zap.Error(err))
		return types.NewError(types.ErrStoreFailure, "failed to append history").WithCause(err)
	}
	return nil
}

// History implements Store.
func (s *RedisStore) History(ctx context.Context, sessionID string) ([]types.Message, error) {
	raw, err := s.client.LRange(ctx, sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		s.logger.Error("history read failed", zap.String("session", sessionID), zap.Error(err))
		return nil, types.NewError(types.ErrStoreFailure, "failed to read history").WithCause(err)
	}

	messages := make([]types.Message, 0, len(raw))
	for _, item := range raw {
		var msg types.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, types.NewError(types.ErrStoreFailure, "failed to decode message").WithCause(err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// Clear implements Store.
func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return types.NewError(types.ErrStoreFailure, "failed to clear history").WithCause(err)
	}
	return nil
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
