package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps transcripts in Redis, indexed by save time so List
// can return newest first without scanning.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	// Addr is the Redis server address (host:port).
	Addr string `yaml:"addr"`
	// Password is the Redis password (optional).
	Password string `yaml:"password"`
	// DB is the Redis database number.
	DB int `yaml:"db"`
	// Prefix is the key prefix (default: "mindio:history:").
	Prefix string `yaml:"prefix"`
	// TTL is the transcript expiry duration (0 = never expire).
	TTL time.Duration `yaml:"ttl"`
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedisStoreFromClient(client, cfg.Prefix, cfg.TTL), nil
}

// NewRedisStoreFromClient wraps an existing client. Useful for testing
// with miniredis.
func NewRedisStoreFromClient(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "mindio:history:"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) indexKey() string {
	return s.prefix + "index"
}

func (s *RedisStore) transcriptKey(name string) string {
	return s.prefix + "transcript:" + name
}

// Save implements the Store interface.
func (s *RedisStore) Save(ctx context.Context, transcript Transcript) (string, error) {
	now := time.Now()
	name := filePrefix + now.Format(timestampLayout)

	data, err := json.Marshal(transcript)
	if err != nil {
		return "", fmt.Errorf("encode transcript: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.transcriptKey(name), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), redis.Z{
		Score:  float64(now.UnixNano()),
		Member: name,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("save transcript: %w", err)
	}
	return name, nil
}

// List implements the Store interface, newest first.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	names, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	return names, nil
}

// LoadByIndex implements the Store interface.
func (s *RedisStore) LoadByIndex(ctx context.Context, index int) (*Transcript, error) {
	names, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if index < 1 || index > len(names) {
		return nil, ErrNotFound
	}

	data, err := s.client.Get(ctx, s.transcriptKey(names[index-1])).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}

	var transcript Transcript
	if err := json.Unmarshal(data, &transcript); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	return &transcript, nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
