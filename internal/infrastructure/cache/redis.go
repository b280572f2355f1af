package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Youngermaster/taskhub/internal/domain/events"
	"github.com/Youngermaster/taskhub/pkg/config"
	"github.com/go-redis/redis/v8"
)

// Custom error types
var (
	ErrCacheNotFound = errors.New("cache: key not found")
	ErrInvalidConfig = errors.New("cache: invalid configuration")
)

// BoardEventChannel is the Redis channel mutations publish board events on.
const BoardEventChannel = "taskhub:board:events"

// Config holds the configuration for the Redis client
type Config struct {
	Addr        string
	Password    string
	DB          int
	PoolSize    int
	ConnTimeout time.Duration
	DefaultTTL  time.Duration
	KeyPrefix   string
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		PoolSize:    50,
		ConnTimeout: 5 * time.Second,
		DefaultTTL:  5 * time.Minute,
		KeyPrefix:   "taskhub:",
	}
}

// NewConfigFromEnv creates a Redis config from project configuration
func NewConfigFromEnv(cfg *config.Config) *Config {
	c := DefaultConfig()
	c.Addr = fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	c.Password = cfg.Redis.Password
	c.DB = cfg.Redis.DB
	return c
}

// Client wraps the Redis client with JSON helpers and event publishing.
type Client struct {
	client *redis.Client
	config *Config
}

// NewClient creates a new Redis client with the provided configuration
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: address is required", ErrInvalidConfig)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnTimeout)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{client: client, config: cfg}, nil
}

func (c *Client) key(k string) string {
	return c.config.KeyPrefix + k
}

// GetJSON reads a cached value into dest. Returns ErrCacheNotFound on miss.
func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheNotFound
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

// SetJSON stores a value under key with the given TTL (DefaultTTL when zero).
func (c *Client) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = c.config.DefaultTTL
	}
	return c.client.Set(ctx, c.key(key), data, ttl).Err()
}

// DeletePattern removes every key matching the glob pattern. Used to
// invalidate report caches after a mutation.
func (c *Client) DeletePattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, c.key(pattern), 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// PublishBoardEvent publishes a mutation event to the board channel.
func (c *Client) PublishBoardEvent(ctx context.Context, event *events.BoardEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal board event: %w", err)
	}
	return c.client.Publish(ctx, BoardEventChannel, payload).Err()
}

// HealthCheck pings the Redis server
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the underlying connection
func (c *Client) Close() error {
	return c.client.Close()
}
