package cache

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is nil until InitRedis succeeds; callers treat nil as "no shared cache".
var Client *redis.Client

const (
	dialTimeout = 3 * time.Second
	ioTimeout   = 2 * time.Second
)

var (
	newRedisClient = func(opts *redis.Options) *redis.Client {
		return redis.NewClient(opts)
	}
	pingRedis = func(ctx context.Context, client *redis.Client) error {
		return client.Ping(ctx).Err()
	}
	parseRedisURL = redis.ParseURL
)

// InitRedis connects Client to REDIS_URL, which may be host:port or a redis:// URL.
func InitRedis(ctx context.Context) error {
	opts, err := redisOptions(strings.TrimSpace(os.Getenv("REDIS_URL")))
	if err != nil {
		return err
	}

	client := newRedisClient(opts)
	if err := pingRedis(ctx, client); err != nil {
		_ = client.Close()
		return fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
	}
	Client = client
	return nil
}

func redisOptions(addr string) (*redis.Options, error) {
	if addr == "" {
		addr = "localhost:6379"
	}
	opts := &redis.Options{Addr: addr}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := parseRedisURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		opts = parsed
	}
	// Quote lookups and the run lock must fail fast so callers fall back to
	// the in-process cache and mutex.
	opts.DialTimeout = dialTimeout
	opts.ReadTimeout = ioTimeout
	opts.WriteTimeout = ioTimeout
	return opts, nil
}

// Ping reports whether the shared Redis client is reachable.
func Ping(ctx context.Context) error {
	if Client == nil {
		return fmt.Errorf("redis not configured")
	}
	return Client.Ping(ctx).Err()
}

func Close() {
	if Client != nil {
		_ = Client.Close()
		Client = nil
	}
}
