package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"tron-balance-bot/internal/domain"

	"github.com/redis/go-redis/v9"
)

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// QuoteStore mirrors price quotes into Redis so restarts do not refetch warm prices.
type QuoteStore struct {
	redis  RedisClient
	prefix string
}

func NewQuoteStore(client RedisClient, prefix string) *QuoteStore {
	return &QuoteStore{redis: client, prefix: prefix}
}

func (s *QuoteStore) Save(ctx context.Context, key string, quote domain.PriceQuote, ttl time.Duration) error {
	data, err := json.Marshal(quote)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, s.prefix+key, data, ttl).Err()
}

// Load returns ok=false on a miss.
func (s *QuoteStore) Load(ctx context.Context, key string) (domain.PriceQuote, bool, error) {
	data, err := s.redis.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.PriceQuote{}, false, nil
	}
	if err != nil {
		return domain.PriceQuote{}, false, err
	}
	var quote domain.PriceQuote
	if err := json.Unmarshal(data, &quote); err != nil {
		return domain.PriceQuote{}, false, err
	}
	return quote, true, nil
}
