package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const ratesKey = "rates:krw"

// RateCache implements ports.RateCache using Redis. The whole rate table is
// stored as one JSON document so reads stay a single round trip.
type RateCache struct {
	client *goredis.Client
}

// NewRateCache creates a new Redis-backed exchange rate cache.
func NewRateCache(client *goredis.Client) *RateCache {
	return &RateCache{client: client}
}

// Get retrieves the cached rate table. Returns nil, nil on a miss.
func (c *RateCache) Get(ctx context.Context) (map[string]decimal.Decimal, error) {
	val, err := c.client.Get(ctx, ratesKey).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis rates get: %w", err)
	}

	rates := make(map[string]decimal.Decimal)
	if err := json.Unmarshal(val, &rates); err != nil {
		return nil, fmt.Errorf("unmarshal cached rates: %w", err)
	}
	return rates, nil
}

// Set stores the rate table with TTL.
func (c *RateCache) Set(ctx context.Context, rates map[string]decimal.Decimal, ttl time.Duration) error {
	data, err := json.Marshal(rates)
	if err != nil {
		return fmt.Errorf("marshal rates: %w", err)
	}
	if err := c.client.Set(ctx, ratesKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis rates set: %w", err)
	}
	return nil
}
