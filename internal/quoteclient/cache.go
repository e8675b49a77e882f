package quoteclient

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Provider supplies spot exchange rates.
type Provider interface {
	GetQuote(ctx context.Context, base, quote string) (decimal.Decimal, error)
}

// Cache is a read-through Redis cache in front of a Provider.
//
// Redis failures are logged and bypassed; they never fail a quote.
type Cache struct {
	next   Provider
	client *goredis.Client
	ttl    time.Duration
	prefix string
}

// NewCache wraps next with a Redis cache holding quotes for ttl.
// A non-positive ttl disables caching.
func NewCache(next Provider, client *goredis.Client, ttl time.Duration) *Cache {
	return &Cache{
		next:   next,
		client: client,
		ttl:    ttl,
		prefix: "quote:",
	}
}

func (c *Cache) key(base, quote string) string {
	return c.prefix + base + "-" + quote
}

// GetQuote returns the cached rate or fetches and caches a fresh one.
func (c *Cache) GetQuote(ctx context.Context, base, quote string) (decimal.Decimal, error) {
	if c.ttl <= 0 {
		return c.next.GetQuote(ctx, base, quote)
	}

	l := zerolog.Ctx(ctx)
	key := c.key(base, quote)

	val, err := c.client.Get(ctx, key).Result()

	switch {
	case err == nil:
		rate, perr := decimal.NewFromString(val)
		if perr == nil {
			return rate, nil
		}

		l.Warn().Err(perr).Str("key", key).Msg("discarding malformed cached quote")
	case !errors.Is(err, goredis.Nil):
		l.Warn().Err(err).Str("key", key).Msg("quote cache get failed")
	}

	rate, err := c.next.GetQuote(ctx, base, quote)
	if err != nil {
		return rate, err
	}

	if err := c.client.Set(ctx, key, rate.String(), c.ttl).Err(); err != nil {
		l.Warn().Err(err).Str("key", key).Msg("quote cache set failed")
	}

	return rate, nil
}
