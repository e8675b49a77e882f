package quoteclient

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/wallet-ledger/internal/domain"
)

type countingProvider struct {
	calls int
	rate  decimal.Decimal
	err   error
}

func (p *countingProvider) GetQuote(ctx context.Context, base, quote string) (decimal.Decimal, error) {
	p.calls++
	return p.rate, p.err
}

func TestCacheReadThrough(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	next := &countingProvider{rate: decimal.RequireFromString("2.5")}
	cache := NewCache(next, client, 5*time.Second)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := cache.GetQuote(ctx, "BTC", "ETH")
		require.NoError(t, err)
		require.Equal(t, "2.5", got.String())
	}

	require.Equal(t, 1, next.calls)

	cached, err := s.Get("quote:BTC-ETH")
	require.NoError(t, err)
	require.Equal(t, "2.5", cached)

	s.FastForward(6 * time.Second)

	_, err = cache.GetQuote(ctx, "BTC", "ETH")
	require.NoError(t, err)
	require.Equal(t, 2, next.calls)
}

func TestCacheWithoutTTLPassesThrough(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	next := &countingProvider{rate: decimal.RequireFromString("5.1")}
	cache := NewCache(next, client, 0)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		got, err := cache.GetQuote(ctx, "USD", "BRL")
		require.NoError(t, err)
		require.Equal(t, "5.1", got.String())
	}

	require.Equal(t, 2, next.calls)
	require.False(t, s.Exists("quote:USD-BRL"))
}

func TestCacheDoesNotStoreFailures(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	next := &countingProvider{err: domain.ErrQuoteUnavailable}
	cache := NewCache(next, client, time.Minute)

	_, err := cache.GetQuote(context.Background(), "USD", "BRL")
	require.ErrorIs(t, err, domain.ErrQuoteUnavailable)
	require.False(t, s.Exists("quote:USD-BRL"))
}

func TestCacheBypassesRedisFailure(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)

	client := goredis.NewClient(&goredis.Options{Addr: s.Addr(), MaxRetries: -1})
	s.Close()

	next := &countingProvider{rate: decimal.RequireFromString("0.0001")}
	cache := NewCache(next, client, time.Minute)

	got, err := cache.GetQuote(context.Background(), "BRL", "BTC")
	require.NoError(t, err)
	require.Equal(t, "0.0001", got.String())
	require.Equal(t, 1, next.calls)
}

func TestCacheDiscardsMalformedEntry(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	require.NoError(t, s.Set("quote:SOL-USD", "not-a-number"))

	next := &countingProvider{rate: decimal.RequireFromString("150")}
	cache := NewCache(next, client, time.Minute)

	got, err := cache.GetQuote(context.Background(), "SOL", "USD")
	require.NoError(t, err)
	require.Equal(t, "150", got.String())
	require.Equal(t, 1, next.calls)
}
