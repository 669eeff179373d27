package exchange

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/trade_analyzer/internal/domain"
	"go.uber.org/zap"
)

type countingProvider struct {
	candles []domain.Candle
	err     error
	calls   int
}

func (p *countingProvider) GetDailyCandles(ctx context.Context, symbol string, from, to time.Time) ([]domain.Candle, error) {
	p.calls++
	return p.candles, p.err
}

type mapCache struct {
	entries  map[string][]domain.Candle
	writeErr error
}

func (c *mapCache) GetCachedCandles(ctx context.Context, symbol, from, to string) ([]domain.Candle, bool, error) {
	v, ok := c.entries[symbol+"|"+from+"|"+to]
	return v, ok, nil
}

func (c *mapCache) SaveCachedCandles(ctx context.Context, symbol, from, to string, candles []domain.Candle) error {
	if c.writeErr != nil {
		return c.writeErr
	}
	c.entries[symbol+"|"+from+"|"+to] = candles
	return nil
}

func TestCachedCandleProvider_HitAfterMiss(t *testing.T) {
	upstream := &countingProvider{candles: []domain.Candle{{Time: 1704067200, High: 10, Low: 5}}}
	cache := &mapCache{entries: map[string][]domain.Candle{}}
	provider := NewCachedCandleProvider(upstream, cache, zap.NewNop())

	from := time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)

	first, err := provider.GetDailyCandles(context.Background(), "BTCUSDT", from, to)
	require.NoError(t, err)
	second, err := provider.GetDailyCandles(context.Background(), "BTCUSDT", from, to)
	require.NoError(t, err)

	assert.Equal(t, 1, upstream.calls)
	assert.Equal(t, first, second)
	assert.Contains(t, cache.entries, "BTCUSDT|2024-01-01|2024-01-02")
}

func TestCachedCandleProvider_EmptyAndErrors(t *testing.T) {
	cache := &mapCache{entries: map[string][]domain.Candle{}}

	empty := NewCachedCandleProvider(&countingProvider{}, cache, zap.NewNop())
	_, err := empty.GetDailyCandles(context.Background(), "X", time.Now(), time.Now())
	assert.ErrorIs(t, err, domain.ErrNoCandles)
	assert.Empty(t, cache.entries)

	boom := errors.New("boom")
	failing := NewCachedCandleProvider(&countingProvider{err: boom}, cache, zap.NewNop())
	_, err = failing.GetDailyCandles(context.Background(), "X", time.Now(), time.Now())
	assert.ErrorIs(t, err, boom)
}

func TestCachedCandleProvider_WriteFailureStillReturnsCandles(t *testing.T) {
	upstream := &countingProvider{candles: []domain.Candle{{Time: 1}}}
	cache := &mapCache{entries: map[string][]domain.Candle{}, writeErr: errors.New("readonly")}
	provider := NewCachedCandleProvider(upstream, cache, zap.NewNop())

	candles, err := provider.GetDailyCandles(context.Background(), "X", time.Now(), time.Now())
	require.NoError(t, err)
	assert.Len(t, candles, 1)
}
