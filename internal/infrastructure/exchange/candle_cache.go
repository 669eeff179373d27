package exchange

import (
	"context"
	"time"

	"github.com/vitos/trade_analyzer/internal/domain"
	"go.uber.org/zap"
)

const cacheDateLayout = "2006-01-02"

// CachedCandleProvider serves candle windows from a cache keyed by symbol and
// UTC date range, fetching from the upstream provider on a miss.
type CachedCandleProvider struct {
	upstream domain.CandleProvider
	cache    domain.CandleCache
	logger   *zap.Logger
}

func NewCachedCandleProvider(upstream domain.CandleProvider, cache domain.CandleCache, logger *zap.Logger) *CachedCandleProvider {
	return &CachedCandleProvider{
		upstream: upstream,
		cache:    cache,
		logger:   logger,
	}
}

func (p *CachedCandleProvider) GetDailyCandles(ctx context.Context, symbol string, from, to time.Time) ([]domain.Candle, error) {
	fromKey := from.UTC().Format(cacheDateLayout)
	toKey := to.UTC().Format(cacheDateLayout)

	candles, ok, err := p.cache.GetCachedCandles(ctx, symbol, fromKey, toKey)
	if err != nil {
		p.logger.Warn("Candle cache read failed", zap.String("symbol", symbol), zap.Error(err))
	} else if ok {
		return candles, nil
	}

	candles, err = p.upstream.GetDailyCandles(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, domain.ErrNoCandles
	}

	if err := p.cache.SaveCachedCandles(ctx, symbol, fromKey, toKey, candles); err != nil {
		p.logger.Warn("Candle cache write failed", zap.String("symbol", symbol), zap.Error(err))
	}
	return candles, nil
}
