package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotEnoughLines = errors.New("csv must contain a header row and at least one data row")
	ErrNotFound       = errors.New("not found")
	ErrNoCandles      = errors.New("no candles available")
)

type Candle struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// CandleProvider returns daily candles covering [from, to].
type CandleProvider interface {
	GetDailyCandles(ctx context.Context, symbol string, from, to time.Time) ([]Candle, error)
}

// CandleCache stores candle windows keyed by symbol and date range.
type CandleCache interface {
	GetCachedCandles(ctx context.Context, symbol, from, to string) ([]Candle, bool, error)
	SaveCachedCandles(ctx context.Context, symbol, from, to string, candles []Candle) error
}

// PositionRepository defines storage operations for positions.
type PositionRepository interface {
	SavePosition(ctx context.Context, pos *Position) error
	GetPosition(ctx context.Context, id string) (*Position, error)
	ListPositions(ctx context.Context, userID string) ([]*Position, error)
	ListClosedPositions(ctx context.Context, userID string) ([]*Position, error)
	ListPositionSignatures(ctx context.Context, userID string) (map[PositionSignature]bool, error)
	UpdatePositionRisk(ctx context.Context, update RiskUpdate) error
	ListUserIDs(ctx context.Context) ([]string, error)
}

// MetricsRepository defines storage operations for per-user metrics.
type MetricsRepository interface {
	UpsertTradingMetrics(ctx context.Context, m *TradingMetrics) error
	GetTradingMetrics(ctx context.Context, userID string) (*TradingMetrics, error)
}

// ConnectionRepository defines storage operations for exchange connections.
type ConnectionRepository interface {
	SaveConnection(ctx context.Context, conn *ExchangeConnection) error
	ListConnections(ctx context.Context, userID string) ([]*ExchangeConnection, error)
}
