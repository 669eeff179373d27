package domain

import "time"

type AssetClass string

const (
	AssetClassCrypto  AssetClass = "crypto"
	AssetClassStock   AssetClass = "stock"
	AssetClassForex   AssetClass = "forex"
	AssetClassFutures AssetClass = "futures"
)

// Position is a persisted round trip. MAE, MFE, RMultiple and EstimatedRisk
// are written back by each metrics recalculation.
type Position struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	Symbol           string     `json:"symbol"`
	Side             Side       `json:"side"`
	EntryPrice       float64    `json:"entry_price"`
	ExitPrice        float64    `json:"exit_price"`
	EntryTime        time.Time  `json:"entry_time"`
	ExitTime         *time.Time `json:"exit_time,omitempty"`
	Quantity         float64    `json:"quantity"`
	RealizedPnL      float64    `json:"realized_pnl"`
	Fees             float64    `json:"fees"`
	AssetClass       AssetClass `json:"asset_class,omitempty"`
	Platform         string     `json:"platform"`
	IsOpen           bool       `json:"is_open"`
	ExchangeVerified bool       `json:"exchange_verified"`
	MAE              *float64   `json:"mae,omitempty"`
	MFE              *float64   `json:"mfe,omitempty"`
	RMultiple        *float64   `json:"r_multiple,omitempty"`
	EstimatedRisk    *float64   `json:"estimated_risk,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// NetPnL is realized P/L after fees.
func (p *Position) NetPnL() float64 {
	return p.RealizedPnL - p.Fees
}

// PositionSignature identifies an imported trade for duplicate detection.
// Entry time is compared at millisecond precision.
type PositionSignature struct {
	Symbol      string
	Side        Side
	EntryPrice  float64
	ExitPrice   float64
	EntryTimeMs int64
	Quantity    float64
}

func (p *Position) Signature() PositionSignature {
	return PositionSignature{
		Symbol:      p.Symbol,
		Side:        p.Side,
		EntryPrice:  p.EntryPrice,
		ExitPrice:   p.ExitPrice,
		EntryTimeMs: p.EntryTime.UnixMilli(),
		Quantity:    p.Quantity,
	}
}

// RiskUpdate is the per-position write of a metrics recalculation.
type RiskUpdate struct {
	PositionID    string
	MAE           *float64
	MFE           *float64
	RMultiple     float64
	EstimatedRisk float64
}
