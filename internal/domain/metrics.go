package domain

import "time"

// TradingMetrics is the per-user aggregate, overwritten on every recalculation.
type TradingMetrics struct {
	UserID              string     `json:"user_id"`
	TotalVerifiedTrades int        `json:"total_verified_trades"`
	QualifyingTrades    int        `json:"qualifying_trades"`
	Wins                int        `json:"wins"`
	Losses              int        `json:"losses"`
	Breakeven           int        `json:"breakeven"`
	WinRate             float64    `json:"win_rate"`
	AvgRMultiple        float64    `json:"avg_r_multiple"`
	TotalRMultiple      float64    `json:"total_r_multiple"`
	PositiveRPercent    float64    `json:"positive_r_percent"`
	RMultipleVariance   float64    `json:"r_multiple_variance"`
	AccuracyScore       *float64   `json:"accuracy_score"`
	IsVerified          bool       `json:"is_verified"`
	LastSyncAt          *time.Time `json:"last_sync_at,omitempty"`
	APIConnectionStatus string     `json:"api_connection_status"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

const (
	ConnectionStatusActive       = "active"
	ConnectionStatusDisconnected = "disconnected"
	ConnectionStatusNone         = "none"
)

// ExchangeConnection is a user's link to an exchange account.
type ExchangeConnection struct {
	UserID     string     `json:"user_id"`
	Exchange   string     `json:"exchange"`
	Status     string     `json:"status"`
	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`
}
