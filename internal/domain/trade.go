package domain

import "time"

type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// MatchedTrade is a round trip built from two opposite orders of one symbol.
type MatchedTrade struct {
	Symbol          string    `json:"symbol"`
	Side            Side      `json:"side"`
	EntryPrice      float64   `json:"entry_price"`
	ExitPrice       float64   `json:"exit_price"`
	Quantity        float64   `json:"quantity"`
	EntryTime       time.Time `json:"entry_time"`
	ExitTime        time.Time `json:"exit_time"`
	EntryCommission float64   `json:"entry_commission"`
	ExitCommission  float64   `json:"exit_commission"`
	TotalCommission float64   `json:"total_commission"`
	GrossPnL        float64   `json:"gross_pnl"`
	NetPnL          float64   `json:"net_pnl"`
	PnLPercent      float64   `json:"pnl_percent"`
	EntryOrder      *RawOrder `json:"entry_order"`
	ExitOrder       *RawOrder `json:"exit_order"`
}

type DailySummary struct {
	Date    string  `json:"date"` // YYYY-MM-DD, UTC
	Trades  int     `json:"trades"`
	NetPnL  float64 `json:"net_pnl"`
	WinRate float64 `json:"win_rate"`
}

type SymbolSummary struct {
	Symbol     string  `json:"symbol"`
	Trades     int     `json:"trades"`
	GrossPnL   float64 `json:"gross_pnl"`
	NetPnL     float64 `json:"net_pnl"`
	Commission float64 `json:"commission"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	WinRate    float64 `json:"win_rate"`
}

// AnalysisSummary is recomputed on every analysis call.
type AnalysisSummary struct {
	TotalTrades     int             `json:"total_trades"`
	MatchedOrders   int             `json:"matched_orders"`
	UnmatchedOrders int             `json:"unmatched_orders"`
	SkippedRows     int             `json:"skipped_rows"`
	GrossPnL        float64         `json:"gross_pnl"`
	NetPnL          float64         `json:"net_pnl"`
	TotalCommission float64         `json:"total_commission"`
	WinningTrades   int             `json:"winning_trades"`
	LosingTrades    int             `json:"losing_trades"`
	WinRate         float64         `json:"win_rate"`
	AvgPnL          float64         `json:"avg_pnl"`
	AvgWin          float64         `json:"avg_win"`
	AvgLoss         float64         `json:"avg_loss"`
	BestTrade       float64         `json:"best_trade"`
	WorstTrade      float64         `json:"worst_trade"`
	BySymbol        []SymbolSummary `json:"by_symbol"`
	Daily           []DailySummary  `json:"daily"`
}

// TradeAnalysis is the full result handed to a CLI or import pipeline.
type TradeAnalysis struct {
	MatchedTrades   []*MatchedTrade `json:"matched_trades"`
	UnmatchedOrders []*RawOrder     `json:"unmatched_orders"`
	Summary         AnalysisSummary `json:"summary"`
	ParseResult     *ParseResult    `json:"parse_result"`
}
