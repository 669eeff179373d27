package usecase

import (
	"context"
	"math"
	"time"

	"github.com/vitos/trade_analyzer/internal/domain"
	"go.uber.org/zap"
)

const (
	RiskModelPrice      = "price"
	RiskModelVolatility = "volatility"

	// DefaultNotionalRiskPct is the fallback risk when no candles are available.
	DefaultNotionalRiskPct = 0.02

	// RiskEpsilon keeps estimated risk strictly positive.
	RiskEpsilon = 1e-6
)

// RiskEstimate is the per-position output of a RiskEstimator. MAE and MFE are
// nil when the model does not derive them from prices.
type RiskEstimate struct {
	MAE           *float64
	MFE           *float64
	EstimatedRisk float64
	Model         string
}

// RiskEstimator estimates the capital at risk for a closed position.
type RiskEstimator interface {
	Estimate(ctx context.Context, pos *domain.Position) (RiskEstimate, error)
}

// NewRiskEstimator picks a strategy. "volatility" always selects the table;
// otherwise the price model is used when a candle provider is available.
func NewRiskEstimator(model string, candles domain.CandleProvider, fallbackPct float64, logger *zap.Logger) RiskEstimator {
	if model != RiskModelVolatility && candles != nil {
		return NewPriceRiskEstimator(candles, fallbackPct, logger)
	}
	return NewVolatilityRiskEstimator()
}

// FloorRisk applies the safety floor shared by every model: risk is never
// below a realized loss and never zero.
func FloorRisk(estimated, netPnL float64) float64 {
	realizedLoss := 0.0
	if netPnL < 0 {
		realizedLoss = -netPnL
	}
	return math.Max(math.Max(estimated, realizedLoss), RiskEpsilon)
}

type PriceRiskEstimator struct {
	candles     domain.CandleProvider
	fallbackPct float64
	logger      *zap.Logger
}

func NewPriceRiskEstimator(candles domain.CandleProvider, fallbackPct float64, logger *zap.Logger) *PriceRiskEstimator {
	if fallbackPct <= 0 {
		fallbackPct = DefaultNotionalRiskPct
	}
	return &PriceRiskEstimator{
		candles:     candles,
		fallbackPct: fallbackPct,
		logger:      logger,
	}
}

// Estimate derives MAE and MFE from daily candles over the holding window and
// uses MAE x quantity as the risk. Without usable candles it falls back to a
// fixed share of notional. Provider failures are not returned as errors.
func (e *PriceRiskEstimator) Estimate(ctx context.Context, pos *domain.Position) (RiskEstimate, error) {
	qty := math.Abs(pos.Quantity)
	fallback := RiskEstimate{
		EstimatedRisk: FloorRisk(pos.EntryPrice*qty*e.fallbackPct, pos.NetPnL()),
		Model:         "notional_fallback",
	}

	from, to := HoldingWindow(pos)
	candles, err := e.candles.GetDailyCandles(ctx, pos.Symbol, from, to)
	if err != nil {
		e.logger.Warn("Candle lookup failed, using notional fallback",
			zap.String("position_id", pos.ID),
			zap.String("symbol", pos.Symbol),
			zap.Error(err))
		return fallback, nil
	}
	if len(candles) == 0 {
		return fallback, nil
	}

	mae, mfe := Excursions(pos.Side, pos.EntryPrice, candles)
	if mae <= 0 {
		// No adverse move at daily resolution; keep MAE/MFE but size risk on notional.
		fallback.MAE, fallback.MFE = &mae, &mfe
		return fallback, nil
	}

	return RiskEstimate{
		MAE:           &mae,
		MFE:           &mfe,
		EstimatedRisk: FloorRisk(mae*qty, pos.NetPnL()),
		Model:         RiskModelPrice,
	}, nil
}

// HoldingWindow returns the UTC calendar days spanned by the position. Open
// positions without an exit time end on their entry day.
func HoldingWindow(pos *domain.Position) (time.Time, time.Time) {
	from := truncateDay(pos.EntryTime)
	to := from
	if pos.ExitTime != nil && pos.ExitTime.After(pos.EntryTime) {
		to = truncateDay(*pos.ExitTime)
	}
	return from, to
}

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Excursions returns the maximum adverse and favorable price moves against
// entry over candles, both floored at zero.
func Excursions(side domain.Side, entry float64, candles []domain.Candle) (mae, mfe float64) {
	for _, c := range candles {
		var adverse, favorable float64
		if side == domain.SideShort {
			adverse = c.High - entry
			favorable = entry - c.Low
		} else {
			adverse = entry - c.Low
			favorable = c.High - entry
		}
		mae = math.Max(mae, adverse)
		mfe = math.Max(mfe, favorable)
	}
	return mae, mfe
}

type VolatilityRiskEstimator struct {
	table *VolatilityTable
}

func NewVolatilityRiskEstimator() *VolatilityRiskEstimator {
	return &VolatilityRiskEstimator{table: DefaultVolatilityTable()}
}

// Estimate sizes risk as notional times the symbol's typical daily move.
func (e *VolatilityRiskEstimator) Estimate(_ context.Context, pos *domain.Position) (RiskEstimate, error) {
	vol := e.table.Volatility(pos.Symbol, pos.AssetClass)
	risk := pos.EntryPrice * math.Abs(pos.Quantity) * vol
	return RiskEstimate{
		EstimatedRisk: FloorRisk(risk, pos.NetPnL()),
		Model:         RiskModelVolatility,
	}, nil
}
