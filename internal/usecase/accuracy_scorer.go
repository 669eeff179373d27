package usecase

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// MinQualifyingTrades gates the accuracy score and the verified flag.
const MinQualifyingTrades = 30

// ScoreWeights are the tunable constants of the accuracy score.
//
//	score = avgR band + positive-R band + consistency
//
// The avgR band maps [AvgRFloor, AvgRCeiling] linearly onto [0, AvgRPoints].
// The positive-R band maps 0..100% onto [0, PositiveRPoints]. Consistency is
// ConsistencyPoints minus VariancePenalty per unit of R variance, floored at 0.
type ScoreWeights struct {
	AvgRFloor         float64
	AvgRCeiling       float64
	AvgRPoints        float64
	PositiveRPoints   float64
	ConsistencyPoints float64
	VariancePenalty   float64
}

const (
	ScoreModelExpectancy   = "expectancy"
	ScoreModelConservative = "conservative"
)

var scorePresets = map[string]ScoreWeights{
	ScoreModelExpectancy: {
		AvgRFloor:         -1,
		AvgRCeiling:       3,
		AvgRPoints:        40,
		PositiveRPoints:   40,
		ConsistencyPoints: 20,
		VariancePenalty:   5,
	},
	ScoreModelConservative: {
		AvgRFloor:         -2,
		AvgRCeiling:       2,
		AvgRPoints:        40,
		PositiveRPoints:   40,
		ConsistencyPoints: 20,
		VariancePenalty:   10,
	},
}

// ScoreWeightsFor returns a preset, defaulting to the expectancy weights.
func ScoreWeightsFor(model string) ScoreWeights {
	if w, ok := scorePresets[model]; ok {
		return w
	}
	return scorePresets[ScoreModelExpectancy]
}

// RMultiple is net P/L in units of estimated risk.
func RMultiple(netPnL, risk float64) float64 {
	if risk <= 0 {
		return 0
	}
	return netPnL / risk
}

// RStats aggregates a distribution of R-multiples.
type RStats struct {
	Count            int
	AvgR             float64
	TotalR           float64
	PositiveRPercent float64
	Variance         float64
}

// ComputeRStats returns mean, sum, share of R > 0 and population variance.
func ComputeRStats(rs []float64) RStats {
	st := RStats{Count: len(rs)}
	if len(rs) == 0 {
		return st
	}

	positive := 0
	for _, r := range rs {
		st.TotalR += r
		if r > 0 {
			positive++
		}
	}
	st.AvgR = stat.Mean(rs, nil)
	st.PositiveRPercent = float64(positive) / float64(len(rs)) * 100
	if len(rs) >= 2 {
		_, st.Variance = stat.PopMeanVariance(rs, nil)
	}
	return st
}

// AccuracyScore returns a score in [0, 100], or nil below MinQualifyingTrades.
func AccuracyScore(st RStats, w ScoreWeights) *float64 {
	if st.Count < MinQualifyingTrades {
		return nil
	}

	span := w.AvgRCeiling - w.AvgRFloor
	avgRPart := 0.0
	if span > 0 {
		avgRPart = clamp((st.AvgR-w.AvgRFloor)/span, 0, 1) * w.AvgRPoints
	}
	positivePart := clamp(st.PositiveRPercent/100, 0, 1) * w.PositiveRPoints
	consistencyPart := math.Max(0, w.ConsistencyPoints-st.Variance*w.VariancePenalty)

	score := clamp(avgRPart+positivePart+consistencyPart, 0, 100)
	return &score
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
