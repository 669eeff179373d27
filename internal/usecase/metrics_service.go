package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vitos/trade_analyzer/internal/domain"
	"github.com/vitos/trade_analyzer/internal/infrastructure/trace"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type MetricsService struct {
	positions   domain.PositionRepository
	metrics     domain.MetricsRepository
	connections domain.ConnectionRepository
	estimator   RiskEstimator
	weights     ScoreWeights
	logger      *zap.Logger
	timeNow     func() time.Time // For testing
}

func NewMetricsService(
	positions domain.PositionRepository,
	metrics domain.MetricsRepository,
	connections domain.ConnectionRepository,
	estimator RiskEstimator,
	weights ScoreWeights,
	logger *zap.Logger,
) *MetricsService {
	return &MetricsService{
		positions:   positions,
		metrics:     metrics,
		connections: connections,
		estimator:   estimator,
		weights:     weights,
		logger:      logger,
		timeNow:     time.Now,
	}
}

// Recalculate re-estimates risk and R for every closed position of the user,
// writes each result back, then upserts the user's aggregate metrics.
//
// Positions are processed one by one and independently. A position that fails
// to estimate or persist is logged and left out of the aggregate; earlier
// writes are kept. Every value is recomputed from scratch, so a re-run over an
// unchanged position set produces the same figures.
func (s *MetricsService) Recalculate(ctx context.Context, userID string) (*domain.TradingMetrics, error) {
	ctx, span := trace.StartSpan(ctx, "metrics.recalculate", attribute.String("user_id", userID))
	defer span.End()

	positions, err := s.positions.ListClosedPositions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list closed positions: %w", err)
	}

	var (
		rs                      []float64
		wins, losses, breakeven int
		verified                int
	)

	for _, pos := range positions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		est, err := s.estimator.Estimate(ctx, pos)
		if err != nil {
			s.logger.Error("Failed to estimate risk", zap.String("position_id", pos.ID), zap.Error(err))
			continue
		}

		net := pos.NetPnL()
		r := RMultiple(net, est.EstimatedRisk)

		update := domain.RiskUpdate{
			PositionID:    pos.ID,
			MAE:           est.MAE,
			MFE:           est.MFE,
			RMultiple:     r,
			EstimatedRisk: est.EstimatedRisk,
		}
		if err := s.positions.UpdatePositionRisk(ctx, update); err != nil {
			s.logger.Error("Failed to update position risk", zap.String("position_id", pos.ID), zap.Error(err))
			continue
		}

		rs = append(rs, r)
		switch {
		case net > 0:
			wins++
		case net < 0:
			losses++
		default:
			breakeven++
		}
		if pos.ExchangeVerified {
			verified++
		}
	}

	status, lastSync, err := s.connectionStatus(ctx, userID)
	if err != nil {
		return nil, err
	}

	st := ComputeRStats(rs)
	m := &domain.TradingMetrics{
		UserID:              userID,
		TotalVerifiedTrades: verified,
		QualifyingTrades:    st.Count,
		Wins:                wins,
		Losses:              losses,
		Breakeven:           breakeven,
		AvgRMultiple:        st.AvgR,
		TotalRMultiple:      st.TotalR,
		PositiveRPercent:    st.PositiveRPercent,
		RMultipleVariance:   st.Variance,
		AccuracyScore:       AccuracyScore(st, s.weights),
		IsVerified:          status == domain.ConnectionStatusActive && verified >= MinQualifyingTrades,
		LastSyncAt:          lastSync,
		APIConnectionStatus: status,
		UpdatedAt:           s.timeNow().UTC(),
	}
	if st.Count > 0 {
		m.WinRate = float64(wins) / float64(st.Count) * 100
	}

	if err := s.metrics.UpsertTradingMetrics(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to upsert trading metrics: %w", err)
	}

	s.logger.Info("Recalculated trading metrics",
		zap.String("user_id", userID),
		zap.Int("positions", len(positions)),
		zap.Int("qualifying", st.Count),
		zap.Float64("avg_r", st.AvgR),
		zap.Bool("verified", m.IsVerified),
	)

	return m, nil
}

// RecalculateAll runs Recalculate for every user with stored positions. One
// user's failure does not stop the others.
func (s *MetricsService) RecalculateAll(ctx context.Context) (int, error) {
	users, err := s.positions.ListUserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	var errs []error
	done := 0
	for _, userID := range users {
		if _, err := s.Recalculate(ctx, userID); err != nil {
			s.logger.Error("Failed to recalculate metrics", zap.String("user_id", userID), zap.Error(err))
			errs = append(errs, fmt.Errorf("user %s: %w", userID, err))
			continue
		}
		done++
	}
	return done, errors.Join(errs...)
}

func (s *MetricsService) connectionStatus(ctx context.Context, userID string) (string, *time.Time, error) {
	if s.connections == nil {
		return domain.ConnectionStatusNone, nil, nil
	}
	conns, err := s.connections.ListConnections(ctx, userID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to list exchange connections: %w", err)
	}

	status := domain.ConnectionStatusNone
	var lastSync *time.Time
	for _, c := range conns {
		if c.Status == domain.ConnectionStatusActive {
			status = domain.ConnectionStatusActive
		} else if status == domain.ConnectionStatusNone {
			status = domain.ConnectionStatusDisconnected
		}
		if c.LastSyncAt != nil && (lastSync == nil || c.LastSyncAt.After(*lastSync)) {
			t := *c.LastSyncAt
			lastSync = &t
		}
	}
	return status, lastSync, nil
}
