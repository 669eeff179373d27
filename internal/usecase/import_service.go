package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vitos/trade_analyzer/internal/domain"
	"github.com/vitos/trade_analyzer/internal/infrastructure/trace"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const DefaultImportPlatform = "csv_import"

type ImportResult struct {
	Analysis   *domain.TradeAnalysis `json:"analysis"`
	Inserted   int                   `json:"inserted"`
	Duplicates int                   `json:"duplicates"`
	Failed     int                   `json:"failed"`
}

type ImportService struct {
	analyzer  *TradeAnalyzerService
	positions domain.PositionRepository
	logger    *zap.Logger
	timeNow   func() time.Time
	newID     func() string
}

func NewImportService(analyzer *TradeAnalyzerService, positions domain.PositionRepository, logger *zap.Logger) *ImportService {
	return &ImportService{
		analyzer:  analyzer,
		positions: positions,
		logger:    logger,
		timeNow:   time.Now,
		newID:     uuid.NewString,
	}
}

// Import analyzes CSV text and stores every matched trade as a closed
// position for userID. Trades whose signature already exists for the user are
// skipped. Unmatched orders are reported through the analysis only.
func (s *ImportService) Import(ctx context.Context, userID, platform, text string) (*ImportResult, error) {
	ctx, span := trace.StartSpan(ctx, "import.csv", attribute.String("user_id", userID))
	defer span.End()

	if platform == "" {
		platform = DefaultImportPlatform
	}

	analysis, err := s.analyzer.Analyze(text)
	if err != nil {
		return nil, err
	}

	existing, err := s.positions.ListPositionSignatures(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing positions: %w", err)
	}

	result := &ImportResult{Analysis: analysis}
	for _, t := range analysis.MatchedTrades {
		pos := PositionFromTrade(userID, platform, t)
		sig := pos.Signature()
		if existing[sig] {
			result.Duplicates++
			continue
		}

		pos.ID = s.newID()
		pos.CreatedAt = s.timeNow().UTC()
		if err := s.positions.SavePosition(ctx, pos); err != nil {
			s.logger.Error("Failed to save imported position",
				zap.String("user_id", userID),
				zap.String("symbol", pos.Symbol),
				zap.Error(err))
			result.Failed++
			continue
		}
		existing[sig] = true
		result.Inserted++
	}

	s.logger.Info("Imported trades",
		zap.String("user_id", userID),
		zap.String("platform", platform),
		zap.Int("inserted", result.Inserted),
		zap.Int("duplicates", result.Duplicates),
		zap.Int("failed", result.Failed),
	)

	return result, nil
}

// PositionFromTrade maps a matched trade onto a closed, unverified position.
// Net P/L is stored as realized P/L with commissions already deducted. CSV rows
// carry no asset class, so it is left empty and inferred at estimate time.
func PositionFromTrade(userID, platform string, t *domain.MatchedTrade) *domain.Position {
	exit := t.ExitTime.UTC()
	return &domain.Position{
		UserID:      userID,
		Symbol:      t.Symbol,
		Side:        t.Side,
		EntryPrice:  t.EntryPrice,
		ExitPrice:   t.ExitPrice,
		EntryTime:   t.EntryTime.UTC(),
		ExitTime:    &exit,
		Quantity:    t.Quantity,
		RealizedPnL: t.NetPnL,
		Platform:    platform,
		IsOpen:      false,
	}
}
