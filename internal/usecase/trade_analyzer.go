package usecase

import (
	"sort"

	"github.com/vitos/trade_analyzer/internal/domain"
	"go.uber.org/zap"
)

type TradeAnalyzerService struct {
	logger *zap.Logger
}

func NewTradeAnalyzerService(logger *zap.Logger) *TradeAnalyzerService {
	return &TradeAnalyzerService{
		logger: logger,
	}
}

// Analyze parses CSV text, matches its orders and summarizes the round trips.
func (s *TradeAnalyzerService) Analyze(text string) (*domain.TradeAnalysis, error) {
	parsed, err := ParseOrders(text)
	if err != nil {
		return nil, err
	}

	match := MatchOrders(parsed.Orders)
	summary := Summarize(match.Matched, match.Unmatched, len(parsed.SkippedRows))

	s.logger.Info("Analyzed order history",
		zap.Int("data_rows", parsed.DataRows),
		zap.Int("orders", len(parsed.Orders)),
		zap.Int("skipped", len(parsed.SkippedRows)),
		zap.Int("matched_trades", len(match.Matched)),
		zap.Int("unmatched_orders", len(match.Unmatched)),
		zap.Strings("detected_fields", parsed.DetectedFields),
	)

	return &domain.TradeAnalysis{
		MatchedTrades:   match.Matched,
		UnmatchedOrders: match.Unmatched,
		Summary:         summary,
		ParseResult:     parsed,
	}, nil
}

// Summarize aggregates matched trades. A trade wins when its net P/L is
// strictly positive; zero counts as a loss. Daily buckets use the exit date in
// UTC and are returned newest first.
func Summarize(trades []*domain.MatchedTrade, unmatched []*domain.RawOrder, skippedRows int) domain.AnalysisSummary {
	summary := domain.AnalysisSummary{
		TotalTrades:     len(trades),
		MatchedOrders:   len(trades) * 2,
		UnmatchedOrders: len(unmatched),
		SkippedRows:     skippedRows,
		BySymbol:        []domain.SymbolSummary{},
		Daily:           []domain.DailySummary{},
	}
	if len(trades) == 0 {
		return summary
	}

	bySymbol := make(map[string]*domain.SymbolSummary)
	type dayAcc struct {
		trades int
		wins   int
		pnl    float64
	}
	byDay := make(map[string]*dayAcc)

	var winSum, lossSum float64
	summary.BestTrade = trades[0].NetPnL
	summary.WorstTrade = trades[0].NetPnL

	for _, t := range trades {
		win := t.NetPnL > 0

		summary.GrossPnL += t.GrossPnL
		summary.NetPnL += t.NetPnL
		summary.TotalCommission += t.TotalCommission
		if win {
			summary.WinningTrades++
			winSum += t.NetPnL
		} else {
			summary.LosingTrades++
			lossSum += t.NetPnL
		}
		if t.NetPnL > summary.BestTrade {
			summary.BestTrade = t.NetPnL
		}
		if t.NetPnL < summary.WorstTrade {
			summary.WorstTrade = t.NetPnL
		}

		sym, ok := bySymbol[t.Symbol]
		if !ok {
			sym = &domain.SymbolSummary{Symbol: t.Symbol}
			bySymbol[t.Symbol] = sym
		}
		sym.Trades++
		sym.GrossPnL += t.GrossPnL
		sym.NetPnL += t.NetPnL
		sym.Commission += t.TotalCommission
		if win {
			sym.Wins++
		} else {
			sym.Losses++
		}

		date := t.ExitTime.UTC().Format("2006-01-02")
		day, ok := byDay[date]
		if !ok {
			day = &dayAcc{}
			byDay[date] = day
		}
		day.trades++
		day.pnl += t.NetPnL
		if win {
			day.wins++
		}
	}

	n := float64(len(trades))
	summary.WinRate = float64(summary.WinningTrades) / n * 100
	summary.AvgPnL = summary.NetPnL / n
	if summary.WinningTrades > 0 {
		summary.AvgWin = winSum / float64(summary.WinningTrades)
	}
	if summary.LosingTrades > 0 {
		summary.AvgLoss = lossSum / float64(summary.LosingTrades)
	}

	for _, sym := range bySymbol {
		sym.WinRate = float64(sym.Wins) / float64(sym.Trades) * 100
		summary.BySymbol = append(summary.BySymbol, *sym)
	}
	sort.Slice(summary.BySymbol, func(i, j int) bool {
		return summary.BySymbol[i].Symbol < summary.BySymbol[j].Symbol
	})

	for date, day := range byDay {
		summary.Daily = append(summary.Daily, domain.DailySummary{
			Date:    date,
			Trades:  day.trades,
			NetPnL:  day.pnl,
			WinRate: float64(day.wins) / float64(day.trades) * 100,
		})
	}
	sort.Slice(summary.Daily, func(i, j int) bool {
		return summary.Daily[i].Date > summary.Daily[j].Date
	})

	return summary
}
