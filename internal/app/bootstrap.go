package app

import (
	"context"
	"fmt"

	"github.com/vitos/trade_analyzer/internal/config"
	"github.com/vitos/trade_analyzer/internal/domain"
	"github.com/vitos/trade_analyzer/internal/infrastructure/exchange"
	"github.com/vitos/trade_analyzer/internal/infrastructure/logger"
	"github.com/vitos/trade_analyzer/internal/infrastructure/storage"
	"github.com/vitos/trade_analyzer/internal/infrastructure/trace"
	"github.com/vitos/trade_analyzer/internal/usecase"
	"go.uber.org/zap"
)

// App holds the wired services shared by the commands.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Store    *storage.SQLiteStore
	Analyzer *usecase.TradeAnalyzerService
	Importer *usecase.ImportService
	Metrics  *usecase.MetricsService
}

// New loads configuration and wires logger, tracing, storage and services.
func New(configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var log *zap.Logger
	if cfg.Logging.File != "" {
		log, err = logger.NewFileLogger(cfg.Logging.File, cfg.Logging.Level)
	} else {
		log, err = logger.NewLogger(cfg.Logging.Level)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	if err := trace.Init(cfg.Tracing.Enabled); err != nil {
		log.Warn("Failed to init tracing", zap.Error(err))
	}

	store, err := storage.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to init sqlite: %w", err)
	}

	return Wire(cfg, log, store), nil
}

// Wire assembles services over an already open store.
func Wire(cfg *config.Config, log *zap.Logger, store *storage.SQLiteStore) *App {
	var candles domain.CandleProvider
	if cfg.Risk.Model == usecase.RiskModelPrice {
		bybit := exchange.NewBybitAdapter(cfg.Exchange.APIKey, cfg.Exchange.APISecret, cfg.Exchange.RESTEndpoint, cfg.Exchange.Category)
		candles = exchange.NewCachedCandleProvider(bybit, store, log)
	}

	estimator := usecase.NewRiskEstimator(cfg.Risk.Model, candles, cfg.Risk.FallbackNotionalPct, log)
	analyzer := usecase.NewTradeAnalyzerService(log)

	log.Info("Services wired",
		zap.String("risk_model", cfg.Risk.Model),
		zap.String("score_model", cfg.Metrics.ScoreModel),
		zap.String("db", cfg.Storage.Path),
	)

	return &App{
		Config:   cfg,
		Logger:   log,
		Store:    store,
		Analyzer: analyzer,
		Importer: usecase.NewImportService(analyzer, store, log),
		Metrics:  usecase.NewMetricsService(store, store, store, estimator, usecase.ScoreWeightsFor(cfg.Metrics.ScoreModel), log),
	}
}

func (a *App) Close(ctx context.Context) {
	if err := trace.Shutdown(ctx); err != nil {
		a.Logger.Warn("Failed to shut down tracing", zap.Error(err))
	}
	if err := a.Store.Close(); err != nil {
		a.Logger.Warn("Failed to close store", zap.Error(err))
	}
	_ = a.Logger.Sync()
}
