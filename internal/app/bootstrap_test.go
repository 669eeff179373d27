package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/trade_analyzer/internal/config"
	"github.com/vitos/trade_analyzer/internal/infrastructure/storage"
	"github.com/vitos/trade_analyzer/internal/usecase"
	"go.uber.org/zap"
)

func TestWire_ImportThenRecalculate(t *testing.T) {
	cfg := &config.Config{}
	cfg.Risk.Model = usecase.RiskModelVolatility
	cfg.Metrics.ScoreModel = usecase.ScoreModelConservative

	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)

	a := Wire(cfg, zap.NewNop(), store)
	defer a.Close(context.Background())

	res, err := a.Importer.Import(context.Background(), "alice", "", usecase.CSVTemplate)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)

	done, err := a.Metrics.RecalculateAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, done)

	m, err := store.GetTradingMetrics(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, m.QualifyingTrades)
	assert.Equal(t, 2, m.Wins)
}
