package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/trade_analyzer/internal/domain"
	"github.com/vitos/trade_analyzer/internal/infrastructure/storage"
	"github.com/vitos/trade_analyzer/internal/usecase"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "web.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	log := zap.NewNop()
	analyzer := usecase.NewTradeAnalyzerService(log)
	importer := usecase.NewImportService(analyzer, store, log)
	metrics := usecase.NewMetricsService(store, store, store, usecase.NewVolatilityRiskEstimator(),
		usecase.ScoreWeightsFor(usecase.ScoreModelExpectancy), log)
	return NewServer(0, store, store, analyzer, importer, metrics, log)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_HealthAndTemplate(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = do(t, s, http.MethodGet, "/api/template.csv", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, usecase.CSVTemplate, rec.Body.String())
}

func TestServer_Analyze(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/analyze", usecase.CSVTemplate)
	require.Equal(t, http.StatusOK, rec.Code)

	var analysis domain.TradeAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.Len(t, analysis.MatchedTrades, 2)
	assert.Equal(t, 2, analysis.Summary.TotalTrades)
	assert.Len(t, analysis.UnmatchedOrders, 1)

	rec = do(t, s, http.MethodPost, "/api/analyze", "Symbol,Side\n")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestServer_ImportAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/users/alice/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/users/alice/imports?platform=broker", usecase.CSVTemplate)
	require.Equal(t, http.StatusOK, rec.Code)
	var imported usecase.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &imported))
	assert.Equal(t, 2, imported.Inserted)

	rec = do(t, s, http.MethodPost, "/api/users/alice/imports", usecase.CSVTemplate)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &imported))
	assert.Equal(t, 2, imported.Duplicates)

	rec = do(t, s, http.MethodGet, "/api/users/alice/positions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var positions []domain.Position
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &positions))
	require.Len(t, positions, 2)
	assert.Equal(t, "broker", positions[0].Platform)

	rec = do(t, s, http.MethodPost, "/api/users/alice/metrics/recalculate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var m domain.TradingMetrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, 2, m.QualifyingTrades)
	assert.Nil(t, m.AccuracyScore)
	assert.Equal(t, domain.ConnectionStatusNone, m.APIConnectionStatus)

	rec = do(t, s, http.MethodGet, "/api/users/alice/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_EmptyPositionsIsArray(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/users/nobody/positions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}
