package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vitos/trade_analyzer/internal/domain"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// csvStatus maps analysis errors: structural CSV problems are the caller's fault.
func csvStatus(err error) int {
	if errors.Is(err, domain.ErrNotEnoughLines) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

func (s *Server) readCSV(w http.ResponseWriter, r *http.Request) (string, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		s.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return "", false
	}
	return string(body), true
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	text, ok := s.readCSV(w, r)
	if !ok {
		return
	}

	analysis, err := s.analyzer.Analyze(text)
	if err != nil {
		s.writeError(w, csvStatus(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	text, ok := s.readCSV(w, r)
	if !ok {
		return
	}

	result, err := s.importer.Import(r.Context(), userID, r.URL.Query().Get("platform"), text)
	if err != nil {
		if errors.Is(err, domain.ErrNotEnoughLines) {
			s.writeError(w, csvStatus(err), err.Error())
			return
		}
		s.logger.Error("Failed to import trades", zap.String("user_id", userID), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to import trades")
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListPositions(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	positions, err := s.positions.ListPositions(r.Context(), userID)
	if err != nil {
		s.logger.Error("Failed to list positions", zap.String("user_id", userID), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to list positions")
		return
	}
	if positions == nil {
		positions = []*domain.Position{}
	}
	s.writeJSON(w, http.StatusOK, positions)
}

func (s *Server) handleGetMetrics(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	m, err := s.metricsRepo.GetTradingMetrics(r.Context(), userID)
	if errors.Is(err, domain.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "no metrics for user")
		return
	}
	if err != nil {
		s.logger.Error("Failed to get metrics", zap.String("user_id", userID), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to get metrics")
		return
	}
	s.writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	m, err := s.metrics.Recalculate(r.Context(), userID)
	if err != nil {
		s.logger.Error("Failed to recalculate metrics", zap.String("user_id", userID), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to recalculate metrics")
		return
	}
	s.writeJSON(w, http.StatusOK, m)
}
