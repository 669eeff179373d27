package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/vitos/trade_analyzer/internal/domain"
	"github.com/vitos/trade_analyzer/internal/usecase"
	"go.uber.org/zap"
)

// maxUploadBytes bounds CSV request bodies.
const maxUploadBytes = 10 << 20

type Server struct {
	router      chi.Router
	server      *http.Server
	positions   domain.PositionRepository
	metricsRepo domain.MetricsRepository
	analyzer    *usecase.TradeAnalyzerService
	importer    *usecase.ImportService
	metrics     *usecase.MetricsService
	logger      *zap.Logger
}

func NewServer(
	port int,
	positions domain.PositionRepository,
	metricsRepo domain.MetricsRepository,
	analyzer *usecase.TradeAnalyzerService,
	importer *usecase.ImportService,
	metrics *usecase.MetricsService,
	logger *zap.Logger,
) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		positions:   positions,
		metricsRepo: metricsRepo,
		analyzer:    analyzer,
		importer:    importer,
		metrics:     metrics,
		logger:      logger,
	}
	s.routes()
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.requestLogger)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/api/template.csv", s.handleTemplate)

	// Analysis (no persistence)
	s.router.Post("/api/analyze", s.handleAnalyze)

	s.router.Route("/api/users/{userID}", func(r chi.Router) {
		r.Post("/imports", s.handleImport)
		r.Get("/positions", s.handleListPositions)
		r.Get("/metrics", s.handleGetMetrics)
		r.Post("/metrics/recalculate", s.handleRecalculate)
	})
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("Starting web server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
