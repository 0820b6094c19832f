package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rickgao/pricetrack/internal/model"
	"github.com/rickgao/pricetrack/internal/service"
	"github.com/rickgao/pricetrack/internal/store"
	"github.com/rickgao/pricetrack/internal/version"
)

// Server serves the read API for the price service.
type Server struct {
	svc    service.Service
	logger *slog.Logger
	http   *http.Server
}

// New creates a Server listening on addr.
func New(addr string, svc service.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		svc:    svc,
		logger: logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/prices/{base}/{quote}/current", s.handleCurrent)
	mux.HandleFunc("GET /api/prices/{base}/{quote}/history", s.handleHistory)
	mux.HandleFunc("GET /api/pairs", s.handlePairs)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.http = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	return s
}

// Start begins serving. It blocks until the listener fails or Shutdown
// is called.
func (s *Server) Start() error {
	s.logger.Info("http server started", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

type priceResponse struct {
	Pair      string    `json:"pair"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

type pricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}

type historyResponse struct {
	Pair           string       `json:"pair"`
	Prices         []pricePoint `json:"prices"`
	VolatilityRank int          `json:"volatility_rank"`
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	pair := model.NewPair(r.PathValue("base"), r.PathValue("quote"))
	if pair.Base == "" || pair.Quote == "" {
		writeError(w, http.StatusBadRequest, "malformed pair")
		return
	}

	obs, err := s.svc.CurrentPrice(r.Context(), pair)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, priceResponse{
		Pair:      obs.Pair.String(),
		Price:     obs.Price,
		Timestamp: obs.Timestamp,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	pair := model.NewPair(r.PathValue("base"), r.PathValue("quote"))
	if pair.Base == "" || pair.Quote == "" {
		writeError(w, http.StatusBadRequest, "malformed pair")
		return
	}

	h, err := s.svc.History(r.Context(), pair)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	resp := historyResponse{
		Pair:           h.Pair.String(),
		Prices:         make([]pricePoint, len(h.Prices)),
		VolatilityRank: h.Volatility.Rank,
	}
	for i, obs := range h.Prices {
		resp.Prices[i] = pricePoint{Timestamp: obs.Timestamp, Price: obs.Price}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePairs(w http.ResponseWriter, r *http.Request) {
	pairs := s.svc.TrackedPairs()
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.String()
	}
	writeJSON(w, http.StatusOK, map[string]any{"pairs": out})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"version": version.String(),
		"pairs":   len(s.svc.TrackedPairs()),
	})
}

// writeServiceError maps service errors onto HTTP statuses: not-found
// is a clean 404, storage failure a 503, caller timeout a 504.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrPairNotFound):
		writeError(w, http.StatusNotFound, "pair not found")
	case errors.Is(err, store.ErrUnavailable):
		s.logger.Error("store unavailable", "path", r.URL.Path, "err", err)
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "request timed out")
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
