// Package server exposes the card pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"solana-flex-card/internal/domain"
	"solana-flex-card/internal/pipeline"
)

// CardService is the pipeline surface the server needs.
type CardService interface {
	GenerateCard(ctx context.Context, walletAddress string) ([]byte, error)
	PriceSummary(ctx context.Context) (domain.MarketSnapshot, error)
}

// Config holds server configuration.
type Config struct {
	Addr   string
	Ticker string
	Log    zerolog.Logger
}

// Server represents the HTTP server.
type Server struct {
	router *chi.Mux
	server *http.Server
	cards  CardService
	ticker string
	log    zerolog.Logger
}

// New creates the HTTP server with routes and middleware wired.
func New(cfg Config, cards CardService) *Server {
	s := &Server{
		router: chi.NewRouter(),
		cards:  cards,
		ticker: cfg.Ticker,
		log:    cfg.Log.With().Str("component", "server").Logger(),
	}

	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Get("/card/{wallet}", s.handleCard)
	s.router.Get("/price", s.handlePrice)
	s.router.Get("/healthz", s.handleHealth)

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Router returns the chi mux, exported for tests.
func (s *Server) Router() http.Handler { return s.router }

// Start begins serving. Blocks until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	wallet := chi.URLParam(r, "wallet")

	img, err := s.cards.GenerateCard(r.Context(), wallet)
	if err != nil {
		s.writeCardError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

func (s *Server) writeCardError(w http.ResponseWriter, err error) {
	var rl *pipeline.RateLimitedError

	switch {
	case errors.Is(err, domain.ErrInvalidAddress):
		writeJSONError(w, http.StatusBadRequest, "invalid wallet address")
	case errors.As(err, &rl):
		w.Header().Set("Retry-After", retryAfterSeconds(rl.RetryIn))
		writeJSONError(w, http.StatusTooManyRequests, "rate limited, slow down")
	case errors.Is(err, domain.ErrRateLimited):
		writeJSONError(w, http.StatusTooManyRequests, "rate limited, slow down")
	case errors.Is(err, domain.ErrChainUnavailable):
		writeJSONError(w, http.StatusBadGateway, "chain data unavailable")
	default:
		s.log.Error().Err(err).Msg("card generation failed")
		writeJSONError(w, http.StatusInternalServerError, "card generation failed")
	}
}

type priceResponse struct {
	Ticker         string `json:"ticker"`
	PriceUSD       string `json:"price_usd"`
	MarketCapUSD   string `json:"market_cap_usd"`
	Volume24hUSD   string `json:"volume_24h_usd"`
	PriceChange24h string `json:"price_change_24h"`
	FetchedAt      string `json:"fetched_at"`
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	snap, err := s.cards.PriceSummary(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusBadGateway, "market data unavailable")
		return
	}

	writeJSON(w, http.StatusOK, priceResponse{
		Ticker:         s.ticker,
		PriceUSD:       snap.PriceUSD.String(),
		MarketCapUSD:   snap.MarketCapUSD.String(),
		Volume24hUSD:   snap.Volume24hUSD.String(),
		PriceChange24h: formatChangePct(snap.PriceChange24h),
		FetchedAt:      snap.FetchedAt.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func retryAfterSeconds(d time.Duration) string {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

func formatChangePct(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}
