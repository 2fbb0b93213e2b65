// Package server exposes the agent over HTTP: quote/swap building,
// portfolio holdings and token search, plus health. It is a thin
// boundary: validation in, outcome-to-status mapping out.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/bh2smith/jupiter-agent/internal/agent"
	"github.com/bh2smith/jupiter-agent/internal/common"
	"github.com/bh2smith/jupiter-agent/internal/config"
	"github.com/bh2smith/jupiter-agent/internal/jupiter"
	"github.com/bh2smith/jupiter-agent/internal/metrics"
)

// QuoteService runs a quote query end to end.
type QuoteService interface {
	Run(ctx context.Context, q agent.QuoteQuery) (*agent.Outcome, error)
}

// ProviderClient is the subset of the aggregator client served directly.
type ProviderClient interface {
	GetHoldings(ctx context.Context, address string) (json.RawMessage, error)
	SearchToken(ctx context.Context, query string, minScore float64) ([]jupiter.MintInformation, error)
}

// Server is the HTTP boundary of the agent.
type Server struct {
	common.LoggerMixin

	cfg      config.ServerConfig
	quotes   QuoteService
	provider ProviderClient
	minScore float64
	metrics  metrics.Metrics

	mux  *http.ServeMux
	http *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics attaches a metrics sink.
func WithMetrics(m metrics.Metrics) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithMinScore sets the default score threshold for the search endpoint.
func WithMinScore(minScore float64) Option {
	return func(s *Server) { s.minScore = minScore }
}

// New creates the server and registers its routes.
func New(cfg config.ServerConfig, quotes QuoteService, provider ProviderClient, opts ...Option) *Server {
	s := &Server{
		LoggerMixin: common.NewLoggerMixin(),
		cfg:         cfg,
		quotes:      quotes,
		provider:    provider,
		minScore:    95,
		metrics:     metrics.NewNoopMetrics(),
		mux:         http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mux.HandleFunc("GET /api/quote", s.handleQuote)
	s.mux.HandleFunc("GET /api/portfolio", s.handlePortfolio)
	s.mux.HandleFunc("GET /api/tokens/search", s.handleSearch)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.http = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.withRequestLogging(s.mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the server's HTTP handler, middleware included.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// ListenAndServe blocks serving HTTP until the context is canceled, then
// drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.GetLogger().Info("http server listening", "addr", s.cfg.Addr())
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return err
		}
		err := <-errCh
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
