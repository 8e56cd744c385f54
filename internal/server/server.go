// Package server exposes the calculator over HTTP. All handlers are thin
// glue: they decode JSON, call into the engine/analysis/batch packages,
// and map domain errors to status codes. No calculation logic lives here.
package server

import (
	"log/slog"
	"net/http"
	"runtime"

	"github.com/quantumduality/qdtlab/internal/batch"
	"github.com/quantumduality/qdtlab/internal/config"
	"github.com/quantumduality/qdtlab/internal/engine"
	"github.com/quantumduality/qdtlab/internal/llm"
)

// Version is reported by /api/health.
const Version = "1.2.0"

// Server wires the HTTP surface to the calculation core.
type Server struct {
	cfg       config.Server
	calcCfg   config.Calculator
	engine    *engine.Engine
	coord     *batch.Coordinator
	assistant *llm.Client
	cache     *resultCache
	limiter   *rateLimiter
	log       *slog.Logger
}

func New(cfg *config.File, eng *engine.Engine, assistant *llm.Client, log *slog.Logger) *Server {
	return &Server{
		cfg:       cfg.Server,
		calcCfg:   cfg.Calculator,
		engine:    eng,
		coord:     batch.New(eng, runtime.NumCPU()),
		assistant: assistant,
		cache:     newResultCache(cfg.Server.CacheSize),
		limiter:   newRateLimiter(cfg.Server.RateLimit, cfg.Server.RateWindow),
		log:       log,
	}
}

// Handler builds the route table with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/config", s.handleConfig)
	mux.HandleFunc("POST /api/calculate", s.rateLimited(s.handleCalculate))
	mux.HandleFunc("POST /api/analyze", s.rateLimited(s.handleAnalyze))
	mux.HandleFunc("POST /api/batch", s.rateLimited(s.handleBatch))
	mux.HandleFunc("POST /api/ask", s.rateLimited(s.handleAsk))

	return s.withRequestLog(corsMiddleware(s.cfg.AllowedOrigins, mux))
}

// ListenAndServe blocks serving the API.
func (s *Server) ListenAndServe() error {
	s.log.Info("http api starting",
		"addr", s.cfg.Addr,
		"rate_limit", s.cfg.RateLimit,
		"cache_size", s.cfg.CacheSize,
		"assistant", s.assistant.Enabled(),
	)
	return http.ListenAndServe(s.cfg.Addr, s.Handler())
}
