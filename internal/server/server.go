package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"EarningsRadar/internal/cache"
	"EarningsRadar/internal/collector"
	"EarningsRadar/internal/store"
)

// Config holds server dependencies.
type Config struct {
	Port       int
	Log        zerolog.Logger
	BaseCtx    context.Context
	Cache      *cache.EarningsCache
	Tracked    *cache.TrackedSet
	Earnings   *collector.EarningsCollector
	Profiles   *collector.ProfileCollector
	Financials *collector.FinancialsCollector
	Store      collector.ProfileStore
	Symbols    *store.SymbolDocument
}

// Server is the HTTP read/write API consumed by the calendar UI.
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger

	baseCtx    context.Context
	cache      *cache.EarningsCache
	tracked    *cache.TrackedSet
	earnings   *collector.EarningsCollector
	profiles   *collector.ProfileCollector
	financials *collector.FinancialsCollector
	store      collector.ProfileStore
	symbols    *store.SymbolDocument
}

// New creates a new HTTP server.
func New(cfg Config) *Server {
	baseCtx := cfg.BaseCtx
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	s := &Server{
		router:     chi.NewRouter(),
		log:        cfg.Log.With().Str("component", "server").Logger(),
		baseCtx:    baseCtx,
		cache:      cfg.Cache,
		tracked:    cfg.Tracked,
		earnings:   cfg.Earnings,
		profiles:   cfg.Profiles,
		financials: cfg.Financials,
		store:      cfg.Store,
		symbols:    cfg.Symbols,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/earnings", s.handleEarnings)
		r.Get("/profiles", s.handleProfiles)
		r.Post("/earnings/refresh", s.handleRefresh)
		r.Get("/financials/{symbol}", s.handleFinancials)
		r.Post("/save-stocks", s.handleSaveStocks)
		r.Post("/import-watchlist", s.handleImportWatchlist)
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
