// Package web provides the HTTP server and handlers for the risk board.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/riskboard/internal/board"
	"github.com/JonMunkholm/riskboard/internal/catalog"
	"github.com/JonMunkholm/riskboard/internal/config"
	"github.com/JonMunkholm/riskboard/internal/metrics"
	"github.com/JonMunkholm/riskboard/internal/web/middleware"
)

//go:embed static
var staticFiles embed.FS

// Server is the HTTP server for the risk board.
type Server struct {
	cfg     *config.Config
	board   *board.Board
	source  catalog.Source
	metrics *metrics.Metrics
	router  *chi.Mux
	server  *http.Server
	exports *exportSlots

	// stop ends the rate limiter cleanup loops.
	stop context.CancelFunc
}

// NewServer creates a Server that reads the live catalogue from b and
// reloads it from src. m may be nil.
func NewServer(cfg *config.Config, b *board.Board, src catalog.Source, m *metrics.Metrics) *Server {
	s := &Server{
		cfg:     cfg,
		board:   b,
		source:  src,
		metrics: m,
		router:  chi.NewRouter(),
		exports: newExportSlots(cfg.Export.MaxConcurrent, cfg.Export.SlotWait),
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.stop = cancel
	s.setupMiddleware(ctx)
	s.setupRoutes(ctx)
	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware(ctx context.Context) {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(ctx, s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(s.rateLimit(limiter))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes(ctx context.Context) {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Pages
	s.router.Get("/", s.handlePage)
	s.router.Get("/table", s.handleTable)
	s.router.Get("/healthz", s.handleHealth)

	if s.cfg.Metrics.Enabled && s.metrics != nil {
		s.router.Handle(s.cfg.Metrics.Path, s.metrics.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)
		r.Get("/view", s.handleView)
		r.Get("/stats", s.handleStats)
		r.Get("/highlight", s.handleHighlight)

		r.Group(func(r chi.Router) {
			if s.cfg.Rate.Enabled {
				r.Use(s.rateLimit(newRateLimiter(ctx, s.cfg.Rate.ExportLimit, time.Minute)))
			}
			r.Get("/export.csv", s.handleExport)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(s.cfg.Security.RequireAPIKey, s.cfg.Security.APIKeys))
			r.Post("/reload", s.handleReload)
		})
	})
}

// Reload loads the catalogue from the configured source and publishes it.
// On failure the previous catalogue keeps serving.
func (s *Server) Reload(ctx context.Context) error {
	c, err := s.source.Load(ctx)
	if err != nil {
		s.metrics.CatalogFailed()
		return fmt.Errorf("reload %s: %w", s.source.Name(), err)
	}
	return s.Publish(c)
}

// Publish makes c the live catalogue.
func (s *Server) Publish(c *catalog.Catalog) error {
	snap, err := s.board.Set(c)
	if err != nil {
		s.metrics.CatalogFailed()
		return err
	}
	s.metrics.CatalogLoaded(snap.Store.Len())
	return nil
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	slog.Info("starting server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server, letting running downloads finish.
// It is safe to call before or concurrently with Start; a Start that runs
// afterwards returns at once.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stop()
	err := s.server.Shutdown(ctx)
	if derr := s.exports.drain(ctx); derr != nil {
		slog.Warn("exports still running at shutdown", "error", derr)
	}
	return err
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(csp bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if csp {
				w.Header().Set("Content-Security-Policy",
					"default-src 'self'; script-src 'self'; style-src 'self'; img-src 'self' data:")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
