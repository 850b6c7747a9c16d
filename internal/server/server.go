// Package server wires the HTTP router and runs the API server.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"tradebot/internal/config"
	apperrors "tradebot/internal/errors"
	"tradebot/internal/handlers"
	"tradebot/internal/middleware"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 30 * time.Second

// Server is the dashboard API server.
type Server struct {
	cfg    *config.Config
	log    logrus.FieldLogger
	router *chi.Mux

	authLimiter *middleware.RateLimiter
	apiLimiter  *middleware.RateLimiter
}

// New creates a Server and builds its router.
func New(cfg *config.Config, deps *handlers.Dependencies) *Server {
	s := &Server{
		cfg:         cfg,
		log:         deps.Logger,
		authLimiter: middleware.NewRateLimiter(middleware.LoginLimit, middleware.ClientIP),
		apiLimiter:  middleware.NewRateLimiter(middleware.APILimit, middleware.TokenOrIP),
	}
	s.router = s.routes(deps)
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes(deps *handlers.Dependencies) *chi.Mux {
	authMW := middleware.NewAuthMiddleware(deps.Tokens)
	authHandler := handlers.NewAuthHandler(deps)
	healthHandler := handlers.NewHealthHandler(deps)
	portfolioHandler := handlers.NewPortfolioHandler(deps)
	orderHandler := handlers.NewOrderHandler(deps)
	marketHandler := handlers.NewMarketHandler(deps)
	historyHandler := handlers.NewHistoryHandler(deps)
	auditHandler := handlers.NewAuditHandler(deps)

	r := chi.NewRouter()

	// Chi middleware (aliased as chimw to avoid conflict with our middleware package)
	r.Use(chimw.RequestID)
	// Forwarding headers are client-controlled unless a proxy rewrites them.
	if s.cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestLogger(s.log))
	r.Use(middleware.Recoverer(s.log))
	r.Use(middleware.CORS(s.cfg.CORSOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIHeaders)

		r.Get("/health", healthHandler.Health)

		r.Route("/auth", func(r chi.Router) {
			r.With(s.authLimiter.Limit).Post("/login", authHandler.Login)
			r.Get("/verify", authHandler.Verify)
			r.With(authMW.RequireToken).Post("/logout", authHandler.Logout)
		})

		// Every resource route requires the bearer token issued at login.
		r.Group(func(r chi.Router) {
			r.Use(authMW.RequireToken)
			r.Use(s.apiLimiter.Limit)

			r.Route("/portfolio", func(r chi.Router) {
				r.Get("/account", portfolioHandler.Account)
				r.Get("/positions", portfolioHandler.Positions)
				r.Post("/positions", portfolioHandler.OpenPosition)
				r.Delete("/positions/{dealId}", portfolioHandler.ClosePosition)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", orderHandler.List)
				r.Post("/", orderHandler.Create)
				r.Delete("/{dealId}", orderHandler.Cancel)
			})

			r.Route("/markets", func(r chi.Router) {
				r.Get("/search", marketHandler.Search)
				r.Get("/{epic}", marketHandler.Market)
				r.Get("/{epic}/prices", marketHandler.Prices)
			})

			r.Route("/history", func(r chi.Router) {
				r.Get("/activity", historyHandler.Activity)
				r.Get("/transactions", historyHandler.Transactions)
			})

			r.Get("/audit", auditHandler.List)
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			middleware.WriteError(w, apperrors.New(apperrors.ErrNotFound, "Not found"))
		})
	})

	if s.cfg.StaticDir != "" {
		r.With(middleware.SecurityHeaders).Get("/*", spaHandler(s.cfg.StaticDir))
	}

	return r
}

// spaHandler serves files from dir and falls back to index.html so the
// dashboard's client-side routes survive a reload.
func spaHandler(dir string) http.HandlerFunc {
	fs := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")
	return func(w http.ResponseWriter, r *http.Request) {
		clean := filepath.Clean("/" + strings.TrimPrefix(r.URL.Path, "/"))
		if info, err := os.Stat(filepath.Join(dir, clean)); err == nil && !info.IsDir() {
			fs.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, index)
	}
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully within ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	defer s.authLimiter.Stop()
	defer s.apiLimiter.Stop()

	srv := &http.Server{
		Addr:              s.cfg.Address(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Vendor calls may take up to the IG timeout.
		WriteTimeout: s.cfg.IG.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.WithField("address", "http://"+s.cfg.Address()).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("server stopped")
	return nil
}
