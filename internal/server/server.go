// Package server wires the store, the controllers and the HTTP handlers
// together and runs the local API.
//
// DEPENDENCY FLOW:
//
//	sqlite.DB ──► OrderState, RequestComposer, ProfileController
//	          └──► handlers (writes that bypass a controller)
//
// New is the composition root; nothing else constructs these pieces.
//
// SHARED CONTROLLERS:
// The controllers are built once and shared by every request. Their
// observable state is what a screen would bind to, so two clients see the
// same orders snapshot and the same profile. Handlers that read signals
// right after driving a controller take their own lock around the pair.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/medsupply/internal/config"
	"github.com/sakif/medsupply/internal/controller"
	"github.com/sakif/medsupply/internal/handler"
	"github.com/sakif/medsupply/internal/middleware"
	sqliteRepo "github.com/sakif/medsupply/internal/repository/sqlite"
)

// Server owns the database handle and closes it when Start returns.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB

	orders   *controller.OrderState
	requests *controller.RequestComposer
	profile  *controller.ProfileController
}

// New opens the database, builds the controllers and registers routes.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(ctx, cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router:   chi.NewRouter(),
		config:   cfg,
		logger:   logger,
		db:       db,
		orders:   controller.NewOrderState(ctx, db, logger),
		requests: controller.NewRequestComposer(db, logger),
		profile:  controller.NewProfileController(ctx, db, logger),
	}
	s.profile.OnLogout = func() {
		logger.Info("logout confirmed")
	}

	s.setupRoutes()
	return s, nil
}

// setupRoutes registers middleware and handlers.
//
// ROUTES:
// GET    /healthz                  → liveness
// GET    /api/catalog              → supplies, priorities, statuses
// GET    /api/orders               → refresh and list
// GET    /api/orders/{id}          → one order
// PUT    /api/orders/{id}/status   → change status
// DELETE /api/orders/{id}          → delete
// POST   /api/requests             → submit a new request
// GET    /api/profile              → profile screen state
// PUT    /api/profile              → save profile
// POST   /api/profile/photo        → attach photo reference
// POST   /api/profile/location     → attach location label
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	orderHandler := handler.NewOrderHandler(s.orders, s.db, s.logger)
	requestHandler := handler.NewRequestHandler(s.requests, s.orders, s.logger)
	profileHandler := handler.NewProfileHandler(s.profile, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/catalog", handler.HandleCatalog)

		r.Get("/orders", orderHandler.HandleList)
		r.Get("/orders/{id}", orderHandler.HandleGet)
		r.Put("/orders/{id}/status", orderHandler.HandleUpdateStatus)
		r.Delete("/orders/{id}", orderHandler.HandleDelete)

		r.Post("/requests", requestHandler.HandleSubmit)

		r.Get("/profile", profileHandler.HandleGet)
		r.Put("/profile", profileHandler.HandleUpdate)
		r.Post("/profile/photo", profileHandler.HandleAttachPhoto)
		r.Post("/profile/location", profileHandler.HandleAttachLocation)
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close waits for queued controller work and closes the database.
func (s *Server) Close() error {
	s.orders.Wait()
	s.profile.Wait()
	return s.db.Close()
}

// Start serves until ctx is cancelled, SIGINT/SIGTERM arrives or the
// listener fails. In-flight requests get ShutdownTimeout to finish; the
// database is closed on the way out.
//
// SHUTDOWN ORDER:
//  1. srv.Shutdown stops accepting connections and waits for handlers.
//  2. Close waits for queued controller work (a photo attach may still be
//     writing after its request returned).
//  3. The database is closed, which checkpoints the WAL file.
func (s *Server) Start(ctx context.Context) error {
	defer s.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	case <-ctx.Done():
		s.logger.Info("shutdown requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	s.logger.Info("server stopped gracefully")
	return nil
}
