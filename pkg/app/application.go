// Package app assembles the HTTP surface: a bare health router, the
// public booking API behind the full middleware stack, and the admin
// dashboard API behind a stack without the request timeout so the
// event stream can stay open.
package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	adminhandler "ribobook/internal/admin/handler"
	"ribobook/pkg/config"
	"ribobook/pkg/contracts"
	"ribobook/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

type Application struct {
	cfg          *config.Config
	server       *http.Server
	rateLimiter  *middleware.MobileRateLimiter
	healthRoutes http.Handler
	publicRoutes http.Handler
	adminRoutes  http.Handler
}

func NewApplication() *Application {
	return &Application{}
}

func (a *Application) SetApp(cfg *config.Config, publicHandler, adminHandler contracts.Handler) {
	a.cfg = cfg
	a.setHealthHandler()
	a.setPublicHandler(publicHandler)
	a.setAdminHandler(adminHandler)
	a.setAppServer()
}

func (a *Application) setHealthHandler() {
	healthRouter := httprouter.New()
	healthHandler := adminhandler.NewHealthHandler(a.cfg.Client.Mongo, a.cfg.Log)
	healthHandler.RegisterRoutes(healthRouter)

	var h http.Handler = healthRouter
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.healthRoutes = h
	a.cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
}

func (a *Application) setPublicHandler(publicHandler contracts.Handler) {
	publicRouter := httprouter.New()
	publicHandler.RegisterRoutes(publicRouter)

	a.rateLimiter = middleware.NewMobileRateLimiter(
		a.cfg.RateLimitRequests,
		a.cfg.RateLimitWindow,
		middleware.BodyMobileExtractor,
		a.cfg.Log,
	)

	var h http.Handler = publicRouter
	h = middleware.RequestTimeout(a.cfg.RequestTimeout)(h)
	h = middleware.MobileRateLimit(a.rateLimiter)(h)
	h = middleware.ContentTypeValidation(a.cfg.Log)(h)
	h = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(h)
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.publicRoutes = h
	a.cfg.Log.Info("Public endpoints configured with full middleware stack")
}

// The admin chain carries no RequestTimeout: the event stream is a
// long-lived response and must not be cut off by a per-request deadline.
func (a *Application) setAdminHandler(adminHandler contracts.Handler) {
	adminRouter := httprouter.New()
	adminHandler.RegisterRoutes(adminRouter)

	var h http.Handler = adminRouter
	h = middleware.ContentTypeValidation(a.cfg.Log)(h)
	h = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(h)
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.adminRoutes = h
	a.cfg.Log.Info("Admin endpoints configured without request timeout for the event stream")
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthRoutes)
	mux.Handle("/ready", a.healthRoutes)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/v1/admin/") {
			a.adminRoutes.ServeHTTP(w, r)
			return
		}
		a.publicRoutes.ServeHTTP(w, r)
	})

	a.server = &http.Server{
		Addr:        ":" + a.cfg.Port,
		Handler:     mux,
		ReadTimeout: a.cfg.ReadTimeout,
		// WriteTimeout must outlast the event stream, so only the read
		// side gets a server-level deadline.
		IdleTimeout: a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

// Run blocks until the server fails or a shutdown signal arrives.
// onShutdown hooks run before the server drains.
func (a *Application) Run(onShutdown ...func()) {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		a.cfg.Log.Fatal("HTTP server failed", "error", err)

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown(onShutdown)
	}
}

func (a *Application) gracefulShutdown(hooks []func()) {
	a.cfg.Log.Info("Starting graceful shutdown...")

	a.cfg.Log.Info("Stopping background workers...")
	a.rateLimiter.Stop()
	for _, hook := range hooks {
		hook()
	}
	a.cfg.Log.Info("Background workers stopped")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	a.cfg.Log.Info("Server stopped gracefully")
}
