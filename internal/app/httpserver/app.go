package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"siteapi/internal/http/handlers"
	"siteapi/internal/http/middleware"
	"siteapi/internal/lib/csrf"
	"siteapi/internal/lib/ratelimit"
)

type App struct {
	log        *slog.Logger
	httpServer *http.Server
	port       int
}

// New creates the HTTP server app with the middleware chain in its fixed
// order: request logging, rate limit, CSRF, handlers.
func New(
	log *slog.Logger,
	handler *handlers.Handler,
	guard *csrf.Guard,
	limiter *ratelimit.Limiter,
	port int,
	timeout time.Duration,
) *App {
	router := chi.NewRouter()
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.RateLimit(limiter))
	router.Use(middleware.CSRF(guard))
	handler.Routes(router)

	return &App{
		log: log,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      router,
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
			IdleTimeout:  time.Minute,
		},
		port: port,
	}
}

// Router rebuilds the handler chain for in-process tests.
func (a *App) Router() http.Handler {
	return a.httpServer.Handler
}

// MustRun runs the HTTP server and panics if it cannot.
func (a *App) MustRun() {
	if err := a.Run(); err != nil {
		panic(err)
	}
}

// Run serves until Stop or a listener error.
func (a *App) Run() error {
	const op = "httpserver.Run"

	log := a.log.With(slog.String("op", op), slog.Int("port", a.port))
	log.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))

	if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Stop drains in-flight requests and shuts the server down.
func (a *App) Stop() {
	const op = "httpserver.Stop"

	a.log.With(slog.String("op", op)).Info("stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Error("shutdown did not finish cleanly", slog.String("op", op), slog.String("error", err.Error()))
	}
}
