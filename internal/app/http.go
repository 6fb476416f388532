package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"task-tracker/internal/config"
	"task-tracker/internal/handlers"
	"task-tracker/internal/middleware"
	"task-tracker/internal/monitoring"
)

func (a *App) Router() *gin.Engine {
	switch a.Config.Server.Environment {
	case config.EnvLocal, config.EnvDevelopment:
		gin.SetMode(gin.DebugMode)
	case config.EnvTest:
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RecoveryWithLog(a.Logger))
	router.Use(middleware.RequestLogger(a.Logger))
	router.Use(cors.New(a.corsConfig()))
	router.Use(a.Metrics.Middleware())

	routes := handlers.Routes{
		Auth:       handlers.NewAuthHandler(a.Auth),
		Tasks:      handlers.NewTaskHandler(a.Tasks),
		Attendance: handlers.NewAttendanceHandler(a.Attendance),
		Cleanup:    handlers.NewCleanupHandler(a.Cleanup),
		Events:     handlers.NewEventsHandler(a.Hub, a.Config.Events.Heartbeat),
		Health:     monitoring.HealthHandler(a.Health),
		Metrics: monitoring.MetricsHandler(a.Metrics, map[string]monitoring.StatsFunc{
			"events":          func() any { return a.Hub.Metrics().GetStats() },
			"database_pool":   func() any { return a.Pool.Stats() },
			"circuit_breaker": func() any { return a.Store.Breaker().GetStats() },
		}),
		Verifier: a.Tokens,
		Limiter:  a.Limiter,
	}
	routes.Register(router)

	return router
}

func (a *App) corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")

	origins := a.Config.Server.CORSOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// Serve runs the HTTP server and the background jobs until ctx is done, then
// shuts down within the configured timeout. Connected event streams are ended
// as soon as shutdown begins.
func (a *App) Serve(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}

	server := &http.Server{
		Addr:         a.Config.GetServerAddr(),
		Handler:      a.Router(),
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
	// Event streams never finish on their own; closing the hub ends them so
	// Shutdown is not left waiting on open /events connections.
	server.RegisterOnShutdown(a.Hub.Close)

	serveErr := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("host", a.Config.Server.Host).
			Str("port", a.Config.Server.Port).
			Str("environment", a.Config.Server.Environment).
			Msg("setting up http server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			a.Logger.Error().Err(err).Msg("failed to listen and serve http")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.Logger.Info().Msg("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error().Err(err).Msg("failed to shutdown http server")
		return err
	}
	a.Logger.Info().Msg("shut down http server")
	return nil
}
