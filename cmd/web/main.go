package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-seo-web/internal/bootstrap"
	"resume-seo-web/internal/shared/config"
	"resume-seo-web/internal/shared/otel"
	"resume-seo-web/internal/shared/server"
	"resume-seo-web/internal/shared/telemetry"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	// OTel must init before the logger so the slog bridge finds the provider.
	tel, err := otel.Setup(ctx, otel.Config{
		Endpoint:       cfg.OTLPEndpoint,
		Headers:        cfg.OTLPHeaders,
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
	})
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	telemetry.Setup(telemetry.Options{
		ServiceName: cfg.ServiceName,
		Production:  cfg.IsProduction(),
		Debug:       os.Getenv("DEBUG") != "",
		OTLP:        tel != nil,
	})
	if tel != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTLPEndpoint)
	}

	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		slog.ErrorContext(ctx, "bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              server.Addr(cfg.Port),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Analyze requests wait for the backend round trip.
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
	}
	slog.InfoContext(shutdownCtx, "shutdown complete")
}
