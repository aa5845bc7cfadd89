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

	"golang.org/x/sync/errgroup"

	httpadapter "github.com/kirillkom/pdf-highlights/internal/adapters/http"
	"github.com/kirillkom/pdf-highlights/internal/bootstrap"
	"github.com/kirillkom/pdf-highlights/internal/config"
	"github.com/kirillkom/pdf-highlights/internal/observability/logging"
	"github.com/kirillkom/pdf-highlights/internal/observability/metrics"
)

const serviceName = "highlights-api"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	router := httpadapter.NewRouter(cfg, app.SubmitUC, app.Jobs, app.Events, app.Exporter).
		WithMetrics(metrics.NewHTTPServerMetrics(serviceName)).
		Handler()
	// No WriteTimeout: event streams stay open until the job finishes.
	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("api_listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("api_stopped_with_error", "error", err)
		os.Exit(1)
	}
	logger.Info("api_stopped")
}
