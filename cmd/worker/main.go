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

	"github.com/kirillkom/pdf-highlights/internal/bootstrap"
	"github.com/kirillkom/pdf-highlights/internal/config"
	"github.com/kirillkom/pdf-highlights/internal/observability/logging"
	"github.com/kirillkom/pdf-highlights/internal/observability/metrics"
)

const serviceName = "highlights-worker"

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

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	mux := http.NewServeMux()
	mux.Handle("/metrics", workerMetrics.Handler())
	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("worker_metrics_listening", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		logger.Info("worker_subscribed", "subject", cfg.NATSSubject)
		return app.Queue.SubscribeJobQueued(gctx, func(handlerCtx context.Context, jobID string) error {
			return processJob(handlerCtx, app, cfg, workerMetrics, logger, jobID)
		})
	})

	if err := g.Wait(); err != nil {
		logger.Error("worker_stopped_with_error", "error", err)
		os.Exit(1)
	}
	logger.Info("worker_stopped")
}

func processJob(
	ctx context.Context,
	app *bootstrap.App,
	cfg config.Config,
	m *metrics.WorkerMetrics,
	logger *slog.Logger,
	jobID string,
) error {
	if timeout := cfg.JobTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if job, err := app.Jobs.GetByID(ctx, jobID); err == nil {
		m.ObserveQueueLag(serviceName, time.Since(job.CreatedAt))
	}

	started := time.Now()
	m.StartJob()
	err := app.ProcessUC.ProcessByID(ctx, jobID)
	m.FinishJob(serviceName, time.Since(started), err)

	if job, getErr := app.Jobs.GetByID(context.WithoutCancel(ctx), jobID); getErr == nil {
		m.ObservePages(serviceName, job.Progress.Current)
		if err == nil {
			m.ObserveRecords(serviceName, len(job.Records))
		}
	}

	if err != nil {
		return err
	}
	logger.Info("job_processed", "job_id", jobID, "duration_ms", float64(time.Since(started).Microseconds())/1000.0)
	return nil
}
