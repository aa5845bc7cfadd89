package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/pdf-highlights/internal/config"
	"github.com/kirillkom/pdf-highlights/internal/core/ports"
	"github.com/kirillkom/pdf-highlights/internal/core/usecase"
	"github.com/kirillkom/pdf-highlights/internal/infrastructure/export"
	"github.com/kirillkom/pdf-highlights/internal/infrastructure/pdf/ledongthuc"
	"github.com/kirillkom/pdf-highlights/internal/infrastructure/pdf/pdfcpu"
	"github.com/kirillkom/pdf-highlights/internal/infrastructure/queue/nats"
	"github.com/kirillkom/pdf-highlights/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/pdf-highlights/internal/infrastructure/resilience"
	"github.com/kirillkom/pdf-highlights/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	Jobs      ports.JobReader
	SubmitUC  ports.JobSubmitter
	ProcessUC ports.JobProcessor
	Events    ports.JobEventSource
	Exporter  ports.RecordExporter

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewJobRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		Executor: resilience.NewExecutor(resilience.DefaultPolicy(), logger),
		Logger:   logger,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	extractor := NewExtractor(cfg.ValidatePDF, cfg.StrictValidation, logger)

	return &App{
		Config: cfg,
		Queue:  queue,
		Jobs:   repo,

		SubmitUC:  usecase.NewSubmitExtractionUseCase(repo, storage, queue),
		ProcessUC: usecase.NewProcessExtractionUseCase(repo, storage, queue, extractor, logger),
		Events:    queue,
		Exporter:  export.NewXLSXWriter(),

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

// NewExtractor wires the PDF engine into the extraction use case. With
// validate set every document passes a pdfcpu structural check first.
func NewExtractor(validate, strict bool, logger *slog.Logger) *usecase.ExtractHighlightsUseCase {
	var engine ports.PDFEngine = ledongthuc.NewEngine()
	if validate {
		engine = pdfcpu.NewValidatingEngine(engine, strict)
	}
	return usecase.NewExtractHighlightsUseCase(engine, logger)
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
