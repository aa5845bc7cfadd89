package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/pdf-highlights/internal/core/domain"
	"github.com/kirillkom/pdf-highlights/internal/core/ports"
)

type ProcessExtractionUseCase struct {
	repo      ports.JobRepository
	storage   ports.ObjectStorage
	queue     ports.MessageQueue
	extractor ports.HighlightExtractor
	logger    *slog.Logger
}

func NewProcessExtractionUseCase(
	repo ports.JobRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	extractor ports.HighlightExtractor,
	logger *slog.Logger,
) *ProcessExtractionUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessExtractionUseCase{
		repo:      repo,
		storage:   storage,
		queue:     queue,
		extractor: extractor,
		logger:    logger,
	}
}

// ProcessByID runs the extraction of a queued job. Progress and the terminal
// outcome are persisted and published as job events; a failed extraction is
// recorded on the job and also returned.
func (uc *ProcessExtractionUseCase) ProcessByID(ctx context.Context, jobID string) error {
	if err := uc.repo.MarkRunning(ctx, jobID); err != nil {
		return fmt.Errorf("set status=running: %w", err)
	}

	records, err := uc.run(ctx, jobID)
	if err != nil {
		if failErr := uc.markFailed(ctx, jobID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.SaveResult(ctx, jobID, records); err != nil {
		if failErr := uc.markFailed(ctx, jobID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return fmt.Errorf("save extraction result: %w", err)
	}

	uc.publish(ctx, jobID, domain.TerminalEvent(domain.Succeeded(records)))
	return nil
}

func (uc *ProcessExtractionUseCase) run(ctx context.Context, jobID string) ([]domain.HighlightRecord, error) {
	job, err := uc.repo.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("fetch job by id: %w", err)
	}

	path, err := uc.storage.LocalPath(ctx, job.StoragePath)
	if err != nil {
		return nil, domain.WrapError(domain.ErrOpen, "resolve stored document", err)
	}

	return uc.extractor.Extract(ctx, path, func(p domain.Progress) {
		if err := uc.repo.UpdateProgress(ctx, jobID, p); err != nil {
			uc.logger.Warn("job_progress_not_saved", "job_id", jobID, "current", p.Current, "error", err)
		}
		uc.publish(ctx, jobID, domain.ProgressEvent(p))
	})
}

func (uc *ProcessExtractionUseCase) markFailed(ctx context.Context, jobID string, processErr error) error {
	if processErr == nil {
		return nil
	}
	// The failure is recorded even when ctx itself ended the run.
	ctx = context.WithoutCancel(ctx)
	message := processErr.Error()
	if err := uc.repo.MarkFailed(ctx, jobID, message); err != nil {
		return err
	}
	uc.publish(ctx, jobID, domain.TerminalEvent(domain.Failed(processErr)))
	return nil
}

func (uc *ProcessExtractionUseCase) publish(ctx context.Context, jobID string, event domain.ExtractionEvent) {
	if err := uc.queue.PublishJobEvent(ctx, jobID, event); err != nil {
		uc.logger.Warn("job_event_not_published", "job_id", jobID, "kind", event.Kind, "error", err)
	}
}
