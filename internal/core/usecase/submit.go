package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/pdf-highlights/internal/core/domain"
	"github.com/kirillkom/pdf-highlights/internal/core/ports"
)

type SubmitExtractionUseCase struct {
	repo    ports.JobRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewSubmitExtractionUseCase(
	repo ports.JobRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *SubmitExtractionUseCase {
	return &SubmitExtractionUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
	}
}

func (uc *SubmitExtractionUseCase) Submit(
	ctx context.Context,
	filename string,
	body io.Reader,
) (*domain.ExtractionJob, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "submit extraction", errors.New("filename is required"))
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	job := &domain.ExtractionJob{
		ID:          id,
		Filename:    filename,
		StoragePath: storageKey,
		Status:      domain.JobQueued,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create extraction job: %w", err)
	}

	if err := uc.queue.PublishJobQueued(ctx, job.ID); err != nil {
		// No worker will pick the job up, so it must not stay queued.
		if failErr := uc.repo.MarkFailed(context.WithoutCancel(ctx), job.ID, "enqueue: "+err.Error()); failErr != nil {
			return nil, fmt.Errorf("publish extraction job: %w; mark failed status: %v", err, failErr)
		}
		return nil, fmt.Errorf("publish extraction job: %w", err)
	}

	return job, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." || base == "_" {
		return "document.pdf"
	}
	return base
}
