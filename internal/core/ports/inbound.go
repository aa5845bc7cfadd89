package ports

import (
	"context"
	"io"

	"github.com/kirillkom/pdf-highlights/internal/core/domain"
)

// HighlightExtractor runs one extraction over a local PDF file.
type HighlightExtractor interface {
	Extract(ctx context.Context, path string, onProgress func(domain.Progress)) ([]domain.HighlightRecord, error)
}

// JobSubmitter accepts uploaded documents for asynchronous extraction.
type JobSubmitter interface {
	Submit(ctx context.Context, filename string, body io.Reader) (*domain.ExtractionJob, error)
}

// JobReader is the read model for extraction jobs.
type JobReader interface {
	GetByID(ctx context.Context, id string) (*domain.ExtractionJob, error)
}

// JobProcessor runs a queued job to completion.
type JobProcessor interface {
	ProcessByID(ctx context.Context, jobID string) error
}

// JobEventSource streams live events of a job.
type JobEventSource interface {
	SubscribeJobEvents(ctx context.Context, jobID string, handler func(domain.ExtractionEvent)) (func(), error)
}
