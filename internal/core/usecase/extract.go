package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/pdf-highlights/internal/core/domain"
	"github.com/kirillkom/pdf-highlights/internal/core/ports"
)

type ExtractHighlightsUseCase struct {
	engine ports.PDFEngine
	logger *slog.Logger
}

func NewExtractHighlightsUseCase(engine ports.PDFEngine, logger *slog.Logger) *ExtractHighlightsUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractHighlightsUseCase{
		engine: engine,
		logger: logger,
	}
}

// Extract walks every page of the document at path and collects its
// highlights in document order. onProgress may be nil. The document is closed
// on every exit path and no records are returned on failure.
func (uc *ExtractHighlightsUseCase) Extract(
	ctx context.Context,
	path string,
	onProgress func(domain.Progress),
) (records []domain.HighlightRecord, err error) {
	doc, err := uc.engine.Open(ctx, path)
	if err != nil {
		if domain.IsKind(err, domain.ErrOpen) {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrOpen, "open document", err)
	}
	defer func() {
		if closeErr := doc.Close(); closeErr != nil && err == nil {
			records, err = nil, domain.WrapError(domain.ErrExtraction, "close document", closeErr)
		}
	}()

	total := doc.PageCount()
	records = []domain.HighlightRecord{}
	for pageIndex := 0; pageIndex < total; pageIndex++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if onProgress != nil {
			onProgress(domain.Progress{Current: pageIndex + 1, Total: total})
		}

		pageRecords, err := uc.extractPage(doc, pageIndex)
		if err != nil {
			return nil, err
		}
		records = append(records, pageRecords...)
	}

	uc.logger.Debug("highlights_extracted", "path", path, "pages", total, "records", len(records))
	return records, nil
}

// Run is Extract folded into a single result value.
func (uc *ExtractHighlightsUseCase) Run(ctx context.Context, path string, onProgress func(domain.Progress)) domain.ExtractionResult {
	records, err := uc.Extract(ctx, path, onProgress)
	if err != nil {
		return domain.Failed(err)
	}
	return domain.Succeeded(records)
}

func (uc *ExtractHighlightsUseCase) extractPage(doc ports.PDFDocument, pageIndex int) ([]domain.HighlightRecord, error) {
	annotations, err := doc.Annotations(pageIndex)
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtraction, fmt.Sprintf("read annotations of page %d", pageIndex+1), err)
	}

	var records []domain.HighlightRecord
	for _, annot := range annotations {
		if annot.Type != ports.AnnotationHighlight {
			continue
		}

		raw, err := doc.TextInRect(pageIndex, annot.Rect)
		if err != nil {
			return nil, domain.WrapError(domain.ErrExtraction, fmt.Sprintf("extract text on page %d", pageIndex+1), err)
		}
		text := domain.CleanText(raw)
		if text == "" {
			continue
		}

		records = append(records, domain.HighlightRecord{
			Page:     pageIndex + 1,
			Text:     text,
			Category: domain.Classify(strokeColor(annot)),
			Comment:  popupComment(annot),
		})
	}
	return records, nil
}

func strokeColor(annot ports.Annotation) domain.RGB {
	color, ok := domain.ColorFromComponents(annot.Color)
	if !ok {
		return domain.Black
	}
	return color
}

func popupComment(annot ports.Annotation) string {
	if !annot.HasPopup {
		return ""
	}
	return strings.TrimSpace(annot.Contents)
}

// IsCanceled reports whether err ended a run because its context was done.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
