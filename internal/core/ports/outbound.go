package ports

import (
	"context"
	"io"

	"github.com/kirillkom/pdf-highlights/internal/core/domain"
)

// AnnotationType follows the MuPDF annotation enumeration, where a
// highlight is 8.
type AnnotationType int

const (
	AnnotationUnknown AnnotationType = iota - 1
	AnnotationText
	AnnotationLink
	AnnotationFreeText
	AnnotationLine
	AnnotationSquare
	AnnotationCircle
	AnnotationPolygon
	AnnotationPolyLine
	AnnotationHighlight
	AnnotationUnderline
	AnnotationSquiggly
	AnnotationStrikeOut
	AnnotationRedact
	AnnotationStamp
	AnnotationCaret
	AnnotationInk
	AnnotationPopup
	AnnotationFileAttachment
	AnnotationSound
	AnnotationMovie
	AnnotationRichMedia
	AnnotationWidget
	AnnotationScreen
	AnnotationPrinterMark
	AnnotationTrapNet
	AnnotationWatermark
	Annotation3D
	AnnotationProjection
)

// Rect is an axis-aligned rectangle in default user space.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Normalize orders the corners so that X0<=X1 and Y0<=Y1.
func (r Rect) Normalize() Rect {
	if r.X0 > r.X1 {
		r.X0, r.X1 = r.X1, r.X0
	}
	if r.Y0 > r.Y1 {
		r.Y0, r.Y1 = r.Y1, r.Y0
	}
	return r
}

func (r Rect) Contains(x, y float64) bool {
	return x >= r.X0 && x <= r.X1 && y >= r.Y0 && y <= r.Y1
}

// Annotation is the slice of a PDF annotation the extractor reads.
// Color holds the raw /C components and is empty when none is set.
type Annotation struct {
	Type     AnnotationType
	Rect     Rect
	Color    []float64
	HasPopup bool
	Contents string
}

// PDFEngine opens documents by filesystem path.
type PDFEngine interface {
	Open(ctx context.Context, path string) (PDFDocument, error)
}

// PDFDocument is an open document. Page indexes are 0-based.
type PDFDocument interface {
	PageCount() int
	Annotations(pageIndex int) ([]Annotation, error)
	TextInRect(pageIndex int, rect Rect) (string, error)
	Close() error
}

// JobRepository persists extraction jobs and their results.
type JobRepository interface {
	Create(ctx context.Context, job *domain.ExtractionJob) error
	GetByID(ctx context.Context, id string) (*domain.ExtractionJob, error)
	MarkRunning(ctx context.Context, id string) error
	UpdateProgress(ctx context.Context, id string, progress domain.Progress) error
	SaveResult(ctx context.Context, id string, records []domain.HighlightRecord) error
	MarkFailed(ctx context.Context, id string, errMessage string) error
}

// ObjectStorage stores uploaded documents. LocalPath resolves a key to a file
// the PDF engine can open.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	LocalPath(ctx context.Context, key string) (string, error)
}

// MessageQueue carries job ids to workers and job events back to watchers.
type MessageQueue interface {
	PublishJobQueued(ctx context.Context, jobID string) error
	SubscribeJobQueued(ctx context.Context, handler func(context.Context, string) error) error
	PublishJobEvent(ctx context.Context, jobID string, event domain.ExtractionEvent) error
	SubscribeJobEvents(ctx context.Context, jobID string, handler func(domain.ExtractionEvent)) (func(), error)
}

// RecordExporter renders records into a downloadable document.
type RecordExporter interface {
	Export(w io.Writer, source string, records []domain.HighlightRecord) error
	ContentType() string
}
