package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"reflect"
	"testing"

	"github.com/kirillkom/pdf-highlights/internal/core/domain"
	"github.com/kirillkom/pdf-highlights/internal/core/ports"
)

type fakePage struct {
	annotations []ports.Annotation
	texts       map[ports.Rect]string
	annotErr    error
	textErr     error
}

type fakeDocument struct {
	pages  []fakePage
	closed int
}

func (d *fakeDocument) PageCount() int { return len(d.pages) }

func (d *fakeDocument) Annotations(i int) ([]ports.Annotation, error) {
	if d.pages[i].annotErr != nil {
		return nil, d.pages[i].annotErr
	}
	return d.pages[i].annotations, nil
}

func (d *fakeDocument) TextInRect(i int, rect ports.Rect) (string, error) {
	if d.pages[i].textErr != nil {
		return "", d.pages[i].textErr
	}
	return d.pages[i].texts[rect], nil
}

func (d *fakeDocument) Close() error {
	d.closed++
	return nil
}

type fakeEngine struct {
	docs map[string]*fakeDocument
}

func (e *fakeEngine) Open(_ context.Context, path string) (ports.PDFDocument, error) {
	doc, ok := e.docs[path]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	return doc, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	rectA = ports.Rect{X0: 70, Y0: 695, X1: 200, Y1: 715}
	rectB = ports.Rect{X0: 70, Y0: 595, X1: 200, Y1: 615}
)

func twoPageDocument() *fakeDocument {
	return &fakeDocument{pages: []fakePage{
		{
			annotations: []ports.Annotation{{
				Type:  ports.AnnotationHighlight,
				Rect:  rectA,
				Color: []float64{1.0, 0.9412, 0.4},
			}},
			texts: map[ports.Rect]string{rectA: "Remember this"},
		},
		{},
	}}
}

type progressLog []domain.Progress

func (l *progressLog) record(p domain.Progress) { *l = append(*l, p) }

func TestExtractTwoPageScenario(t *testing.T) {
	doc := twoPageDocument()
	uc := NewExtractHighlightsUseCase(&fakeEngine{docs: map[string]*fakeDocument{"a.pdf": doc}}, quietLogger())

	var progress progressLog
	records, err := uc.Extract(context.Background(), "a.pdf", progress.record)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	wantProgress := progressLog{{Current: 1, Total: 2}, {Current: 2, Total: 2}}
	if !reflect.DeepEqual(progress, wantProgress) {
		t.Fatalf("progress = %+v, want %+v", progress, wantProgress)
	}
	want := []domain.HighlightRecord{{Page: 1, Text: "Remember this", Category: domain.CategoryGeneral, Comment: ""}}
	if !reflect.DeepEqual(records, want) {
		t.Fatalf("records = %+v, want %+v", records, want)
	}
	if doc.closed != 1 {
		t.Fatalf("expected document closed once, got %d", doc.closed)
	}
}

func TestExtractFiltersAndOrdersAnnotations(t *testing.T) {
	rectC := ports.Rect{X0: 1, Y0: 1, X1: 2, Y1: 2}
	doc := &fakeDocument{pages: []fakePage{
		{
			annotations: []ports.Annotation{
				{Type: ports.AnnotationUnderline, Rect: rectA, Color: []float64{1, 0, 0}},
				{Type: ports.AnnotationHighlight, Rect: rectB, HasPopup: true, Contents: "  check source \n"},
				{Type: ports.AnnotationHighlight, Rect: rectC, Color: []float64{0.9686, 0.6, 0.8196}},
				{Type: ports.AnnotationHighlight, Rect: rectA, Color: []float64{0.5608, 0.8706, 0.9765}, Contents: "not a popup"},
			},
			texts: map[ports.Rect]string{
				rectA: "first\nline",
				rectB: "second",
				rectC: " \n ",
			},
		},
	}}
	uc := NewExtractHighlightsUseCase(&fakeEngine{docs: map[string]*fakeDocument{"b.pdf": doc}}, quietLogger())

	records, err := uc.Extract(context.Background(), "b.pdf", nil)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := []domain.HighlightRecord{
		{Page: 1, Text: "second", Category: domain.CategoryCritical, Comment: "check source"},
		{Page: 1, Text: "first line", Category: domain.CategoryIdeas, Comment: ""},
	}
	if !reflect.DeepEqual(records, want) {
		t.Fatalf("records = %+v, want %+v", records, want)
	}
}

func TestExtractWithoutHighlightsReturnsEmptyList(t *testing.T) {
	doc := &fakeDocument{pages: []fakePage{{}, {}, {}}}
	uc := NewExtractHighlightsUseCase(&fakeEngine{docs: map[string]*fakeDocument{"c.pdf": doc}}, quietLogger())

	var progress progressLog
	records, err := uc.Extract(context.Background(), "c.pdf", progress.record)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Fatalf("expected empty non-nil records, got %#v", records)
	}
	if len(progress) != 3 {
		t.Fatalf("expected 3 progress calls, got %d", len(progress))
	}
	for i, p := range progress {
		if p.Current != i+1 || p.Total != 3 {
			t.Fatalf("unexpected progress[%d] = %+v", i, p)
		}
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	doc := twoPageDocument()
	uc := NewExtractHighlightsUseCase(&fakeEngine{docs: map[string]*fakeDocument{"a.pdf": doc}}, quietLogger())

	first, err := uc.Extract(context.Background(), "a.pdf", nil)
	if err != nil {
		t.Fatalf("first Extract() error = %v", err)
	}
	second, err := uc.Extract(context.Background(), "a.pdf", nil)
	if err != nil {
		t.Fatalf("second Extract() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("runs differ: %+v vs %+v", first, second)
	}
}

func TestExtractOpenFailure(t *testing.T) {
	uc := NewExtractHighlightsUseCase(&fakeEngine{}, quietLogger())

	var progress progressLog
	records, err := uc.Extract(context.Background(), "missing.pdf", progress.record)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrOpen) {
		t.Fatalf("expected ErrOpen, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected underlying not-exist cause, got %v", err)
	}
	if records != nil || len(progress) != 0 {
		t.Fatalf("expected no records and no progress, got %v / %v", records, progress)
	}
}

func TestExtractAbortsOnPageErrorAndClosesDocument(t *testing.T) {
	doc := twoPageDocument()
	doc.pages[1].annotErr = errors.New("broken annots array")
	uc := NewExtractHighlightsUseCase(&fakeEngine{docs: map[string]*fakeDocument{"a.pdf": doc}}, quietLogger())

	records, err := uc.Extract(context.Background(), "a.pdf", nil)
	if !domain.IsKind(err, domain.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
	if records != nil {
		t.Fatalf("expected no partial records, got %+v", records)
	}
	if doc.closed != 1 {
		t.Fatalf("expected document closed on failure, got %d", doc.closed)
	}
}

func TestExtractTextErrorAborts(t *testing.T) {
	doc := twoPageDocument()
	doc.pages[0].textErr = errors.New("bad content stream")
	uc := NewExtractHighlightsUseCase(&fakeEngine{docs: map[string]*fakeDocument{"a.pdf": doc}}, quietLogger())

	result := uc.Run(context.Background(), "a.pdf", nil)
	if result.OK() {
		t.Fatalf("expected failed result")
	}
	if result.Message() == "" {
		t.Fatalf("expected failure message")
	}
}

func TestExtractStopsAtPageBoundaryWhenCanceled(t *testing.T) {
	doc := &fakeDocument{pages: []fakePage{{}, {}, {}}}
	uc := NewExtractHighlightsUseCase(&fakeEngine{docs: map[string]*fakeDocument{"c.pdf": doc}}, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	var progress progressLog
	_, err := uc.Extract(ctx, "c.pdf", func(p domain.Progress) {
		progress.record(p)
		if p.Current == 1 {
			cancel()
		}
	})
	if !IsCanceled(err) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if len(progress) != 1 {
		t.Fatalf("expected to stop after first page, got %d progress calls", len(progress))
	}
	if doc.closed != 1 {
		t.Fatalf("expected document closed after cancellation, got %d", doc.closed)
	}
}
