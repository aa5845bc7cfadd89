package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/kirillkom/pdf-highlights/internal/core/domain"
)

func newProcessFixture(doc *fakeDocument) (*ProcessExtractionUseCase, *jobRepoFake, *queueFake) {
	repo := &jobRepoFake{job: &domain.ExtractionJob{ID: "job-1", StoragePath: "job-1_a.pdf", Status: domain.JobQueued}}
	storage := &storageFake{paths: map[string]string{"job-1_a.pdf": "/data/job-1_a.pdf"}}
	queue := &queueFake{}
	docs := map[string]*fakeDocument{}
	if doc != nil {
		docs["/data/job-1_a.pdf"] = doc
	}
	extractor := NewExtractHighlightsUseCase(&fakeEngine{docs: docs}, quietLogger())
	return NewProcessExtractionUseCase(repo, storage, queue, extractor, quietLogger()), repo, queue
}

func TestProcessByIDSuccess(t *testing.T) {
	uc, repo, queue := newProcessFixture(twoPageDocument())

	if err := uc.ProcessByID(context.Background(), "job-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}
	if !reflect.DeepEqual(repo.running, []string{"job-1"}) {
		t.Fatalf("expected job marked running, got %v", repo.running)
	}
	if len(repo.progress) != 2 {
		t.Fatalf("expected 2 progress updates, got %d", len(repo.progress))
	}
	if len(repo.savedRecords) != 1 || repo.savedRecords[0].Category != domain.CategoryGeneral {
		t.Fatalf("unexpected saved records %+v", repo.savedRecords)
	}

	var kinds []domain.EventKind
	for _, e := range queue.events {
		kinds = append(kinds, e.Kind)
	}
	want := []domain.EventKind{domain.EventProgress, domain.EventProgress, domain.EventSucceeded}
	if !reflect.DeepEqual(kinds, want) {
		t.Fatalf("event kinds = %v, want %v", kinds, want)
	}
}

func TestProcessByIDMarksFailedWhenDocumentMissing(t *testing.T) {
	uc, repo, queue := newProcessFixture(nil)

	err := uc.ProcessByID(context.Background(), "job-1")
	if !domain.IsKind(err, domain.ErrOpen) {
		t.Fatalf("expected ErrOpen, got %v", err)
	}
	if repo.failedWith != err.Error() {
		t.Fatalf("expected failure message %q, got %q", err.Error(), repo.failedWith)
	}
	if len(repo.progress) != 0 {
		t.Fatalf("expected no progress updates, got %d", len(repo.progress))
	}
	if len(queue.events) != 1 || queue.events[0].Kind != domain.EventFailed {
		t.Fatalf("expected a single failed event, got %+v", queue.events)
	}
}

func TestProcessByIDMarksFailedOnSaveError(t *testing.T) {
	uc, repo, _ := newProcessFixture(twoPageDocument())
	repo.saveErr = errors.New("db gone")

	if err := uc.ProcessByID(context.Background(), "job-1"); err == nil {
		t.Fatalf("expected error")
	}
	if repo.failedWith == "" {
		t.Fatalf("expected job marked failed")
	}
}

func TestProcessByIDReportsMarkFailedError(t *testing.T) {
	uc, repo, _ := newProcessFixture(nil)
	repo.failErr = errors.New("cannot update")

	err := uc.ProcessByID(context.Background(), "job-1")
	if err == nil || !domain.IsKind(err, domain.ErrOpen) {
		t.Fatalf("expected wrapped open error, got %v", err)
	}
}
