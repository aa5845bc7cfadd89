package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/kirillkom/pdf-highlights/internal/core/domain"
)

type jobRepoFake struct {
	job          *domain.ExtractionJob
	created      *domain.ExtractionJob
	createErr    error
	getErr       error
	saveErr      error
	failErr      error
	running      []string
	progress     []domain.Progress
	savedRecords []domain.HighlightRecord
	failedWith   string
}

func (f *jobRepoFake) Create(_ context.Context, job *domain.ExtractionJob) error {
	if f.createErr != nil {
		return f.createErr
	}
	copyJob := *job
	f.created = &copyJob
	return nil
}

func (f *jobRepoFake) GetByID(context.Context, string) (*domain.ExtractionJob, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	copyJob := *f.job
	return &copyJob, nil
}

func (f *jobRepoFake) MarkRunning(_ context.Context, id string) error {
	f.running = append(f.running, id)
	return nil
}

func (f *jobRepoFake) UpdateProgress(_ context.Context, _ string, p domain.Progress) error {
	f.progress = append(f.progress, p)
	return nil
}

func (f *jobRepoFake) SaveResult(_ context.Context, _ string, records []domain.HighlightRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.savedRecords = records
	return nil
}

func (f *jobRepoFake) MarkFailed(_ context.Context, _ string, errMessage string) error {
	f.failedWith = errMessage
	return f.failErr
}

type storageFake struct {
	savedKey  string
	savedBody string
	paths     map[string]string
	err       error
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.savedKey = key
	f.savedBody = string(raw)
	return nil
}

func (f *storageFake) LocalPath(_ context.Context, key string) (string, error) {
	if path, ok := f.paths[key]; ok {
		return path, nil
	}
	return "", errors.New("no such object")
}

type queueFake struct {
	published []string
	events    []domain.ExtractionEvent
	err       error
}

func (f *queueFake) PublishJobQueued(_ context.Context, jobID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, jobID)
	return nil
}

func (f *queueFake) SubscribeJobQueued(context.Context, func(context.Context, string) error) error {
	return nil
}

func (f *queueFake) PublishJobEvent(_ context.Context, _ string, event domain.ExtractionEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *queueFake) SubscribeJobEvents(context.Context, string, func(domain.ExtractionEvent)) (func(), error) {
	return func() {}, nil
}

func TestSubmitStoresCreatesAndPublishes(t *testing.T) {
	repo := &jobRepoFake{}
	storage := &storageFake{}
	queue := &queueFake{}
	uc := NewSubmitExtractionUseCase(repo, storage, queue)

	job, err := uc.Submit(context.Background(), "my notes (v2).pdf", bytes.NewBufferString("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if job.Status != domain.JobQueued {
		t.Fatalf("expected queued job, got %s", job.Status)
	}
	if !strings.HasSuffix(storage.savedKey, "_my_notes__v2_.pdf") {
		t.Fatalf("unexpected storage key %q", storage.savedKey)
	}
	if storage.savedBody != "%PDF-1.4" {
		t.Fatalf("unexpected stored body %q", storage.savedBody)
	}
	if repo.created == nil || repo.created.ID != job.ID || repo.created.StoragePath != storage.savedKey {
		t.Fatalf("unexpected created job %+v", repo.created)
	}
	if len(queue.published) != 1 || queue.published[0] != job.ID {
		t.Fatalf("expected job id published once, got %v", queue.published)
	}
}

func TestSubmitRejectsEmptyFilename(t *testing.T) {
	uc := NewSubmitExtractionUseCase(&jobRepoFake{}, &storageFake{}, &queueFake{})

	_, err := uc.Submit(context.Background(), "  ", strings.NewReader("x"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSubmitMarksJobFailedWhenPublishFails(t *testing.T) {
	repo := &jobRepoFake{}
	queue := &queueFake{err: errors.New("nats down")}
	uc := NewSubmitExtractionUseCase(repo, &storageFake{}, queue)

	if _, err := uc.Submit(context.Background(), "a.pdf", strings.NewReader("x")); err == nil {
		t.Fatalf("expected error")
	}
	if repo.created == nil {
		t.Fatalf("expected job to be created before publishing")
	}
	if !strings.Contains(repo.failedWith, "nats down") {
		t.Fatalf("expected job marked failed with publish error, got %q", repo.failedWith)
	}
}

func TestSubmitReportsMarkFailedError(t *testing.T) {
	repo := &jobRepoFake{failErr: errors.New("db gone")}
	uc := NewSubmitExtractionUseCase(repo, &storageFake{}, &queueFake{err: errors.New("nats down")})

	_, err := uc.Submit(context.Background(), "a.pdf", strings.NewReader("x"))
	if err == nil || !strings.Contains(err.Error(), "nats down") || !strings.Contains(err.Error(), "db gone") {
		t.Fatalf("expected both errors reported, got %v", err)
	}
}
