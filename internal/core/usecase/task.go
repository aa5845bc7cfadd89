package usecase

import (
	"context"
	"time"

	"github.com/kirillkom/pdf-highlights/internal/core/domain"
)

// Observer receives the notifications of one extraction run: OnProgress zero
// or more times, then exactly one of OnSuccess or OnFailure.
type Observer interface {
	OnProgress(current, total int)
	OnSuccess(records []domain.HighlightRecord)
	OnFailure(message string)
}

// Task is an extraction running on its own goroutine. Events are delivered in
// emission order and the channel is closed after the terminal event.
type Task struct {
	events chan domain.ExtractionEvent
	done   chan struct{}
	result domain.ExtractionResult
}

// Start runs the extraction of path in the background and returns at once.
// Callers must drain Events (or call Notify/Wait) for the run to finish,
// unless they cancel ctx: a canceled task drops the events nobody reads.
func (uc *ExtractHighlightsUseCase) Start(ctx context.Context, path string) *Task {
	task := &Task{
		events: make(chan domain.ExtractionEvent, 16),
		done:   make(chan struct{}),
	}

	go func() {
		defer close(task.done)
		defer close(task.events)

		started := time.Now()
		result := uc.Run(ctx, path, func(p domain.Progress) {
			select {
			case task.events <- domain.ProgressEvent(p):
			case <-ctx.Done():
			}
		})
		task.result = result

		if result.OK() {
			uc.logger.Info("extraction_succeeded",
				"path", path,
				"records", len(result.Records),
				"duration_ms", float64(time.Since(started).Microseconds())/1000.0,
			)
		} else {
			uc.logger.Warn("extraction_failed", "path", path, "error", result.Err)
		}

		terminal := domain.TerminalEvent(result)
		select {
		case task.events <- terminal:
		case <-ctx.Done():
			select {
			case task.events <- terminal:
			default:
			}
		}
	}()

	return task
}

func (t *Task) Events() <-chan domain.ExtractionEvent {
	return t.events
}

// Notify drains the task, dispatching each event to obs, and returns the
// terminal result. OnSuccess or OnFailure is called exactly once, even when a
// canceled task dropped its terminal event.
func (t *Task) Notify(obs Observer) domain.ExtractionResult {
	terminal := false
	for event := range t.events {
		switch event.Kind {
		case domain.EventProgress:
			obs.OnProgress(event.Progress.Current, event.Progress.Total)
		case domain.EventSucceeded:
			terminal = true
			obs.OnSuccess(event.Records)
		case domain.EventFailed:
			terminal = true
			obs.OnFailure(event.Error)
		}
	}
	if !terminal {
		if t.result.OK() {
			obs.OnSuccess(t.result.Records)
		} else {
			obs.OnFailure(t.result.Message())
		}
	}
	return t.result
}

// Wait drains the task and returns its result.
func (t *Task) Wait() domain.ExtractionResult {
	for range t.events {
	}
	return t.result
}
