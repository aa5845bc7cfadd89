package domain

import "time"

type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

func (s JobStatus) Terminal() bool {
	return s == JobSucceeded || s == JobFailed
}

// ExtractionJob tracks one uploaded document through a single extraction run.
type ExtractionJob struct {
	ID          string            `json:"id"`
	Filename    string            `json:"filename"`
	StoragePath string            `json:"storage_path"`
	Status      JobStatus         `json:"status"`
	Progress    Progress          `json:"progress"`
	Records     []HighlightRecord `json:"records,omitempty"`
	Error       string            `json:"error,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Snapshot renders the job's current state as the event a late subscriber
// would have seen last.
func (j *ExtractionJob) Snapshot() ExtractionEvent {
	switch j.Status {
	case JobSucceeded:
		return ExtractionEvent{Kind: EventSucceeded, Progress: j.Progress, Records: j.Records}
	case JobFailed:
		return ExtractionEvent{Kind: EventFailed, Progress: j.Progress, Error: j.Error}
	default:
		return ExtractionEvent{Kind: EventProgress, Progress: j.Progress}
	}
}
