package domain

import "encoding/json"

// HighlightRecord is one highlight found in a document. Text is never empty.
type HighlightRecord struct {
	Page     int    `json:"page" yaml:"page"`
	Text     string `json:"text" yaml:"text"`
	Category string `json:"category" yaml:"category"`
	Comment  string `json:"comment" yaml:"comment"`
}

// Progress is reported once per page, before the page is processed.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// ExtractionResult terminates a run: either Records or Err is meaningful.
type ExtractionResult struct {
	Records []HighlightRecord
	Err     error
}

func Succeeded(records []HighlightRecord) ExtractionResult {
	if records == nil {
		records = []HighlightRecord{}
	}
	return ExtractionResult{Records: records}
}

func Failed(err error) ExtractionResult {
	return ExtractionResult{Err: err}
}

func (r ExtractionResult) OK() bool {
	return r.Err == nil
}

// Message returns the human-readable failure text, empty on success.
func (r ExtractionResult) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

type EventKind string

const (
	EventProgress  EventKind = "progress"
	EventSucceeded EventKind = "succeeded"
	EventFailed    EventKind = "failed"
)

// ExtractionEvent is a single notification of a run, in emission order.
type ExtractionEvent struct {
	Kind     EventKind         `json:"kind"`
	Progress Progress          `json:"progress"`
	Records  []HighlightRecord `json:"records,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// MarshalJSON writes records only on a succeeded event, and always as a list
// there, so a document without highlights reports "records": [].
func (e ExtractionEvent) MarshalJSON() ([]byte, error) {
	type plain ExtractionEvent
	out := struct {
		plain
		Records *[]HighlightRecord `json:"records,omitempty"`
	}{plain: plain(e)}
	if e.Kind == EventSucceeded {
		records := e.Records
		if records == nil {
			records = []HighlightRecord{}
		}
		out.Records = &records
	}
	return json.Marshal(out)
}

func (e ExtractionEvent) Terminal() bool {
	return e.Kind == EventSucceeded || e.Kind == EventFailed
}

func ProgressEvent(p Progress) ExtractionEvent {
	return ExtractionEvent{Kind: EventProgress, Progress: p}
}

func TerminalEvent(result ExtractionResult) ExtractionEvent {
	if result.OK() {
		return ExtractionEvent{Kind: EventSucceeded, Records: result.Records}
	}
	return ExtractionEvent{Kind: EventFailed, Error: result.Message()}
}
