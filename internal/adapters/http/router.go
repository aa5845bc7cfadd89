package httpadapter

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/kirillkom/pdf-highlights/internal/config"
	"github.com/kirillkom/pdf-highlights/internal/core/domain"
	"github.com/kirillkom/pdf-highlights/internal/core/ports"
	"github.com/kirillkom/pdf-highlights/internal/observability/metrics"
)

const (
	serviceName       = "highlights-api"
	pdfMagic          = "%PDF-"
	sseKeepAlive      = 15 * time.Second
	eventBufferLength = 64
)

type Router struct {
	cfg      config.Config
	submitUC ports.JobSubmitter
	jobs     ports.JobReader
	events   ports.JobEventSource
	exporter ports.RecordExporter
	metrics  *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	submitUC ports.JobSubmitter,
	jobs ports.JobReader,
	events ports.JobEventSource,
	exporter ports.RecordExporter,
) *Router {
	return &Router{
		cfg:      cfg,
		submitUC: submitUC,
		jobs:     jobs,
		events:   events,
		exporter: exporter,
	}
}

// WithMetrics enables request metrics and the /metrics endpoint.
func (rt *Router) WithMetrics(m *metrics.HTTPServerMetrics) *Router {
	rt.metrics = m
	return rt
}

func (rt *Router) Handler() http.Handler {
	api := http.NewServeMux()
	api.Handle("POST /v1/extractions",
		backpressureMiddleware(http.HandlerFunc(rt.submitExtraction), rt.cfg.APIMaxInFlight, rt.cfg.BackpressureWait()))
	api.HandleFunc("GET /v1/extractions/{id}", rt.getExtraction)
	api.HandleFunc("GET /v1/extractions/{id}/events", rt.streamEvents)
	api.HandleFunc("GET /v1/extractions/{id}/export.xlsx", rt.exportExtraction)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}
	mux.Handle("/v1/", rateLimitMiddleware(api, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst))

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) submitExtraction(w http.ResponseWriter, r *http.Request) {
	if rt.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxUploadBytes)
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
				"error": fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit),
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	body := bufio.NewReader(file)
	if head, _ := body.Peek(len(pdfMagic)); string(head) != pdfMagic {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "upload", errors.New("file is not a PDF document")))
		return
	}

	job, err := rt.submitUC.Submit(r.Context(), fileHeader.Filename, body)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordUpload(serviceName, fileHeader.Size)
	}

	writeJSON(w, http.StatusAccepted, newJobResponse(job))
}

func (rt *Router) getExtraction(w http.ResponseWriter, r *http.Request) {
	job, err := rt.jobs.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newJobResponse(job))
}

// streamEvents sends the job's current state followed by live events as
// server-sent events, and ends after the terminal event.
func (rt *Router) streamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming is not supported"})
		return
	}
	ctx := r.Context()
	id := r.PathValue("id")

	// Subscribe before reading the snapshot so no event falls in between.
	done := make(chan struct{})
	defer close(done)
	live := make(chan domain.ExtractionEvent, eventBufferLength)
	stop, err := rt.events.SubscribeJobEvents(ctx, id, func(event domain.ExtractionEvent) {
		select {
		case live <- event:
		case <-done:
		}
	})
	if err != nil {
		writeError(w, err)
		return
	}
	defer stop()

	job, err := rt.jobs.GetByID(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		defer rt.metrics.StreamOpened()()
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	snapshot := job.Snapshot()
	if err := writeEvent(w, snapshot); err != nil {
		return
	}
	flusher.Flush()
	if snapshot.Terminal() {
		return
	}

	// Progress already covered by the snapshot may still sit in the
	// subscription; only strictly newer pages are forwarded.
	lastPage := snapshot.Progress.Current
	keepAlive := time.NewTicker(sseKeepAlive)
	defer keepAlive.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case event := <-live:
			if event.Kind == domain.EventProgress {
				if event.Progress.Current <= lastPage {
					continue
				}
				lastPage = event.Progress.Current
			}
			if err := writeEvent(w, event); err != nil {
				return
			}
			flusher.Flush()
			if event.Terminal() {
				return
			}
		}
	}
}

func (rt *Router) exportExtraction(w http.ResponseWriter, r *http.Request) {
	job, err := rt.jobs.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if job.Status != domain.JobSucceeded {
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": fmt.Sprintf("job is %s, records are available once it has succeeded", job.Status),
		})
		return
	}

	var buf bytes.Buffer
	if err := rt.exporter.Export(&buf, job.Filename, job.Records); err != nil {
		writeError(w, fmt.Errorf("export records: %w", err))
		return
	}

	w.Header().Set("Content-Type", rt.exporter.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(job.Filename)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

type jobResponse struct {
	ID        string                    `json:"id"`
	Filename  string                    `json:"filename"`
	Status    domain.JobStatus          `json:"status"`
	Progress  domain.Progress           `json:"progress"`
	Records   *[]domain.HighlightRecord `json:"records,omitempty"`
	Error     string                    `json:"error,omitempty"`
	CreatedAt time.Time                 `json:"created_at"`
	UpdatedAt time.Time                 `json:"updated_at"`
}

func newJobResponse(job *domain.ExtractionJob) jobResponse {
	resp := jobResponse{
		ID:        job.ID,
		Filename:  job.Filename,
		Status:    job.Status,
		Progress:  job.Progress,
		Error:     job.Error,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
	// Records are present exactly when the job succeeded, possibly empty.
	if job.Status == domain.JobSucceeded {
		records := job.Records
		if records == nil {
			records = []domain.HighlightRecord{}
		}
		resp.Records = &records
	}
	return resp
}

func exportFilename(source string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "document"
	}
	return base + "-highlights.xlsx"
}

func writeEvent(w http.ResponseWriter, event domain.ExtractionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Kind, payload)
	return err
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
