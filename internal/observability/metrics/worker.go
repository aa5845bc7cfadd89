package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	jobsTotal      *prometheus.CounterVec
	jobDuration    *prometheus.HistogramVec
	jobsInFlight   prometheus.Gauge
	queueLag       *prometheus.HistogramVec
	pagesTotal     *prometheus.CounterVec
	highlightsSeen *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	jobsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "highlights",
			Subsystem: "worker",
			Name:      "jobs_total",
			Help:      "Total extraction jobs by status.",
		},
		[]string{"service", "status"},
	)
	jobDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "highlights",
			Subsystem: "worker",
			Name:      "job_duration_seconds",
			Help:      "Extraction job duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	jobsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "highlights",
			Subsystem: "worker",
			Name:      "jobs_in_flight",
			Help:      "Number of extraction jobs currently running.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "highlights",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between job submission and processing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)
	pagesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "highlights",
			Subsystem: "worker",
			Name:      "pages_total",
			Help:      "Total PDF pages scanned.",
		},
		[]string{"service"},
	)
	highlightsSeen := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "highlights",
			Subsystem: "worker",
			Name:      "records_per_job",
			Help:      "Distribution of highlight records produced per successful job.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"service"},
	)

	registry.MustRegister(jobsTotal, jobDuration, jobsInFlight, queueLag, pagesTotal, highlightsSeen)

	return &WorkerMetrics{
		registry:       registry,
		jobsTotal:      jobsTotal,
		jobDuration:    jobDuration,
		jobsInFlight:   jobsInFlight,
		queueLag:       queueLag,
		pagesTotal:     pagesTotal,
		highlightsSeen: highlightsSeen,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartJob() {
	m.jobsInFlight.Inc()
}

func (m *WorkerMetrics) FinishJob(service string, duration time.Duration, err error) {
	m.jobsInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.jobsTotal.WithLabelValues(service, status).Inc()
	m.jobDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}

func (m *WorkerMetrics) ObservePages(service string, pages int) {
	if pages <= 0 {
		return
	}
	m.pagesTotal.WithLabelValues(service).Add(float64(pages))
}

func (m *WorkerMetrics) ObserveRecords(service string, records int) {
	m.highlightsSeen.WithLabelValues(service).Observe(float64(records))
}
