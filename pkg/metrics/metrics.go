package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "imagehost"

// Metrics holds the service collectors. A nil *Metrics is valid and records
// nothing, so callers never need to check whether metrics are enabled.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	OrphanedBlobs  prometheus.Counter
	PartialDeletes *prometheus.CounterVec

	EventsPublished prometheus.Counter
	EventsFailed    prometheus.Counter
	Reconciled      *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of handled requests by operation and status code",
			},
			[]string{"operation", "status"},
		),

		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Request handling duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		OrphanedBlobs: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "images",
				Name:      "orphaned_blobs_total",
				Help:      "Blobs written whose metadata record could not be stored",
			},
		),

		PartialDeletes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "images",
				Name:      "partial_deletes_total",
				Help:      "Deletes where one side failed, by the side that failed",
			},
			[]string{"side"},
		),

		EventsPublished: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "outbox",
				Name:      "events_published_total",
				Help:      "Lifecycle events published to kafka",
			},
		),

		EventsFailed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "outbox",
				Name:      "events_failed_total",
				Help:      "Lifecycle events whose publish attempt failed",
			},
		),

		Reconciled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "reconciler",
				Name:      "events_total",
				Help:      "Partial delete events handled by the reconciler",
			},
			[]string{"result"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPRequestDuration,
		m.OrphanedBlobs,
		m.PartialDeletes,
		m.EventsPublished,
		m.EventsFailed,
		m.Reconciled,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}

	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}

	return m.registry
}

func (m *Metrics) ObserveRequest(operation string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.HTTPRequests.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Metrics) OrphanedBlob() {
	if m == nil {
		return
	}

	m.OrphanedBlobs.Inc()
}

func (m *Metrics) PartialDelete(blobDeleted, recordDeleted bool) {
	if m == nil {
		return
	}

	if !blobDeleted {
		m.PartialDeletes.WithLabelValues("blob").Inc()
	}
	if !recordDeleted {
		m.PartialDeletes.WithLabelValues("record").Inc()
	}
}

func (m *Metrics) EventsSent(n int, err error) {
	if m == nil {
		return
	}

	if err != nil {
		m.EventsFailed.Add(float64(n))

		return
	}
	m.EventsPublished.Add(float64(n))
}

func (m *Metrics) ReconcileResult(err error) {
	if m == nil {
		return
	}

	if err != nil {
		m.Reconciled.WithLabelValues("error").Inc()

		return
	}
	m.Reconciled.WithLabelValues("ok").Inc()
}
