// Package metrics exposes fetch, ingest and HTTP metrics on a private Prometheus registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	updusecase "competitor_backend/internal/feature/updates/usecase"
)

const namespace = "competitor"

// Recorder collects pipeline and HTTP metrics.
type Recorder struct {
	registry *prometheus.Registry

	connectorAttempts *prometheus.CounterVec
	connectorDuration *prometheus.HistogramVec
	fetchedItems      prometheus.Counter
	duplicateItems    prometheus.Counter
	insertedUpdates   prometheus.Counter
	exhaustedFetches  prometheus.Counter
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

var (
	_ updusecase.FetchRecorder  = (*Recorder)(nil)
	_ updusecase.IngestRecorder = (*Recorder)(nil)
)

// NewRecorder registers every collector, plus Go runtime and process collectors, on a new registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		connectorAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connector_attempts_total",
			Help:      "Source connector calls by outcome.",
		}, []string{"connector", "outcome"}),
		connectorDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "connector_duration_seconds",
			Help:      "Latency of source connector calls.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"connector"}),
		fetchedItems: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetched_items_total",
			Help:      "Raw items returned by the fallback fetcher.",
		}),
		duplicateItems: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_items_total",
			Help:      "Items dropped as duplicates within a batch.",
		}),
		insertedUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inserted_updates_total",
			Help:      "Updates persisted.",
		}),
		exhaustedFetches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exhausted_fetches_total",
			Help:      "Organization fetches where every connector failed.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.connectorAttempts,
		r.connectorDuration,
		r.fetchedItems,
		r.duplicateItems,
		r.insertedUpdates,
		r.exhaustedFetches,
		r.httpRequests,
		r.httpDuration,
	)
	return r
}

// Registry returns the registry backing r.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ObserveConnectorAttempt records one connector call. reason is "" on success.
func (r *Recorder) ObserveConnectorAttempt(connector, reason string, d time.Duration) {
	outcome := reason
	if outcome == "" {
		outcome = "ok"
	}
	r.connectorAttempts.WithLabelValues(connector, outcome).Inc()
	r.connectorDuration.WithLabelValues(connector).Observe(d.Seconds())
}

// ObserveIngest records the counts of one organization fetch.
func (r *Recorder) ObserveIngest(fetched, duplicates, inserted int, exhausted bool) {
	r.fetchedItems.Add(float64(fetched))
	r.duplicateItems.Add(float64(duplicates))
	r.insertedUpdates.Add(float64(inserted))
	if exhausted {
		r.exhaustedFetches.Inc()
	}
}

// Middleware records request count and latency per matched route.
func (r *Recorder) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		r.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		r.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
