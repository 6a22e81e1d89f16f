// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implements roadmaps.Recorder and records HTTP response codes.
type Collector struct {
	httpStatus        *prometheus.CounterVec
	generations       *prometheus.CounterVec
	generationLatency prometheus.Histogram
	normFallbacks     prometheus.Counter
	rateLimited       prometheus.Counter
}

// NewCollector registers the metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillsprint_http_responses_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillsprint_roadmap_generations_total",
			Help: "Roadmap generations by outcome (structured, raw_only, or an error kind).",
		}, []string{"outcome"}),
		generationLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "skillsprint_roadmap_generation_seconds",
			Help:    "Latency of the upstream generation call.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}),
		normFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skillsprint_roadmap_normalization_fallbacks_total",
			Help: "Generations whose output could not be parsed as JSON.",
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skillsprint_roadmap_rate_limited_total",
			Help: "Roadmap requests rejected by the per-user rate limit.",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.generations,
		c.generationLatency,
		c.normFallbacks,
		c.rateLimited,
	)
	return c
}

func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

func (c *Collector) RecordGeneration(outcome string, d time.Duration) {
	c.generations.WithLabelValues(outcome).Inc()
	c.generationLatency.Observe(d.Seconds())
}

func (c *Collector) RecordNormalizationFallback() {
	c.normFallbacks.Inc()
}

func (c *Collector) RecordRateLimited() {
	c.rateLimited.Inc()
}

// Handler returns the Prometheus scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
