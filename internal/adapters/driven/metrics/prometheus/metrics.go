// Package prometheus records pipeline activity as Prometheus metrics.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
	"github.com/custodia-labs/sitesearch/internal/core/ports/driven"
)

const namespace = "sitesearch"

// Ensure Metrics implements the interface.
var _ driven.Metrics = (*Metrics)(nil)

// Metrics holds the collectors registered for one engine.
type Metrics struct {
	gatherer prometheus.Gatherer

	recordsEmitted  *prometheus.CounterVec
	recordsSkipped  *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	downloads       *prometheus.CounterVec
	extractDuration *prometheus.HistogramVec
}

// New registers the collectors on reg. Passing a fresh registry keeps tests
// and multiple engines isolated from the global default.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		recordsEmitted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_emitted_total",
			Help:      "Content records yielded by the source streams.",
		}, []string{"type"}),
		recordsSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Content records dropped by the source streams.",
		}, []string{"type", "reason"}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blob_cache_lookups_total",
			Help:      "Blob cache lookups by tier and result.",
		}, []string{"tier", "result"}),
		downloads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blob_downloads_total",
			Help:      "Blob downloads from the origin by result.",
		}, []string{"result"}),
		extractDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Time spent in CPU-bound extraction.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"kind"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RecordEmitted counts a yielded record.
func (m *Metrics) RecordEmitted(t domain.ContentType) {
	m.recordsEmitted.WithLabelValues(t.String()).Inc()
}

// RecordSkipped counts a dropped record.
func (m *Metrics) RecordSkipped(t domain.ContentType, reason string) {
	m.recordsSkipped.WithLabelValues(t.String(), reason).Inc()
}

// RecordCacheLookup counts a lookup on one cache tier.
func (m *Metrics) RecordCacheLookup(tier string, hit bool) {
	m.cacheLookups.WithLabelValues(tier, result(hit, "hit", "miss")).Inc()
}

// RecordDownload counts a download attempt.
func (m *Metrics) RecordDownload(ok bool) {
	m.downloads.WithLabelValues(result(ok, "ok", "error")).Inc()
}

// ObserveExtraction records an extraction duration.
func (m *Metrics) ObserveExtraction(kind string, d time.Duration) {
	m.extractDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func result(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
