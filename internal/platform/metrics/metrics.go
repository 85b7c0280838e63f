// Package metrics exposes the job's Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jsamuelsen/resonance-bot/internal/ports"
)

const namespace = "resonance_bot"

// Recorder implements ports.CycleObserver and records image fetch outcomes.
type Recorder struct {
	cyclesTotal   *prometheus.CounterVec
	cycleDuration prometheus.Histogram
	nextFire      prometheus.Gauge
	lastSuccess   prometheus.Gauge
	fetchBytes    *prometheus.CounterVec
	fetchTotal    *prometheus.CounterVec
	gatherer      prometheus.Gatherer
}

var _ ports.CycleObserver = (*Recorder)(nil)

// New registers the collectors on a fresh registry, together with the Go and
// process collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return NewWithRegistry(reg, reg)
}

// NewWithRegistry registers the collectors on reg and serves them from g.
func NewWithRegistry(reg prometheus.Registerer, g prometheus.Gatherer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		cyclesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Publish cycles fired, by result.",
		}, []string{"result"}),
		cycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of a publish cycle.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		nextFire: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "next_fire_timestamp_seconds",
			Help:      "Unix time of the next scheduled cycle.",
		}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successfully published cycle.",
		}),
		fetchBytes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_fetch_bytes_total",
			Help:      "Bytes downloaded per image path.",
		}, []string{"path"}),
		fetchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_fetch_total",
			Help:      "Image downloads per path and outcome.",
		}, []string{"path", "outcome"}),
		gatherer: g,
	}
}

// CycleFinished implements ports.CycleObserver.
func (r *Recorder) CycleFinished(result ports.CycleResult, duration time.Duration) {
	r.cyclesTotal.WithLabelValues(string(result)).Inc()
	r.cycleDuration.Observe(duration.Seconds())

	if result == ports.CycleResultSuccess {
		r.lastSuccess.SetToCurrentTime()
	}
}

// NextFireScheduled implements ports.CycleObserver.
func (r *Recorder) NextFireScheduled(at time.Time) {
	r.nextFire.Set(float64(at.Unix()))
}

// ImageFetched records one download attempt. size is ignored on failure.
func (r *Recorder) ImageFetched(path string, size int, err error) {
	if err != nil {
		r.fetchTotal.WithLabelValues(path, "error").Inc()
		return
	}

	r.fetchTotal.WithLabelValues(path, "ok").Inc()
	r.fetchBytes.WithLabelValues(path).Add(float64(size))
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
