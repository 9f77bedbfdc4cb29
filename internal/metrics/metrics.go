// Package metrics exposes Prometheus counters for sourcing runs.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "sourcer"

// Candidate outcomes recorded by CandidateProcessed.
const (
	OutcomeNew          = "new"
	OutcomeDuplicate    = "duplicate"
	OutcomeStoreFailure = "store_failed"
)

// Metrics owns a private registry. A nil *Metrics is a valid no-op.
type Metrics struct {
	registry *prometheus.Registry

	collected        *prometheus.CounterVec
	sourceFailures   *prometheus.CounterVec
	processed        *prometheus.CounterVec
	scored           *prometheus.CounterVec
	scoringFallbacks prometheus.Counter
	lastDuration     prometheus.Gauge
	lastRun          prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		collected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_collected_total",
			Help:      "Candidates returned by each source.",
		}, []string{"source"}),
		sourceFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_failures_total",
			Help:      "Source collections that failed or panicked.",
		}, []string{"source"}),
		processed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_processed_total",
			Help:      "Candidates by store outcome.",
		}, []string{"outcome"}),
		scored: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_scored_total",
			Help:      "Scored candidates by priority.",
		}, []string{"priority"}),
		scoringFallbacks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scoring_fallbacks_total",
			Help:      "Ratings that fell back to the neutral default.",
		}),
		lastDuration: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the most recent run.",
		}),
		lastRun: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the most recent run finished.",
		}),
	}
}

func (r *Metrics) SourceCollected(source string, n int) {
	if r == nil {
		return
	}
	r.collected.WithLabelValues(source).Add(float64(n))
}

func (r *Metrics) SourceFailed(source string) {
	if r == nil {
		return
	}
	r.sourceFailures.WithLabelValues(source).Inc()
}

func (r *Metrics) CandidateProcessed(outcome string) {
	if r == nil {
		return
	}
	r.processed.WithLabelValues(outcome).Inc()
}

func (r *Metrics) CandidateScored(priority string, defaulted bool) {
	if r == nil {
		return
	}
	r.scored.WithLabelValues(priority).Inc()
	if defaulted {
		r.scoringFallbacks.Inc()
	}
}

func (r *Metrics) RunFinished(d time.Duration, at time.Time) {
	if r == nil {
		return
	}
	r.lastDuration.Set(d.Seconds())
	r.lastRun.Set(float64(at.Unix()))
}

// Handler serves the private registry in the text exposition format.
func (r *Metrics) Handler() http.Handler {
	if r == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Push sends the registry to a Pushgateway. The batch job exits before any
// scrape could happen, so this is how one-shot runs publish their numbers.
func (r *Metrics) Push(ctx context.Context, url, job string) error {
	if r == nil || url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(r.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
