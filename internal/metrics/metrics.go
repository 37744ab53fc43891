// Package metrics exposes sweep progress as Prometheus metrics.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aravindh-murugesan/openstack-groupsweep-go/internal/sweep"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "groupsweep"

// Recorder implements sweep.Observer and owns its own registry, so several
// recorders can coexist in tests.
type Recorder struct {
	registry *prometheus.Registry

	attempts    *prometheus.CounterVec
	rateLimited *prometheus.CounterVec
	deleted     *prometheus.CounterVec
	failures    *prometheus.CounterVec
	backoff     *prometheus.CounterVec
	lastRun     *prometheus.GaugeVec
	runDuration *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "delete_attempts_total",
				Help:      "Total number of delete attempts by resource class",
			},
			[]string{"class"},
		),
		rateLimited: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limited_total",
				Help:      "Total number of delete attempts rejected by the provider rate limit",
			},
			[]string{"class"},
		),
		deleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deleted_total",
				Help:      "Total number of resources deleted",
			},
			[]string{"class"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "delete_failures_total",
				Help:      "Total number of terminal delete failures by reason",
			},
			[]string{"class", "reason"},
		),
		backoff: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backoff_seconds_total",
				Help:      "Total time scheduled for waiting on rate limits",
			},
			[]string{"class"},
		),
		lastRun: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time of the last sweep by result",
			},
			[]string{"resource_group", "result"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of a complete sweep in seconds",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~34min
			},
			[]string{"resource_group"},
		),
	}

	r.registry.MustRegister(r.attempts, r.rateLimited, r.deleted, r.failures, r.backoff, r.lastRun, r.runDuration)
	return r
}

// Observe implements sweep.Observer.
func (r *Recorder) Observe(e sweep.Event) {
	switch e.Kind {
	case sweep.AttemptStarted:
		r.attempts.WithLabelValues(e.Class).Inc()
	case sweep.AttemptSucceeded:
		r.deleted.WithLabelValues(e.Class).Inc()
	case sweep.AttemptRateLimited:
		r.rateLimited.WithLabelValues(e.Class).Inc()
		r.backoff.WithLabelValues(e.Class).Add(e.Delay.Seconds())
	case sweep.RetriesExhausted:
		r.rateLimited.WithLabelValues(e.Class).Inc()
		r.failures.WithLabelValues(e.Class, "exhausted").Inc()
	case sweep.AttemptFailed:
		r.failures.WithLabelValues(e.Class, "failed").Inc()
	}
}

// ObserveRun records the outcome and duration of a complete sweep.
func (r *Recorder) ObserveRun(group string, started time.Time, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	r.lastRun.WithLabelValues(group, result).SetToCurrentTime()
	r.runDuration.WithLabelValues(group).Observe(time.Since(started).Seconds())
}

// Registry returns the registry holding the sweep collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the collected metrics in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Push sends the collected metrics to a Pushgateway. One-shot sweeps run from
// CI have no scrape endpoint, so this is how their results are kept.
func (r *Recorder) Push(ctx context.Context, gatewayURL, job, group string) error {
	err := push.New(gatewayURL, job).
		Gatherer(r.registry).
		Grouping("resource_group", group).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("pushing metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
