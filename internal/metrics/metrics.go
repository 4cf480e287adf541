// Package metrics records what cienv did to the runtime so CI dashboards
// can track orphan pressure and startup latency.
//
// Collectors live on a private registry. There is no scrape endpoint: a
// cienv process lives as long as one CI job, so Push sends the registry to a
// Pushgateway when one is configured.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/schmitthub/cienv/internal/readiness"
	"github.com/schmitthub/cienv/internal/sweep"
)

const (
	namespace = "cienv"

	// Job is the Pushgateway job name.
	Job = "cienv"
)

// Sweep result label values.
const (
	ResultRemoved       = "removed"
	ResultFailed        = "failed"
	ResultKept          = "kept"
	ResultNetworkFailed = "network_failed"
)

// Metrics holds cienv's collectors. A nil *Metrics discards observations.
type Metrics struct {
	reg *prometheus.Registry

	sweepResources    *prometheus.CounterVec
	readinessWait     *prometheus.HistogramVec
	provisionDuration *prometheus.HistogramVec

	pushURL string
	env     string
}

var _ readiness.Observer = (*Metrics)(nil)

// New creates the collectors. pushURL may be empty.
func New(pushURL string) *Metrics {
	m := &Metrics{
		reg:     prometheus.NewRegistry(),
		pushURL: pushURL,
		sweepResources: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_resources_total",
			Help:      "Orphan containers seen by the sweeper, by result.",
		}, []string{"result"}),
		readinessWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "readiness_wait_seconds",
			Help:      "Time spent waiting for a service to become ready.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}, []string{"service", "outcome"}),
		provisionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provision_duration_seconds",
			Help:      "Wall time of a provisioning call.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}, []string{"outcome"}),
	}
	m.reg.MustRegister(m.sweepResources, m.readinessWait, m.provisionDuration)
	return m
}

// Registry exposes the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// SetEnvironment sets the env grouping key used by Push.
func (m *Metrics) SetEnvironment(slug string) {
	if m == nil {
		return
	}
	m.env = slug
}

// ObserveSweep counts the outcome of a sweep.
func (m *Metrics) ObserveSweep(r sweep.Report) {
	if m == nil {
		return
	}
	m.sweepResources.WithLabelValues(ResultRemoved).Add(float64(r.Removed))
	m.sweepResources.WithLabelValues(ResultFailed).Add(float64(r.Failed))
	m.sweepResources.WithLabelValues(ResultKept).Add(float64(r.Matched - r.Stale))
	m.sweepResources.WithLabelValues(ResultNetworkFailed).Add(float64(r.NetworkFailures))
}

// ObserveReadiness implements readiness.Observer.
func (m *Metrics) ObserveReadiness(service string, outcome readiness.State, waited time.Duration) {
	if m == nil {
		return
	}
	m.readinessWait.WithLabelValues(service, outcome.String()).Observe(waited.Seconds())
}

// ObserveProvision records how long a provisioning call took.
func (m *Metrics) ObserveProvision(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.provisionDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// Enabled reports whether Push will send anything.
func (m *Metrics) Enabled() bool {
	return m != nil && m.pushURL != ""
}

// Push sends every collector to the Pushgateway. It is a no-op when no
// gateway is configured.
func (m *Metrics) Push(ctx context.Context) error {
	if !m.Enabled() {
		return nil
	}
	p := push.New(m.pushURL, Job).Gatherer(m.reg)
	if m.env != "" {
		p = p.Grouping("env", m.env)
	}
	if err := p.PushContext(ctx); err != nil {
		return fmt.Errorf("pushing metrics to %s: %w", m.pushURL, err)
	}
	return nil
}
