// Package metrics defines the operation, text provider and event metrics
// recorded by the service, with prometheus and no-op implementations.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "typermaster"

// OperationMetrics records service operation outcomes.
type OperationMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

// TextMetrics records text provider fallbacks and status.
type TextMetrics interface {
	RecordFallback(ctx context.Context, reason string)
	SetDegraded(degraded bool)
}

// EventMetrics records event bus publish failures.
type EventMetrics interface {
	RecordPublishFailure(ctx context.Context, topic string)
}

// Prometheus implements every metrics interface on a single registry.
type Prometheus struct {
	operations      *prometheus.CounterVec
	durations       *prometheus.HistogramVec
	fallbacks       *prometheus.CounterVec
	degraded        prometheus.Gauge
	publishFailures *prometheus.CounterVec
}

// NewPrometheus registers the collectors on reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	m := &Prometheus{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_total",
			Help:      "Service operations by outcome.",
		}, []string{"service", "operation", "outcome"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "operation"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "text_fallback_total",
			Help:      "Typing texts served from the fallback, by failure reason.",
		}, []string{"reason"}),
		degraded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "text_provider_degraded",
			Help:      "1 while the text provider is degraded.",
		}),
		publishFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failures_total",
			Help:      "Events that could not be published.",
		}, []string{"topic"}),
	}
	reg.MustRegister(m.operations, m.durations, m.fallbacks, m.degraded, m.publishFailures)
	return m
}

func (m *Prometheus) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(service, operation, "attempt").Inc()
}

func (m *Prometheus) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(service, operation, "success").Inc()
}

func (m *Prometheus) RecordOperationFailure(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(service, operation, "failure").Inc()
}

func (m *Prometheus) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	m.durations.WithLabelValues(service, operation).Observe(duration.Seconds())
}

func (m *Prometheus) RecordFallback(_ context.Context, reason string) {
	m.fallbacks.WithLabelValues(reason).Inc()
}

func (m *Prometheus) SetDegraded(degraded bool) {
	if degraded {
		m.degraded.Set(1)
		return
	}
	m.degraded.Set(0)
}

func (m *Prometheus) RecordPublishFailure(_ context.Context, topic string) {
	m.publishFailures.WithLabelValues(topic).Inc()
}

// Noop discards everything.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (*Noop) RecordOperationAttempt(context.Context, string, string)                 {}
func (*Noop) RecordOperationSuccess(context.Context, string, string)                 {}
func (*Noop) RecordOperationFailure(context.Context, string, string)                 {}
func (*Noop) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (*Noop) RecordFallback(context.Context, string)                                 {}
func (*Noop) SetDegraded(bool)                                                       {}
func (*Noop) RecordPublishFailure(context.Context, string)                           {}

var (
	_ OperationMetrics = (*Prometheus)(nil)
	_ TextMetrics      = (*Prometheus)(nil)
	_ EventMetrics     = (*Prometheus)(nil)
	_ OperationMetrics = (*Noop)(nil)
	_ TextMetrics      = (*Noop)(nil)
	_ EventMetrics     = (*Noop)(nil)
)
