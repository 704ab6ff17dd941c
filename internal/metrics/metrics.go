// Package metrics exposes Prometheus collectors fed by the engine lifecycle hooks.
package metrics

import (
	"context"
	"fmt"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "canopy"

// Collectors groups the engine metrics.
type Collectors struct {
	LoaderCalls    *prometheus.CounterVec
	LoaderDuration *prometheus.HistogramVec
	LoadersActive  prometheus.Gauge
	Personalized   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg skips registration.
func New(reg prometheus.Registerer) (*Collectors, error) {
	c := &Collectors{
		LoaderCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "loader_calls_total",
				Help:      "Component props loader invocations by outcome.",
			},
			[]string{"component", "kind", "outcome"},
		),
		LoaderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "loader_duration_seconds",
				Help:      "Duration of component props loaders.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"component", "kind"},
		),
		LoadersActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "loaders_in_flight",
				Help:      "Component props loaders currently running.",
			},
		),
		Personalized: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "personalized_renderings_total",
				Help:      "Renderings with experiences by personalization outcome.",
			},
			[]string{"outcome"},
		),
	}
	if reg != nil {
		for _, collector := range []prometheus.Collector{c.LoaderCalls, c.LoaderDuration, c.LoadersActive, c.Personalized} {
			if err := reg.Register(collector); err != nil {
				return nil, fmt.Errorf("failed to register metrics: %w", err)
			}
		}
	}
	return c, nil
}

// Hooks returns lifecycle hooks recording into the collectors, chained after next.
func (c *Collectors) Hooks(next domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnLoaderCall: func(ctx context.Context, e *domain.LoaderEvent) {
			c.LoadersActive.Inc()
			if next.OnLoaderCall != nil {
				next.OnLoaderCall(ctx, e)
			}
		},
		OnLoaderReturn: func(ctx context.Context, e *domain.LoaderEvent) {
			c.LoadersActive.Dec()
			outcome := "ok"
			if e.IsError {
				outcome = "error"
			}
			c.LoaderCalls.WithLabelValues(e.ComponentName, e.Kind, outcome).Inc()
			c.LoaderDuration.WithLabelValues(e.ComponentName, e.Kind).Observe(e.Duration.Seconds())
			if next.OnLoaderReturn != nil {
				next.OnLoaderReturn(ctx, e)
			}
		},
		OnPersonalize: func(e *domain.PersonalizeEvent) {
			c.Personalized.WithLabelValues(string(e.Outcome)).Inc()
			if next.OnPersonalize != nil {
				next.OnPersonalize(e)
			}
		},
	}
}
