package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kfadel/gridops/core/metrics"
)

// PromSink records pipeline events in Prometheus metrics.
type PromSink struct {
	forecasts  prometheus.Counter
	risks      *prometheus.CounterVec
	plans      prometheus.Counter
	narratives *prometheus.CounterVec
	narrLat    prometheus.Histogram
	failures   *prometheus.CounterVec
}

// NewPromSink registers pipeline metrics on the default Prometheus
// registerer. The HTTP server exposing them is started separately.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer. A nil
// registerer defaults to the global one.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	forecasts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gridops_forecasts_total",
		Help: "Total number of forecasts generated",
	})
	risks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gridops_assessments_total",
		Help: "Total number of risk assessments by level",
	}, []string{"level"})
	plans := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gridops_plans_total",
		Help: "Total number of mitigation plans generated",
	})
	narratives := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gridops_narratives_total",
		Help: "Total number of plan enhancements by source",
	}, []string{"source"})
	narrLat := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gridops_narrative_latency_seconds",
		Help:    "Time spent enhancing one plan, including retries",
		Buckets: prometheus.DefBuckets,
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gridops_failures_total",
		Help: "Total number of per-unit batch failures by stage",
	}, []string{"stage"})

	if err := reg.Register(forecasts); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			forecasts = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(risks); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			risks = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(plans); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			plans = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(narratives); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			narratives = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(narrLat); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			narrLat = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(failures); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			failures = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{
		forecasts:  forecasts,
		risks:      risks,
		plans:      plans,
		narratives: narratives,
		narrLat:    narrLat,
		failures:   failures,
	}, nil
}

// RecordForecast increments the forecast counter.
func (s *PromSink) RecordForecast(coremetrics.ForecastEvent) error {
	s.forecasts.Inc()
	return nil
}

// RecordRisk counts assessments by level.
func (s *PromSink) RecordRisk(ev coremetrics.RiskEvent) error {
	s.risks.WithLabelValues(string(ev.Level)).Inc()
	return nil
}

// RecordPlan counts generated plans.
func (s *PromSink) RecordPlan(ev coremetrics.PlanEvent) error {
	s.plans.Add(float64(ev.Plans))
	return nil
}

// RecordNarrative counts enhancements by source and observes their latency.
func (s *PromSink) RecordNarrative(ev coremetrics.NarrativeEvent) error {
	s.narratives.WithLabelValues(string(ev.Source)).Inc()
	s.narrLat.Observe(ev.Latency.Seconds())
	return nil
}

// RecordFailure counts batch failures by stage.
func (s *PromSink) RecordFailure(ev coremetrics.FailureEvent) error {
	s.failures.WithLabelValues(ev.Stage).Inc()
	return nil
}
