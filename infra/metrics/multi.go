package metrics

import coremetrics "github.com/kfadel/gridops/core/metrics"

// MultiSink fans pipeline events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordForecast forwards the event to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordForecast(ev coremetrics.ForecastEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordForecast(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordRisk forwards risk events to sinks that support them.
func (m *MultiSink) RecordRisk(ev coremetrics.RiskEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.RiskRecorder); ok {
			if err := rec.RecordRisk(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordPlan forwards plan events to sinks that support them.
func (m *MultiSink) RecordPlan(ev coremetrics.PlanEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.PlanRecorder); ok {
			if err := rec.RecordPlan(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordNarrative forwards narrative events to sinks that support them.
func (m *MultiSink) RecordNarrative(ev coremetrics.NarrativeEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.NarrativeRecorder); ok {
			if err := rec.RecordNarrative(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordFailure forwards failure events to sinks that support them.
func (m *MultiSink) RecordFailure(ev coremetrics.FailureEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.FailureRecorder); ok {
			if err := rec.RecordFailure(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
