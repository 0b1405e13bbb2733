package metrics

import (
	"errors"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
)

// MultiSink fans records out to several sinks. Optional recorders are
// forwarded only to the sinks implementing them. Every sink is called even
// when an earlier one fails; the errors are joined.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) RecordPredictions(res []model.PredictionResult) error {
	var errs []error
	for _, s := range m.Sinks {
		errs = append(errs, s.RecordPredictions(res))
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordTask(ev TaskEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(TaskRecorder); ok {
			errs = append(errs, r.RecordTask(ev))
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordTrafficPlan(plan model.TrafficPlan) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(TrafficPlanRecorder); ok {
			errs = append(errs, r.RecordTrafficPlan(plan))
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordTick(ev TickEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(TickRecorder); ok {
			errs = append(errs, r.RecordTick(ev))
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordEmergencyRoute(route model.EmergencyRoute) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(EmergencyRecorder); ok {
			errs = append(errs, r.RecordEmergencyRoute(route))
		}
	}
	return errors.Join(errs...)
}
