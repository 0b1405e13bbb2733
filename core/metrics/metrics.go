package metrics

import (
	"time"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
)

// MetricsSink records prediction results for observability purposes.
type MetricsSink interface {
	RecordPredictions(results []model.PredictionResult) error
}

// TaskEvent captures a maintenance task transition.
type TaskEvent struct {
	Task   model.MaintenanceTask
	Change string
	Time   time.Time
}

// TaskRecorder records maintenance task transitions.
type TaskRecorder interface {
	RecordTask(ev TaskEvent) error
}

// TrafficPlanRecorder records traffic optimisation passes.
type TrafficPlanRecorder interface {
	RecordTrafficPlan(plan model.TrafficPlan) error
}

// TickEvent summarises one producer tick.
type TickEvent struct {
	Producer string
	Readings int
	Failures int
	Skipped  bool
	Duration time.Duration
	Error    string
	Time     time.Time
}

// TickRecorder records producer ticks.
type TickRecorder interface {
	RecordTick(ev TickEvent) error
}

// EmergencyRecorder records computed emergency routes.
type EmergencyRecorder interface {
	RecordEmergencyRoute(route model.EmergencyRoute) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordPredictions([]model.PredictionResult) error { return nil }
func (NopSink) RecordTask(TaskEvent) error                       { return nil }
func (NopSink) RecordTrafficPlan(model.TrafficPlan) error        { return nil }
func (NopSink) RecordTick(TickEvent) error                       { return nil }
func (NopSink) RecordEmergencyRoute(model.EmergencyRoute) error  { return nil }
