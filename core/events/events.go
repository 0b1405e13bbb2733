package events

import (
	"time"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
)

// PredictionEvent is published for every successful scoring pass.
type PredictionEvent struct {
	Result model.PredictionResult
}

func (PredictionEvent) EventName() string { return "prediction" }

// Task changes.
const (
	TaskCreated    = "created"
	TaskSuperseded = "superseded"
	TaskExecuted   = "executed"
)

// TaskEvent is published when a maintenance task is created or retired.
type TaskEvent struct {
	Task   model.MaintenanceTask
	Change string
}

func (TaskEvent) EventName() string { return "task" }

// TickEvent summarises one dispatcher tick.
type TickEvent struct {
	Producer string
	Readings int
	Failures int
	Skipped  bool
	Err      error
	Duration time.Duration
	Time     time.Time
}

func (TickEvent) EventName() string { return "tick" }

// PlanEvent is published after each traffic optimisation pass.
type PlanEvent struct {
	Plan model.TrafficPlan
}

func (PlanEvent) EventName() string { return "plan" }

// EmergencyEvent is published for every issued emergency route.
type EmergencyEvent struct {
	Route model.EmergencyRoute
}

func (EmergencyEvent) EventName() string { return "emergency" }
