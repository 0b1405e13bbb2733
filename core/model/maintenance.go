package model

import "time"

// TaskKind enumerates the kinds of maintenance work.
type TaskKind string

const (
	TaskPreventive   TaskKind = "preventive"
	TaskInspection   TaskKind = "inspection"
	TaskUrgentRepair TaskKind = "urgent_repair"
)

// TaskState is the lifecycle state of a maintenance task.
type TaskState string

const (
	TaskCreated    TaskState = "created"
	TaskScheduled  TaskState = "scheduled"
	TaskExecuted   TaskState = "executed"
	TaskSuperseded TaskState = "superseded"
)

// Terminal reports whether no further transition is possible.
func (s TaskState) Terminal() bool {
	return s == TaskExecuted || s == TaskSuperseded
}

// ImpactSeverity grades the disruption a task causes to traffic.
type ImpactSeverity int

const (
	ImpactLow ImpactSeverity = iota
	ImpactMedium
	ImpactHigh
)

func (s ImpactSeverity) String() string {
	switch s {
	case ImpactLow:
		return "low"
	case ImpactMedium:
		return "medium"
	case ImpactHigh:
		return "high"
	default:
		return "unknown"
	}
}

// MarshalText encodes the severity by name.
func (s ImpactSeverity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// TrafficImpact is the assessed disruption of executing a task.
type TrafficImpact struct {
	Severity       ImpactSeverity `json:"severity"`
	AffectedRoutes []string       `json:"affected_routes,omitempty"`
	EstimatedDelay time.Duration  `json:"estimated_delay"`
}

// CostBreakdown details the estimated cost of a task.
type CostBreakdown struct {
	Labor     float64 `json:"labor"`
	Materials float64 `json:"materials"`
	Overhead  float64 `json:"overhead"`
	Total     float64 `json:"total"`
}

// Resources lists what a task consumes while it runs.
type Resources struct {
	Technicians int      `json:"technicians"`
	Equipment   []string `json:"equipment,omitempty"`
}

// TimeWindow is a half-open interval [Start, End).
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether the two windows intersect.
func (w TimeWindow) Overlaps(o TimeWindow) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

// MaintenanceTask is a unit of scheduled work for one asset.
type MaintenanceTask struct {
	ID        string    `json:"id"`
	AssetID   string    `json:"asset_id"`
	AssetKind AssetKind `json:"asset_kind"`
	Kind      TaskKind  `json:"kind"`
	Tier      RiskTier  `json:"tier"`
	// Priority orders the queue, higher is more urgent.
	Priority    int           `json:"priority"`
	State       TaskState     `json:"state"`
	CreatedAt   time.Time     `json:"created_at"`
	OptimalDate time.Time     `json:"optimal_date"`
	Deadline    time.Time     `json:"deadline"`
	Window      TimeWindow    `json:"window"`
	Duration    time.Duration `json:"duration"`
	Cost        CostBreakdown `json:"cost"`
	Resources   Resources     `json:"resources"`
	Impact      TrafficImpact `json:"impact"`
	// Conflicted is set when no window free of conflicts fit the deadline.
	Conflicted bool `json:"conflicted,omitempty"`
	// Score is the prediction score that produced the task.
	Score float64 `json:"score"`
}

// Clone returns a deep copy of the task.
func (t MaintenanceTask) Clone() MaintenanceTask {
	cp := t
	if t.Impact.AffectedRoutes != nil {
		cp.Impact.AffectedRoutes = append([]string(nil), t.Impact.AffectedRoutes...)
	}
	if t.Resources.Equipment != nil {
		cp.Resources.Equipment = append([]string(nil), t.Resources.Equipment...)
	}
	return cp
}
