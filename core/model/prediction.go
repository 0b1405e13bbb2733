package model

import "time"

// RiskTier classifies a normalised risk value.
type RiskTier int

const (
	TierNormal RiskTier = iota
	TierLow
	TierMedium
	TierHigh
	TierCritical
)

// String returns the lower-case name of the tier.
func (t RiskTier) String() string {
	switch t {
	case TierNormal:
		return "normal"
	case TierLow:
		return "low"
	case TierMedium:
		return "medium"
	case TierHigh:
		return "high"
	case TierCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// MarshalText encodes the tier by name.
func (t RiskTier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText decodes a tier name; unknown names map to TierNormal.
func (t *RiskTier) UnmarshalText(b []byte) error {
	switch string(b) {
	case "low":
		*t = TierLow
	case "medium":
		*t = TierMedium
	case "high":
		*t = TierHigh
	case "critical":
		*t = TierCritical
	default:
		*t = TierNormal
	}
	return nil
}

// AtLeast reports whether t is as severe as o or worse.
func (t RiskTier) AtLeast(o RiskTier) bool { return t >= o }

// Action is the recommended follow-up for a prediction.
type Action string

const (
	ActionImmediateMaintenance Action = "IMMEDIATE_MAINTENANCE"
	ActionScheduleMaintenance  Action = "SCHEDULE_MAINTENANCE"
	ActionScheduleInspection   Action = "SCHEDULE_INSPECTION"
	ActionMonitor              Action = "MONITOR"
	ActionNone                 Action = "NO_ACTION"
)

// PredictionResult is the output of one scoring pass. It is derived data and
// only valid for the cycle that produced it.
type PredictionResult struct {
	AssetID string    `json:"asset_id"`
	Kind    AssetKind `json:"kind"`
	// Score is a failure probability in [0,1] for vehicles and a health
	// percentage in [0,100] for infrastructure.
	Score float64 `json:"score"`
	// Risk is Score normalised to [0,1] where 1 is the worst outcome.
	Risk   float64  `json:"risk"`
	Tier   RiskTier `json:"tier"`
	Action Action   `json:"recommended_action"`
	// TimeToFailure is set for vehicles.
	TimeToFailure time.Duration `json:"time_to_failure,omitempty"`
	// RemainingLifespan is set for infrastructure.
	RemainingLifespan time.Duration `json:"remaining_lifespan,omitempty"`
	Factors           []string      `json:"factors,omitempty"`
	Timestamp         time.Time     `json:"timestamp"`
}
