package notify

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
)

// Severity grades a notification.
type Severity string

const (
	SeverityNormal   Severity = "normal"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether s is as severe as o or worse.
func (s Severity) AtLeast(o Severity) bool { return s.rank() >= o.rank() }

// Classify maps a risk tier onto a notification severity.
func Classify(t model.RiskTier) Severity {
	switch {
	case t >= model.TierCritical:
		return SeverityCritical
	case t >= model.TierMedium:
		return SeverityWarning
	default:
		return SeverityNormal
	}
}

// Record is one notification emitted for a prediction result.
type Record struct {
	ID        string          `json:"id"`
	AssetID   string          `json:"asset_id"`
	Kind      model.AssetKind `json:"kind"`
	Severity  Severity        `json:"severity"`
	Score     float64         `json:"score"`
	Tier      model.RiskTier  `json:"tier"`
	Action    model.Action    `json:"recommended_action"`
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewRecord builds the notification for res. The timestamp is the one of
// the prediction so replays produce identical records apart from the id.
func NewRecord(res model.PredictionResult) Record {
	return Record{
		ID:        uuid.NewString(),
		AssetID:   res.AssetID,
		Kind:      res.Kind,
		Severity:  Classify(res.Tier),
		Score:     res.Score,
		Tier:      res.Tier,
		Action:    res.Action,
		Message:   message(res),
		Timestamp: res.Timestamp,
	}
}

func message(res model.PredictionResult) string {
	switch res.Kind {
	case model.AssetVehicle:
		return fmt.Sprintf("vehicle %s failure probability %.0f%% (%s)", res.AssetID, res.Score*100, res.Tier)
	case model.AssetInfrastructure:
		return fmt.Sprintf("infrastructure %s health %.0f%% (%s)", res.AssetID, res.Score, res.Tier)
	default:
		return fmt.Sprintf("asset %s risk %.2f (%s)", res.AssetID, res.Risk, res.Tier)
	}
}
