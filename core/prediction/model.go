package prediction

import "github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"

// Model scores an asset profile. Implementations must be deterministic for a
// given profile.
type Model interface {
	Evaluate(p model.AssetProfile) (model.PredictionResult, error)
}

// ModelFunc adapts a function to the Model interface.
type ModelFunc func(p model.AssetProfile) (model.PredictionResult, error)

// Evaluate calls f.
func (f ModelFunc) Evaluate(p model.AssetProfile) (model.PredictionResult, error) { return f(p) }

// RuleModel is the rule-based scorer used in production.
type RuleModel struct {
	th Thresholds
}

// NewRuleModel returns a scorer using th. Unset values take their defaults.
func NewRuleModel(th Thresholds) *RuleModel {
	th.SetDefaults()
	return &RuleModel{th: th}
}

// Thresholds returns the calibration in use.
func (m *RuleModel) Thresholds() Thresholds { return m.th }

// Evaluate scores the latest reading of p. The result carries the profile's
// update time so that repeated evaluations are identical.
func (m *RuleModel) Evaluate(p model.AssetProfile) (model.PredictionResult, error) {
	latest, ok := p.Latest()
	if !ok {
		return model.PredictionResult{}, ErrNoReadings
	}
	res := model.PredictionResult{
		AssetID:   p.ID,
		Kind:      p.Kind,
		Timestamp: p.UpdatedAt,
	}
	switch p.Kind {
	case model.AssetVehicle:
		prob, factors := VehicleFailureProbability(VehicleFeaturesFrom(latest, p), m.th.Vehicle)
		res.Score = prob
		res.Risk = prob
		res.Factors = factors
		res.TimeToFailure = TimeToFailure(prob, m.th.Vehicle)
	case model.AssetInfrastructure:
		health, factors := InfrastructureHealth(InfraFeaturesFrom(latest, p), m.th.Infrastructure)
		res.Score = health
		res.Risk = 1 - health/100
		res.Factors = factors
		res.RemainingLifespan = RemainingLifespan(p, health, m.th.Infrastructure)
	default:
		return model.PredictionResult{}, ErrUnknownKind
	}
	res.Tier = Classify(res.Risk, m.th.Tiers)
	res.Action = ActionFor(res.Tier)
	return res, nil
}
