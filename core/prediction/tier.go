package prediction

import "github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"

// Classify maps a normalised risk in [0,1] to a tier.
func Classify(risk float64, t TierThresholds) model.RiskTier {
	switch {
	case risk >= t.Critical:
		return model.TierCritical
	case risk >= t.High:
		return model.TierHigh
	case risk >= t.Medium:
		return model.TierMedium
	case risk >= t.Low:
		return model.TierLow
	default:
		return model.TierNormal
	}
}

// ActionFor returns the recommended follow-up for a tier.
func ActionFor(tier model.RiskTier) model.Action {
	switch tier {
	case model.TierCritical:
		return model.ActionImmediateMaintenance
	case model.TierHigh:
		return model.ActionScheduleMaintenance
	case model.TierMedium:
		return model.ActionScheduleInspection
	case model.TierLow:
		return model.ActionMonitor
	default:
		return model.ActionNone
	}
}
