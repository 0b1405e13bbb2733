package traffic

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
)

// Severity labels of a congestion point.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Redistribution strategies.
const (
	StrategyAggressive = "aggressive_redistribution"
	StrategyBalanced   = "balanced_redistribution"
	StrategyAdvisory   = "advisory"
	StrategyHold       = "hold"
)

// Route priority labels.
const (
	PriorityPrimary   = "primary"
	PrioritySecondary = "secondary"
	PriorityOverflow  = "overflow"
)

// Optimizer derives signal timing and redistribution plans.
type Optimizer struct {
	cfg       Config
	predictor *Predictor
}

// NewOptimizer returns an Optimizer. Unset values take their defaults.
func NewOptimizer(cfg Config) *Optimizer {
	cfg.SetDefaults()
	return &Optimizer{cfg: cfg, predictor: NewPredictor(cfg)}
}

// Predictor returns the flow predictor used by Plan.
func (o *Optimizer) Predictor() *Predictor { return o.predictor }

// Signals recommends a green time per intersection. Intersections listed in
// overridden belong to an active emergency route and keep their timing.
func (o *Optimizer) Signals(s model.FlowSnapshot, pred model.FlowPrediction, overridden map[string]bool) []model.SignalRecommendation {
	ratio := 1.0
	if s.Volume > 0 {
		ratio = pred.PredictedVolume / s.Volume
	}
	out := make([]model.SignalRecommendation, 0, len(s.Intersections))
	for _, in := range s.Intersections {
		rec := model.SignalRecommendation{
			IntersectionID: in.ID,
			CurrentGreen:   in.GreenSeconds,
			OptimalGreen:   in.GreenSeconds,
			Mode:           model.SignalImmediate,
		}
		if overridden[in.ID] {
			rec.Mode = model.SignalEmergencyOverride
			out = append(out, rec)
			continue
		}
		rec.OptimalGreen = o.optimalGreen(in, in.Volume*ratio)
		delta := rec.OptimalGreen - in.GreenSeconds
		if in.GreenSeconds > 0 {
			rec.Improvement = round2(math.Min(o.cfg.MaxImprovement, math.Abs(delta)/in.GreenSeconds*100))
		}
		if math.Abs(delta) > o.cfg.GradualThreshold {
			rec.Mode = model.SignalGradual
		}
		out = append(out, rec)
	}
	return out
}

// optimalGreen splits the cycle in proportion to the main approach demand.
func (o *Optimizer) optimalGreen(in model.Intersection, main float64) float64 {
	total := main + in.CrossVolume
	if total <= 0 || in.CycleSeconds <= 0 {
		return in.GreenSeconds
	}
	if in.CycleSeconds <= 2*o.cfg.MinGreen {
		return round2(in.CycleSeconds / 2)
	}
	g := in.CycleSeconds * main / total
	return round2(clamp(g, o.cfg.MinGreen, in.CycleSeconds-o.cfg.MinGreen))
}

// SeverityLabel grades a congestion score.
func (o *Optimizer) SeverityLabel(severity float64) string {
	switch {
	case severity >= o.cfg.HighSeverity:
		return SeverityHigh
	case severity >= o.cfg.MediumSeverity:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Redistribute spreads the traffic of a congestion point over its
// alternatives in proportion to their capacity. Under high severity only
// alternatives able to absorb the capacity floor are used. Percentages are
// floored to two decimals so that their sum never exceeds 100. scale adjusts
// the point volume to the predicted conditions.
func (o *Optimizer) Redistribute(cp model.CongestionPoint, scale float64) model.RedistributionPlan {
	label := o.SeverityLabel(cp.Severity)
	plan := model.RedistributionPlan{PointID: cp.ID, Severity: label}
	if scale <= 0 {
		scale = 1
	}
	volume := cp.Volume * scale

	alts := make([]model.RouteCandidate, 0, len(cp.Alternatives))
	for _, rc := range cp.Alternatives {
		if rc.Capacity <= 0 {
			continue
		}
		if label == SeverityHigh && rc.Capacity < o.cfg.CapacityFloor*cp.Volume {
			continue
		}
		alts = append(alts, rc)
	}
	if len(alts) == 0 {
		plan.Strategy = StrategyHold
		return plan
	}
	switch label {
	case SeverityHigh:
		plan.Strategy = StrategyAggressive
	case SeverityMedium:
		plan.Strategy = StrategyBalanced
	default:
		plan.Strategy = StrategyAdvisory
	}

	sort.SliceStable(alts, func(i, j int) bool {
		if alts[i].Capacity != alts[j].Capacity {
			return alts[i].Capacity > alts[j].Capacity
		}
		return alts[i].ID < alts[j].ID
	})
	caps := make([]float64, len(alts))
	for i, rc := range alts {
		caps[i] = rc.Capacity
	}
	total := floats.Sum(caps)

	plan.Allocations = make([]model.RouteAllocation, len(alts))
	for i, rc := range alts {
		pct := math.Floor(rc.Capacity*10000/total) / 100
		plan.Allocations[i] = model.RouteAllocation{
			RouteID:    rc.ID,
			Percentage: pct,
			Volume:     round2(volume * pct / 100),
			Priority:   routePriority(i),
		}
	}
	if volume > 0 {
		plan.CongestionReduction = round2(math.Min(o.cfg.MaxReduction, total/volume*100*o.cfg.ReductionFactor))
	}
	return plan
}

func routePriority(rank int) string {
	switch rank {
	case 0:
		return PriorityPrimary
	case 1:
		return PrioritySecondary
	default:
		return PriorityOverflow
	}
}

// Plan runs one full optimisation pass over a snapshot.
func (o *Optimizer) Plan(s model.FlowSnapshot, overridden map[string]bool) model.TrafficPlan {
	pred := o.predictor.Predict(s)
	plan := model.TrafficPlan{
		GeneratedAt: s.Time,
		Prediction:  pred,
		Signals:     o.Signals(s, pred, overridden),
	}
	for _, cp := range s.CongestionPoints {
		plan.Redistributions = append(plan.Redistributions, o.Redistribute(cp, pred.TimeFactor*pred.WeatherFactor))
	}
	for _, in := range s.Intersections {
		if overridden[in.ID] {
			plan.OverriddenSignal = append(plan.OverriddenSignal, in.ID)
		}
	}
	sort.Strings(plan.OverriddenSignal)
	return plan
}
