package scheduler

import (
	"math"
	"time"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
)

const day = 24 * time.Hour

type kindProfile struct {
	duration    time.Duration
	technicians int
	equipment   []string
}

var kindProfiles = map[model.TaskKind]kindProfile{
	model.TaskUrgentRepair: {8 * time.Hour, 3, []string{"service_truck", "diagnostic_kit", "traffic_barriers"}},
	model.TaskPreventive:   {4 * time.Hour, 2, []string{"service_truck", "diagnostic_kit"}},
	model.TaskInspection:   {2 * time.Hour, 1, []string{"inspection_kit"}},
}

type tierProfile struct {
	base     int
	offset   time.Duration
	deadline time.Duration
	kind     model.TaskKind
}

// deadline is measured from the optimal date.
var tierProfiles = map[model.RiskTier]tierProfile{
	model.TierCritical: {100, 1 * day, 1 * day, model.TaskUrgentRepair},
	model.TierHigh:     {75, 1 * day, 2 * day, model.TaskPreventive},
	model.TierMedium:   {50, 3 * day, 4 * day, model.TaskInspection},
	model.TierLow:      {25, 14 * day, 7 * day, model.TaskInspection},
}

// KindFor maps a risk tier to the kind of work it requires.
func KindFor(tier model.RiskTier) model.TaskKind {
	if p, ok := tierProfiles[tier]; ok {
		return p.kind
	}
	return model.TaskInspection
}

// Priority combines the tier base with the normalised risk so that riskier
// assets rank first inside a tier.
func Priority(tier model.RiskTier, risk float64) int {
	p := tierProfiles[tier]
	r := math.Max(0, math.Min(1, risk))
	return p.base + int(math.Round(r*20))
}

// OptimalDate returns the target start date for a tier.
func OptimalDate(tier model.RiskTier, now time.Time) time.Time {
	return now.Add(tierProfiles[tier].offset)
}

// EstimateCost prices a task: labor at the hourly rate, materials by asset
// kind and overhead on both.
func EstimateCost(cfg Config, kind model.TaskKind, asset model.AssetKind) model.CostBreakdown {
	labor := kindProfiles[kind].duration.Hours() * cfg.HourlyRate
	materials := cfg.VehicleMaterials
	if asset == model.AssetInfrastructure {
		materials = cfg.InfrastructureMaterials
	}
	var rate float64
	if cfg.OverheadRate != nil {
		rate = *cfg.OverheadRate
	}
	overhead := (labor + materials) * rate
	return model.CostBreakdown{
		Labor:     labor,
		Materials: materials,
		Overhead:  overhead,
		Total:     labor + materials + overhead,
	}
}

// AssessImpact grades the traffic disruption of a task. Vehicle work happens
// in the depot and has no impact on traffic.
func AssessImpact(kind model.TaskKind, p model.AssetProfile) model.TrafficImpact {
	if p.Kind != model.AssetInfrastructure {
		return model.TrafficImpact{Severity: model.ImpactLow}
	}
	imp := model.TrafficImpact{AffectedRoutes: append([]string(nil), p.Routes...)}
	switch kind {
	case model.TaskUrgentRepair:
		imp.Severity, imp.EstimatedDelay = model.ImpactHigh, 20*time.Minute
	case model.TaskPreventive:
		imp.Severity, imp.EstimatedDelay = model.ImpactMedium, 10*time.Minute
	default:
		imp.Severity, imp.EstimatedDelay = model.ImpactLow, 5*time.Minute
	}
	return imp
}
