package scheduler

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/prediction"
)

// Summary aggregates the fleet state at report time.
type Summary struct {
	GeneratedAt                 time.Time      `json:"generated_at"`
	TotalAssets                 int            `json:"total_assets"`
	ByTier                      map[string]int `json:"by_tier"`
	ActiveTasks                 int            `json:"active_tasks"`
	ConflictedTasks             int            `json:"conflicted_tasks"`
	ExecutedTasks               int            `json:"executed_tasks"`
	AverageVehicleRisk          float64        `json:"average_vehicle_risk"`
	AverageInfrastructureHealth float64        `json:"average_infrastructure_health"`
}

// Recommendation is one actionable line of the report.
type Recommendation struct {
	TaskID   string              `json:"task_id"`
	AssetID  string              `json:"asset_id"`
	Kind     model.TaskKind      `json:"kind"`
	Tier     model.RiskTier      `json:"tier"`
	Action   model.Action        `json:"action"`
	Priority int                 `json:"priority"`
	Window   model.TimeWindow    `json:"window"`
	Impact   model.TrafficImpact `json:"impact"`
	Cost     float64             `json:"cost"`
	Message  string              `json:"message"`
}

// CostAnalysis totals the estimated cost of the active queue.
type CostAnalysis struct {
	Labor       float64                     `json:"labor"`
	Materials   float64                     `json:"materials"`
	Overhead    float64                     `json:"overhead"`
	Total       float64                     `json:"total"`
	ByTaskKind  map[model.TaskKind]float64  `json:"by_task_kind"`
	ByAssetKind map[model.AssetKind]float64 `json:"by_asset_kind"`
}

// Report is a snapshot of predictions and the maintenance plan.
// Summary.GeneratedAt is when the report was built, while each prediction
// keeps the Timestamp of the reading it was scored from.
type Report struct {
	Summary         Summary                  `json:"summary"`
	Predictions     []model.PredictionResult `json:"predictions"`
	Recommendations []Recommendation         `json:"recommendations"`
	CostAnalysis    CostAnalysis             `json:"cost_analysis"`
}

// Report builds a snapshot from the given predictions and the current queue.
func (s *Scheduler) Report(preds []model.PredictionResult) Report {
	tasks := s.Tasks()
	hist := s.History()

	sum := Summary{
		GeneratedAt: s.clock.Now(),
		TotalAssets: len(preds),
		ByTier:      map[string]int{},
		ActiveTasks: len(tasks),
	}
	var risks, healths []float64
	for _, p := range preds {
		sum.ByTier[p.Tier.String()]++
		switch p.Kind {
		case model.AssetVehicle:
			risks = append(risks, p.Score)
		case model.AssetInfrastructure:
			healths = append(healths, p.Score)
		}
	}
	if len(risks) > 0 {
		sum.AverageVehicleRisk = stat.Mean(risks, nil)
	}
	if len(healths) > 0 {
		sum.AverageInfrastructureHealth = stat.Mean(healths, nil)
	}
	for _, t := range hist {
		if t.State == model.TaskExecuted {
			sum.ExecutedTasks++
		}
	}

	costs := CostAnalysis{
		ByTaskKind:  map[model.TaskKind]float64{},
		ByAssetKind: map[model.AssetKind]float64{},
	}
	recs := make([]Recommendation, 0, len(tasks))
	labor := make([]float64, 0, len(tasks))
	materials := make([]float64, 0, len(tasks))
	overhead := make([]float64, 0, len(tasks))
	for _, t := range tasks {
		if t.Conflicted {
			sum.ConflictedTasks++
		}
		labor = append(labor, t.Cost.Labor)
		materials = append(materials, t.Cost.Materials)
		overhead = append(overhead, t.Cost.Overhead)
		costs.ByTaskKind[t.Kind] += t.Cost.Total
		costs.ByAssetKind[t.AssetKind] += t.Cost.Total
		recs = append(recs, Recommendation{
			TaskID:   t.ID,
			AssetID:  t.AssetID,
			Kind:     t.Kind,
			Tier:     t.Tier,
			Action:   prediction.ActionFor(t.Tier),
			Priority: t.Priority,
			Window:   t.Window,
			Impact:   t.Impact,
			Cost:     t.Cost.Total,
			Message:  recommendationMessage(t),
		})
	}
	costs.Labor = floats.Sum(labor)
	costs.Materials = floats.Sum(materials)
	costs.Overhead = floats.Sum(overhead)
	costs.Total = costs.Labor + costs.Materials + costs.Overhead

	out := make([]model.PredictionResult, len(preds))
	copy(out, preds)
	return Report{Summary: sum, Predictions: out, Recommendations: recs, CostAnalysis: costs}
}

func recommendationMessage(t model.MaintenanceTask) string {
	msg := fmt.Sprintf("%s %s for %s %s on %s",
		t.Tier, t.Kind, t.AssetKind, t.AssetID, t.Window.Start.Format("2006-01-02 15:04"))
	if t.Conflicted {
		msg += " (no conflict-free window before deadline)"
	}
	return msg
}
