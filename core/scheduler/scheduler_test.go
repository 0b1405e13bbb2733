package scheduler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testclock "k8s.io/utils/clock/testing"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
)

type assets map[string]model.AssetProfile

func (a assets) Lookup(id string) (model.AssetProfile, bool) {
	p, ok := a[id]
	return p, ok
}

func (a assets) add(id string, kind model.AssetKind, routes ...string) {
	a[id] = model.AssetProfile{ID: id, Kind: kind, Routes: routes}
}

var monday = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func newTestScheduler(t *testing.T, cfg Config, now time.Time) (*Scheduler, assets) {
	t.Helper()
	a := assets{}
	s, err := New(cfg, a, WithClock(testclock.NewFakeClock(now)))
	require.NoError(t, err)
	return s, a
}

func result(id string, tier model.RiskTier, risk float64) model.PredictionResult {
	return model.PredictionResult{AssetID: id, Tier: tier, Risk: risk, Score: risk}
}

func TestSortOrderByPriority(t *testing.T) {
	var es []*entry
	for i, p := range []int{10, 90, 50} {
		es = append(es, &entry{task: model.MaintenanceTask{ID: fmt.Sprint(i), Priority: p}})
	}
	sortEntries(es)
	var got []int
	for _, e := range es {
		got = append(got, e.task.Priority)
	}
	assert.Equal(t, []int{90, 50, 10}, got)
}

func TestSortTieBreaksOnImpact(t *testing.T) {
	es := []*entry{
		{task: model.MaintenanceTask{ID: "a", Priority: 75, Impact: model.TrafficImpact{Severity: model.ImpactHigh}}},
		{task: model.MaintenanceTask{ID: "b", Priority: 75, Impact: model.TrafficImpact{Severity: model.ImpactLow}}},
		{task: model.MaintenanceTask{ID: "c", Priority: 75, Impact: model.TrafficImpact{Severity: model.ImpactMedium}}},
	}
	sortEntries(es)
	assert.Equal(t, "b", es[0].task.ID)
	assert.Equal(t, "c", es[1].task.ID)
	assert.Equal(t, "a", es[2].task.ID)
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 120, Priority(model.TierCritical, 1))
	assert.Equal(t, 59, Priority(model.TierMedium, 0.45))
	assert.Equal(t, 25, Priority(model.TierLow, -3))
}

func TestCriticalIsNextDayRegardlessOfQueue(t *testing.T) {
	s, a := newTestScheduler(t, Config{CrewCapacity: 1}, monday)
	var backlog []model.PredictionResult
	for i := 0; i < 40; i++ {
		id := fmt.Sprintf("B%02d", i)
		a.add(id, model.AssetInfrastructure, "A1")
		backlog = append(backlog, result(id, model.TierHigh, 0.7))
	}
	_, err := s.Submit(context.Background(), backlog)
	require.NoError(t, err)

	var crit []model.PredictionResult
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("V%d", i)
		a.add(id, model.AssetVehicle)
		crit = append(crit, result(id, model.TierCritical, 0.9))
	}
	ch, err := s.Submit(context.Background(), crit)
	require.NoError(t, err)
	require.Len(t, ch.Created, 5)

	for _, task := range ch.Created {
		assert.Equal(t, model.TierCritical, task.Tier)
		assert.Equal(t, model.TaskUrgentRepair, task.Kind)
		assert.Equal(t, model.TaskScheduled, task.State)
		assert.False(t, task.Window.Start.Before(monday.Add(day)), "task %s starts %v", task.ID, task.Window.Start)
		assert.True(t, task.Window.Start.Before(monday.Add(2*day)), "task %s starts %v", task.ID, task.Window.Start)
	}
	// critical work heads the queue
	assert.Equal(t, model.TierCritical, s.Tasks()[0].Tier)
	assert.Equal(t, 45, s.Len())
}

func TestSubmitRejectsUnknownAsset(t *testing.T) {
	s, a := newTestScheduler(t, Config{}, monday)
	a.add("V1", model.AssetVehicle)
	ch, err := s.Submit(context.Background(), []model.PredictionResult{
		result("ghost", model.TierCritical, 1),
		result("V1", model.TierHigh, 0.65),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownAsset))
	assert.Len(t, ch.Created, 1)
	_, ok := s.TaskFor("ghost")
	assert.False(t, ok)
}

func TestSubmitIgnoresLowRisk(t *testing.T) {
	s, a := newTestScheduler(t, Config{}, monday)
	a.add("V1", model.AssetVehicle)
	ch, err := s.Submit(context.Background(), []model.PredictionResult{result("V1", model.TierLow, 0.25)})
	require.NoError(t, err)
	assert.True(t, ch.Empty())
	assert.Zero(t, s.Len())
}

func TestSupersedeOnTierChange(t *testing.T) {
	ctx := context.Background()
	s, a := newTestScheduler(t, Config{}, monday)
	a.add("B1", model.AssetInfrastructure, "A1")

	first, err := s.Submit(ctx, []model.PredictionResult{result("B1", model.TierHigh, 0.65)})
	require.NoError(t, err)
	require.Len(t, first.Created, 1)

	same, err := s.Submit(ctx, []model.PredictionResult{result("B1", model.TierHigh, 0.7)})
	require.NoError(t, err)
	assert.True(t, same.Empty())

	next, err := s.Submit(ctx, []model.PredictionResult{result("B1", model.TierCritical, 0.85)})
	require.NoError(t, err)
	require.Len(t, next.Superseded, 1)
	require.Len(t, next.Created, 1)
	assert.Equal(t, first.Created[0].ID, next.Superseded[0].ID)
	assert.Equal(t, model.TaskSuperseded, next.Superseded[0].State)
	assert.Equal(t, model.TaskUrgentRepair, next.Created[0].Kind)
	assert.Equal(t, model.ImpactHigh, next.Created[0].Impact.Severity)
	assert.Equal(t, []string{"A1"}, next.Created[0].Impact.AffectedRoutes)
	assert.Equal(t, 1, s.Len())

	recovered, err := s.Submit(ctx, []model.PredictionResult{result("B1", model.TierNormal, 0.05)})
	require.NoError(t, err)
	assert.Len(t, recovered.Superseded, 1)
	assert.Empty(t, recovered.Created)
	assert.Zero(t, s.Len())
	assert.Len(t, s.History(), 2)
}

func TestAcknowledge(t *testing.T) {
	ctx := context.Background()
	s, a := newTestScheduler(t, Config{}, monday)
	a.add("V1", model.AssetVehicle)
	ch, err := s.Submit(ctx, []model.PredictionResult{result("V1", model.TierCritical, 1)})
	require.NoError(t, err)
	id := ch.Created[0].ID

	done, err := s.Acknowledge(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.TaskExecuted, done.State)
	assert.Zero(t, s.Len())

	_, err = s.Acknowledge(ctx, id)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	hist := s.History()
	require.Len(t, hist, 1)
	assert.Equal(t, model.TaskExecuted, hist[0].State)
}

func TestPlacementAvoidsRushHours(t *testing.T) {
	now := time.Date(2025, 6, 2, 5, 30, 0, 0, time.UTC)
	s, a := newTestScheduler(t, Config{}, now)
	a.add("B1", model.AssetInfrastructure)
	a.add("V1", model.AssetVehicle)
	ch, err := s.Submit(context.Background(), []model.PredictionResult{
		result("B1", model.TierHigh, 0.65),
		result("V1", model.TierHigh, 0.65),
	})
	require.NoError(t, err)
	require.Len(t, ch.Created, 2)
	byAsset := map[string]model.MaintenanceTask{}
	for _, task := range ch.Created {
		byAsset[task.AssetID] = task
	}
	next := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, next.Add(9*time.Hour), byAsset["B1"].Window.Start)
	assert.Equal(t, next.Add(6*time.Hour), byAsset["V1"].Window.Start)
	assert.False(t, byAsset["B1"].Conflicted)
}

func TestPlacementRespectsCrewCapacity(t *testing.T) {
	s, a := newTestScheduler(t, Config{CrewCapacity: 1}, monday)
	a.add("V1", model.AssetVehicle)
	a.add("V2", model.AssetVehicle)
	_, err := s.Submit(context.Background(), []model.PredictionResult{
		result("V1", model.TierCritical, 1),
		result("V2", model.TierCritical, 0.9),
	})
	require.NoError(t, err)
	tasks := s.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "V1", tasks[0].AssetID)
	assert.Equal(t, monday.Add(day), tasks[0].Window.Start)
	assert.Equal(t, tasks[0].Window.End, tasks[1].Window.Start)
	assert.False(t, tasks[0].Window.Overlaps(tasks[1].Window))
}

func TestPlacementFlagsConflicts(t *testing.T) {
	s, a := newTestScheduler(t, Config{CrewCapacity: 1}, monday)
	var batch []model.PredictionResult
	for i := 0; i < 4; i++ {
		id := fmt.Sprintf("V%d", i)
		a.add(id, model.AssetVehicle)
		batch = append(batch, result(id, model.TierCritical, 0.9))
	}
	_, err := s.Submit(context.Background(), batch)
	require.NoError(t, err)
	tasks := s.Tasks()
	require.Len(t, tasks, 4)
	assert.False(t, tasks[0].Conflicted)
	assert.False(t, tasks[1].Conflicted)
	assert.True(t, tasks[3].Conflicted)
	assert.Equal(t, monday.Add(day), tasks[3].Window.Start)
}

func TestEstimateCost(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	c := EstimateCost(cfg, model.TaskUrgentRepair, model.AssetVehicle)
	assert.InDelta(t, 600, c.Labor, 1e-9)
	assert.InDelta(t, 350, c.Materials, 1e-9)
	assert.InDelta(t, 190, c.Overhead, 1e-9)
	assert.InDelta(t, 1140, c.Total, 1e-9)

	c = EstimateCost(cfg, model.TaskPreventive, model.AssetInfrastructure)
	assert.InDelta(t, 2160, c.Total, 1e-9)
}

func TestEstimateCostZeroOverhead(t *testing.T) {
	zero := 0.0
	cfg := Config{OverheadRate: &zero}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	c := EstimateCost(cfg, model.TaskUrgentRepair, model.AssetVehicle)
	assert.Zero(t, c.Overhead)
	assert.InDelta(t, 950, c.Total, 1e-9)
}

func TestReport(t *testing.T) {
	s, a := newTestScheduler(t, Config{}, monday)
	a.add("V1", model.AssetVehicle)
	a.add("B1", model.AssetInfrastructure)
	preds := []model.PredictionResult{
		{AssetID: "V1", Kind: model.AssetVehicle, Score: 1, Risk: 1, Tier: model.TierCritical},
		{AssetID: "B1", Kind: model.AssetInfrastructure, Score: 35, Risk: 0.65, Tier: model.TierHigh},
	}
	_, err := s.Submit(context.Background(), preds)
	require.NoError(t, err)

	r := s.Report(preds)
	assert.Equal(t, 2, r.Summary.TotalAssets)
	assert.Equal(t, 1, r.Summary.ByTier["critical"])
	assert.Equal(t, 1, r.Summary.ByTier["high"])
	assert.Equal(t, 2, r.Summary.ActiveTasks)
	assert.InDelta(t, 35, r.Summary.AverageInfrastructureHealth, 1e-9)
	require.Len(t, r.Recommendations, 2)
	assert.Equal(t, model.ActionImmediateMaintenance, r.Recommendations[0].Action)
	assert.InDelta(t, 1140+2160, r.CostAnalysis.Total, 1e-9)
	assert.InDelta(t, 1140, r.CostAnalysis.ByAssetKind[model.AssetVehicle], 1e-9)
	assert.Len(t, r.Predictions, 2)
}
