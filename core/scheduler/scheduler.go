package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"k8s.io/utils/clock"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/logger"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
)

var (
	// ErrUnknownAsset is returned when a prediction references an asset the
	// registry does not know. No task is enqueued for it.
	ErrUnknownAsset = errors.New("scheduler: unknown asset")
	// ErrTaskNotFound is returned when acknowledging an unknown task.
	ErrTaskNotFound = errors.New("scheduler: task not found")
)

// AssetLookup resolves asset profiles. The registry satisfies it.
type AssetLookup interface {
	Lookup(id string) (model.AssetProfile, bool)
}

// Changes lists the tasks affected by one Submit call.
type Changes struct {
	Created    []model.MaintenanceTask
	Superseded []model.MaintenanceTask
}

// Empty reports whether nothing changed.
func (c Changes) Empty() bool { return len(c.Created) == 0 && len(c.Superseded) == 0 }

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock injects the time source.
func WithClock(c clock.PassiveClock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) { s.log = logger.OrNop(l) }
}

// Scheduler owns the maintenance queue. All mutations run under a single
// lock and end with one reordering pass, so readers never observe a
// half-sorted queue.
type Scheduler struct {
	mu      sync.Mutex
	cfg     Config
	minTier model.RiskTier
	assets  AssetLookup
	clock   clock.PassiveClock
	log     logger.Logger

	active  []*entry
	byAsset map[string]*entry
	history []model.MaintenanceTask
}

// New returns a Scheduler. Unset configuration values take their defaults.
func New(cfg Config, assets AssetLookup, opts ...Option) (*Scheduler, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if assets == nil {
		return nil, errors.New("scheduler: asset lookup is required")
	}
	minTier, _ := parseTier(cfg.MinTier)
	s := &Scheduler{
		cfg:     cfg,
		minTier: minTier,
		assets:  assets,
		clock:   clock.RealClock{},
		log:     logger.Nop{},
		byAsset: map[string]*entry{},
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Submit reconciles the queue with a batch of predictions. Results at or
// above the minimum tier create a task unless the asset already has one at
// the same tier. A different tier supersedes the active task. Results for
// unknown assets are rejected and reported in the returned error.
func (s *Scheduler) Submit(ctx context.Context, results []model.PredictionResult) (Changes, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	var (
		ch      Changes
		created []*entry
		errs    []error
	)
	for _, r := range results {
		prof, ok := s.assets.Lookup(r.AssetID)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownAsset, r.AssetID))
			continue
		}
		cur := s.byAsset[r.AssetID]
		if cur != nil && cur.task.Tier == r.Tier {
			continue
		}
		if cur != nil {
			if err := cur.fire(ctx, eventSupersede); err != nil {
				errs = append(errs, fmt.Errorf("supersede %s: %w", cur.task.ID, err))
				continue
			}
			s.retire(cur)
			ch.Superseded = append(ch.Superseded, cur.task.Clone())
			s.log.Infof("task %s for %s superseded (%s -> %s)", cur.task.ID, r.AssetID, cur.task.Tier, r.Tier)
		}
		if r.Tier < s.minTier {
			continue
		}
		e := newEntry(s.buildTask(r, prof, now))
		if err := e.fire(ctx, eventSchedule); err != nil {
			errs = append(errs, fmt.Errorf("schedule %s: %w", e.task.ID, err))
			continue
		}
		s.active = append(s.active, e)
		s.byAsset[r.AssetID] = e
		created = append(created, e)
	}
	if len(created) > 0 || len(ch.Superseded) > 0 {
		s.reorder()
	}
	for _, e := range created {
		ch.Created = append(ch.Created, e.task.Clone())
		s.log.Debugw("task scheduled", map[string]any{
			"task_id": e.task.ID, "asset_id": e.task.AssetID, "priority": e.task.Priority,
			"window_start": e.task.Window.Start, "conflicted": e.task.Conflicted,
		})
	}
	return ch, errors.Join(errs...)
}

func (s *Scheduler) buildTask(r model.PredictionResult, prof model.AssetProfile, now time.Time) model.MaintenanceTask {
	tp := tierProfiles[r.Tier]
	kind := KindFor(r.Tier)
	kp := kindProfiles[kind]
	optimal := OptimalDate(r.Tier, now)
	return model.MaintenanceTask{
		ID:          uuid.NewString(),
		AssetID:     r.AssetID,
		AssetKind:   prof.Kind,
		Kind:        kind,
		Tier:        r.Tier,
		Priority:    Priority(r.Tier, r.Risk),
		CreatedAt:   now,
		OptimalDate: optimal,
		Deadline:    optimal.Add(tp.deadline),
		Duration:    kp.duration,
		Cost:        EstimateCost(s.cfg, kind, prof.Kind),
		Resources:   model.Resources{Technicians: kp.technicians, Equipment: append([]string(nil), kp.equipment...)},
		Impact:      AssessImpact(kind, prof),
		Score:       r.Score,
	}
}

// Acknowledge marks a task executed and removes it from the queue.
func (s *Scheduler) Acknowledge(ctx context.Context, id string) (model.MaintenanceTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.active {
		if e.task.ID != id {
			continue
		}
		if err := e.fire(ctx, eventExecute); err != nil {
			return model.MaintenanceTask{}, fmt.Errorf("execute %s: %w", id, err)
		}
		s.retire(e)
		s.reorder()
		return e.task.Clone(), nil
	}
	return model.MaintenanceTask{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
}

// retire removes e from the queue and archives it. Callers hold the lock.
func (s *Scheduler) retire(e *entry) {
	for i, a := range s.active {
		if a == e {
			s.active = append(s.active[:i], s.active[i+1:]...)
			break
		}
	}
	if s.byAsset[e.task.AssetID] == e {
		delete(s.byAsset, e.task.AssetID)
	}
	s.history = append(s.history, e.task.Clone())
	if over := len(s.history) - s.cfg.HistorySize; over > 0 {
		s.history = append([]model.MaintenanceTask(nil), s.history[over:]...)
	}
}

// Tasks returns the active queue in schedule order.
func (s *Scheduler) Tasks() []model.MaintenanceTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.MaintenanceTask, len(s.active))
	for i, e := range s.active {
		out[i] = e.task.Clone()
	}
	return out
}

// TaskFor returns the active task of an asset.
func (s *Scheduler) TaskFor(assetID string) (model.MaintenanceTask, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byAsset[assetID]
	if !ok {
		return model.MaintenanceTask{}, false
	}
	return e.task.Clone(), true
}

// History returns executed and superseded tasks, oldest first.
func (s *Scheduler) History() []model.MaintenanceTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.MaintenanceTask, len(s.history))
	for i, t := range s.history {
		out[i] = t.Clone()
	}
	return out
}

// Len returns the number of active tasks.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// sortEntries orders by priority descending, then impact severity ascending.
// Creation time and id keep the order stable.
func sortEntries(es []*entry) {
	sort.SliceStable(es, func(i, j int) bool {
		a, b := &es[i].task, &es[j].task
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if a.Impact.Severity != b.Impact.Severity {
			return a.Impact.Severity < b.Impact.Severity
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
