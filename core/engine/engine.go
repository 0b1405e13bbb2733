package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"k8s.io/utils/clock"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/emergency"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/events"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/feed"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/logger"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/monitoring"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/notify"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/prediction"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/registry"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/scheduler"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/traffic"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/internal/eventbus"
)

// ErrAssetNotFound is returned when querying an asset the registry has
// never seen.
var ErrAssetNotFound = errors.New("engine: asset not found")

// Bus carries engine events to collectors and other observers.
type Bus = eventbus.TypedBus[events.Event]

// AssetError records why one reading of a batch was skipped.
type AssetError struct {
	AssetID string
	Err     error
}

func (e AssetError) Error() string { return fmt.Sprintf("asset %s: %v", e.AssetID, e.Err) }

func (e AssetError) Unwrap() error { return e.Err }

// BatchResult summarises one Ingest call.
type BatchResult struct {
	Kind        model.AssetKind
	Predictions []model.PredictionResult
	// Rejected maps asset ids to the metric keys dropped as malformed.
	Rejected map[string][]string
	Failures []AssetError
	Changes  scheduler.Changes
	// SchedulerErr is set when the scheduler refused part of the batch.
	SchedulerErr error
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for plans and emergency expiry.
func WithClock(c clock.PassiveClock) Option { return func(e *Engine) { e.clock = c } }

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option { return func(e *Engine) { e.log = logger.OrNop(l) } }

// WithModel replaces the rule based scoring model.
func WithModel(m prediction.Model) Option { return func(e *Engine) { e.model = m } }

// WithRegistry replaces the in-memory registry.
func WithRegistry(s registry.Store) Option { return func(e *Engine) { e.registry = s } }

// WithQueue sets the notification queue. Without one records are dropped.
func WithQueue(q *notify.Queue) Option { return func(e *Engine) { e.queue = q } }

// WithBus sets the event bus.
func WithBus(b *Bus) Option { return func(e *Engine) { e.bus = b } }

// Engine is the facade over the maintenance and traffic components.
type Engine struct {
	clock     clock.PassiveClock
	log       logger.Logger
	registry  registry.Store
	model     prediction.Model
	scheduler *scheduler.Scheduler
	optimizer *traffic.Optimizer
	router    *emergency.Router
	queue     *notify.Queue
	bus       *Bus

	mu       sync.Mutex
	snapshot *model.FlowSnapshot
	plan     *model.TrafficPlan
}

// New builds an Engine. Unset configuration values take their defaults.
func New(cfg Config, opts ...Option) (*Engine, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	e := &Engine{
		clock: clock.RealClock{},
		log:   logger.Nop{},
	}
	for _, o := range opts {
		o(e)
	}
	if e.registry == nil {
		e.registry = registry.NewMemoryStore(cfg.HistorySize)
	}
	if e.model == nil {
		e.model = prediction.NewRuleModel(cfg.Scoring)
	}
	if e.queue == nil {
		e.queue = notify.NewQueue(notify.NopSink{}, notify.DefaultQueueSize)
	}
	if e.bus == nil {
		e.bus = eventbus.NewTyped[events.Event]()
	}
	sched, err := scheduler.New(cfg.Maintenance, e.registry,
		scheduler.WithClock(e.clock), scheduler.WithLogger(e.log))
	if err != nil {
		return nil, err
	}
	e.scheduler = sched
	e.optimizer = traffic.NewOptimizer(cfg.Traffic)
	e.router = emergency.NewRouter(cfg.Emergency, e.clock)
	return e, nil
}

// Registry exposes the asset registry for read access.
func (e *Engine) Registry() registry.Store { return e.registry }

// Scheduler exposes the maintenance queue.
func (e *Engine) Scheduler() *scheduler.Scheduler { return e.scheduler }

// Bus returns the event bus.
func (e *Engine) Bus() *Bus { return e.bus }

// Queue returns the notification queue.
func (e *Engine) Queue() *notify.Queue { return e.queue }

// Ingest processes one batch of raw readings. A reading that cannot be
// stored or scored is logged and skipped; the rest of the batch proceeds.
// Successful results are then submitted to the scheduler in one call.
func (e *Engine) Ingest(ctx context.Context, kind model.AssetKind, readings []feed.Reading) BatchResult {
	out := BatchResult{Kind: kind}
	for _, raw := range readings {
		if raw.Kind == "" {
			raw.Kind = kind
		}
		readingsTotal.WithLabelValues(string(raw.Kind)).Inc()
		res, rejected, err := e.ingestOne(raw)
		if len(rejected) > 0 {
			if out.Rejected == nil {
				out.Rejected = map[string][]string{}
			}
			out.Rejected[raw.AssetID] = rejected
			rejectedMetrics.WithLabelValues(string(raw.Kind)).Add(float64(len(rejected)))
			e.log.Debugw("dropped malformed metrics", map[string]any{"asset_id": raw.AssetID, "keys": rejected})
		}
		if err != nil {
			scoringFailures.WithLabelValues(string(raw.Kind)).Inc()
			e.log.With(map[string]any{"asset_id": raw.AssetID}).Warnf("skipping reading: %v", err)
			out.Failures = append(out.Failures, AssetError{AssetID: raw.AssetID, Err: err})
			continue
		}
		out.Predictions = append(out.Predictions, res)
		predictionsByTier.WithLabelValues(string(res.Kind), res.Tier.String()).Inc()
	}
	if len(out.Predictions) == 0 {
		return out
	}

	changes, err := e.scheduler.Submit(ctx, out.Predictions)
	out.Changes, out.SchedulerErr = changes, err
	if err != nil {
		e.log.Errorf("scheduler rejected results: %v", err)
	}
	e.publishChanges(changes)

	for _, res := range out.Predictions {
		e.bus.Publish(events.PredictionEvent{Result: res})
		if !e.queue.Publish(notify.NewRecord(res)) {
			notifyDropped.Inc()
		}
	}
	notifyQueueLength.Set(float64(e.queue.Len()))
	return out
}

// ingestOne stores and scores one reading. Panics raised while scoring are
// recovered, reported and turned into an error for this asset only.
func (e *Engine) ingestOne(raw feed.Reading) (res model.PredictionResult, rejected []string, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = monitoring.CapturePanic(v, map[string]string{"asset_id": raw.AssetID, "component": "engine"})
		}
	}()
	reading, rejected := feed.Normalize(raw)
	profile, err := e.registry.UpsertReading(reading)
	if err != nil {
		return res, rejected, err
	}
	if raw.Location != nil || len(raw.Routes) > 0 {
		loc := profile.Location
		if raw.Location != nil {
			loc = *raw.Location
		}
		routes := raw.Routes
		if len(routes) == 0 {
			routes = profile.Routes
		}
		if err := e.registry.Annotate(profile.ID, loc, routes); err != nil {
			return res, rejected, err
		}
	}
	res, err = e.model.Evaluate(profile)
	if err != nil {
		monitoring.CaptureException(err, map[string]string{"asset_id": raw.AssetID, "component": "engine"})
		return res, rejected, err
	}
	if err := e.registry.SetScore(profile.ID, res); err != nil {
		return res, rejected, err
	}
	return res, rejected, nil
}

func (e *Engine) publishChanges(c scheduler.Changes) {
	for _, t := range c.Superseded {
		e.bus.Publish(events.TaskEvent{Task: t, Change: events.TaskSuperseded})
	}
	for _, t := range c.Created {
		e.bus.Publish(events.TaskEvent{Task: t, Change: events.TaskCreated})
	}
	activeTasks.Set(float64(e.scheduler.Len()))
}

// Predict scores the current profile of id. It does not change any state
// and returns the same result until a new reading arrives.
func (e *Engine) Predict(id string) (model.PredictionResult, error) {
	p, ok := e.registry.Lookup(id)
	if !ok {
		return model.PredictionResult{}, fmt.Errorf("%w: %s", ErrAssetNotFound, id)
	}
	return e.model.Evaluate(p)
}

// GenerateReport aggregates the current predictions and the maintenance
// queue.
func (e *Engine) GenerateReport(ctx context.Context) (scheduler.Report, error) {
	if err := ctx.Err(); err != nil {
		return scheduler.Report{}, err
	}
	profiles := e.registry.List(registry.Filter{ScoredOnly: true})
	preds := make([]model.PredictionResult, 0, len(profiles))
	for _, p := range profiles {
		res, err := e.model.Evaluate(p)
		if err != nil {
			e.log.Warnf("report: skipping %s: %v", p.ID, err)
			continue
		}
		preds = append(preds, res)
	}
	return e.scheduler.Report(preds), nil
}

// AcknowledgeTask marks a task executed by the operations system.
func (e *Engine) AcknowledgeTask(ctx context.Context, id string) (model.MaintenanceTask, error) {
	t, err := e.scheduler.Acknowledge(ctx, id)
	if err != nil {
		return t, err
	}
	e.bus.Publish(events.TaskEvent{Task: t, Change: events.TaskExecuted})
	activeTasks.Set(float64(e.scheduler.Len()))
	return t, nil
}

// HandleEmergencyVehicles routes every valid request and reserves the
// intersections on the way. When a traffic snapshot is known the plan is
// recomputed at once so the overrides take effect. Invalid requests are
// reported in the joined error while valid ones are still routed.
func (e *Engine) HandleEmergencyVehicles(ctx context.Context, vehicles []model.EmergencyVehicle) ([]model.EmergencyRoute, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	routes, err := e.router.Route(vehicles)
	for _, rt := range routes {
		e.bus.Publish(events.EmergencyEvent{Route: rt})
		e.log.Infof("emergency route for %s: %d overrides, eta %s", rt.VehicleID, len(rt.Overrides), rt.ETA)
	}
	if len(routes) > 0 {
		e.mu.Lock()
		snap := e.snapshot
		e.mu.Unlock()
		if snap != nil {
			e.OptimizeTraffic(ctx, *snap)
		}
	}
	return routes, err
}

// ReleaseEmergency ends the route of a vehicle that reached its destination.
func (e *Engine) ReleaseEmergency(vehicleID string) error {
	return e.router.Release(vehicleID)
}

// OptimizeTraffic computes the flow prediction, signal timings and
// redistribution plans for a snapshot. Intersections reserved by an active
// emergency route keep their timing.
func (e *Engine) OptimizeTraffic(_ context.Context, s model.FlowSnapshot) model.TrafficPlan {
	now := e.clock.Now()
	if s.Time.IsZero() {
		s.Time = now
	}
	if len(s.Intersections) > 0 {
		e.router.SetIntersections(s.Intersections)
	}
	plan := e.optimizer.Plan(s, e.router.Active(now))

	e.mu.Lock()
	e.snapshot = &s
	e.plan = &plan
	e.mu.Unlock()

	e.bus.Publish(events.PlanEvent{Plan: plan})
	return plan
}

// LastPlan returns the most recent traffic plan.
func (e *Engine) LastPlan() (model.TrafficPlan, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.plan == nil {
		return model.TrafficPlan{}, false
	}
	return *e.plan, true
}

// ActiveEmergencies lists the unexpired emergency routes.
func (e *Engine) ActiveEmergencies() []model.EmergencyRoute {
	return e.router.Routes(e.clock.Now())
}
