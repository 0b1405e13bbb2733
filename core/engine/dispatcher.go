package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"k8s.io/utils/clock"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/events"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/feed"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/logger"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
)

// ErrSourceTimeout marks a tick skipped because the source did not answer
// within the pull timeout.
var ErrSourceTimeout = errors.New("engine: source timeout")

// Producer names one periodic loop of the dispatcher.
type Producer string

const (
	ProducerVehicle        Producer = "vehicle"
	ProducerInfrastructure Producer = "infrastructure"
	ProducerTraffic        Producer = "traffic"
)

// Producers lists every producer in start order.
var Producers = []Producer{ProducerVehicle, ProducerInfrastructure, ProducerTraffic}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithTicker sets the clock that drives the producer loops.
func WithTicker(c clock.WithTicker) DispatcherOption { return func(d *Dispatcher) { d.clock = c } }

// WithDispatcherLogger sets the dispatcher logger.
func WithDispatcherLogger(l logger.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.log = logger.OrNop(l) }
}

// Dispatcher pulls from the sources on independent intervals and feeds the
// engine. Each tick runs to completion before the next tick of the same
// producer; ticks of different producers may overlap.
type Dispatcher struct {
	engine  *Engine
	sensors feed.Source
	traffic feed.TrafficSource
	cfg     DispatcherConfig
	clock   clock.WithTicker
	log     logger.Logger
}

// NewDispatcher creates a dispatcher. A nil sensors source disables the
// vehicle and infrastructure producers; a nil traffic source disables the
// traffic producer.
func NewDispatcher(e *Engine, sensors feed.Source, trafficSrc feed.TrafficSource, cfg DispatcherConfig, opts ...DispatcherOption) (*Dispatcher, error) {
	if e == nil {
		return nil, errors.New("dispatcher: engine is required")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d := &Dispatcher{
		engine:  e,
		sensors: sensors,
		traffic: trafficSrc,
		cfg:     cfg,
		clock:   clock.RealClock{},
		log:     logger.Nop{},
	}
	for _, o := range opts {
		o(d)
	}
	return d, nil
}

func (d *Dispatcher) interval(p Producer) time.Duration {
	switch p {
	case ProducerVehicle:
		if d.sensors != nil {
			return d.cfg.VehicleInterval
		}
	case ProducerInfrastructure:
		if d.sensors != nil {
			return d.cfg.InfrastructureInterval
		}
	case ProducerTraffic:
		if d.traffic != nil {
			return d.cfg.TrafficInterval
		}
	}
	return 0
}

// Run starts every enabled producer and blocks until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	return d.start(ctx)()
}

// start creates the tickers synchronously and launches the loops. The
// returned function waits for them to stop.
func (d *Dispatcher) start(ctx context.Context) func() error {
	g, ctx := errgroup.WithContext(ctx)
	for _, p := range Producers {
		iv := d.interval(p)
		if iv <= 0 {
			continue
		}
		t := d.clock.NewTicker(iv)
		d.log.Infof("producer %s every %s", p, iv)
		g.Go(func() error {
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-t.C():
					d.Tick(ctx, p)
				}
			}
		})
	}
	return g.Wait
}

// Tick runs one cycle of producer p. It is the explicit tick signal used by
// the loops and by callers that drive the engine themselves.
func (d *Dispatcher) Tick(ctx context.Context, p Producer) events.TickEvent {
	start := d.clock.Now()
	ev := events.TickEvent{Producer: string(p), Time: start}
	ticksTotal.WithLabelValues(string(p)).Inc()

	switch p {
	case ProducerVehicle, ProducerInfrastructure:
		ev = d.tickSensors(ctx, p, ev)
	case ProducerTraffic:
		ev = d.tickTraffic(ctx, ev)
	default:
		ev.Skipped = true
		ev.Err = fmt.Errorf("unknown producer %q", p)
	}

	ev.Duration = d.clock.Since(start)
	tickDuration.WithLabelValues(string(p)).Observe(ev.Duration.Seconds())
	if ev.Skipped {
		ticksSkipped.WithLabelValues(string(p)).Inc()
		if ev.Err != nil {
			d.log.Warnf("tick %s skipped: %v", p, ev.Err)
		}
	}
	d.engine.bus.Publish(ev)
	return ev
}

func (d *Dispatcher) tickSensors(ctx context.Context, p Producer, ev events.TickEvent) events.TickEvent {
	if d.sensors == nil {
		ev.Skipped = true
		return ev
	}
	kind := model.AssetKind(p)
	pullCtx, cancel := context.WithTimeout(ctx, d.cfg.PullTimeout)
	readings, err := d.sensors.Pull(pullCtx, kind)
	cancel()
	if err != nil {
		ev.Skipped = true
		ev.Err = d.pullError(p, err)
		return ev
	}
	if len(readings) == 0 {
		return ev
	}
	batch := d.engine.Ingest(ctx, kind, readings)
	ev.Readings = len(readings)
	ev.Failures = len(batch.Failures)
	ev.Err = batch.SchedulerErr
	return ev
}

func (d *Dispatcher) tickTraffic(ctx context.Context, ev events.TickEvent) events.TickEvent {
	if d.traffic == nil {
		ev.Skipped = true
		return ev
	}
	pullCtx, cancel := context.WithTimeout(ctx, d.cfg.PullTimeout)
	snap, err := d.traffic.Snapshot(pullCtx)
	cancel()
	if errors.Is(err, feed.ErrNoSnapshot) {
		ev.Skipped = true
		return ev
	}
	if err != nil {
		ev.Skipped = true
		ev.Err = d.pullError(ProducerTraffic, err)
		return ev
	}
	d.engine.OptimizeTraffic(ctx, snap)
	ev.Readings = 1
	return ev
}

func (d *Dispatcher) pullError(p Producer, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s after %s", ErrSourceTimeout, p, d.cfg.PullTimeout)
	}
	return fmt.Errorf("pull %s: %w", p, err)
}
