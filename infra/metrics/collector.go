package metrics

import (
	"context"
	"time"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/events"
	coremetrics "github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/metrics"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// events. It stops when the context is canceled or the bus closes; the
// returned channel is closed at that point.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[events.Event], sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				record(sink, ev)
			}
		}
	}()
	return done
}

func record(sink coremetrics.MetricsSink, ev events.Event) {
	switch e := ev.(type) {
	case events.PredictionEvent:
		_ = sink.RecordPredictions([]model.PredictionResult{e.Result})
	case events.TaskEvent:
		if r, ok := sink.(coremetrics.TaskRecorder); ok {
			_ = r.RecordTask(coremetrics.TaskEvent{Task: e.Task, Change: e.Change, Time: time.Now()})
		}
	case events.PlanEvent:
		if r, ok := sink.(coremetrics.TrafficPlanRecorder); ok {
			_ = r.RecordTrafficPlan(e.Plan)
		}
	case events.TickEvent:
		if r, ok := sink.(coremetrics.TickRecorder); ok {
			errStr := ""
			if e.Err != nil {
				errStr = e.Err.Error()
			}
			_ = r.RecordTick(coremetrics.TickEvent{
				Producer: e.Producer,
				Readings: e.Readings,
				Failures: e.Failures,
				Skipped:  e.Skipped,
				Duration: e.Duration,
				Error:    errStr,
				Time:     e.Time,
			})
		}
	case events.EmergencyEvent:
		if r, ok := sink.(coremetrics.EmergencyRecorder); ok {
			_ = r.RecordEmergencyRoute(e.Route)
		}
	}
}
