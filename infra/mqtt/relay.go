package mqtt

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/events"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/infra/logger"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/internal/eventbus"
)

// Relay forwards traffic decisions from the event bus to field devices:
// plans are retained on <prefix>/plan, emergency routes go to
// <prefix>/emergency/<vehicle id> and maintenance changes to
// <prefix>/maintenance/<asset id>.
type Relay struct {
	pub    Publisher
	prefix string
	log    logger.Logger
}

// NewRelay creates a relay publishing under prefix, "traffic" by default.
func NewRelay(pub Publisher, prefix string) *Relay {
	if prefix == "" {
		prefix = "traffic"
	}
	return &Relay{pub: pub, prefix: strings.TrimSuffix(prefix, "/"), log: logger.New("mqtt-relay")}
}

// Start subscribes to bus and forwards events until ctx is cancelled or the
// bus closes. The returned channel is closed when forwarding stops.
func (r *Relay) Start(ctx context.Context, bus *eventbus.TypedBus[events.Event]) <-chan struct{} {
	sub := bus.Subscribe()
	done := make(chan struct{})
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
				if err := r.forward(ev); err != nil {
					r.log.Warnf("relay %s: %v", ev.EventName(), err)
				}
			}
		}
	}()
	return done
}

func (r *Relay) forward(ev events.Event) error {
	var (
		topic    string
		class    string
		retained bool
		body     any
	)
	switch e := ev.(type) {
	case events.PlanEvent:
		topic, class, retained, body = r.prefix+"/plan", "plan", true, e.Plan
	case events.EmergencyEvent:
		topic, class, body = r.prefix+"/emergency/"+e.Route.VehicleID, "emergency", e.Route
	case events.TaskEvent:
		topic, class, body = r.prefix+"/maintenance/"+e.Task.AssetID, "maintenance", e
	default:
		return nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return r.pub.Publish(topic, class, retained, payload)
}
