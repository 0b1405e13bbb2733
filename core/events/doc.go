// Package events defines the engine events emitted on the event bus.
//
// Available event types:
//   - PredictionEvent: an asset was scored
//   - TaskEvent: a maintenance task changed state
//   - TickEvent: a dispatcher producer finished a tick
//   - PlanEvent: a traffic optimisation pass completed
//   - EmergencyEvent: an emergency route was issued
package events

// Event is implemented by every event carried on the bus.
type Event interface {
	EventName() string
}
