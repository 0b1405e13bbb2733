// Package engine wires the registry, scoring models, scheduler, traffic
// optimizer and emergency router together.
//
// Engine exposes the synchronous operations used by external callers:
// ingesting a batch, querying a prediction, building the maintenance
// report, routing emergency vehicles and optimising traffic. Dispatcher
// drives Engine from three periodic producers fed by a feed.Source.
//
// Data flows in one direction. A reading is normalised, stored in the
// registry and scored; the batch results are then submitted to the
// scheduler and published to the notification queue and the event bus.
package engine
