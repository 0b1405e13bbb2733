// Package emergency computes priority routes for emergency vehicles. A route
// carries its ETA and the ordered signal overrides along the straight path.
// Overridden intersections stay reserved until the vehicle is expected to
// arrive, and the traffic optimizer must leave them alone.
package emergency
