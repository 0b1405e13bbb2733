// Package traffic predicts near-term flow from a network snapshot and derives
// signal timing advice and congestion relief plans from that prediction.
// Everything here is rule based and deterministic.
package traffic
