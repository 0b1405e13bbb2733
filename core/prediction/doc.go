// Package prediction holds the health scoring models. Vehicles are scored with
// an additive failure-probability heuristic and infrastructure with a
// penalty-based health percentage. Both are pure functions of their inputs so
// that a prediction can be explained factor by factor and reproduced exactly.
package prediction
