package model

import "time"

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Lat float64 `json:"lat" yaml:"lat" validate:"latitude"`
	Lon float64 `json:"lon" yaml:"lon" validate:"longitude"`
}

// Weather conditions understood by the flow predictor.
type Weather string

const (
	WeatherClear Weather = "clear"
	WeatherRain  Weather = "rain"
	WeatherSnow  Weather = "snow"
	WeatherFog   Weather = "fog"
)

// RouteCandidate is an alternative path around a congestion point.
type RouteCandidate struct {
	ID         string        `json:"id" yaml:"id"`
	Segments   []string      `json:"segments" yaml:"segments"`
	TravelTime time.Duration `json:"travel_time" yaml:"travel_time"`
	// Capacity is the spare capacity in vehicles per hour.
	Capacity float64 `json:"capacity" yaml:"capacity"`
}

// CongestionPoint is a known bottleneck.
type CongestionPoint struct {
	ID       string   `json:"id" yaml:"id"`
	Location GeoPoint `json:"location" yaml:"location"`
	// Severity is a congestion score in [0,1].
	Severity float64 `json:"severity" yaml:"severity"`
	// Volume is the traffic volume in vehicles per hour.
	Volume       float64          `json:"volume" yaml:"volume"`
	Alternatives []RouteCandidate `json:"alternatives" yaml:"alternatives"`
}

// Intersection is a signalised junction.
type Intersection struct {
	ID           string   `json:"id" yaml:"id"`
	Location     GeoPoint `json:"location" yaml:"location"`
	GreenSeconds float64  `json:"green_seconds" yaml:"green_seconds"`
	CycleSeconds float64  `json:"cycle_seconds" yaml:"cycle_seconds"`
	// Volume is the main approach volume, CrossVolume the conflicting one.
	Volume      float64 `json:"volume" yaml:"volume"`
	CrossVolume float64 `json:"cross_volume" yaml:"cross_volume"`
}

// FlowSnapshot is the current traffic state of the network.
type FlowSnapshot struct {
	Time             time.Time         `json:"time" yaml:"time"`
	Volume           float64           `json:"volume" yaml:"volume"`
	AvgSpeed         float64           `json:"avg_speed" yaml:"avg_speed"`
	Density          float64           `json:"density" yaml:"density"`
	Weather          Weather           `json:"weather" yaml:"weather"`
	CongestionPoints []CongestionPoint `json:"congestion_points" yaml:"congestion_points"`
	Intersections    []Intersection    `json:"intersections" yaml:"intersections"`
}

// FlowPrediction is the near-term projection derived from a snapshot.
type FlowPrediction struct {
	CurrentVolume   float64 `json:"current_volume"`
	PredictedVolume float64 `json:"predicted_volume"`
	TimeFactor      float64 `json:"time_factor"`
	WeatherFactor   float64 `json:"weather_factor"`
	Confidence      float64 `json:"confidence"`
}

// SignalMode describes how a timing change should be rolled out.
type SignalMode string

const (
	SignalImmediate         SignalMode = "immediate"
	SignalGradual           SignalMode = "gradual"
	SignalEmergencyOverride SignalMode = "emergency_override"
)

// SignalRecommendation is the timing advice for one intersection.
type SignalRecommendation struct {
	IntersectionID string     `json:"intersection_id"`
	CurrentGreen   float64    `json:"current_green"`
	OptimalGreen   float64    `json:"optimal_green"`
	Improvement    float64    `json:"improvement_pct"`
	Mode           SignalMode `json:"mode"`
}

// RouteAllocation is the share of diverted traffic assigned to one route.
type RouteAllocation struct {
	RouteID    string  `json:"route_id"`
	Percentage float64 `json:"percentage"`
	Volume     float64 `json:"volume"`
	Priority   string  `json:"priority"`
}

// RedistributionPlan spreads a congestion point's traffic over alternatives.
type RedistributionPlan struct {
	PointID             string            `json:"point_id"`
	Severity            string            `json:"severity"`
	Strategy            string            `json:"strategy"`
	Allocations         []RouteAllocation `json:"allocations"`
	CongestionReduction float64           `json:"congestion_reduction_pct"`
}

// TrafficPlan bundles one optimisation pass.
type TrafficPlan struct {
	GeneratedAt      time.Time              `json:"generated_at"`
	Prediction       FlowPrediction         `json:"prediction"`
	Signals          []SignalRecommendation `json:"signals"`
	Redistributions  []RedistributionPlan   `json:"redistributions"`
	OverriddenSignal []string               `json:"overridden_signals,omitempty"`
}
