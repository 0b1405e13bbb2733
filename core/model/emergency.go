package model

import "time"

// EmergencyVehicle is an active right-of-way request.
type EmergencyVehicle struct {
	ID          string   `json:"id" yaml:"id" validate:"required"`
	Type        string   `json:"type" yaml:"type" validate:"required,oneof=ambulance fire police rescue"`
	Location    GeoPoint `json:"location" yaml:"location"`
	Destination GeoPoint `json:"destination" yaml:"destination"`
	// Urgency ranges from 1 (routine) to 5 (life threatening).
	Urgency int `json:"urgency" yaml:"urgency" validate:"min=1,max=5"`
}

// SignalOverride instructs one intersection to give way.
type SignalOverride struct {
	IntersectionID string        `json:"intersection_id"`
	Order          int           `json:"order"`
	DistanceKm     float64       `json:"distance_km"`
	ActivateAfter  time.Duration `json:"activate_after"`
	HoldFor        time.Duration `json:"hold_for"`
}

// EmergencyRoute is the computed priority route for one vehicle.
type EmergencyRoute struct {
	VehicleID   string           `json:"vehicle_id"`
	Type        string           `json:"type"`
	Location    GeoPoint         `json:"location"`
	Destination GeoPoint         `json:"destination"`
	DistanceKm  float64          `json:"distance_km"`
	ETA         time.Duration    `json:"eta"`
	Overrides   []SignalOverride `json:"overrides"`
	IssuedAt    time.Time        `json:"issued_at"`
}
