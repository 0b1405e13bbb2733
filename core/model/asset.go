package model

import (
	"fmt"
	"time"
)

// AssetKind distinguishes the two families of tracked assets.
type AssetKind string

const (
	AssetVehicle        AssetKind = "vehicle"
	AssetInfrastructure AssetKind = "infrastructure"
)

// Valid reports whether k is a known asset kind.
func (k AssetKind) Valid() bool {
	return k == AssetVehicle || k == AssetInfrastructure
}

// ParseAssetKind converts a textual kind into an AssetKind.
func ParseAssetKind(s string) (AssetKind, error) {
	k := AssetKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown asset kind %q", s)
	}
	return k, nil
}

// Well-known metric names carried by sensor readings.
const (
	MetricEngineTemp           = "engineTemp"
	MetricOilPressure          = "oilPressure"
	MetricBrakeWear            = "brakeWear"
	MetricAge                  = "age"
	MetricMileage              = "mileage"
	MetricStructuralIntegrity  = "structuralIntegrity"
	MetricSurfaceCondition     = "surfaceCondition"
	MetricDaysSinceMaintenance = "daysSinceMaintenance"
)

// SensorReading is a validated, numeric snapshot reported by one asset.
// Readings are immutable once recorded.
type SensorReading struct {
	AssetID   string             `json:"asset_id"`
	Kind      AssetKind          `json:"kind"`
	Timestamp time.Time          `json:"timestamp"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Metric returns the named value and whether it was reported.
func (r SensorReading) Metric(name string) (float64, bool) {
	v, ok := r.Metrics[name]
	return v, ok
}

// Clone returns a deep copy of the reading.
func (r SensorReading) Clone() SensorReading {
	cp := r
	if r.Metrics != nil {
		cp.Metrics = make(map[string]float64, len(r.Metrics))
		for k, v := range r.Metrics {
			cp.Metrics[k] = v
		}
	}
	return cp
}

// AssetProfile is the registry view of a single asset.
type AssetProfile struct {
	ID   string    `json:"id"`
	Kind AssetKind `json:"kind"`
	// Age is expressed in years.
	Age float64 `json:"age"`
	// Usage is the cumulative mileage for vehicles and years in service for
	// infrastructure.
	Usage float64 `json:"usage"`
	// Readings holds the retained history, most recent first.
	Readings  []SensorReading `json:"readings"`
	LastScore float64         `json:"last_score"`
	LastTier  RiskTier        `json:"last_tier"`
	Scored    bool            `json:"scored"`
	UpdatedAt time.Time       `json:"updated_at"`
	Location  GeoPoint        `json:"location"`
	Routes    []string        `json:"routes,omitempty"`
}

// Latest returns the most recent reading if any.
func (p AssetProfile) Latest() (SensorReading, bool) {
	if len(p.Readings) == 0 {
		return SensorReading{}, false
	}
	return p.Readings[0], true
}

// Clone returns a deep copy so callers cannot mutate registry state.
func (p AssetProfile) Clone() AssetProfile {
	cp := p
	if p.Readings != nil {
		cp.Readings = make([]SensorReading, len(p.Readings))
		for i, r := range p.Readings {
			cp.Readings[i] = r.Clone()
		}
	}
	if p.Routes != nil {
		cp.Routes = append([]string(nil), p.Routes...)
	}
	return cp
}
