package prediction

import (
	"math"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
)

// Value is an optional numeric feature. A Value that is unset or not finite
// contributes nothing to a score.
type Value struct {
	V   float64
	Set bool
}

// Some wraps a reported value.
func Some(v float64) Value { return Value{V: v, Set: true} }

// Usable reports whether the value can take part in scoring.
func (v Value) Usable() bool {
	return v.Set && !math.IsNaN(v.V) && !math.IsInf(v.V, 0)
}

// VehicleFeatures are the inputs of the vehicle failure heuristic.
type VehicleFeatures struct {
	EngineTemp  Value
	OilPressure Value
	BrakeWear   Value
	Age         Value
	Mileage     Value
}

// InfraFeatures are the inputs of the infrastructure health model.
type InfraFeatures struct {
	Age                  Value
	DaysSinceMaintenance Value
	StructuralIntegrity  Value
	SurfaceCondition     Value
}

func metric(r model.SensorReading, name string) Value {
	v, ok := r.Metric(name)
	if !ok {
		return Value{}
	}
	return Some(v)
}

// VehicleFeaturesFrom extracts features from a reading. Age and mileage fall
// back to the profile when the reading does not carry them.
func VehicleFeaturesFrom(r model.SensorReading, p model.AssetProfile) VehicleFeatures {
	f := VehicleFeatures{
		EngineTemp:  metric(r, model.MetricEngineTemp),
		OilPressure: metric(r, model.MetricOilPressure),
		BrakeWear:   metric(r, model.MetricBrakeWear),
		Age:         metric(r, model.MetricAge),
		Mileage:     metric(r, model.MetricMileage),
	}
	if !f.Age.Usable() && p.Age > 0 {
		f.Age = Some(p.Age)
	}
	if !f.Mileage.Usable() && p.Usage > 0 {
		f.Mileage = Some(p.Usage)
	}
	return f
}

// InfraFeaturesFrom extracts features from a reading. Age falls back to the
// profile when the reading does not carry it.
func InfraFeaturesFrom(r model.SensorReading, p model.AssetProfile) InfraFeatures {
	f := InfraFeatures{
		Age:                  metric(r, model.MetricAge),
		DaysSinceMaintenance: metric(r, model.MetricDaysSinceMaintenance),
		StructuralIntegrity:  metric(r, model.MetricStructuralIntegrity),
		SurfaceCondition:     metric(r, model.MetricSurfaceCondition),
	}
	if !f.Age.Usable() && p.Age > 0 {
		f.Age = Some(p.Age)
	}
	return f
}
