package prediction

import "fmt"

// VehicleFailureProbability applies the additive heuristic and returns the
// probability in [0,1] together with the rules that fired. Rules with a zero
// penalty are disabled.
func VehicleFailureProbability(f VehicleFeatures, t VehicleThresholds) (float64, []string) {
	var (
		p       float64
		factors []string
	)
	fire := func(penalty *float64, format string, args ...any) {
		pen := weight(penalty)
		if pen == 0 {
			return
		}
		p += pen
		factors = append(factors, fmt.Sprintf(format, args...))
	}
	if f.EngineTemp.Usable() && f.EngineTemp.V > t.EngineTempMax {
		fire(t.EngineTempPenalty, "engine temperature %.1f above %.1f", f.EngineTemp.V, t.EngineTempMax)
	}
	if f.OilPressure.Usable() && f.OilPressure.V < t.OilPressureMin {
		fire(t.OilPressurePenalty, "oil pressure %.1f below %.1f", f.OilPressure.V, t.OilPressureMin)
	}
	if f.BrakeWear.Usable() && f.BrakeWear.V > t.BrakeWearMax {
		fire(t.BrakeWearPenalty, "brake wear %.1f%% above %.1f%%", f.BrakeWear.V, t.BrakeWearMax)
	}
	if f.Age.Usable() && f.Age.V > t.AgeMax {
		fire(t.AgePenalty, "age %.1f years above %.1f", f.Age.V, t.AgeMax)
	}
	if f.Mileage.Usable() && f.Mileage.V > t.MileageMax {
		fire(t.MileagePenalty, "mileage %.0f above %.0f", f.Mileage.V, t.MileageMax)
	}
	return clamp(p, 0, 1), factors
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
