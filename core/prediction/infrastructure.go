package prediction

import "fmt"

// InfrastructureHealth returns a health percentage in [0,100] where 100 is
// pristine, together with the penalties that applied.
func InfrastructureHealth(f InfraFeatures, t InfraThresholds) (float64, []string) {
	h := 100.0
	var factors []string
	deduct := func(pen float64, format string, args ...any) {
		if pen <= 0 {
			return
		}
		h -= pen
		factors = append(factors, fmt.Sprintf(format, append(args, pen)...))
	}
	if f.Age.Usable() && f.Age.V > t.AgeLimit {
		deduct((f.Age.V-t.AgeLimit)*weight(t.AgePenaltyPerYear),
			"age %.1f years beyond %.0f (-%.1f)", f.Age.V, t.AgeLimit)
	}
	if f.DaysSinceMaintenance.Usable() && f.DaysSinceMaintenance.V > t.MaintenanceIntervalDays {
		overdue := f.DaysSinceMaintenance.V - t.MaintenanceIntervalDays
		deduct(overdue/365*weight(t.MaintenancePenaltyPerYear),
			"maintenance overdue by %.0f days (-%.1f)", overdue)
	}
	if f.StructuralIntegrity.Usable() && f.StructuralIntegrity.V < 100 {
		deduct((100-f.StructuralIntegrity.V)*weight(t.IntegrityWeight),
			"structural integrity %.1f%% (-%.1f)", f.StructuralIntegrity.V)
	}
	if f.SurfaceCondition.Usable() && f.SurfaceCondition.V < 100 {
		deduct((100-f.SurfaceCondition.V)*weight(t.SurfaceWeight),
			"surface condition %.1f%% (-%.1f)", f.SurfaceCondition.V)
	}
	return clamp(h, 0, 100), factors
}
