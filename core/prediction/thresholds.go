package prediction

// VehicleThresholds configures the additive failure heuristic. Each feature
// crossing its limit adds its fixed increment to the probability. Penalties
// are pointers so that an explicit 0 disables a rule while nil takes the
// default.
type VehicleThresholds struct {
	EngineTempMax      float64  `json:"engine_temp_max"`
	EngineTempPenalty  *float64 `json:"engine_temp_penalty"`
	OilPressureMin     float64  `json:"oil_pressure_min"`
	OilPressurePenalty *float64 `json:"oil_pressure_penalty"`
	BrakeWearMax       float64  `json:"brake_wear_max"`
	BrakeWearPenalty   *float64 `json:"brake_wear_penalty"`
	AgeMax             float64  `json:"age_max"`
	AgePenalty         *float64 `json:"age_penalty"`
	MileageMax         float64  `json:"mileage_max"`
	MileagePenalty     *float64 `json:"mileage_penalty"`
	// HorizonDays is the time-to-failure of a vehicle with zero risk.
	HorizonDays float64 `json:"horizon_days"`
}

// InfraThresholds configures the infrastructure health penalties. As for
// vehicles, a nil penalty or weight takes the default and 0 disables it.
type InfraThresholds struct {
	AgeLimit                  float64  `json:"age_limit"`
	AgePenaltyPerYear         *float64 `json:"age_penalty_per_year"`
	MaintenanceIntervalDays   float64  `json:"maintenance_interval_days"`
	MaintenancePenaltyPerYear *float64 `json:"maintenance_penalty_per_year"`
	IntegrityWeight           *float64 `json:"integrity_weight"`
	SurfaceWeight             *float64 `json:"surface_weight"`
	DesignLifeYears           float64  `json:"design_life_years"`
	// FailureHealth is the health level treated as end of life when
	// extrapolating a trend.
	FailureHealth float64 `json:"failure_health"`
}

// TierThresholds maps a normalised risk to a tier. A risk at or above a
// threshold belongs to that tier.
type TierThresholds struct {
	Critical float64 `json:"critical"`
	High     float64 `json:"high"`
	Medium   float64 `json:"medium"`
	Low      float64 `json:"low"`
}

// Thresholds groups every tunable constant of the scoring models.
type Thresholds struct {
	Vehicle        VehicleThresholds `json:"vehicle"`
	Infrastructure InfraThresholds   `json:"infrastructure"`
	Tiers          TierThresholds    `json:"tiers"`
}

// DefaultThresholds returns the reference calibration.
func DefaultThresholds() Thresholds {
	var t Thresholds
	t.SetDefaults()
	return t
}

// SetDefaults fills unset values with the reference calibration.
func (t *Thresholds) SetDefaults() {
	v := &t.Vehicle
	setDefault(&v.EngineTempMax, 100)
	setWeight(&v.EngineTempPenalty, 0.3)
	setDefault(&v.OilPressureMin, 20)
	setWeight(&v.OilPressurePenalty, 0.4)
	setDefault(&v.BrakeWearMax, 80)
	setWeight(&v.BrakeWearPenalty, 0.5)
	setDefault(&v.AgeMax, 10)
	setWeight(&v.AgePenalty, 0.2)
	setDefault(&v.MileageMax, 200000)
	setWeight(&v.MileagePenalty, 0.3)
	setDefault(&v.HorizonDays, 365)

	i := &t.Infrastructure
	setDefault(&i.AgeLimit, 20)
	setWeight(&i.AgePenaltyPerYear, 2)
	setDefault(&i.MaintenanceIntervalDays, 365)
	setWeight(&i.MaintenancePenaltyPerYear, 10)
	setWeight(&i.IntegrityWeight, 0.5)
	setWeight(&i.SurfaceWeight, 0.3)
	setDefault(&i.DesignLifeYears, 50)
	setDefault(&i.FailureHealth, 20)

	setDefault(&t.Tiers.Critical, 0.8)
	setDefault(&t.Tiers.High, 0.6)
	setDefault(&t.Tiers.Medium, 0.4)
	setDefault(&t.Tiers.Low, 0.2)
}

// Validate checks that tier thresholds are strictly ordered.
func (t Thresholds) Validate() error {
	tt := t.Tiers
	if !(tt.Low < tt.Medium && tt.Medium < tt.High && tt.High < tt.Critical) {
		return errTierOrder
	}
	if tt.Critical > 1 || tt.Low <= 0 {
		return errTierRange
	}
	v, i := t.Vehicle, t.Infrastructure
	for _, w := range []*float64{
		v.EngineTempPenalty, v.OilPressurePenalty, v.BrakeWearPenalty, v.AgePenalty, v.MileagePenalty,
		i.AgePenaltyPerYear, i.MaintenancePenaltyPerYear, i.IntegrityWeight, i.SurfaceWeight,
	} {
		if weight(w) < 0 {
			return errNegativeWeight
		}
	}
	return nil
}

func setDefault(v *float64, d float64) {
	if *v == 0 {
		*v = d
	}
}

func setWeight(v **float64, d float64) {
	if *v == nil {
		*v = Weight(d)
	}
}

// Weight returns a pointer to v for penalties and weights set in code.
func Weight(v float64) *float64 { return &v }

func weight(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
